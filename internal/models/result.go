package models

import "time"

// TotalScoreMax is the fixed ceiling of the composed final score: the theory
// score normalized into a 100-point space plus the four non-method practical
// dimensions, 5 x 100 in total.
const TotalScoreMax = 500.0

// FinalExamResult is the certification verdict for one (student, exam) pair.
// Created exactly once, after both the theory score and the practical
// evaluation are finalized; immutable thereafter.
type FinalExamResult struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ExamID          uint      `gorm:"not null;uniqueIndex:idx_result_pair" json:"exam_id"`
	StudentID       uint      `gorm:"not null;uniqueIndex:idx_result_pair" json:"student_id"`
	TheoryScore     float64   `gorm:"not null" json:"theory_score"`
	Morality        float64   `gorm:"not null" json:"morality"`
	PracticalMethod float64   `gorm:"not null" json:"practical_method"`
	Technique       float64   `gorm:"not null" json:"technique"`
	Physical        float64   `gorm:"not null" json:"physical"`
	Mental          float64   `gorm:"not null" json:"mental"`
	MethodTotal     float64   `gorm:"not null" json:"method_total"`
	TotalScore      float64   `gorm:"not null" json:"total_score"`
	PassThreshold   float64   `gorm:"not null" json:"pass_threshold"`
	Passed          bool      `gorm:"not null" json:"passed"`
	DecidedAt       time.Time `gorm:"not null" json:"decided_at"`
	CreatedAt       time.Time `json:"created_at"`
}
