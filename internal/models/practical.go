package models

import "time"

// PracticalEvaluation is one coach's scoring of one student for one exam
// across the five fixed competency dimensions, each in [0,100]. Mutable by the
// coach until the final result for the pair is computed.
type PracticalEvaluation struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ExamID          uint      `gorm:"not null;uniqueIndex:idx_practical_pair" json:"exam_id"`
	StudentID       uint      `gorm:"not null;uniqueIndex:idx_practical_pair" json:"student_id"`
	CoachID         uint      `gorm:"not null" json:"coach_id"`
	Morality        float64   `gorm:"not null" json:"morality"`
	PracticalMethod float64   `gorm:"not null" json:"practical_method"`
	Technique       float64   `gorm:"not null" json:"technique"`
	Physical        float64   `gorm:"not null" json:"physical"`
	Mental          float64   `gorm:"not null" json:"mental"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NonMethodTotal sums the four dimensions that enter the final total directly.
// PracticalMethod is excluded; it combines with the theory score instead.
func (p PracticalEvaluation) NonMethodTotal() float64 {
	return p.Morality + p.Technique + p.Physical + p.Mental
}
