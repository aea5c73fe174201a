package models

import (
	"time"

	"gorm.io/datatypes"
)

// Certificate is the immutable artifact issued for a passing final result.
// At most one per (student, exam) pair. The document itself is rendered by an
// external collaborator; DocumentRef is an opaque reference for it.
type Certificate struct {
	ID             uint              `gorm:"primaryKey" json:"id"`
	Serial         string            `gorm:"size:64;uniqueIndex;not null" json:"serial"`
	ExamID         uint              `gorm:"not null;uniqueIndex:idx_certificate_pair" json:"exam_id"`
	StudentID      uint              `gorm:"not null;uniqueIndex:idx_certificate_pair" json:"student_id"`
	BeltLevel      string            `gorm:"size:32;not null" json:"belt_level"`
	Passed         bool              `gorm:"not null" json:"passed"`
	ScoreBreakdown datatypes.JSONMap `gorm:"type:json" json:"score_breakdown"`
	DocumentRef    string            `gorm:"size:512" json:"document_ref"`
	IssuedAt       time.Time         `gorm:"not null" json:"issued_at"`
	CreatedAt      time.Time         `json:"created_at"`
}
