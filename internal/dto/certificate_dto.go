package dto

import (
	"time"

	"github.com/kenshokan/dojang-api/internal/models"
)

// CertificateResponse serializes an issued certificate. DocumentRef is an
// opaque reference consumed by the external rendering collaborator.
type CertificateResponse struct {
	ID             uint                   `json:"id"`
	Serial         string                 `json:"serial"`
	ExamID         uint                   `json:"exam_id"`
	StudentID      uint                   `json:"student_id"`
	BeltLevel      string                 `json:"belt_level"`
	Passed         bool                   `json:"passed"`
	ScoreBreakdown map[string]interface{} `json:"score_breakdown"`
	DocumentRef    string                 `json:"document_ref,omitempty"`
	IssuedAt       time.Time              `json:"issued_at"`
}

// NewCertificateResponse converts a certificate model into a DTO.
func NewCertificateResponse(model models.Certificate) CertificateResponse {
	return CertificateResponse{
		ID:             model.ID,
		Serial:         model.Serial,
		ExamID:         model.ExamID,
		StudentID:      model.StudentID,
		BeltLevel:      model.BeltLevel,
		Passed:         model.Passed,
		ScoreBreakdown: model.ScoreBreakdown,
		DocumentRef:    model.DocumentRef,
		IssuedAt:       model.IssuedAt,
	}
}
