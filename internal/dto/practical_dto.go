package dto

import (
	"time"

	"github.com/kenshokan/dojang-api/internal/models"
)

// PracticalScoresRequest carries the five coach-scored dimensions, each in
// [0,100].
type PracticalScoresRequest struct {
	ExamID          uint    `json:"exam_id" validate:"required,gt=0"`
	StudentID       uint    `json:"student_id" validate:"required,gt=0"`
	Morality        float64 `json:"morality" validate:"gte=0,lte=100"`
	PracticalMethod float64 `json:"practical_method" validate:"gte=0,lte=100"`
	Technique       float64 `json:"technique" validate:"gte=0,lte=100"`
	Physical        float64 `json:"physical" validate:"gte=0,lte=100"`
	Mental          float64 `json:"mental" validate:"gte=0,lte=100"`
}

// PracticalResponse serializes a stored practical evaluation.
type PracticalResponse struct {
	ID              uint      `json:"id"`
	ExamID          uint      `json:"exam_id"`
	StudentID       uint      `json:"student_id"`
	CoachID         uint      `json:"coach_id"`
	Morality        float64   `json:"morality"`
	PracticalMethod float64   `json:"practical_method"`
	Technique       float64   `json:"technique"`
	Physical        float64   `json:"physical"`
	Mental          float64   `json:"mental"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewPracticalResponse converts a practical evaluation model into a DTO.
func NewPracticalResponse(model models.PracticalEvaluation) PracticalResponse {
	return PracticalResponse{
		ID:              model.ID,
		ExamID:          model.ExamID,
		StudentID:       model.StudentID,
		CoachID:         model.CoachID,
		Morality:        model.Morality,
		PracticalMethod: model.PracticalMethod,
		Technique:       model.Technique,
		Physical:        model.Physical,
		Mental:          model.Mental,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}
