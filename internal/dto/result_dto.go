package dto

import (
	"time"

	"github.com/kenshokan/dojang-api/internal/models"
)

// ResultResponse serializes a final exam result.
type ResultResponse struct {
	ID              uint      `json:"id"`
	ExamID          uint      `json:"exam_id"`
	StudentID       uint      `json:"student_id"`
	TheoryScore     float64   `json:"theory_score"`
	Morality        float64   `json:"morality"`
	PracticalMethod float64   `json:"practical_method"`
	Technique       float64   `json:"technique"`
	Physical        float64   `json:"physical"`
	Mental          float64   `json:"mental"`
	MethodTotal     float64   `json:"method_total"`
	TotalScore      float64   `json:"total_score"`
	PassThreshold   float64   `json:"pass_threshold"`
	Passed          bool      `json:"passed"`
	DecidedAt       time.Time `json:"decided_at"`
}

// NewResultResponse converts a final result model into a DTO.
func NewResultResponse(model models.FinalExamResult) ResultResponse {
	return ResultResponse{
		ID:              model.ID,
		ExamID:          model.ExamID,
		StudentID:       model.StudentID,
		TheoryScore:     model.TheoryScore,
		Morality:        model.Morality,
		PracticalMethod: model.PracticalMethod,
		Technique:       model.Technique,
		Physical:        model.Physical,
		Mental:          model.Mental,
		MethodTotal:     model.MethodTotal,
		TotalScore:      model.TotalScore,
		PassThreshold:   model.PassThreshold,
		Passed:          model.Passed,
		DecidedAt:       model.DecidedAt,
	}
}

// NewResultResponseSlice converts final result models into DTOs.
func NewResultResponseSlice(models []models.FinalExamResult) []ResultResponse {
	responses := make([]ResultResponse, 0, len(models))
	for _, result := range models {
		responses = append(responses, NewResultResponse(result))
	}

	return responses
}
