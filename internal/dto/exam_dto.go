package dto

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/kenshokan/dojang-api/internal/models"
)

// QuestionCreateRequest describes one question inside an exam creation payload.
type QuestionCreateRequest struct {
	Type          string   `json:"type" validate:"required,oneof=mcq true_false essay"`
	Prompt        string   `json:"prompt" validate:"required,min=3"`
	Choices       []string `json:"choices" validate:"omitempty,min=2,dive,required"`
	CorrectIndex  *int     `json:"correct_index" validate:"omitempty,gte=0"`
	CorrectAnswer *bool    `json:"correct_answer"`
	MaxScore      float64  `json:"max_score" validate:"omitempty,gt=0"`
}

// ExamCreateRequest is the payload for creating a draft exam with its question
// bank.
type ExamCreateRequest struct {
	Title          string                  `json:"title" validate:"required,min=3"`
	BeltLevel      string                  `json:"belt_level" validate:"required"`
	StartsAt       time.Time               `json:"starts_at" validate:"required"`
	EndsAt         time.Time               `json:"ends_at" validate:"required,gtfield=StartsAt"`
	TimeLimitMins  int                     `json:"time_limit_mins" validate:"required,gt=0"`
	MaxTheoryScore float64                 `json:"max_theory_score" validate:"required,gt=0"`
	PassMark       float64                 `json:"pass_mark" validate:"required,gt=0"`
	Questions      []QuestionCreateRequest `json:"questions" validate:"required,min=1,dive"`
}

// QuestionResponse serializes a question including its answer key; returned
// only through grader and admin surfaces.
type QuestionResponse struct {
	ID            uint     `json:"id"`
	Type          string   `json:"type"`
	Prompt        string   `json:"prompt"`
	Choices       []string `json:"choices,omitempty"`
	CorrectIndex  *int     `json:"correct_index,omitempty"`
	CorrectAnswer *bool    `json:"correct_answer,omitempty"`
	MaxScore      float64  `json:"max_score"`
}

// ExamResponse is returned to API clients viewing exams.
type ExamResponse struct {
	ID             uint               `json:"id"`
	Title          string             `json:"title"`
	BeltLevel      string             `json:"belt_level"`
	Status         string             `json:"status"`
	StartsAt       time.Time          `json:"starts_at"`
	EndsAt         time.Time          `json:"ends_at"`
	TimeLimitMins  int                `json:"time_limit_mins"`
	MaxTheoryScore float64            `json:"max_theory_score"`
	PassMark       float64            `json:"pass_mark"`
	Questions      []QuestionResponse `json:"questions,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// DecodeChoices unpacks the JSON choice list stored on an MCQ question.
func DecodeChoices(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var choices []string
	if err := json.Unmarshal(raw, &choices); err != nil {
		return nil
	}
	return choices
}

// NewQuestionResponse converts a question model into a DTO.
func NewQuestionResponse(model models.Question) QuestionResponse {
	return QuestionResponse{
		ID:            model.ID,
		Type:          string(model.Type),
		Prompt:        model.Prompt,
		Choices:       DecodeChoices(model.Choices),
		CorrectIndex:  model.CorrectIndex,
		CorrectAnswer: model.CorrectAnswer,
		MaxScore:      model.MaxScore,
	}
}

// NewExamResponse converts an exam model into a DTO.
func NewExamResponse(model models.Exam) ExamResponse {
	response := ExamResponse{
		ID:             model.ID,
		Title:          model.Title,
		BeltLevel:      model.BeltLevel,
		Status:         string(model.Status),
		StartsAt:       model.StartsAt,
		EndsAt:         model.EndsAt,
		TimeLimitMins:  model.TimeLimitMins,
		MaxTheoryScore: model.MaxTheoryScore,
		PassMark:       model.PassMark,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}

	if len(model.Questions) > 0 {
		questions := make([]QuestionResponse, 0, len(model.Questions))
		for _, question := range model.Questions {
			questions = append(questions, NewQuestionResponse(question))
		}
		response.Questions = questions
	}

	return response
}

// NewExamResponseSlice converts exam models into DTOs.
func NewExamResponseSlice(models []models.Exam) []ExamResponse {
	responses := make([]ExamResponse, 0, len(models))
	for _, exam := range models {
		responses = append(responses, NewExamResponse(exam))
	}

	return responses
}
