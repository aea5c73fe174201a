package dto

import (
	"time"

	"github.com/kenshokan/dojang-api/internal/models"
)

// StartAttemptRequest opens a new attempt session for the acting student.
type StartAttemptRequest struct {
	ExamID uint `json:"exam_id" validate:"required,gt=0"`
}

// RecordAnswerRequest upserts one answer within an open session. Exactly one
// payload field applies, matched against the question type by the service.
type RecordAnswerRequest struct {
	QuestionID    uint   `json:"question_id" validate:"required,gt=0"`
	SelectedIndex *int   `json:"selected_index" validate:"omitempty,gte=0"`
	BoolAnswer    *bool  `json:"bool_answer"`
	EssayText     string `json:"essay_text"`
}

// AttemptQuestionView is a question as shown to the student mid-attempt: the
// answer key is never included.
type AttemptQuestionView struct {
	ID       uint     `json:"id"`
	Type     string   `json:"type"`
	Prompt   string   `json:"prompt"`
	Choices  []string `json:"choices,omitempty"`
	MaxScore float64  `json:"max_score"`
}

// AttemptAnswerResponse serializes one recorded answer.
type AttemptAnswerResponse struct {
	QuestionID    uint     `json:"question_id"`
	SelectedIndex *int     `json:"selected_index,omitempty"`
	BoolAnswer    *bool    `json:"bool_answer,omitempty"`
	EssayText     string   `json:"essay_text,omitempty"`
	Score         *float64 `json:"score"`
}

// AttemptResponse is the API view of a session, reported against the
// authoritative clock at read time.
type AttemptResponse struct {
	ID                 uint                    `json:"id"`
	ExamID             uint                    `json:"exam_id"`
	StudentID          uint                    `json:"student_id"`
	State              string                  `json:"state"`
	StartedAt          time.Time               `json:"started_at"`
	Deadline           time.Time               `json:"deadline"`
	RemainingSeconds   int                     `json:"remaining_seconds"`
	SubmittedAt        *time.Time              `json:"submitted_at"`
	ForcedSubmitReason string                  `json:"forced_submit_reason,omitempty"`
	FocusLosses        int                     `json:"focus_losses"`
	AutoScore          *float64                `json:"auto_score"`
	ManualScore        *float64                `json:"manual_score"`
	TheoryScore        *float64                `json:"theory_score"`
	Questions          []AttemptQuestionView   `json:"questions,omitempty"`
	Answers            []AttemptAnswerResponse `json:"answers"`
}

// NewAttemptResponse converts a session model into a DTO. The state and
// remaining time derive from now, not from what storage last materialized.
func NewAttemptResponse(session models.AttemptSession, now time.Time) AttemptResponse {
	remaining := 0
	state := session.EffectiveState(now)
	if state == models.AttemptStateOpen {
		remaining = int(session.Deadline.Sub(now).Seconds())
		if remaining < 0 {
			remaining = 0
		}
	}

	response := AttemptResponse{
		ID:                 session.ID,
		ExamID:             session.ExamID,
		StudentID:          session.StudentID,
		State:              string(state),
		StartedAt:          session.StartedAt,
		Deadline:           session.Deadline,
		RemainingSeconds:   remaining,
		SubmittedAt:        session.SubmittedAt,
		ForcedSubmitReason: session.ForcedSubmitReason,
		FocusLosses:        session.FocusLosses,
		AutoScore:          session.AutoScore,
		ManualScore:        session.ManualScore,
		TheoryScore:        session.TheoryScore,
		Answers:            make([]AttemptAnswerResponse, 0, len(session.Answers)),
	}

	if len(session.Exam.Questions) > 0 {
		views := make([]AttemptQuestionView, 0, len(session.Exam.Questions))
		for _, question := range session.Exam.Questions {
			views = append(views, AttemptQuestionView{
				ID:       question.ID,
				Type:     string(question.Type),
				Prompt:   question.Prompt,
				Choices:  DecodeChoices(question.Choices),
				MaxScore: question.MaxScore,
			})
		}
		response.Questions = views
	}

	for _, answer := range session.Answers {
		response.Answers = append(response.Answers, AttemptAnswerResponse{
			QuestionID:    answer.QuestionID,
			SelectedIndex: answer.SelectedIndex,
			BoolAnswer:    answer.BoolAnswer,
			EssayText:     answer.EssayText,
			Score:         answer.Score,
		})
	}

	return response
}
