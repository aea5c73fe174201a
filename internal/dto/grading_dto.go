package dto

// EssayScoreRequest records a grader's score for one essay answer.
type EssayScoreRequest struct {
	QuestionID uint    `json:"question_id" validate:"required,gt=0"`
	Score      float64 `json:"score" validate:"gte=0"`
}
