package dto

import "time"

// AttemptSummary is one row of a student's attempt history.
type AttemptSummary struct {
	SessionID          uint       `json:"session_id"`
	ExamID             uint       `json:"exam_id"`
	ExamTitle          string     `json:"exam_title"`
	BeltLevel          string     `json:"belt_level"`
	State              string     `json:"state"`
	StartedAt          time.Time  `json:"started_at"`
	SubmittedAt        *time.Time `json:"submitted_at"`
	ForcedSubmitReason string     `json:"forced_submit_reason,omitempty"`
	TheoryScore        *float64   `json:"theory_score"`
}

// ProgressSummary aggregates a student's certification progress.
type ProgressSummary struct {
	TotalAttempts   int `json:"total_attempts"`
	OpenAttempts    int `json:"open_attempts"`
	AwaitingGrading int `json:"awaiting_grading"`
	ResultsDecided  int `json:"results_decided"`
	ExamsPassed     int `json:"exams_passed"`
}

// StudentProgressResponse is the aggregated progress view for one student.
type StudentProgressResponse struct {
	Summary  ProgressSummary  `json:"summary"`
	Attempts []AttemptSummary `json:"attempts"`
	Results  []ResultResponse `json:"results"`
}
