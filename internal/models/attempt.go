package models

import "time"

// ForcedSubmitReason records why the system closed a session without an
// explicit student submission.
const (
	ForcedSubmitTimeout   = "timeout"
	ForcedSubmitAntiCheat = "anti_cheat"
)

// AttemptState is the derived lifecycle state of an attempt session.
type AttemptState string

const (
	// AttemptStateOpen means the student may still record answers.
	AttemptStateOpen AttemptState = "open"
	// AttemptStateClosed means the session is submitted and auto-scored but
	// still waiting on essay grading.
	AttemptStateClosed AttemptState = "closed"
	// AttemptStateFinalized means the theory score is computed and immutable.
	AttemptStateFinalized AttemptState = "finalized"
)

// AttemptSession is one student's single timed pass through one exam.
type AttemptSession struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	ExamID             uint            `gorm:"not null;index:idx_attempt_pair" json:"exam_id"`
	StudentID          uint            `gorm:"not null;index:idx_attempt_pair" json:"student_id"`
	StartedAt          time.Time       `gorm:"not null" json:"started_at"`
	Deadline           time.Time       `gorm:"not null" json:"deadline"`
	SubmittedAt        *time.Time      `json:"submitted_at"`
	ForcedSubmitReason string          `gorm:"size:32" json:"forced_submit_reason,omitempty"`
	FocusLosses        int             `gorm:"not null;default:0" json:"focus_losses"`
	AutoScore          *float64        `json:"auto_score"`
	ManualScore        *float64        `json:"manual_score"`
	TheoryScore        *float64        `json:"theory_score"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	Exam               Exam            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"exam"`
	Student            Student         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
	Answers            []AttemptAnswer `gorm:"foreignKey:SessionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"answers"`
}

// IsSubmitted reports whether the session has been closed in storage.
func (s AttemptSession) IsSubmitted() bool {
	return s.SubmittedAt != nil
}

// IsFinalized reports whether the theory score has been computed.
func (s AttemptSession) IsFinalized() bool {
	return s.TheoryScore != nil
}

// EffectiveState derives the session state against an authoritative clock
// reading. A session still open in storage but past its deadline reports
// closed; callers must materialize that transition before acting.
func (s AttemptSession) EffectiveState(now time.Time) AttemptState {
	if s.IsFinalized() {
		return AttemptStateFinalized
	}
	if s.IsSubmitted() || s.DeadlineExceeded(now) {
		return AttemptStateClosed
	}
	return AttemptStateOpen
}

// DeadlineExceeded reports whether the absolute deadline has passed.
func (s AttemptSession) DeadlineExceeded(now time.Time) bool {
	return !now.Before(s.Deadline)
}

// AnswerFor returns the recorded answer for a question, if any.
func (s AttemptSession) AnswerFor(questionID uint) (AttemptAnswer, bool) {
	for _, answer := range s.Answers {
		if answer.QuestionID == questionID {
			return answer, true
		}
	}
	return AttemptAnswer{}, false
}

// AttemptAnswer holds one per-question answer within a session. Exactly one of
// the payload fields is set depending on the question type; Score is set by
// auto-scoring for objective questions and by a grader for essays.
type AttemptAnswer struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	SessionID     uint      `gorm:"not null;uniqueIndex:idx_session_question" json:"session_id"`
	QuestionID    uint      `gorm:"not null;uniqueIndex:idx_session_question" json:"question_id"`
	SelectedIndex *int      `json:"selected_index,omitempty"`
	BoolAnswer    *bool     `json:"bool_answer,omitempty"`
	EssayText     string    `gorm:"type:text" json:"essay_text,omitempty"`
	Score         *float64  `json:"score"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
