package models

import (
	"time"

	"gorm.io/datatypes"
)

// ExamStatus describes the lifecycle stage of an exam.
type ExamStatus string

const (
	// ExamStatusDraft marks an exam still being authored; questions are mutable.
	ExamStatusDraft ExamStatus = "draft"
	// ExamStatusPublished marks an exam open for new attempt sessions.
	ExamStatusPublished ExamStatus = "published"
	// ExamStatusClosed marks an exam that accepts no further submissions.
	ExamStatusClosed ExamStatus = "closed"
)

// QuestionType discriminates the supported question variants.
type QuestionType string

const (
	// QuestionTypeMCQ is a multiple choice question with a single correct index.
	QuestionTypeMCQ QuestionType = "mcq"
	// QuestionTypeTrueFalse is a boolean question.
	QuestionTypeTrueFalse QuestionType = "true_false"
	// QuestionTypeEssay is a free-text question scored by a human grader.
	QuestionTypeEssay QuestionType = "essay"
)

// Exam defines one belt-promotion assessment instance.
type Exam struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Title          string     `gorm:"size:255;not null" json:"title"`
	BeltLevel      string     `gorm:"size:32;not null" json:"belt_level"`
	Status         ExamStatus `gorm:"size:16;not null;default:draft" json:"status"`
	StartsAt       time.Time  `gorm:"not null" json:"starts_at"`
	EndsAt         time.Time  `gorm:"not null" json:"ends_at"`
	TimeLimitMins  int        `gorm:"not null" json:"time_limit_mins"`
	MaxTheoryScore float64    `gorm:"not null" json:"max_theory_score"`
	PassMark       float64    `gorm:"not null" json:"pass_mark"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	Questions      []Question `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"questions"`
}

// TimeLimit returns the attempt duration as a time.Duration.
func (e Exam) TimeLimit() time.Duration {
	return time.Duration(e.TimeLimitMins) * time.Minute
}

// InSchedule reports whether the reference instant falls inside the exam window.
func (e Exam) InSchedule(reference time.Time) bool {
	return !reference.Before(e.StartsAt) && !reference.After(e.EndsAt)
}

// QuestionByID looks up a question belonging to the exam.
func (e Exam) QuestionByID(id uint) (Question, bool) {
	for _, question := range e.Questions {
		if question.ID == id {
			return question, true
		}
	}
	return Question{}, false
}

// EssayQuestions returns the subset of questions requiring manual grading.
func (e Exam) EssayQuestions() []Question {
	var essays []Question
	for _, question := range e.Questions {
		if question.Type == QuestionTypeEssay {
			essays = append(essays, question)
		}
	}
	return essays
}

// Question is one assessable item owned by exactly one exam. Immutable once
// the owning exam leaves draft.
type Question struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	ExamID        uint           `gorm:"not null;index" json:"exam_id"`
	Type          QuestionType   `gorm:"size:16;not null" json:"type"`
	Prompt        string         `gorm:"type:text;not null" json:"prompt"`
	Choices       datatypes.JSON `gorm:"type:json" json:"choices"`
	CorrectIndex  *int           `json:"correct_index,omitempty"`
	CorrectAnswer *bool          `json:"correct_answer,omitempty"`
	MaxScore      float64        `gorm:"not null;default:1" json:"max_score"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// AutoScorable reports whether the question can be graded without a human.
func (q Question) AutoScorable() bool {
	return q.Type == QuestionTypeMCQ || q.Type == QuestionTypeTrueFalse
}
