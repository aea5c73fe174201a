package service

import (
	"context"
	"time"

	"github.com/kenshokan/dojang-api/internal/models"
	"github.com/kenshokan/dojang-api/internal/observability"
	"github.com/kenshokan/dojang-api/internal/repository"
)

// sessionCloser owns the Open -> Closed transition. It is shared between the
// attempt service and the grading gate so the lazy-expiry check behaves
// identically on every path that touches a session.
type sessionCloser struct {
	attempts repository.AttemptRepository
	events   EventPublisher
}

// materializeExpiry persists the timeout transition for a session whose
// deadline has passed while still open in storage. Every read and write path
// goes through here first, so no caller can observe a stale open state.
func (c *sessionCloser) materializeExpiry(ctx context.Context, session *models.AttemptSession, now time.Time) error {
	if session.IsSubmitted() || !session.DeadlineExceeded(now) {
		return nil
	}

	return c.close(ctx, session, session.Deadline, models.ForcedSubmitTimeout)
}

// close stamps submission, auto-scores the objective questions exactly once,
// and finalizes the theory score immediately when the exam has no essay
// questions. Idempotent: a session already submitted is left untouched, so a
// racing closer cannot overwrite the original reason or re-score.
func (c *sessionCloser) close(ctx context.Context, session *models.AttemptSession, closedAt time.Time, reason string) error {
	if session.IsSubmitted() {
		return nil
	}

	submittedAt := closedAt
	session.SubmittedAt = &submittedAt
	session.ForcedSubmitReason = reason

	perAnswer, total := autoScoreSession(session.Exam, *session)
	session.AutoScore = &total

	// Unanswered questions score zero, essays included. When no essay answer
	// awaits a grader the theory score is final at close time.
	if !hasGradableEssay(session.Exam, *session) {
		manual := 0.0
		theory := total
		session.ManualScore = &manual
		session.TheoryScore = &theory
	}

	if err := c.attempts.Update(ctx, session); err != nil {
		return err
	}

	for answerID, earned := range perAnswer {
		if err := c.attempts.UpdateAnswerScore(ctx, answerID, earned); err != nil {
			return err
		}
	}
	for i := range session.Answers {
		if earned, ok := perAnswer[session.Answers[i].ID]; ok {
			score := earned
			session.Answers[i].Score = &score
		}
	}

	closedLabel := reason
	if closedLabel == "" {
		closedLabel = "submitted"
	}
	observability.AttemptsClosed().WithLabelValues(closedLabel).Inc()

	c.publishFinalized(ctx, session)

	return nil
}

// hasGradableEssay reports whether any essay question carries a recorded
// answer that still needs a manual score.
func hasGradableEssay(exam models.Exam, session models.AttemptSession) bool {
	for _, question := range exam.EssayQuestions() {
		if answer, answered := session.AnswerFor(question.ID); answered && answer.Score == nil {
			return true
		}
	}
	return false
}

// publishFinalized emits AttemptFinalized once the theory score exists.
func (c *sessionCloser) publishFinalized(ctx context.Context, session *models.AttemptSession) {
	if !session.IsFinalized() || c.events == nil {
		return
	}

	c.events.Publish(ctx, ExamEvent{
		Type:      EventAttemptFinalized,
		ExamID:    session.ExamID,
		StudentID: session.StudentID,
		Payload: map[string]interface{}{
			"session_id":   session.ID,
			"theory_score": *session.TheoryScore,
		},
	})
}
