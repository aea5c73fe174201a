package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/kenshokan/dojang-api/internal/dto"
	"github.com/kenshokan/dojang-api/internal/models"
	"github.com/kenshokan/dojang-api/internal/repository"
)

// ErrNotClosed indicates essays cannot be graded while the session is open.
var ErrNotClosed = errors.New("attempt session not yet closed")

// ErrInvalidScore indicates the essay score is negative or above the question max.
var ErrInvalidScore = errors.New("score outside question bounds")

// ErrUnknownEssayQuestion indicates the question is not an essay question of
// the session's exam, or carries no recorded answer.
var ErrUnknownEssayQuestion = errors.New("question is not a gradable essay")

// GradingService is the manual grading gate: it accepts essay scores after
// submission and finalizes the theory score once every essay question is
// scored.
type GradingService interface {
	ScoreEssay(ctx context.Context, sessionID uint, payload dto.EssayScoreRequest, actor ActivityActor) (dto.AttemptResponse, error)
}

type gradingService struct {
	attempts  repository.AttemptRepository
	closer    *sessionCloser
	validator *validator.Validate
	activity  ActivityRecorder
	logger    zerolog.Logger
	now       func() time.Time
}

// NewGradingService constructs the manual grading gate.
func NewGradingService(attempts repository.AttemptRepository, events EventPublisher, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) GradingService {
	return &gradingService{
		attempts:  attempts,
		closer:    &sessionCloser{attempts: attempts, events: events},
		validator: validate,
		activity:  activity,
		logger:    logger.With().Str("component", "grading_service").Logger(),
		now:       time.Now,
	}
}

func (s *gradingService) ScoreEssay(ctx context.Context, sessionID uint, payload dto.EssayScoreRequest, actor ActivityActor) (dto.AttemptResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AttemptResponse{}, err
	}

	session, err := s.attempts.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AttemptResponse{}, ErrSessionNotFound
		}
		return dto.AttemptResponse{}, err
	}

	now := s.now()
	if err := s.closer.materializeExpiry(ctx, &session, now); err != nil {
		return dto.AttemptResponse{}, err
	}

	if !session.IsSubmitted() {
		return dto.AttemptResponse{}, ErrNotClosed
	}

	question, ok := session.Exam.QuestionByID(payload.QuestionID)
	if !ok || question.Type != models.QuestionTypeEssay {
		return dto.AttemptResponse{}, ErrUnknownEssayQuestion
	}

	if payload.Score < 0 || payload.Score > question.MaxScore {
		return dto.AttemptResponse{}, ErrInvalidScore
	}

	answer, answered := session.AnswerFor(question.ID)
	if !answered {
		return dto.AttemptResponse{}, ErrUnknownEssayQuestion
	}

	if err := s.attempts.UpdateAnswerScore(ctx, answer.ID, payload.Score); err != nil {
		return dto.AttemptResponse{}, err
	}

	session, err = s.attempts.GetByID(ctx, session.ID)
	if err != nil {
		return dto.AttemptResponse{}, err
	}

	if err := s.finalizeIfComplete(ctx, &session); err != nil {
		return dto.AttemptResponse{}, err
	}

	if s.activity != nil {
		sessionID := session.ID
		_, _ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     "essay.scored",
			EntityType: "attempt_session",
			EntityID:   &sessionID,
			Metadata: map[string]interface{}{
				"question_id": payload.QuestionID,
				"score":       payload.Score,
				"student_id":  session.StudentID,
			},
		})
	}

	return dto.NewAttemptResponse(session, now), nil
}

// finalizeIfComplete computes the theory score exactly when every essay
// question in the exam carries a recorded score. The theory score is written
// once and never recomputed.
func (s *gradingService) finalizeIfComplete(ctx context.Context, session *models.AttemptSession) error {
	if session.IsFinalized() {
		return nil
	}

	// Unanswered essays contribute zero; only an answered essay without a
	// grader score keeps the session in the closed state.
	var manual float64
	for _, question := range session.Exam.EssayQuestions() {
		answer, answered := session.AnswerFor(question.ID)
		if !answered {
			continue
		}
		if answer.Score == nil {
			return nil
		}
		manual += *answer.Score
	}

	auto := 0.0
	if session.AutoScore != nil {
		auto = *session.AutoScore
	}

	theory := auto + manual
	session.ManualScore = &manual
	session.TheoryScore = &theory

	if err := s.attempts.Update(ctx, session); err != nil {
		return err
	}

	s.logger.Info().Uint("session_id", session.ID).Float64("theory_score", theory).Msg("theory score finalized")
	s.closer.publishFinalized(ctx, session)

	return nil
}
