package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/kenshokan/dojang-api/internal/dto"
	"github.com/kenshokan/dojang-api/internal/models"
	"github.com/kenshokan/dojang-api/internal/observability"
	"github.com/kenshokan/dojang-api/internal/repository"
)

// ErrExamNotFound indicates the referenced exam does not exist.
var ErrExamNotFound = errors.New("exam not found")

// ErrAlreadyOpen indicates the student already has an open session for the exam.
var ErrAlreadyOpen = errors.New("attempt session already open")

// ErrExamNotPublished indicates the exam is not accepting attempts.
var ErrExamNotPublished = errors.New("exam is not published")

// ErrOutsideSchedule indicates the current time is outside the exam window.
var ErrOutsideSchedule = errors.New("outside exam schedule")

// ErrSessionNotFound indicates the attempt session does not exist.
var ErrSessionNotFound = errors.New("attempt session not found")

// ErrSessionClosed indicates the session is already submitted or expired.
var ErrSessionClosed = errors.New("attempt session closed")

// ErrUnknownQuestion indicates the question does not belong to the exam.
var ErrUnknownQuestion = errors.New("question not part of exam")

// ErrAnswerMismatch indicates the answer payload does not fit the question type.
var ErrAnswerMismatch = errors.New("answer does not match question type")

// ErrNotSessionOwner indicates the acting student does not own the session.
var ErrNotSessionOwner = errors.New("session belongs to another student")

// SubmitActor identifies who triggered a submission.
type SubmitActor string

const (
	// SubmitActorStudent is an explicit submission by the student.
	SubmitActorStudent SubmitActor = "student"
	// SubmitActorSystem is a submission triggered by the engine, e.g. on
	// deadline expiry.
	SubmitActorSystem SubmitActor = "system"
)

// AttemptService governs the timed attempt session state machine: start,
// answer recording, anti-cheat tracking, submission, and lazy deadline expiry.
type AttemptService interface {
	Start(ctx context.Context, studentID uint, payload dto.StartAttemptRequest) (dto.AttemptResponse, error)
	RecordAnswer(ctx context.Context, sessionID, studentID uint, payload dto.RecordAnswerRequest) (dto.AttemptResponse, error)
	RecordFocusLoss(ctx context.Context, sessionID, studentID uint) (dto.AttemptResponse, error)
	Submit(ctx context.Context, sessionID, studentID uint, actor SubmitActor) (dto.AttemptResponse, error)
	GetByPair(ctx context.Context, examID, studentID uint) (dto.AttemptResponse, error)
}

type attemptService struct {
	attempts       repository.AttemptRepository
	exams          repository.ExamRepository
	validator      *validator.Validate
	closer         *sessionCloser
	sanitizer      *bluemonday.Policy
	logger         zerolog.Logger
	tracer         trace.Tracer
	focusLossLimit int
	now            func() time.Time
}

// NewAttemptService constructs the attempt session service. focusLossLimit is
// the number of focus losses tolerated before the session is force-closed.
func NewAttemptService(attempts repository.AttemptRepository, exams repository.ExamRepository, validate *validator.Validate, events EventPublisher, focusLossLimit int, logger zerolog.Logger) AttemptService {
	if focusLossLimit <= 0 {
		focusLossLimit = 3
	}

	return &attemptService{
		attempts:       attempts,
		exams:          exams,
		validator:      validate,
		closer:         &sessionCloser{attempts: attempts, events: events},
		sanitizer:      bluemonday.StrictPolicy(),
		logger:         logger.With().Str("component", "attempt_service").Logger(),
		tracer:         otel.Tracer("github.com/kenshokan/dojang-api/internal/service/attempt"),
		focusLossLimit: focusLossLimit,
		now:            time.Now,
	}
}

func (s *attemptService) Start(ctx context.Context, studentID uint, payload dto.StartAttemptRequest) (dto.AttemptResponse, error) {
	ctx, span := s.tracer.Start(ctx, "attempt.start", trace.WithAttributes(
		attribute.Int64("attempt.exam_id", int64(payload.ExamID)),
		attribute.Int64("attempt.student_id", int64(studentID)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		return dto.AttemptResponse{}, err
	}

	exam, err := s.exams.GetByID(ctx, payload.ExamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AttemptResponse{}, ErrExamNotFound
		}
		span.RecordError(err)
		return dto.AttemptResponse{}, err
	}

	if exam.Status != models.ExamStatusPublished {
		return dto.AttemptResponse{}, ErrExamNotPublished
	}

	now := s.now()
	if !exam.InSchedule(now) {
		return dto.AttemptResponse{}, ErrOutsideSchedule
	}

	session := models.AttemptSession{
		ExamID:    exam.ID,
		StudentID: studentID,
		StartedAt: now,
		Deadline:  now.Add(exam.TimeLimit()),
	}

	if err := s.attempts.CreateIfNoneOpen(ctx, &session); err != nil {
		if errors.Is(err, repository.ErrOpenSessionExists) {
			return dto.AttemptResponse{}, ErrAlreadyOpen
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "session_create_failed")
		return dto.AttemptResponse{}, err
	}

	session.Exam = exam
	observability.AttemptsStarted().Inc()
	s.logger.Info().Uint("session_id", session.ID).Uint("exam_id", exam.ID).Uint("student_id", studentID).Msg("attempt session opened")

	return dto.NewAttemptResponse(session, now), nil
}

func (s *attemptService) RecordAnswer(ctx context.Context, sessionID, studentID uint, payload dto.RecordAnswerRequest) (dto.AttemptResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AttemptResponse{}, err
	}

	session, err := s.loadSession(ctx, sessionID, studentID)
	if err != nil {
		return dto.AttemptResponse{}, err
	}

	now := s.now()
	if err := s.closer.materializeExpiry(ctx, &session, now); err != nil {
		return dto.AttemptResponse{}, err
	}

	if session.EffectiveState(now) != models.AttemptStateOpen {
		return dto.AttemptResponse{}, ErrSessionClosed
	}

	question, ok := session.Exam.QuestionByID(payload.QuestionID)
	if !ok {
		return dto.AttemptResponse{}, ErrUnknownQuestion
	}

	answer, err := s.buildAnswer(session.ID, question, payload)
	if err != nil {
		return dto.AttemptResponse{}, err
	}

	if err := s.attempts.UpsertAnswer(ctx, &answer); err != nil {
		return dto.AttemptResponse{}, err
	}

	session, err = s.attempts.GetByID(ctx, session.ID)
	if err != nil {
		return dto.AttemptResponse{}, err
	}

	return dto.NewAttemptResponse(session, now), nil
}

func (s *attemptService) RecordFocusLoss(ctx context.Context, sessionID, studentID uint) (dto.AttemptResponse, error) {
	session, err := s.loadSession(ctx, sessionID, studentID)
	if err != nil {
		return dto.AttemptResponse{}, err
	}

	now := s.now()
	if err := s.closer.materializeExpiry(ctx, &session, now); err != nil {
		return dto.AttemptResponse{}, err
	}

	if session.EffectiveState(now) != models.AttemptStateOpen {
		return dto.AttemptResponse{}, ErrSessionClosed
	}

	session.FocusLosses++

	if session.FocusLosses > s.focusLossLimit {
		if err := s.closer.close(ctx, &session, now, models.ForcedSubmitAntiCheat); err != nil {
			return dto.AttemptResponse{}, err
		}
		s.logger.Warn().Uint("session_id", session.ID).Int("focus_losses", session.FocusLosses).Msg("session force-closed by anti-cheat threshold")
		return dto.NewAttemptResponse(session, now), nil
	}

	if err := s.attempts.Update(ctx, &session); err != nil {
		return dto.AttemptResponse{}, err
	}

	return dto.NewAttemptResponse(session, now), nil
}

func (s *attemptService) Submit(ctx context.Context, sessionID, studentID uint, actor SubmitActor) (dto.AttemptResponse, error) {
	ctx, span := s.tracer.Start(ctx, "attempt.submit", trace.WithAttributes(
		attribute.Int64("attempt.session_id", int64(sessionID)),
		attribute.String("attempt.actor", string(actor)),
	))
	defer span.End()

	session, err := s.loadSession(ctx, sessionID, studentID)
	if err != nil {
		return dto.AttemptResponse{}, err
	}

	now := s.now()
	if err := s.closer.materializeExpiry(ctx, &session, now); err != nil {
		return dto.AttemptResponse{}, err
	}

	if session.IsSubmitted() {
		return dto.AttemptResponse{}, ErrSessionClosed
	}

	reason := ""
	if actor == SubmitActorSystem && session.DeadlineExceeded(now) {
		reason = models.ForcedSubmitTimeout
	}

	if err := s.closer.close(ctx, &session, now, reason); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "session_close_failed")
		return dto.AttemptResponse{}, err
	}

	return dto.NewAttemptResponse(session, now), nil
}

func (s *attemptService) GetByPair(ctx context.Context, examID, studentID uint) (dto.AttemptResponse, error) {
	session, err := s.attempts.GetLatestByPair(ctx, examID, studentID)
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

	return dto.NewAttemptResponse(session, now), nil
}

func (s *attemptService) loadSession(ctx context.Context, sessionID, studentID uint) (models.AttemptSession, error) {
	session, err := s.attempts.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.AttemptSession{}, ErrSessionNotFound
		}
		return models.AttemptSession{}, err
	}

	if studentID != 0 && session.StudentID != studentID {
		return models.AttemptSession{}, ErrNotSessionOwner
	}

	return session, nil
}

func (s *attemptService) buildAnswer(sessionID uint, question models.Question, payload dto.RecordAnswerRequest) (models.AttemptAnswer, error) {
	answer := models.AttemptAnswer{
		SessionID:  sessionID,
		QuestionID: question.ID,
	}

	switch question.Type {
	case models.QuestionTypeMCQ:
		if payload.SelectedIndex == nil {
			return models.AttemptAnswer{}, ErrAnswerMismatch
		}
		choices := dto.DecodeChoices(question.Choices)
		if *payload.SelectedIndex >= len(choices) {
			return models.AttemptAnswer{}, ErrAnswerMismatch
		}
		answer.SelectedIndex = payload.SelectedIndex
	case models.QuestionTypeTrueFalse:
		if payload.BoolAnswer == nil {
			return models.AttemptAnswer{}, ErrAnswerMismatch
		}
		answer.BoolAnswer = payload.BoolAnswer
	case models.QuestionTypeEssay:
		text := strings.TrimSpace(s.sanitizer.Sanitize(payload.EssayText))
		if text == "" {
			return models.AttemptAnswer{}, ErrAnswerMismatch
		}
		answer.EssayText = text
	default:
		return models.AttemptAnswer{}, ErrUnknownQuestion
	}

	return answer, nil
}
