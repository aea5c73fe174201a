package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/kenshokan/dojang-api/internal/dto"
	"github.com/kenshokan/dojang-api/internal/models"
	"github.com/kenshokan/dojang-api/internal/repository"
)

// ErrInvalidPassMark indicates the pass mark exceeds the max theory score.
var ErrInvalidPassMark = errors.New("pass mark exceeds max theory score")

// ErrInvalidQuestion indicates a question payload is inconsistent with its type.
var ErrInvalidQuestion = errors.New("question definition invalid")

// ErrQuestionScoresExceedMax indicates the per-question max scores sum past
// the exam's max theory score.
var ErrQuestionScoresExceedMax = errors.New("question scores exceed max theory score")

// ErrInvalidTransition indicates the requested lifecycle change is not allowed
// from the exam's current status.
var ErrInvalidTransition = errors.New("invalid exam status transition")

// ExamService manages the exam lifecycle and its immutable question bank.
type ExamService interface {
	Create(ctx context.Context, payload dto.ExamCreateRequest) (dto.ExamResponse, error)
	Publish(ctx context.Context, examID uint) (dto.ExamResponse, error)
	Close(ctx context.Context, examID uint) (dto.ExamResponse, error)
	Get(ctx context.Context, examID uint) (dto.ExamResponse, error)
	List(ctx context.Context, filter repository.ExamFilter) ([]dto.ExamResponse, int64, error)
}

type examService struct {
	exams     repository.ExamRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewExamService constructs the exam administration service.
func NewExamService(exams repository.ExamRepository, validate *validator.Validate, logger zerolog.Logger) ExamService {
	return &examService{
		exams:     exams,
		validator: validate,
		logger:    logger.With().Str("component", "exam_service").Logger(),
	}
}

func (s *examService) Create(ctx context.Context, payload dto.ExamCreateRequest) (dto.ExamResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ExamResponse{}, err
	}

	if payload.PassMark > payload.MaxTheoryScore {
		return dto.ExamResponse{}, ErrInvalidPassMark
	}

	questions := make([]models.Question, 0, len(payload.Questions))
	var scoreSum float64
	for _, q := range payload.Questions {
		question, err := buildQuestion(q)
		if err != nil {
			return dto.ExamResponse{}, err
		}
		scoreSum += question.MaxScore
		questions = append(questions, question)
	}

	if scoreSum > payload.MaxTheoryScore {
		return dto.ExamResponse{}, ErrQuestionScoresExceedMax
	}

	exam := models.Exam{
		Title:          payload.Title,
		BeltLevel:      payload.BeltLevel,
		Status:         models.ExamStatusDraft,
		StartsAt:       payload.StartsAt,
		EndsAt:         payload.EndsAt,
		TimeLimitMins:  payload.TimeLimitMins,
		MaxTheoryScore: payload.MaxTheoryScore,
		PassMark:       payload.PassMark,
		Questions:      questions,
	}

	if err := s.exams.Create(ctx, &exam); err != nil {
		return dto.ExamResponse{}, err
	}

	s.logger.Info().Uint("exam_id", exam.ID).Str("belt_level", exam.BeltLevel).Msg("draft exam created")

	return dto.NewExamResponse(exam), nil
}

// Publish moves a draft exam into the published state; its questions are
// immutable from this point on.
func (s *examService) Publish(ctx context.Context, examID uint) (dto.ExamResponse, error) {
	return s.transition(ctx, examID, models.ExamStatusDraft, models.ExamStatusPublished)
}

// Close stops a published exam from accepting further submissions.
func (s *examService) Close(ctx context.Context, examID uint) (dto.ExamResponse, error) {
	return s.transition(ctx, examID, models.ExamStatusPublished, models.ExamStatusClosed)
}

func (s *examService) transition(ctx context.Context, examID uint, from, to models.ExamStatus) (dto.ExamResponse, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ExamResponse{}, ErrExamNotFound
		}
		return dto.ExamResponse{}, err
	}

	if exam.Status != from {
		return dto.ExamResponse{}, ErrInvalidTransition
	}

	if err := s.exams.UpdateStatus(ctx, examID, from, to); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ExamResponse{}, ErrInvalidTransition
		}
		return dto.ExamResponse{}, err
	}

	exam.Status = to
	s.logger.Info().Uint("exam_id", examID).Str("status", string(to)).Msg("exam status changed")

	return dto.NewExamResponse(exam), nil
}

func (s *examService) Get(ctx context.Context, examID uint) (dto.ExamResponse, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ExamResponse{}, ErrExamNotFound
		}
		return dto.ExamResponse{}, err
	}

	return dto.NewExamResponse(exam), nil
}

func (s *examService) List(ctx context.Context, filter repository.ExamFilter) ([]dto.ExamResponse, int64, error) {
	exams, total, err := s.exams.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return dto.NewExamResponseSlice(exams), total, nil
}

func buildQuestion(payload dto.QuestionCreateRequest) (models.Question, error) {
	maxScore := payload.MaxScore
	if maxScore == 0 {
		maxScore = 1
	}

	question := models.Question{
		Type:     models.QuestionType(payload.Type),
		Prompt:   payload.Prompt,
		MaxScore: maxScore,
	}

	switch question.Type {
	case models.QuestionTypeMCQ:
		if len(payload.Choices) < 2 || payload.CorrectIndex == nil || *payload.CorrectIndex >= len(payload.Choices) {
			return models.Question{}, ErrInvalidQuestion
		}
		choices, err := json.Marshal(payload.Choices)
		if err != nil {
			return models.Question{}, err
		}
		question.Choices = choices
		question.CorrectIndex = payload.CorrectIndex
	case models.QuestionTypeTrueFalse:
		if payload.CorrectAnswer == nil {
			return models.Question{}, ErrInvalidQuestion
		}
		question.CorrectAnswer = payload.CorrectAnswer
	case models.QuestionTypeEssay:
		if payload.CorrectIndex != nil || payload.CorrectAnswer != nil {
			return models.Question{}, ErrInvalidQuestion
		}
	default:
		return models.Question{}, ErrInvalidQuestion
	}

	return question, nil
}
