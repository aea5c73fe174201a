package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/kenshokan/dojang-api/internal/dto"
	"github.com/kenshokan/dojang-api/internal/models"
	"github.com/kenshokan/dojang-api/internal/repository"
)

// ErrMethodScoreExceedsCap indicates practicalMethod would overflow the
// combined 100-point method competency shared with the theory score.
var ErrMethodScoreExceedsCap = errors.New("practical method score exceeds cap")

// ErrResultFinalized indicates the evaluation is frozen because a final result
// exists for the pair.
var ErrResultFinalized = errors.New("final result already computed for pair")

// ErrPracticalNotFound indicates no evaluation exists for the pair.
var ErrPracticalNotFound = errors.New("practical evaluation not found")

// PracticalService validates and stores coach-submitted practical dimension
// scores.
type PracticalService interface {
	SubmitScores(ctx context.Context, coachID uint, payload dto.PracticalScoresRequest) (dto.PracticalResponse, error)
	GetByPair(ctx context.Context, examID, studentID uint) (dto.PracticalResponse, error)
}

type practicalService struct {
	practicals repository.PracticalRepository
	attempts   repository.AttemptRepository
	results    repository.ResultRepository
	validator  *validator.Validate
	activity   ActivityRecorder
	logger     zerolog.Logger
}

// NewPracticalService constructs the practical evaluation aggregator.
func NewPracticalService(practicals repository.PracticalRepository, attempts repository.AttemptRepository, results repository.ResultRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) PracticalService {
	return &practicalService{
		practicals: practicals,
		attempts:   attempts,
		results:    results,
		validator:  validate,
		activity:   activity,
		logger:     logger.With().Str("component", "practical_service").Logger(),
	}
}

func (s *practicalService) SubmitScores(ctx context.Context, coachID uint, payload dto.PracticalScoresRequest) (dto.PracticalResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PracticalResponse{}, err
	}

	// Evaluations freeze once the pair's verdict exists.
	if _, err := s.results.GetByPair(ctx, payload.ExamID, payload.StudentID); err == nil {
		return dto.PracticalResponse{}, ErrResultFinalized
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.PracticalResponse{}, err
	}

	// The method cap only binds once a theory score is finalized for the pair.
	theory, err := s.attempts.GetFinalizedByPair(ctx, payload.ExamID, payload.StudentID)
	if err == nil && theory.TheoryScore != nil {
		if payload.PracticalMethod > methodCap(*theory.TheoryScore) {
			return dto.PracticalResponse{}, ErrMethodScoreExceedsCap
		}
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.PracticalResponse{}, err
	}

	evaluation := models.PracticalEvaluation{
		ExamID:          payload.ExamID,
		StudentID:       payload.StudentID,
		CoachID:         coachID,
		Morality:        payload.Morality,
		PracticalMethod: payload.PracticalMethod,
		Technique:       payload.Technique,
		Physical:        payload.Physical,
		Mental:          payload.Mental,
	}

	if err := s.practicals.Upsert(ctx, &evaluation); err != nil {
		return dto.PracticalResponse{}, err
	}

	stored, err := s.practicals.GetByPair(ctx, payload.ExamID, payload.StudentID)
	if err != nil {
		return dto.PracticalResponse{}, err
	}

	if s.activity != nil {
		evaluationID := stored.ID
		_, _ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    coachID,
			ActorRole:  "coach",
			Action:     "practical.scored",
			EntityType: "practical_evaluation",
			EntityID:   &evaluationID,
			Metadata: map[string]interface{}{
				"exam_id":    payload.ExamID,
				"student_id": payload.StudentID,
			},
		})
	}

	return dto.NewPracticalResponse(stored), nil
}

func (s *practicalService) GetByPair(ctx context.Context, examID, studentID uint) (dto.PracticalResponse, error) {
	evaluation, err := s.practicals.GetByPair(ctx, examID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PracticalResponse{}, ErrPracticalNotFound
		}
		return dto.PracticalResponse{}, err
	}

	return dto.NewPracticalResponse(evaluation), nil
}
