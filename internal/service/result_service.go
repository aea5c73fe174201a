package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
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

// ErrTheoryNotFinalized indicates no finalized theory score exists for the pair.
var ErrTheoryNotFinalized = errors.New("theory score not finalized")

// ErrPracticalNotSubmitted indicates no practical evaluation exists for the pair.
var ErrPracticalNotSubmitted = errors.New("practical evaluation not submitted")

// ErrAlreadyComputed indicates a final result already exists for the pair.
var ErrAlreadyComputed = errors.New("final result already computed")

// ErrResultNotFound indicates no final result exists for the pair.
var ErrResultNotFound = errors.New("final result not found")

// ResultService is the join point merging the finalized theory score and the
// practical evaluation into a single certification verdict, exactly once per
// (student, exam) pair.
type ResultService interface {
	Compute(ctx context.Context, examID, studentID uint, actor ActivityActor) (dto.ResultResponse, error)
	GetByPair(ctx context.Context, examID, studentID uint) (dto.ResultResponse, error)
}

type resultService struct {
	results    repository.ResultRepository
	attempts   repository.AttemptRepository
	practicals repository.PracticalRepository
	exams      repository.ExamRepository
	events     EventPublisher
	activity   ActivityRecorder
	cache      *redis.Client
	cacheTTL   time.Duration
	logger     zerolog.Logger
	tracer     trace.Tracer
	now        func() time.Time
}

// NewResultService constructs the final result compositor.
func NewResultService(results repository.ResultRepository, attempts repository.AttemptRepository, practicals repository.PracticalRepository, exams repository.ExamRepository, events EventPublisher, activity ActivityRecorder, cache *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) ResultService {
	return &resultService{
		results:    results,
		attempts:   attempts,
		practicals: practicals,
		exams:      exams,
		events:     events,
		activity:   activity,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger.With().Str("component", "result_service").Logger(),
		tracer:     otel.Tracer("github.com/kenshokan/dojang-api/internal/service/result"),
		now:        time.Now,
	}
}

func (s *resultService) Compute(ctx context.Context, examID, studentID uint, actor ActivityActor) (dto.ResultResponse, error) {
	ctx, span := s.tracer.Start(ctx, "result.compute", trace.WithAttributes(
		attribute.Int64("result.exam_id", int64(examID)),
		attribute.Int64("result.student_id", int64(studentID)),
	))
	defer span.End()

	session, err := s.attempts.GetFinalizedByPair(ctx, examID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ResultResponse{}, ErrTheoryNotFinalized
		}
		span.RecordError(err)
		return dto.ResultResponse{}, err
	}
	if session.TheoryScore == nil {
		return dto.ResultResponse{}, ErrTheoryNotFinalized
	}

	evaluation, err := s.practicals.GetByPair(ctx, examID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ResultResponse{}, ErrPracticalNotSubmitted
		}
		span.RecordError(err)
		return dto.ResultResponse{}, err
	}

	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		span.RecordError(err)
		return dto.ResultResponse{}, err
	}

	theory := *session.TheoryScore
	total := composeTotal(theory, exam.MaxTheoryScore, evaluation)
	threshold := scaledPassThreshold(exam.PassMark, exam.MaxTheoryScore)

	result := models.FinalExamResult{
		ExamID:          examID,
		StudentID:       studentID,
		TheoryScore:     theory,
		Morality:        evaluation.Morality,
		PracticalMethod: evaluation.PracticalMethod,
		Technique:       evaluation.Technique,
		Physical:        evaluation.Physical,
		Mental:          evaluation.Mental,
		MethodTotal:     theory + evaluation.PracticalMethod,
		TotalScore:      total,
		PassThreshold:   threshold,
		Passed:          total >= threshold,
		DecidedAt:       s.now(),
	}

	if err := s.results.CreateOnce(ctx, &result); err != nil {
		if errors.Is(err, repository.ErrResultExists) {
			return dto.ResultResponse{}, ErrAlreadyComputed
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "result_create_failed")
		return dto.ResultResponse{}, err
	}

	verdict := "failed"
	if result.Passed {
		verdict = "passed"
	}
	observability.ResultsComputed().WithLabelValues(verdict).Inc()

	if s.events != nil {
		s.events.Publish(ctx, ExamEvent{
			Type:      EventResultComputed,
			ExamID:    examID,
			StudentID: studentID,
			Payload: map[string]interface{}{
				"total_score": result.TotalScore,
				"passed":      result.Passed,
			},
		})
	}

	if s.activity != nil {
		resultID := result.ID
		_, _ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     "result.computed",
			EntityType: "final_exam_result",
			EntityID:   &resultID,
			Metadata: map[string]interface{}{
				"exam_id":     examID,
				"student_id":  studentID,
				"total_score": result.TotalScore,
				"passed":      result.Passed,
			},
		})
	}

	s.logger.Info().Uint("exam_id", examID).Uint("student_id", studentID).Float64("total_score", result.TotalScore).Bool("passed", result.Passed).Msg("final result computed")

	return dto.NewResultResponse(result), nil
}

// GetByPair serves the verdict through a read-through cache; results are
// immutable once created so a cached copy can never go stale.
func (s *resultService) GetByPair(ctx context.Context, examID, studentID uint) (dto.ResultResponse, error) {
	cacheKey := fmt.Sprintf("result:%d:%d", examID, studentID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.ResultResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read result cache")
		}
	}

	result, err := s.results.GetByPair(ctx, examID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ResultResponse{}, ErrResultNotFound
		}
		return dto.ResultResponse{}, err
	}

	response := dto.NewResultResponse(result)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store result cache")
			}
		}
	}

	return response, nil
}
