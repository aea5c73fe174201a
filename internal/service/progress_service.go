package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/kenshokan/dojang-api/internal/dto"
	"github.com/kenshokan/dojang-api/internal/models"
	"github.com/kenshokan/dojang-api/internal/repository"
)

// ProgressService produces a student's aggregated certification progress.
type ProgressService interface {
	GetProgress(ctx context.Context, studentID uint) (dto.StudentProgressResponse, error)
}

type progressService struct {
	attempts repository.AttemptRepository
	results  repository.ResultRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewProgressService builds the progress aggregator.
func NewProgressService(attempts repository.AttemptRepository, results repository.ResultRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) ProgressService {
	return &progressService{
		attempts: attempts,
		results:  results,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "progress_service").Logger(),
		now:      time.Now,
	}
}

func (s *progressService) GetProgress(ctx context.Context, studentID uint) (dto.StudentProgressResponse, error) {
	cacheKey := fmt.Sprintf("progress:student:%d", studentID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.StudentProgressResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("student_id", studentID).Msg("progress cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read progress cache")
		}
	}

	sessions, err := s.attempts.ListByStudent(ctx, studentID)
	if err != nil {
		return dto.StudentProgressResponse{}, err
	}

	results, err := s.results.ListByStudent(ctx, studentID)
	if err != nil {
		return dto.StudentProgressResponse{}, err
	}

	response := s.buildResponse(sessions, results)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store progress cache")
			}
		}
	}

	return response, nil
}

func (s *progressService) buildResponse(sessions []models.AttemptSession, results []models.FinalExamResult) dto.StudentProgressResponse {
	now := s.now()

	summary := dto.ProgressSummary{ResultsDecided: len(results)}
	attempts := make([]dto.AttemptSummary, 0, len(sessions))

	for _, session := range sessions {
		summary.TotalAttempts++
		state := session.EffectiveState(now)
		switch state {
		case models.AttemptStateOpen:
			summary.OpenAttempts++
		case models.AttemptStateClosed:
			summary.AwaitingGrading++
		}

		attempts = append(attempts, dto.AttemptSummary{
			SessionID:          session.ID,
			ExamID:             session.ExamID,
			ExamTitle:          session.Exam.Title,
			BeltLevel:          session.Exam.BeltLevel,
			State:              string(state),
			StartedAt:          session.StartedAt,
			SubmittedAt:        session.SubmittedAt,
			ForcedSubmitReason: session.ForcedSubmitReason,
			TheoryScore:        session.TheoryScore,
		})
	}

	for _, result := range results {
		if result.Passed {
			summary.ExamsPassed++
		}
	}

	return dto.StudentProgressResponse{
		Summary:  summary,
		Attempts: attempts,
		Results:  dto.NewResultResponseSlice(results),
	}
}
