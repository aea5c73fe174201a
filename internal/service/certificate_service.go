package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/kenshokan/dojang-api/internal/dto"
	"github.com/kenshokan/dojang-api/internal/models"
	"github.com/kenshokan/dojang-api/internal/observability"
	"github.com/kenshokan/dojang-api/internal/repository"
)

// ErrNotPassed indicates the final result does not permit certification.
var ErrNotPassed = errors.New("final result is not a pass")

// ErrAlreadyIssued indicates a certificate already exists for the pair.
var ErrAlreadyIssued = errors.New("certificate already issued")

// ErrCertificateNotFound indicates no certificate exists for the lookup.
var ErrCertificateNotFound = errors.New("certificate not found")

// CertificateService issues immutable certificates for passing final results.
type CertificateService interface {
	Issue(ctx context.Context, examID, studentID uint, actor ActivityActor) (dto.CertificateResponse, error)
	GetByPair(ctx context.Context, examID, studentID uint) (dto.CertificateResponse, error)
	GetBySerial(ctx context.Context, serial string) (dto.CertificateResponse, error)
}

type certificateService struct {
	certificates repository.CertificateRepository
	results      repository.ResultRepository
	exams        repository.ExamRepository
	events       EventPublisher
	activity     ActivityRecorder
	logger       zerolog.Logger
	now          func() time.Time
}

// NewCertificateService constructs the certificate issuer.
func NewCertificateService(certificates repository.CertificateRepository, results repository.ResultRepository, exams repository.ExamRepository, events EventPublisher, activity ActivityRecorder, logger zerolog.Logger) CertificateService {
	return &certificateService{
		certificates: certificates,
		results:      results,
		exams:        exams,
		events:       events,
		activity:     activity,
		logger:       logger.With().Str("component", "certificate_service").Logger(),
		now:          time.Now,
	}
}

func (s *certificateService) Issue(ctx context.Context, examID, studentID uint, actor ActivityActor) (dto.CertificateResponse, error) {
	result, err := s.results.GetByPair(ctx, examID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CertificateResponse{}, ErrResultNotFound
		}
		return dto.CertificateResponse{}, err
	}

	if !result.Passed {
		return dto.CertificateResponse{}, ErrNotPassed
	}

	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		return dto.CertificateResponse{}, err
	}

	certificate := models.Certificate{
		Serial:    newCertificateSerial(),
		ExamID:    examID,
		StudentID: studentID,
		BeltLevel: exam.BeltLevel,
		Passed:    result.Passed,
		ScoreBreakdown: datatypes.JSONMap{
			"theory_score":     result.TheoryScore,
			"morality":         result.Morality,
			"practical_method": result.PracticalMethod,
			"technique":        result.Technique,
			"physical":         result.Physical,
			"mental":           result.Mental,
			"method_total":     result.MethodTotal,
			"total_score":      result.TotalScore,
		},
		IssuedAt: s.now(),
	}

	if err := s.certificates.CreateOnce(ctx, &certificate); err != nil {
		if errors.Is(err, repository.ErrCertificateExists) {
			return dto.CertificateResponse{}, ErrAlreadyIssued
		}
		return dto.CertificateResponse{}, err
	}

	observability.CertificatesIssued().Inc()

	if s.events != nil {
		s.events.Publish(ctx, ExamEvent{
			Type:      EventCertificateIssued,
			ExamID:    examID,
			StudentID: studentID,
			Payload: map[string]interface{}{
				"serial":     certificate.Serial,
				"belt_level": certificate.BeltLevel,
			},
		})
	}

	if s.activity != nil {
		certificateID := certificate.ID
		_, _ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     "certificate.issued",
			EntityType: "certificate",
			EntityID:   &certificateID,
			Metadata: map[string]interface{}{
				"exam_id":    examID,
				"student_id": studentID,
				"serial":     certificate.Serial,
			},
		})
	}

	s.logger.Info().Str("serial", certificate.Serial).Uint("exam_id", examID).Uint("student_id", studentID).Msg("certificate issued")

	return dto.NewCertificateResponse(certificate), nil
}

func (s *certificateService) GetByPair(ctx context.Context, examID, studentID uint) (dto.CertificateResponse, error) {
	certificate, err := s.certificates.GetByPair(ctx, examID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CertificateResponse{}, ErrCertificateNotFound
		}
		return dto.CertificateResponse{}, err
	}

	return dto.NewCertificateResponse(certificate), nil
}

func (s *certificateService) GetBySerial(ctx context.Context, serial string) (dto.CertificateResponse, error) {
	certificate, err := s.certificates.GetBySerial(ctx, strings.TrimSpace(serial))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CertificateResponse{}, ErrCertificateNotFound
		}
		return dto.CertificateResponse{}, err
	}

	return dto.NewCertificateResponse(certificate), nil
}

func newCertificateSerial() string {
	return fmt.Sprintf("DOJANG-%s", strings.ToUpper(uuid.NewString()[:12]))
}
