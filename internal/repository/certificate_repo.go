package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kenshokan/dojang-api/internal/models"
)

// ErrCertificateExists indicates a certificate was already issued for the
// (exam, student) pair.
var ErrCertificateExists = errors.New("certificate already exists")

// CertificateRepository persists issued certificates.
type CertificateRepository interface {
	CreateOnce(ctx context.Context, certificate *models.Certificate) error
	GetByPair(ctx context.Context, examID, studentID uint) (models.Certificate, error)
	GetBySerial(ctx context.Context, serial string) (models.Certificate, error)
}

type certificateRepository struct {
	db *gorm.DB
}

// NewCertificateRepository instantiates the repository.
func NewCertificateRepository(db *gorm.DB) CertificateRepository {
	return &certificateRepository{db: db}
}

// CreateOnce inserts the certificate; a second issuance for the same pair is
// rejected by the unique pair index and reported as ErrCertificateExists.
func (r *certificateRepository) CreateOnce(ctx context.Context, certificate *models.Certificate) error {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "exam_id"}, {Name: "student_id"}},
		DoNothing: true,
	}).Create(certificate)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrCertificateExists
	}
	return nil
}

func (r *certificateRepository) GetByPair(ctx context.Context, examID, studentID uint) (models.Certificate, error) {
	var certificate models.Certificate
	if err := r.db.WithContext(ctx).
		Where("exam_id = ?", examID).
		Where("student_id = ?", studentID).
		First(&certificate).Error; err != nil {
		return models.Certificate{}, err
	}

	return certificate, nil
}

func (r *certificateRepository) GetBySerial(ctx context.Context, serial string) (models.Certificate, error) {
	var certificate models.Certificate
	if err := r.db.WithContext(ctx).
		Where("serial = ?", serial).
		First(&certificate).Error; err != nil {
		return models.Certificate{}, err
	}

	return certificate, nil
}
