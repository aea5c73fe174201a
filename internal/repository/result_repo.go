package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kenshokan/dojang-api/internal/models"
)

// ErrResultExists indicates a final result has already been computed for the
// (exam, student) pair.
var ErrResultExists = errors.New("final result already exists")

// ResultRepository persists final exam results. Results are append-only and
// keyed uniquely by (exam, student).
type ResultRepository interface {
	CreateOnce(ctx context.Context, result *models.FinalExamResult) error
	GetByPair(ctx context.Context, examID, studentID uint) (models.FinalExamResult, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.FinalExamResult, error)
}

type resultRepository struct {
	db *gorm.DB
}

// NewResultRepository instantiates the repository.
func NewResultRepository(db *gorm.DB) ResultRepository {
	return &resultRepository{db: db}
}

// CreateOnce inserts the result; the unique pair index makes the insert a
// no-op when a result already exists, reported as ErrResultExists.
func (r *resultRepository) CreateOnce(ctx context.Context, result *models.FinalExamResult) error {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "exam_id"}, {Name: "student_id"}},
		DoNothing: true,
	}).Create(result)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrResultExists
	}
	return nil
}

func (r *resultRepository) GetByPair(ctx context.Context, examID, studentID uint) (models.FinalExamResult, error) {
	var result models.FinalExamResult
	if err := r.db.WithContext(ctx).
		Where("exam_id = ?", examID).
		Where("student_id = ?", studentID).
		First(&result).Error; err != nil {
		return models.FinalExamResult{}, err
	}

	return result, nil
}

func (r *resultRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.FinalExamResult, error) {
	var results []models.FinalExamResult
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("decided_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}
