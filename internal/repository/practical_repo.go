package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kenshokan/dojang-api/internal/models"
)

// PracticalRepository persists coach-submitted practical evaluations.
type PracticalRepository interface {
	Upsert(ctx context.Context, evaluation *models.PracticalEvaluation) error
	GetByPair(ctx context.Context, examID, studentID uint) (models.PracticalEvaluation, error)
}

type practicalRepository struct {
	db *gorm.DB
}

// NewPracticalRepository instantiates the repository.
func NewPracticalRepository(db *gorm.DB) PracticalRepository {
	return &practicalRepository{db: db}
}

// Upsert stores the evaluation for the pair; a resubmission by the coach
// replaces the dimension scores.
func (r *practicalRepository) Upsert(ctx context.Context, evaluation *models.PracticalEvaluation) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "exam_id"}, {Name: "student_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"coach_id", "morality", "practical_method", "technique", "physical", "mental", "updated_at"}),
	}).Create(evaluation).Error
}

func (r *practicalRepository) GetByPair(ctx context.Context, examID, studentID uint) (models.PracticalEvaluation, error) {
	var evaluation models.PracticalEvaluation
	if err := r.db.WithContext(ctx).
		Where("exam_id = ?", examID).
		Where("student_id = ?", studentID).
		First(&evaluation).Error; err != nil {
		return models.PracticalEvaluation{}, err
	}

	return evaluation, nil
}
