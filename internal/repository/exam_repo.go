package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/kenshokan/dojang-api/internal/models"
)

// ExamFilter narrows exam listings.
type ExamFilter struct {
	Status    *models.ExamStatus
	BeltLevel string
	Page      int
	PageSize  int
}

// ExamRepository defines persistence operations for exams and their questions.
type ExamRepository interface {
	List(ctx context.Context, filter ExamFilter) ([]models.Exam, int64, error)
	GetByID(ctx context.Context, id uint) (models.Exam, error)
	Create(ctx context.Context, exam *models.Exam) error
	UpdateStatus(ctx context.Context, id uint, from, to models.ExamStatus) error
}

type examRepository struct {
	db *gorm.DB
}

// NewExamRepository instantiates a GORM-backed repository.
func NewExamRepository(db *gorm.DB) ExamRepository {
	return &examRepository{db: db}
}

func (r *examRepository) List(ctx context.Context, filter ExamFilter) ([]models.Exam, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Exam{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if filter.BeltLevel != "" {
		query = query.Where("belt_level = ?", filter.BeltLevel)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var exams []models.Exam
	if err := query.Order("starts_at ASC").Find(&exams).Error; err != nil {
		return nil, 0, err
	}

	return exams, total, nil
}

func (r *examRepository) GetByID(ctx context.Context, id uint) (models.Exam, error) {
	var exam models.Exam
	if err := r.db.WithContext(ctx).Preload("Questions").First(&exam, id).Error; err != nil {
		return models.Exam{}, err
	}

	return exam, nil
}

func (r *examRepository) Create(ctx context.Context, exam *models.Exam) error {
	return r.db.WithContext(ctx).Create(exam).Error
}

// UpdateStatus advances the exam lifecycle with a compare-and-set guard so a
// concurrent transition cannot be applied twice.
func (r *examRepository) UpdateStatus(ctx context.Context, id uint, from, to models.ExamStatus) error {
	result := r.db.WithContext(ctx).Model(&models.Exam{}).
		Where("id = ?", id).
		Where("status = ?", from).
		Update("status", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
