package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kenshokan/dojang-api/internal/models"
)

// ErrOpenSessionExists indicates a create-if-none-open guard rejected a second
// open session for the same (student, exam) pair.
var ErrOpenSessionExists = errors.New("open attempt session already exists")

// AttemptRepository defines persistence operations for attempt sessions and
// their answers.
type AttemptRepository interface {
	CreateIfNoneOpen(ctx context.Context, session *models.AttemptSession) error
	GetByID(ctx context.Context, id uint) (models.AttemptSession, error)
	GetLatestByPair(ctx context.Context, examID, studentID uint) (models.AttemptSession, error)
	GetFinalizedByPair(ctx context.Context, examID, studentID uint) (models.AttemptSession, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.AttemptSession, error)
	Update(ctx context.Context, session *models.AttemptSession) error
	UpsertAnswer(ctx context.Context, answer *models.AttemptAnswer) error
	UpdateAnswerScore(ctx context.Context, answerID uint, score float64) error
}

type attemptRepository struct {
	db *gorm.DB
}

// NewAttemptRepository instantiates the repository.
func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.AttemptSession{}).
		Preload("Exam").
		Preload("Exam.Questions").
		Preload("Answers")
}

// CreateIfNoneOpen inserts the session only when the pair has no open session.
// The check and insert run in one transaction with the existing row locked, so
// two concurrent starts resolve to exactly one open session.
func (r *attemptRepository) CreateIfNoneOpen(ctx context.Context, session *models.AttemptSession) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.AttemptSession{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("exam_id = ?", session.ExamID).
			Where("student_id = ?", session.StudentID).
			Where("submitted_at IS NULL").
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrOpenSessionExists
		}

		return tx.Create(session).Error
	})
}

func (r *attemptRepository) GetByID(ctx context.Context, id uint) (models.AttemptSession, error) {
	var session models.AttemptSession
	if err := r.baseQuery(ctx).First(&session, id).Error; err != nil {
		return models.AttemptSession{}, err
	}

	return session, nil
}

func (r *attemptRepository) GetLatestByPair(ctx context.Context, examID, studentID uint) (models.AttemptSession, error) {
	var session models.AttemptSession
	if err := r.baseQuery(ctx).
		Where("exam_id = ?", examID).
		Where("student_id = ?", studentID).
		Order("started_at DESC").
		First(&session).Error; err != nil {
		return models.AttemptSession{}, err
	}

	return session, nil
}

func (r *attemptRepository) GetFinalizedByPair(ctx context.Context, examID, studentID uint) (models.AttemptSession, error) {
	var session models.AttemptSession
	if err := r.baseQuery(ctx).
		Where("exam_id = ?", examID).
		Where("student_id = ?", studentID).
		Where("theory_score IS NOT NULL").
		Order("started_at DESC").
		First(&session).Error; err != nil {
		return models.AttemptSession{}, err
	}

	return session, nil
}

func (r *attemptRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.AttemptSession, error) {
	var sessions []models.AttemptSession
	if err := r.db.WithContext(ctx).Model(&models.AttemptSession{}).
		Preload("Exam").
		Where("student_id = ?", studentID).
		Order("started_at DESC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *attemptRepository) Update(ctx context.Context, session *models.AttemptSession) error {
	return r.db.WithContext(ctx).Omit("Exam", "Student", "Answers").Save(session).Error
}

// UpsertAnswer stores the answer for a (session, question) pair, last write
// wins.
func (r *attemptRepository) UpsertAnswer(ctx context.Context, answer *models.AttemptAnswer) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"selected_index", "bool_answer", "essay_text", "updated_at"}),
	}).Create(answer).Error
}

func (r *attemptRepository) UpdateAnswerScore(ctx context.Context, answerID uint, score float64) error {
	result := r.db.WithContext(ctx).Model(&models.AttemptAnswer{}).
		Where("id = ?", answerID).
		Update("score", score)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
