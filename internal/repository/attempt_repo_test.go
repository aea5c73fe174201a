package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kenshokan/dojang-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Student{},
		&models.Exam{},
		&models.Question{},
		&models.AttemptSession{},
		&models.AttemptAnswer{},
		&models.PracticalEvaluation{},
		&models.FinalExamResult{},
		&models.Certificate{},
		&models.ActivityLog{},
	))
	return db
}

func seedExam(t *testing.T, db *gorm.DB) models.Exam {
	t.Helper()
	now := time.Now()
	exam := models.Exam{
		Title:          "Blue Belt Theory",
		BeltLevel:      "blue",
		Status:         models.ExamStatusPublished,
		StartsAt:       now.Add(-time.Hour),
		EndsAt:         now.Add(time.Hour),
		TimeLimitMins:  30,
		MaxTheoryScore: 40,
		PassMark:       24,
		Questions: []models.Question{
			{Type: models.QuestionTypeTrueFalse, Prompt: "Taekwondo originated in Korea.", MaxScore: 10},
			{Type: models.QuestionTypeEssay, Prompt: "Describe the belt system.", MaxScore: 30},
		},
	}
	require.NoError(t, db.Create(&exam).Error)
	return exam
}

func TestAttemptRepositoryUpsertAnswerReplacesByQuestion(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAttemptRepository(db)
	exam := seedExam(t, db)

	session := models.AttemptSession{ExamID: exam.ID, StudentID: 7, StartedAt: time.Now(), Deadline: time.Now().Add(30 * time.Minute)}
	require.NoError(t, db.Create(&session).Error)

	yes := true
	first := models.AttemptAnswer{SessionID: session.ID, QuestionID: exam.Questions[0].ID, BoolAnswer: &yes}
	require.NoError(t, repo.UpsertAnswer(context.Background(), &first))

	no := false
	second := models.AttemptAnswer{SessionID: session.ID, QuestionID: exam.Questions[0].ID, BoolAnswer: &no}
	require.NoError(t, repo.UpsertAnswer(context.Background(), &second))

	stored, err := repo.GetByID(context.Background(), session.ID)
	require.NoError(t, err)
	require.Len(t, stored.Answers, 1, "one row per (session, question) pair")
	require.False(t, *stored.Answers[0].BoolAnswer)
}

func TestAttemptRepositoryUpdateAnswerScore(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAttemptRepository(db)
	exam := seedExam(t, db)

	session := models.AttemptSession{ExamID: exam.ID, StudentID: 7, StartedAt: time.Now(), Deadline: time.Now().Add(30 * time.Minute)}
	require.NoError(t, db.Create(&session).Error)

	answer := models.AttemptAnswer{SessionID: session.ID, QuestionID: exam.Questions[1].ID, EssayText: "From white to black."}
	require.NoError(t, repo.UpsertAnswer(context.Background(), &answer))

	require.NoError(t, repo.UpdateAnswerScore(context.Background(), answer.ID, 22))

	stored, err := repo.GetByID(context.Background(), session.ID)
	require.NoError(t, err)
	require.Equal(t, 22.0, *stored.Answers[0].Score)

	require.ErrorIs(t, repo.UpdateAnswerScore(context.Background(), 9999, 10), gorm.ErrRecordNotFound)
}

func TestAttemptRepositoryGetFinalizedByPair(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAttemptRepository(db)
	exam := seedExam(t, db)

	open := models.AttemptSession{ExamID: exam.ID, StudentID: 7, StartedAt: time.Now().Add(-2 * time.Hour), Deadline: time.Now().Add(-90 * time.Minute)}
	require.NoError(t, db.Create(&open).Error)

	_, err := repo.GetFinalizedByPair(context.Background(), exam.ID, 7)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	submitted := time.Now().Add(-time.Hour)
	theory := 32.0
	finalized := models.AttemptSession{ExamID: exam.ID, StudentID: 7, StartedAt: submitted.Add(-30 * time.Minute), Deadline: submitted, SubmittedAt: &submitted, TheoryScore: &theory}
	require.NoError(t, db.Create(&finalized).Error)

	stored, err := repo.GetFinalizedByPair(context.Background(), exam.ID, 7)
	require.NoError(t, err)
	require.Equal(t, finalized.ID, stored.ID)
	require.Equal(t, 32.0, *stored.TheoryScore)
	require.Equal(t, exam.Title, stored.Exam.Title, "exam preloaded with the session")
}

func TestAttemptRepositoryListByStudentNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAttemptRepository(db)
	exam := seedExam(t, db)

	older := models.AttemptSession{ExamID: exam.ID, StudentID: 7, StartedAt: time.Now().Add(-2 * time.Hour), Deadline: time.Now().Add(-time.Hour)}
	newer := models.AttemptSession{ExamID: exam.ID, StudentID: 7, StartedAt: time.Now().Add(-time.Hour), Deadline: time.Now()}
	other := models.AttemptSession{ExamID: exam.ID, StudentID: 9, StartedAt: time.Now(), Deadline: time.Now().Add(time.Hour)}
	require.NoError(t, db.Create(&older).Error)
	require.NoError(t, db.Create(&newer).Error)
	require.NoError(t, db.Create(&other).Error)

	sessions, err := repo.ListByStudent(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	require.Equal(t, newer.ID, sessions[0].ID)
}
