package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kenshokan/dojang-api/internal/models"
)

func TestResultRepositoryCreateOnce(t *testing.T) {
	db := setupTestDB(t)
	repo := NewResultRepository(db)

	first := models.FinalExamResult{ExamID: 1, StudentID: 7, TheoryScore: 30, TotalScore: 365, PassThreshold: 300, Passed: true, DecidedAt: time.Now()}
	require.NoError(t, repo.CreateOnce(context.Background(), &first))
	require.NotZero(t, first.ID)

	duplicate := models.FinalExamResult{ExamID: 1, StudentID: 7, TheoryScore: 38, TotalScore: 420, Passed: true, DecidedAt: time.Now()}
	require.ErrorIs(t, repo.CreateOnce(context.Background(), &duplicate), ErrResultExists)

	stored, err := repo.GetByPair(context.Background(), 1, 7)
	require.NoError(t, err)
	require.Equal(t, 365.0, stored.TotalScore, "first verdict wins")
}

func TestResultRepositoryListByStudent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewResultRepository(db)

	older := models.FinalExamResult{ExamID: 1, StudentID: 7, Passed: true, DecidedAt: time.Now().Add(-time.Hour)}
	newer := models.FinalExamResult{ExamID: 2, StudentID: 7, Passed: false, DecidedAt: time.Now()}
	other := models.FinalExamResult{ExamID: 1, StudentID: 9, Passed: true, DecidedAt: time.Now()}
	require.NoError(t, repo.CreateOnce(context.Background(), &older))
	require.NoError(t, repo.CreateOnce(context.Background(), &newer))
	require.NoError(t, repo.CreateOnce(context.Background(), &other))

	results, err := repo.ListByStudent(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, uint(2), results[0].ExamID, "newest decision first")
}

func TestCertificateRepositoryCreateOnce(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCertificateRepository(db)

	first := models.Certificate{Serial: "DOJANG-AAA111BBB222", ExamID: 1, StudentID: 7, BeltLevel: "blue", Passed: true, IssuedAt: time.Now()}
	require.NoError(t, repo.CreateOnce(context.Background(), &first))

	duplicate := models.Certificate{Serial: "DOJANG-CCC333DDD444", ExamID: 1, StudentID: 7, BeltLevel: "blue", Passed: true, IssuedAt: time.Now()}
	require.ErrorIs(t, repo.CreateOnce(context.Background(), &duplicate), ErrCertificateExists)

	bySerial, err := repo.GetBySerial(context.Background(), "DOJANG-AAA111BBB222")
	require.NoError(t, err)
	require.Equal(t, first.ID, bySerial.ID)

	byPair, err := repo.GetByPair(context.Background(), 1, 7)
	require.NoError(t, err)
	require.Equal(t, first.Serial, byPair.Serial)
}
