package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kenshokan/dojang-api/internal/models"
)

func certificateFixture(t *testing.T, passed bool) (CertificateService, *fakeResultRepo, *recordingPublisher) {
	t.Helper()
	exams := newFakeExamRepo(models.Exam{ID: 1, BeltLevel: "black-1", MaxTheoryScore: 40, PassMark: 24})
	results := newFakeResultRepo()
	events := &recordingPublisher{}

	require.NoError(t, results.CreateOnce(context.Background(), &models.FinalExamResult{
		ExamID:      1,
		StudentID:   7,
		TheoryScore: 30,
		Morality:    80,
		Technique:   75,
		Physical:    70,
		Mental:      65,
		TotalScore:  365,
		Passed:      passed,
	}))

	svc := NewCertificateService(newFakeCertificateRepo(), results, exams, events, nil, testLogger())
	return svc, results, events
}

func TestIssueCertificateForPassingResult(t *testing.T) {
	svc, _, events := certificateFixture(t, true)

	certificate, err := svc.Issue(context.Background(), 1, 7, ActivityActor{ID: 1, Role: "admin"})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(certificate.Serial, "DOJANG-"))
	require.Equal(t, "black-1", certificate.BeltLevel)
	require.Equal(t, 365.0, certificate.ScoreBreakdown["total_score"])

	require.Len(t, events.events, 1)
	require.Equal(t, EventCertificateIssued, events.events[0].Type)
}

func TestIssueCertificateRejectsFailingResult(t *testing.T) {
	svc, _, _ := certificateFixture(t, false)

	_, err := svc.Issue(context.Background(), 1, 7, ActivityActor{ID: 1, Role: "admin"})
	require.ErrorIs(t, err, ErrNotPassed)
}

func TestIssueCertificateExactlyOnce(t *testing.T) {
	svc, _, _ := certificateFixture(t, true)

	first, err := svc.Issue(context.Background(), 1, 7, ActivityActor{ID: 1, Role: "admin"})
	require.NoError(t, err)

	_, err = svc.Issue(context.Background(), 1, 7, ActivityActor{ID: 1, Role: "admin"})
	require.ErrorIs(t, err, ErrAlreadyIssued)

	lookup, err := svc.GetByPair(context.Background(), 1, 7)
	require.NoError(t, err)
	require.Equal(t, first.Serial, lookup.Serial)

	bySerial, err := svc.GetBySerial(context.Background(), first.Serial)
	require.NoError(t, err)
	require.Equal(t, first.ID, bySerial.ID)
}

func TestIssueCertificateWithoutResult(t *testing.T) {
	svc, _, _ := certificateFixture(t, true)

	_, err := svc.Issue(context.Background(), 1, 99, ActivityActor{ID: 1, Role: "admin"})
	require.ErrorIs(t, err, ErrResultNotFound)
}
