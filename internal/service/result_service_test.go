package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/kenshokan/dojang-api/internal/models"
)

type resultFixture struct {
	service    ResultService
	attempts   *fakeAttemptRepo
	practicals *fakePracticalRepo
	results    *fakeResultRepo
	events     *recordingPublisher
	activity   *memoryActivityRepo
}

func newResultFixture(t *testing.T, cache *redis.Client) resultFixture {
	t.Helper()
	exams := newFakeExamRepo(models.Exam{ID: 1, BeltLevel: "black-1", MaxTheoryScore: 40, PassMark: 24})
	attempts := newFakeAttemptRepo(exams)
	practicals := newFakePracticalRepo()
	results := newFakeResultRepo()
	events := &recordingPublisher{}
	activity := &memoryActivityRepo{}

	svc := NewResultService(results, attempts, practicals, exams, events, NewActivityService(activity, testLogger()), cache, time.Minute, testLogger())
	return resultFixture{service: svc, attempts: attempts, practicals: practicals, results: results, events: events, activity: activity}
}

func (f resultFixture) withTheory(theory float64) resultFixture {
	finalizedTheorySession(f.attempts, theory)
	return f
}

func (f resultFixture) withPractical(eval models.PracticalEvaluation) resultFixture {
	eval.ExamID = 1
	eval.StudentID = 7
	_ = f.practicals.Upsert(context.Background(), &eval)
	return f
}

func TestComputeResultPassingVerdict(t *testing.T) {
	f := newResultFixture(t, nil).
		withTheory(30).
		withPractical(models.PracticalEvaluation{Morality: 80, PracticalMethod: 50, Technique: 75, Physical: 70, Mental: 65})

	result, err := f.service.Compute(context.Background(), 1, 7, ActivityActor{ID: 1, Role: "admin"})
	require.NoError(t, err)

	// theory 30/40 scales to 75; 75 + 80 + 75 + 70 + 65 = 365 against a
	// threshold of 24/40 * 500 = 300.
	require.Equal(t, 365.0, result.TotalScore)
	require.Equal(t, 300.0, result.PassThreshold)
	require.Equal(t, 80.0, result.MethodTotal, "raw theory plus practicalMethod")
	require.True(t, result.Passed)

	require.Len(t, f.events.events, 1)
	require.Equal(t, EventResultComputed, f.events.events[0].Type)
	require.Len(t, f.activity.entries, 1)
	require.Equal(t, "result.computed", f.activity.entries[0].Action)
}

func TestComputeResultFailingVerdict(t *testing.T) {
	f := newResultFixture(t, nil).
		withTheory(10).
		withPractical(models.PracticalEvaluation{Morality: 40, PracticalMethod: 10, Technique: 50, Physical: 45, Mental: 40})

	result, err := f.service.Compute(context.Background(), 1, 7, ActivityActor{ID: 1, Role: "admin"})
	require.NoError(t, err)
	require.Equal(t, 200.0, result.TotalScore)
	require.False(t, result.Passed)
}

func TestComputeResultExactThresholdPasses(t *testing.T) {
	f := newResultFixture(t, nil).
		withTheory(20).
		withPractical(models.PracticalEvaluation{Morality: 50, PracticalMethod: 0, Technique: 70, Physical: 70, Mental: 60})

	result, err := f.service.Compute(context.Background(), 1, 7, ActivityActor{ID: 1, Role: "admin"})
	require.NoError(t, err)
	require.Equal(t, result.PassThreshold, result.TotalScore)
	require.True(t, result.Passed, "reaching the threshold exactly is a pass")
}

func TestComputeResultRequiresBothInputs(t *testing.T) {
	f := newResultFixture(t, nil)

	_, err := f.service.Compute(context.Background(), 1, 7, ActivityActor{})
	require.ErrorIs(t, err, ErrTheoryNotFinalized)

	f = f.withTheory(30)
	_, err = f.service.Compute(context.Background(), 1, 7, ActivityActor{})
	require.ErrorIs(t, err, ErrPracticalNotSubmitted)
}

func TestComputeResultExactlyOnce(t *testing.T) {
	f := newResultFixture(t, nil).
		withTheory(30).
		withPractical(models.PracticalEvaluation{Morality: 80, PracticalMethod: 50, Technique: 75, Physical: 70, Mental: 65})

	_, err := f.service.Compute(context.Background(), 1, 7, ActivityActor{})
	require.NoError(t, err)

	_, err = f.service.Compute(context.Background(), 1, 7, ActivityActor{})
	require.ErrorIs(t, err, ErrAlreadyComputed)
	require.Len(t, f.events.events, 1, "no duplicate event on the rejected recompute")
}

func TestResultGetByPairUsesCache(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	f := newResultFixture(t, client).
		withTheory(30).
		withPractical(models.PracticalEvaluation{Morality: 80, PracticalMethod: 50, Technique: 75, Physical: 70, Mental: 65})

	_, err = f.service.Compute(context.Background(), 1, 7, ActivityActor{})
	require.NoError(t, err)

	first, err := f.service.GetByPair(context.Background(), 1, 7)
	require.NoError(t, err)
	require.True(t, server.Exists("result:1:7"))

	// Drop the backing row; a cached verdict keeps serving.
	delete(f.results.results, [2]uint{1, 7})
	second, err := f.service.GetByPair(context.Background(), 1, 7)
	require.NoError(t, err)
	require.Equal(t, first.TotalScore, second.TotalScore)
}

func TestResultGetByPairNotFound(t *testing.T) {
	f := newResultFixture(t, nil)

	_, err := f.service.GetByPair(context.Background(), 1, 7)
	require.ErrorIs(t, err, ErrResultNotFound)
}
