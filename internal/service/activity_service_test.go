package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kenshokan/dojang-api/internal/dto"
)

func TestActivityServiceRecordPersistsEntry(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, testLogger())

	entry, err := svc.Record(context.Background(), ActivityEntry{
		ActorID:    2,
		ActorRole:  "grader",
		Action:     "essay.scored",
		EntityType: "attempt_session",
		EntityID:   ptrUint(5),
		Metadata: map[string]interface{}{
			"question_id": 3,
			"score":       15.0,
		},
	})
	require.NoError(t, err)
	require.Equal(t, uint(2), entry.ActorID)
	require.Equal(t, "essay.scored", entry.Action)
	require.Len(t, repo.entries, 1)
}

func TestActivityServiceRecordRequiresActionAndEntity(t *testing.T) {
	svc := NewActivityService(&memoryActivityRepo{}, testLogger())

	_, err := svc.Record(context.Background(), ActivityEntry{EntityType: "certificate"})
	require.Error(t, err)

	_, err = svc.Record(context.Background(), ActivityEntry{Action: "certificate.issued"})
	require.Error(t, err)
}

func TestActivityServiceListDefaultsPaging(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, testLogger())

	_, err := svc.Record(context.Background(), ActivityEntry{Action: "result.computed", EntityType: "final_exam_result"})
	require.NoError(t, err)

	listed, err := svc.List(context.Background(), dto.ActivityListRequest{})
	require.NoError(t, err)
	require.Equal(t, 1, listed.Page)
	require.Equal(t, 20, listed.PageSize)
	require.Equal(t, int64(1), listed.Total)
	require.Len(t, listed.Items, 1)
}
