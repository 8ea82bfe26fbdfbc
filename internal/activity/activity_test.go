package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_RecordAndFilter(t *testing.T) {
	repo := NewMemoryRepository()

	require.NoError(t, repo.RecordEvent("dev_a", EventTaskCreated, EventMetadata{"task_id": "t-1"}))
	require.NoError(t, repo.RecordEvent("dev_a", EventTaskCompleted, EventMetadata{"task_id": "t-1"}))
	require.NoError(t, repo.RecordEvent("dev_b", EventTaskCreated, EventMetadata{"task_id": "t-2"}))

	all, err := repo.GetEvents("dev_a", time.Time{}, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	completed, err := repo.GetEvents("dev_a", time.Time{}, []EventType{EventTaskCompleted})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, EventTaskCompleted, completed[0].Type)
	assert.Contains(t, completed[0].Metadata, "t-1")

	other, err := repo.GetEvents("dev_b", time.Time{}, nil)
	require.NoError(t, err)
	assert.Len(t, other, 1, "events are scoped per device")
}

func TestMemoryRepository_SinceFilterAndClear(t *testing.T) {
	repo := NewMemoryRepository()
	require.NoError(t, repo.RecordEvent("dev_a", EventTaskCreated, nil))

	future, err := repo.GetEvents("dev_a", time.Now().Add(time.Hour), nil)
	require.NoError(t, err)
	assert.Empty(t, future)

	require.NoError(t, repo.Clear("dev_a"))
	left, err := repo.GetEvents("dev_a", time.Time{}, nil)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestMemoryRepository_CapsPerDevice(t *testing.T) {
	repo := NewMemoryRepository()
	for i := 0; i < maxEventsPerDevice+10; i++ {
		require.NoError(t, repo.RecordEvent("dev_a", EventTaskCreated, nil))
	}

	events, err := repo.GetEvents("dev_a", time.Time{}, nil)
	require.NoError(t, err)
	assert.Len(t, events, maxEventsPerDevice)
	assert.Equal(t, 11, events[0].ID, "oldest entries drop first")
}

func TestSummarize_CountsAndCompletionRate(t *testing.T) {
	now := time.Now()
	events := []Event{
		{Type: EventTaskCreated, Timestamp: now},
		{Type: EventTaskCreated, Timestamp: now},
		{Type: EventTaskCompleted, Timestamp: now},
		{Type: EventTasksImported, Timestamp: now.Add(24 * time.Hour), Metadata: `{"count":3}`},
		{Type: EventSignedIn, Timestamp: now},
	}

	s := Summarize(events, now.Add(-time.Hour))

	assert.Equal(t, 2, s.TasksCreated)
	assert.Equal(t, 1, s.TasksCompleted)
	assert.Equal(t, 3, s.TasksImported)
	assert.InDelta(t, 0.5, s.CompletionRate, 0.001)
	assert.Equal(t, 2, s.ActiveDays)
	assert.Equal(t, 1, s.EventCounts[EventSignedIn])
}

func TestSummarize_EmptyInput(t *testing.T) {
	s := Summarize(nil, time.Now())
	assert.Zero(t, s.TasksCreated)
	assert.Zero(t, s.CompletionRate)
	assert.Zero(t, s.ActiveDays)
}
