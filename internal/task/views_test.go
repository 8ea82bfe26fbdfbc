package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sunilsolankiji/MyTasks/internal/model"
)

func timePtr(t time.Time) *time.Time { return &t }

func fixedNow() time.Time {
	return time.Date(2026, 8, 31, 14, 0, 0, 0, time.UTC)
}

func fixtureTasks(now time.Time) []model.Task {
	return []model.Task{
		{ID: "undated", Title: "Undated chore", Priority: model.PriorityLow,
			CreationDate: now.Add(-4 * time.Hour)},
		{ID: "today", Title: "Due today", Priority: model.PriorityHigh,
			Date: timePtr(now.Add(2 * time.Hour)), CreationDate: now.Add(-3 * time.Hour)},
		{ID: "tomorrow", Title: "Due tomorrow", Priority: model.PriorityMedium,
			Date: timePtr(now.AddDate(0, 0, 1)), CreationDate: now.Add(-2 * time.Hour)},
		{ID: "done", Title: "Already done", Priority: model.PriorityMedium,
			Date: timePtr(now), CreationDate: now.Add(-1 * time.Hour),
			Completed: true, CompletionDate: timePtr(now.Add(-30 * time.Minute))},
	}
}

func idsOf(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, string(t.ID))
	}
	return out
}

func TestDerive_PartitionsByDueDateAndCompletion(t *testing.T) {
	now := fixedNow()
	v := Derive(fixtureTasks(now), Query{}, now)

	assert.Equal(t, []string{"undated", "today", "tomorrow", "done"}, idsOf(v.All))
	assert.Equal(t, []string{"today"}, idsOf(v.Today))
	assert.Equal(t, []string{"tomorrow"}, idsOf(v.Upcoming))
	assert.Equal(t, []string{"done"}, idsOf(v.Completed))
}

// Every task in all appears in exactly one of today/upcoming/completed when
// dated, and only in completed when undated and complete.
func TestDerive_PartitionIsExhaustiveAndDisjoint(t *testing.T) {
	now := fixedNow()
	v := Derive(fixtureTasks(now), Query{}, now)

	membership := map[string]int{}
	for _, bucket := range [][]model.Task{v.Today, v.Upcoming, v.Completed} {
		for _, task := range bucket {
			membership[string(task.ID)]++
		}
	}
	for _, task := range v.All {
		id := string(task.ID)
		if task.Date == nil && !task.Completed {
			assert.Zero(t, membership[id], "undated open task %s must stay out of the dated buckets", id)
			continue
		}
		assert.Equal(t, 1, membership[id], "task %s must appear in exactly one bucket", id)
	}
}

func TestDerive_SearchMatchesTitleOrNotes(t *testing.T) {
	now := fixedNow()
	notes := "bring the RECEIPT to the counter"
	tasks := []model.Task{
		{ID: "a", Title: "Groceries", Priority: model.PriorityLow, CreationDate: now},
		{ID: "b", Title: "Returns", Notes: &notes, Priority: model.PriorityLow, CreationDate: now},
		{ID: "c", Title: "receipt archive", Priority: model.PriorityLow, CreationDate: now},
	}

	v := Derive(tasks, Query{Search: "receipt"}, now)
	assert.Equal(t, []string{"b", "c"}, idsOf(v.All))
}

func TestDerive_SortByDatePutsUndatedFirstAscending(t *testing.T) {
	now := fixedNow()
	tasks := []model.Task{
		{ID: "later", Date: timePtr(now.AddDate(0, 0, 5)), Priority: model.PriorityLow, CreationDate: now},
		{ID: "none", Priority: model.PriorityLow, CreationDate: now},
		{ID: "soon", Date: timePtr(now.AddDate(0, 0, 1)), Priority: model.PriorityLow, CreationDate: now},
	}

	asc := Derive(tasks, Query{SortKey: model.SortByDate, SortDirection: model.SortAsc}, now)
	assert.Equal(t, []string{"none", "soon", "later"}, idsOf(asc.All))

	desc := Derive(tasks, Query{SortKey: model.SortByDate, SortDirection: model.SortDesc}, now)
	assert.Equal(t, []string{"later", "soon", "none"}, idsOf(desc.All))
}

func TestDerive_SortByPriorityHighFirstAscending(t *testing.T) {
	now := fixedNow()
	tasks := []model.Task{
		{ID: "low", Priority: model.PriorityLow, CreationDate: now},
		{ID: "high", Priority: model.PriorityHigh, CreationDate: now},
		{ID: "med", Priority: model.PriorityMedium, CreationDate: now},
	}

	v := Derive(tasks, Query{SortKey: model.SortByPriority, SortDirection: model.SortAsc}, now)
	assert.Equal(t, []string{"high", "med", "low"}, idsOf(v.All))
}

func TestDerive_StableForEqualKeys(t *testing.T) {
	now := fixedNow()
	tasks := []model.Task{
		{ID: "first", Priority: model.PriorityMedium, CreationDate: now},
		{ID: "second", Priority: model.PriorityMedium, CreationDate: now},
		{ID: "third", Priority: model.PriorityMedium, CreationDate: now},
	}

	v := Derive(tasks, Query{SortKey: model.SortByPriority}, now)
	assert.Equal(t, []string{"first", "second", "third"}, idsOf(v.All))
}

func TestDerive_ToggleMovesBetweenBuckets(t *testing.T) {
	now := fixedNow()
	s := NewStore()
	created, err := s.Add(model.Draft{Title: "due today", Date: timePtr(now)})
	require.NoError(t, err)

	v := Derive(s.Snapshot(), Query{}, now)
	assert.Equal(t, []string{string(created.ID)}, idsOf(v.Today))
	assert.Empty(t, v.Completed)

	_, found := s.ToggleComplete(created.ID, true)
	require.True(t, found)

	v = Derive(s.Snapshot(), Query{}, now)
	assert.Empty(t, v.Today)
	assert.Equal(t, []string{string(created.ID)}, idsOf(v.Completed))
}

func TestDerive_DoesNotMutateInput(t *testing.T) {
	now := fixedNow()
	tasks := []model.Task{
		{ID: "b", Title: "b", Priority: model.PriorityLow, CreationDate: now.Add(time.Hour)},
		{ID: "a", Title: "a", Priority: model.PriorityLow, CreationDate: now},
	}

	_ = Derive(tasks, Query{SortKey: model.SortByTitle}, now)
	assert.Equal(t, "b", string(tasks[0].ID), "input slice order must be preserved")
}
