package task

import (
	"sort"
	"strings"
	"time"

	"github.com/Sunilsolankiji/MyTasks/internal/model"
)

// Query selects and orders tasks for the derived views. Zero value means
// "no search, creation date ascending".
type Query struct {
	Search        string
	SortKey       model.SortKey
	SortDirection model.SortDirection
}

// Views holds the four read-only projections. Each one is computed from the
// same filtered+sorted set, so ordering is consistent across tabs.
type Views struct {
	All       []model.Task `json:"all"`
	Today     []model.Task `json:"today"`
	Upcoming  []model.Task `json:"upcoming"`
	Completed []model.Task `json:"completed"`
}

// Derive is a pure function of (tasks, query, now); it never mutates its
// input and has no side effects.
func Derive(tasks []model.Task, q Query, now time.Time) Views {
	all := filterTasks(tasks, q.Search)
	sortTasks(all, q)

	v := Views{
		All:       all,
		Today:     []model.Task{},
		Upcoming:  []model.Task{},
		Completed: []model.Task{},
	}

	for _, t := range all {
		if t.Completed {
			v.Completed = append(v.Completed, t)
			continue
		}
		if t.Date == nil {
			continue
		}
		if sameCalendarDay(*t.Date, now) {
			v.Today = append(v.Today, t)
		} else {
			v.Upcoming = append(v.Upcoming, t)
		}
	}
	return v
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// filterTasks keeps tasks whose title or notes contain the search term,
// case-insensitively. An empty term keeps everything.
func filterTasks(tasks []model.Task, search string) []model.Task {
	needle := strings.ToLower(search)
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if needle == "" ||
			strings.Contains(strings.ToLower(t.Title), needle) ||
			(t.Notes != nil && strings.Contains(strings.ToLower(*t.Notes), needle)) {
			out = append(out, t)
		}
	}
	return out
}

func sortTasks(tasks []model.Task, q Query) {
	dir := 1
	if q.SortDirection == model.SortDesc {
		dir = -1
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return compareTasks(tasks[i], tasks[j], q.SortKey)*dir < 0
	})
}

// compareTasks orders a before b when the result is negative. Tasks missing
// an optional sort field come before tasks that have it; the direction
// multiplier then inverts that for descending, matching the absent-first
// ascending policy.
func compareTasks(a, b model.Task, key model.SortKey) int {
	switch key {
	case model.SortByTitle:
		return strings.Compare(a.Title, b.Title)
	case model.SortByDate:
		return compareOptionalTimes(a.Date, b.Date)
	case model.SortByCompletionDate:
		return compareOptionalTimes(a.CompletionDate, b.CompletionDate)
	case model.SortByPriority:
		// high > medium > low regardless of direction sign convention
		return b.Priority.Rank() - a.Priority.Rank()
	default: // model.SortByCreationDate
		return compareTimes(a.CreationDate, b.CreationDate)
	}
}

func compareTimes(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

func compareOptionalTimes(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return compareTimes(*a, *b)
}
