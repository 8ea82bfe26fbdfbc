package activity

import (
	"encoding/json"
	"time"
)

type Summary struct {
	Period         string            `json:"period"`
	EventCounts    map[EventType]int `json:"event_counts"`
	TasksCreated   int               `json:"tasks_created"`
	TasksCompleted int               `json:"tasks_completed"`
	TasksImported  int               `json:"tasks_imported"`
	CompletionRate float64           `json:"completion_rate"`
	ActiveDays     int               `json:"active_days"`
}

// Summarize computes usage stats from events recorded since the given time.
func Summarize(events []Event, since time.Time) Summary {
	s := Summary{
		Period:      since.Format("2006-01-02"),
		EventCounts: make(map[EventType]int),
	}

	days := make(map[string]bool)
	for _, event := range events {
		s.EventCounts[event.Type]++
		days[event.Timestamp.Format("2006-01-02")] = true

		switch event.Type {
		case EventTaskCreated:
			s.TasksCreated++
		case EventTaskCompleted:
			s.TasksCompleted++
		case EventTasksImported:
			var metadata EventMetadata
			if err := json.Unmarshal([]byte(event.Metadata), &metadata); err != nil {
				continue
			}
			if n, ok := metadata["count"].(float64); ok {
				s.TasksImported += int(n)
			}
		}
	}

	s.ActiveDays = len(days)
	if s.TasksCreated > 0 {
		s.CompletionRate = float64(s.TasksCompleted) / float64(s.TasksCreated)
	}
	return s
}
