package activity

import "time"

type EventType string

const (
	EventTaskCreated   EventType = "task_created"
	EventTaskUpdated   EventType = "task_updated"
	EventTaskCompleted EventType = "task_completed"
	EventTaskReopened  EventType = "task_reopened"
	EventTaskDeleted   EventType = "task_deleted"
	EventTasksImported EventType = "tasks_imported"
	EventTasksExported EventType = "tasks_exported"
	EventSignedIn      EventType = "signed_in"
	EventSignedOut     EventType = "signed_out"
	EventSyncCompleted EventType = "sync_completed"
)

type Event struct {
	ID        int       `json:"id"`
	DeviceID  string    `json:"-"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Metadata  string    `json:"metadata"`
}

type EventMetadata map[string]interface{}
