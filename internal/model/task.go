package model

import (
	"time"
)

type TaskID string

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank orders priorities for sorting: high > medium > low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID    TaskID `json:"id"`
	Title string `json:"title"`

	// Due date; nil means undated.
	Date  *time.Time `json:"date,omitempty"`
	Notes *string    `json:"notes,omitempty"`

	// Attachment is a data-URL encoded payload. AttachmentName carries the
	// original filename; both are set or both are nil.
	Attachment     *string `json:"attachment,omitempty"`
	AttachmentName *string `json:"attachmentName,omitempty"`

	CreationDate   time.Time  `json:"creationDate"`
	CompletionDate *time.Time `json:"completionDate,omitempty"`
	Completed      bool       `json:"completed"`

	Priority       Priority `json:"priority"`
	ReferenceLinks []string `json:"referenceLinks,omitempty"`
}

// Draft holds the user-editable fields of a task. ID, CreationDate and the
// completion pair are assigned by the store.
type Draft struct {
	Title          string     `json:"title"`
	Date           *time.Time `json:"date,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
	Attachment     *string    `json:"attachment,omitempty"`
	AttachmentName *string    `json:"attachmentName,omitempty"`
	Priority       Priority   `json:"priority"`
	ReferenceLinks []string   `json:"referenceLinks,omitempty"`
}
