// Package transfer gates externally supplied task data: import validation,
// export serialization, and collision handling when a validated batch is
// admitted into a store.
package transfer

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/sjson"

	"github.com/Sunilsolankiji/MyTasks/internal/model"
)

// BatchError reports why an import batch was rejected. Validation is
// all-or-nothing: the first failing record fails the whole batch.
type BatchError struct {
	Index  int    // -1 when the payload itself is malformed
	Field  string
	Reason string
}

func (e *BatchError) Error() string {
	if e.Index < 0 {
		return "invalid task batch: " + e.Reason
	}
	return fmt.Sprintf("invalid task batch: record %d, field %q: %s", e.Index, e.Field, e.Reason)
}

func batchErr(index int, field, reason string) *BatchError {
	return &BatchError{Index: index, Field: field, Reason: reason}
}

// rawTask mirrors the wire schema with timestamps as strings, so that format
// errors are reported per field instead of as an opaque unmarshal failure.
type rawTask struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Date           *string         `json:"date"`
	Completed      bool            `json:"completed"`
	Notes          *string         `json:"notes"`
	Attachment     *string         `json:"attachment"`
	AttachmentName *string         `json:"attachmentName"`
	CreationDate   *string         `json:"creationDate"`
	CompletionDate *string         `json:"completionDate"`
	Priority       string          `json:"priority"`
	ReferenceLinks []string        `json:"referenceLinks"`
}

// ValidateBatch parses and validates a full JSON array of task records.
// Returns the decoded tasks, or a *BatchError naming the first offending
// record and field.
func ValidateBatch(raw []byte) ([]model.Task, error) {
	var records []rawTask
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, batchErr(-1, "", "not a JSON array of task records")
	}

	out := make([]model.Task, 0, len(records))
	for i, r := range records {
		t, err := validateRecord(i, r)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func validateRecord(i int, r rawTask) (model.Task, error) {
	if strings.TrimSpace(r.ID) == "" {
		return model.Task{}, batchErr(i, "id", "must be a non-empty string")
	}
	if strings.TrimSpace(r.Title) == "" {
		return model.Task{}, batchErr(i, "title", "cannot be empty")
	}

	prio := model.Priority(r.Priority)
	if !prio.Valid() {
		return model.Task{}, batchErr(i, "priority", "must be one of low, medium, high")
	}

	if r.CreationDate == nil {
		return model.Task{}, batchErr(i, "creationDate", "is required")
	}
	creation, err := parseOffsetTime(*r.CreationDate)
	if err != nil {
		return model.Task{}, batchErr(i, "creationDate", "must be an ISO-8601 timestamp with offset")
	}

	var date *time.Time
	if r.Date != nil && *r.Date != "" {
		d, err := parseOffsetTime(*r.Date)
		if err != nil {
			return model.Task{}, batchErr(i, "date", "must be an ISO-8601 timestamp with offset")
		}
		date = &d
	}

	var completion *time.Time
	if r.CompletionDate != nil && *r.CompletionDate != "" {
		c, err := parseOffsetTime(*r.CompletionDate)
		if err != nil {
			return model.Task{}, batchErr(i, "completionDate", "must be an ISO-8601 timestamp with offset")
		}
		completion = &c
	}

	// completed and completionDate are co-dependent; a record claiming
	// completion without a timestamp is internally inconsistent.
	if r.Completed && completion == nil {
		return model.Task{}, batchErr(i, "completionDate", "required when completed is true")
	}
	if !r.Completed && completion != nil {
		return model.Task{}, batchErr(i, "completionDate", "must be absent when completed is false")
	}

	if (r.Attachment == nil) != (r.AttachmentName == nil) {
		return model.Task{}, batchErr(i, "attachmentName", "attachment and attachmentName must be set together")
	}

	links := r.ReferenceLinks
	if links == nil {
		links = []string{}
	}

	return model.Task{
		ID:             model.TaskID(r.ID),
		Title:          r.Title,
		Date:           date,
		Notes:          emptyToNil(r.Notes),
		Attachment:     r.Attachment,
		AttachmentName: r.AttachmentName,
		CreationDate:   creation,
		CompletionDate: completion,
		Completed:      r.Completed,
		Priority:       prio,
		ReferenceLinks: links,
	}, nil
}

func emptyToNil(s *string) *string {
	if s != nil && *s == "" {
		return nil
	}
	return s
}

func parseOffsetTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// ExportJSON serializes the selected tasks verbatim in the import schema.
func ExportJSON(tasks []model.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []model.Task{}
	}
	return json.MarshalIndent(tasks, "", "  ")
}

// ExportFilename embeds the current calendar date, matching the client's
// download naming.
func ExportFilename(now time.Time) string {
	return "my-tasks-backup-" + now.Format("2006-01-02") + ".json"
}

// ResolveCollisions reassigns a fresh id to every admitted task whose id is
// already present in the store. The existing record is never overwritten;
// only the incoming one is renamed.
func ResolveCollisions(admitted []model.Task, exists func(model.TaskID) bool) []model.Task {
	out := make([]model.Task, 0, len(admitted))
	for _, t := range admitted {
		if exists(t.ID) {
			t.ID = model.TaskID(uuid.NewString())
		}
		out = append(out, t)
	}
	return out
}

// StripAttachments removes the attachment payloads from an exported batch
// without otherwise touching the document. Attachments are data URLs and
// dominate backup size.
func StripAttachments(raw []byte) ([]byte, error) {
	if _, err := ValidateBatch(raw); err != nil {
		return nil, err
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil {
		return nil, batchErr(-1, "", "not a JSON array of task records")
	}
	out := raw
	var err error
	for i := range arr {
		if out, err = sjson.DeleteBytes(out, fmt.Sprintf("%d.attachment", i)); err != nil {
			return nil, err
		}
		if out, err = sjson.DeleteBytes(out, fmt.Sprintf("%d.attachmentName", i)); err != nil {
			return nil, err
		}
	}
	return out, nil
}
