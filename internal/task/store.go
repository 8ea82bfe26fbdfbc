package task

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Sunilsolankiji/MyTasks/internal/model"
)

var (
	ErrEmptyTitle = errors.New("task title cannot be empty")
	ErrBadDate    = errors.New("date must be RFC3339")
)

// Patch represents a partial update of the user-editable fields.
// nil pointer => "no change"
// empty string for the optional pointer fields (Date/Notes/Attachment) => clear
type Patch struct {
	Title          *string         `json:"title,omitempty"`
	Date           *string         `json:"date,omitempty"` // RFC3339
	Notes          *string         `json:"notes,omitempty"`
	Attachment     *string         `json:"attachment,omitempty"`
	AttachmentName *string         `json:"attachmentName,omitempty"`
	Priority       *model.Priority `json:"priority,omitempty"`
	ReferenceLinks *[]string       `json:"referenceLinks,omitempty"`
}

// Store is the authoritative in-session task collection for one workspace.
// Insertion order is preserved; all lookups go through the id index.
type Store struct {
	mu    sync.RWMutex
	order []model.TaskID
	byID  map[model.TaskID]model.Task
}

func NewStore() *Store {
	return &Store{byID: map[model.TaskID]model.Task{}}
}

func newTaskID() model.TaskID {
	return model.TaskID(uuid.NewString())
}

// Add creates a task from the draft, assigns a fresh id and creation
// timestamp, and appends it to the store.
func (s *Store) Add(d model.Draft) (model.Task, error) {
	if strings.TrimSpace(d.Title) == "" {
		return model.Task{}, ErrEmptyTitle
	}
	if !d.Priority.Valid() {
		d.Priority = model.PriorityMedium
	}

	t := model.Task{
		ID:             newTaskID(),
		Title:          d.Title,
		Date:           d.Date,
		Notes:          d.Notes,
		Attachment:     d.Attachment,
		AttachmentName: d.AttachmentName,
		CreationDate:   time.Now(),
		Completed:      false,
		Priority:       d.Priority,
		ReferenceLinks: d.ReferenceLinks,
	}
	normalizeAttachment(&t)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = append(s.order, t.ID)
	s.byID[t.ID] = t
	return t, nil
}

func applyPatch(t *model.Task, p Patch) error {
	if p.Title != nil {
		if strings.TrimSpace(*p.Title) == "" {
			return ErrEmptyTitle
		}
		t.Title = *p.Title
	}

	// pointer string fields with "empty clears" semantics
	if p.Date != nil {
		if *p.Date == "" {
			t.Date = nil
		} else {
			d, err := time.Parse(time.RFC3339, *p.Date)
			if err != nil {
				return ErrBadDate
			}
			t.Date = &d
		}
	}
	if p.Notes != nil {
		if *p.Notes == "" {
			t.Notes = nil
		} else {
			t.Notes = p.Notes
		}
	}
	if p.Attachment != nil {
		if *p.Attachment == "" {
			t.Attachment = nil
		} else {
			t.Attachment = p.Attachment
		}
	}
	if p.AttachmentName != nil {
		if *p.AttachmentName == "" {
			t.AttachmentName = nil
		} else {
			t.AttachmentName = p.AttachmentName
		}
	}

	if p.Priority != nil && p.Priority.Valid() {
		t.Priority = *p.Priority
	}
	if p.ReferenceLinks != nil {
		if *p.ReferenceLinks == nil {
			t.ReferenceLinks = []string{}
		} else {
			t.ReferenceLinks = *p.ReferenceLinks
		}
	}

	normalizeAttachment(t)
	return nil
}

// normalizeAttachment keeps the pair invariant: attachmentName set ⟺
// attachment set.
func normalizeAttachment(t *model.Task) {
	if t.Attachment == nil || t.AttachmentName == nil {
		t.Attachment = nil
		t.AttachmentName = nil
	}
}

// Update applies the patch to the matching task. An unknown id is a silent
// no-op: the UI only updates records it just displayed.
func (s *Store) Update(id model.TaskID, p Patch) (model.Task, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.byID[id]
	if !ok {
		return model.Task{}, false, nil
	}
	if err := applyPatch(&t, p); err != nil {
		return model.Task{}, true, err
	}
	s.byID[id] = t
	return t, true, nil
}

// ToggleComplete sets the completed flag. The completion timestamp is set on
// the false→true transition and cleared on true→false, keeping the
// completed ⟺ completionDate invariant at the mutation boundary.
func (s *Store) ToggleComplete(id model.TaskID, completed bool) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.byID[id]
	if !ok {
		return model.Task{}, false
	}
	t.Completed = completed
	if completed {
		now := time.Now()
		t.CompletionDate = &now
	} else {
		t.CompletionDate = nil
	}
	s.byID[id] = t
	return t, true
}

// Remove deletes the matching task; absent ids are a no-op.
func (s *Store) Remove(id model.TaskID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// ReplaceAll swaps the full contents of the store. Used by reconciliation and
// by full-store load from the local snapshot.
func (s *Store) ReplaceAll(tasks []model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order = make([]model.TaskID, 0, len(tasks))
	s.byID = make(map[model.TaskID]model.Task, len(tasks))
	for _, t := range tasks {
		if _, dup := s.byID[t.ID]; dup {
			continue
		}
		s.order = append(s.order, t.ID)
		s.byID[t.ID] = t
	}
}

// Append admits tasks at the end of the store without touching existing
// records. Used by import.
func (s *Store) Append(tasks []model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range tasks {
		if _, dup := s.byID[t.ID]; dup {
			continue
		}
		s.order = append(s.order, t.ID)
		s.byID[t.ID] = t
	}
}

func (s *Store) Get(id model.TaskID) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.byID[id]
	return t, ok
}

func (s *Store) Has(id model.TaskID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byID[id]
	return ok
}

// Snapshot returns the tasks in insertion order.
func (s *Store) Snapshot() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Task, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
