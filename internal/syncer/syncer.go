// Package syncer keeps a workspace's task store in sync with the per-user
// remote collection. Reconciliation runs exactly once per sign-in
// transition; afterwards every mutation issues a single matching remote
// call.
package syncer

import (
	"context"
	"log"

	"github.com/Sunilsolankiji/MyTasks/internal/model"
)

// State is the per-session sync state machine.
type State string

const (
	StateAnonymous      State = "anonymous"
	StateAuthenticating State = "authenticating"
	StateReconciling    State = "signed_in_reconciling"
	StateSteady         State = "signed_in_steady"
	StateSignedOut      State = "signed_out"
)

// Remote is the per-user document collection the engine writes through to.
type Remote interface {
	FetchAll(ctx context.Context, userID string) ([]model.Task, error)
	Upsert(ctx context.Context, userID string, t model.Task) error
	Delete(ctx context.Context, userID string, id model.TaskID) error
	PutAll(ctx context.Context, userID string, tasks []model.Task) error
}

// NotifyFunc surfaces a user-visible notification. Remote failures are
// reported through it and never abort the in-memory state.
type NotifyFunc func(title, message string)

// Merge overlays the remote task set onto the local one. For any id present
// in both, the remote version wins unconditionally; there is no per-field
// conflict resolution. Output order is local insertion order followed by
// remote-only records in remote order, so merging twice with the same inputs
// yields the same set.
func Merge(local, remote []model.Task) []model.Task {
	remoteByID := make(map[model.TaskID]model.Task, len(remote))
	for _, t := range remote {
		remoteByID[t.ID] = t
	}

	seen := make(map[model.TaskID]bool, len(local)+len(remote))
	out := make([]model.Task, 0, len(local)+len(remote))
	for _, t := range local {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		if r, ok := remoteByID[t.ID]; ok {
			out = append(out, r)
		} else {
			out = append(out, t)
		}
	}
	for _, t := range remote {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	return out
}

// Engine tracks one workspace's sync state. It is not safe for concurrent
// use; the owning workspace serializes access.
type Engine struct {
	remote Remote
	notify NotifyFunc
	logger *log.Logger

	state  State
	userID string
}

func NewEngine(remote Remote, notify NotifyFunc, logger *log.Logger) *Engine {
	if notify == nil {
		notify = func(string, string) {}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		remote: remote,
		notify: notify,
		logger: logger,
		state:  StateAnonymous,
	}
}

func (e *Engine) State() State   { return e.state }
func (e *Engine) UserID() string { return e.userID }

// SignedIn reports whether remote writes are active (reconciling or steady).
func (e *Engine) SignedIn() bool {
	return e.state == StateReconciling || e.state == StateSteady
}

func (e *Engine) BeginAuthenticating() {
	if e.state == StateAnonymous || e.state == StateSignedOut {
		e.state = StateAuthenticating
	}
}

// Reconcile performs the one-time merge for a fresh sign-in and returns the
// merged set that must replace the store contents. The merged set stays
// authoritative locally even when the remote fetch or write-back fails;
// sync is best-effort, not transactional.
func (e *Engine) Reconcile(ctx context.Context, userID string, local []model.Task) []model.Task {
	e.state = StateReconciling
	e.userID = userID

	remoteTasks, err := e.remote.FetchAll(ctx, userID)
	if err != nil {
		e.logger.Printf("[syncer] fetch remote tasks for %s: %v", userID, err)
		e.notify("Sync failed", "Could not load your cloud tasks. Working with local tasks only.")
		e.state = StateSteady
		return local
	}

	merged := Merge(local, remoteTasks)

	if err := e.remote.PutAll(ctx, userID, merged); err != nil {
		e.logger.Printf("[syncer] write back merged tasks for %s: %v", userID, err)
		e.notify("Sync failed", "Your tasks were merged locally but could not be saved to the cloud.")
	}

	e.state = StateSteady
	return merged
}

// TaskUpserted mirrors an add/update/toggle to the remote collection. No-op
// outside the steady state.
func (e *Engine) TaskUpserted(ctx context.Context, t model.Task) {
	if e.state != StateSteady {
		return
	}
	if err := e.remote.Upsert(ctx, e.userID, t); err != nil {
		e.logger.Printf("[syncer] upsert task %s for %s: %v", t.ID, e.userID, err)
		e.notify("Sync failed", "Your change was saved locally but not to the cloud.")
	}
}

// TaskRemoved mirrors a delete to the remote collection. No-op outside the
// steady state.
func (e *Engine) TaskRemoved(ctx context.Context, id model.TaskID) {
	if e.state != StateSteady {
		return
	}
	if err := e.remote.Delete(ctx, e.userID, id); err != nil {
		e.logger.Printf("[syncer] delete task %s for %s: %v", id, e.userID, err)
		e.notify("Sync failed", "The task was removed locally but not from the cloud.")
	}
}

// SignOut leaves the signed-in states. The caller clears the in-memory
// store; the remote and local copies are untouched.
func (e *Engine) SignOut() {
	e.state = StateSignedOut
	e.userID = ""
}
