// Package workspace holds the per-device application state: the in-memory
// task store, settings, sync engine, and pending notifications. The manager
// subscribes to auth events on Init and drops the subscription on Teardown.
package workspace

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Sunilsolankiji/MyTasks/internal/activity"
	"github.com/Sunilsolankiji/MyTasks/internal/auth"
	"github.com/Sunilsolankiji/MyTasks/internal/localstore"
	"github.com/Sunilsolankiji/MyTasks/internal/model"
	"github.com/Sunilsolankiji/MyTasks/internal/syncer"
	"github.com/Sunilsolankiji/MyTasks/internal/task"
	"github.com/Sunilsolankiji/MyTasks/internal/transfer"
)

const maxPendingNotifications = 20

type Notification struct {
	Title   string    `json:"title"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Workspace is one device's session state. All access is serialized through
// the workspace mutex; the UI is single-threaded and the server keeps that
// property per device.
type Workspace struct {
	mu       sync.Mutex
	deviceID string
	store    *task.Store
	settings model.Settings
	engine   *syncer.Engine
	local    *localstore.Adapter
	activity activity.Repository
	pending  []Notification
}

type Manager struct {
	mu       sync.Mutex
	local    *localstore.Adapter
	remote   syncer.Remote
	logger   *log.Logger
	activity activity.Repository
	byDevice map[string]*Workspace

	unsubscribe func()
}

func NewManager(local *localstore.Adapter, remote syncer.Remote, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		local:    local,
		remote:   remote,
		logger:   logger,
		byDevice: map[string]*Workspace{},
	}
}

// SetActivity attaches an activity log. Call before the first ForDevice.
func (m *Manager) SetActivity(repo activity.Repository) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activity = repo
}

// Init subscribes the manager to the auth event bus. Pair with Teardown.
func (m *Manager) Init(bus *auth.Bus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unsubscribe != nil {
		return
	}
	m.unsubscribe = bus.Subscribe(m.handleAuthEvent)
}

func (m *Manager) Teardown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// ForDevice returns the device's workspace, loading the local snapshot and
// settings on first touch.
func (m *Manager) ForDevice(deviceID string) *Workspace {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ws, ok := m.byDevice[deviceID]; ok {
		return ws
	}

	ws := &Workspace{
		deviceID: deviceID,
		store:    task.NewStore(),
		settings: m.local.LoadSettings(deviceID),
		local:    m.local,
		activity: m.activity,
	}
	ws.engine = syncer.NewEngine(m.remote, ws.notify, m.logger)
	ws.store.ReplaceAll(m.local.LoadTasks(deviceID))
	m.byDevice[deviceID] = ws
	return ws
}

func (m *Manager) handleAuthEvent(ev auth.Event) {
	ws := m.ForDevice(ev.DeviceID)
	switch ev.Type {
	case auth.EventSignedIn:
		ws.SignIn(context.Background(), ev.UserID)
	case auth.EventSignedOut:
		ws.SignOut()
	}
}

func (ws *Workspace) record(eventType activity.EventType, md activity.EventMetadata) {
	if ws.activity == nil {
		return
	}
	_ = ws.activity.RecordEvent(ws.deviceID, eventType, md)
}

func (ws *Workspace) notify(title, message string) {
	// called with ws.mu held by every mutation path
	ws.pending = append(ws.pending, Notification{Title: title, Message: message, At: time.Now()})
	if len(ws.pending) > maxPendingNotifications {
		ws.pending = ws.pending[len(ws.pending)-maxPendingNotifications:]
	}
}

// DrainNotifications returns and clears the pending notifications.
func (ws *Workspace) DrainNotifications() []Notification {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	out := ws.pending
	ws.pending = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}

// SignIn runs the one-time reconciliation for the device: fetch remote,
// overlay onto local, replace the store, write the merged set back, clear
// the local snapshot. Local writes are suppressed from here on.
func (ws *Workspace) SignIn(ctx context.Context, userID string) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	ws.engine.BeginAuthenticating()
	merged := ws.engine.Reconcile(ctx, userID, ws.store.Snapshot())
	ws.store.ReplaceAll(merged)
	if err := ws.local.ClearTasks(ws.deviceID); err != nil {
		ws.notify("Sync warning", "Could not clear the local snapshot after sync.")
	}
	ws.record(activity.EventSignedIn, nil)
	ws.record(activity.EventSyncCompleted, activity.EventMetadata{
		"state": string(ws.engine.State()),
		"tasks": len(merged),
	})
}

// SignOut clears the in-memory store only; the remote collection and the
// local snapshot are untouched. The next anonymous session starts from the
// local snapshot, which reconciliation already cleared, so pre-sign-in local
// tasks do not reappear.
func (ws *Workspace) SignOut() {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	ws.engine.SignOut()
	ws.store.ReplaceAll(ws.local.LoadTasks(ws.deviceID))
	ws.record(activity.EventSignedOut, nil)
}

// persistLocked routes the write after a mutation: a remote mirror call when
// signed in, a full snapshot write otherwise.
func (ws *Workspace) persistLocked(ctx context.Context, mirror func(context.Context)) {
	if ws.engine.SignedIn() {
		mirror(ctx)
		return
	}
	if err := ws.local.SaveTasks(ws.deviceID, ws.store.Snapshot()); err != nil {
		ws.notify("Save failed", "Your tasks could not be written to local storage.")
	}
}

func (ws *Workspace) Add(ctx context.Context, d model.Draft) (model.Task, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	t, err := ws.store.Add(d)
	if err != nil {
		return model.Task{}, err
	}
	ws.persistLocked(ctx, func(ctx context.Context) { ws.engine.TaskUpserted(ctx, t) })
	ws.record(activity.EventTaskCreated, activity.EventMetadata{"task_id": string(t.ID)})
	return t, nil
}

func (ws *Workspace) Update(ctx context.Context, id model.TaskID, p task.Patch) (model.Task, bool, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	t, found, err := ws.store.Update(id, p)
	if err != nil || !found {
		return t, found, err
	}
	ws.persistLocked(ctx, func(ctx context.Context) { ws.engine.TaskUpserted(ctx, t) })
	ws.record(activity.EventTaskUpdated, activity.EventMetadata{"task_id": string(t.ID)})
	return t, true, nil
}

func (ws *Workspace) ToggleComplete(ctx context.Context, id model.TaskID, completed bool) (model.Task, bool) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	t, found := ws.store.ToggleComplete(id, completed)
	if !found {
		return t, false
	}
	ws.persistLocked(ctx, func(ctx context.Context) { ws.engine.TaskUpserted(ctx, t) })
	if completed {
		ws.record(activity.EventTaskCompleted, activity.EventMetadata{"task_id": string(t.ID)})
	} else {
		ws.record(activity.EventTaskReopened, activity.EventMetadata{"task_id": string(t.ID)})
	}
	return t, true
}

func (ws *Workspace) Remove(ctx context.Context, id model.TaskID) bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if !ws.store.Remove(id) {
		return false
	}
	ws.persistLocked(ctx, func(ctx context.Context) { ws.engine.TaskRemoved(ctx, id) })
	ws.record(activity.EventTaskDeleted, activity.EventMetadata{"task_id": string(id)})
	return true
}

// Tasks returns the store contents in insertion order.
func (ws *Workspace) Tasks() []model.Task {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.store.Snapshot()
}

// Views derives the projections. An unset query falls back to the device's
// persisted sort settings.
func (ws *Workspace) Views(q task.Query, now time.Time) task.Views {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if !q.SortKey.Valid() {
		q.SortKey = ws.settings.SortKey
	}
	if !q.SortDirection.Valid() {
		q.SortDirection = ws.settings.SortDirection
	}
	return task.Derive(ws.store.Snapshot(), q, now)
}

func (ws *Workspace) Settings() model.Settings {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.settings
}

func (ws *Workspace) UpdateSettings(s model.Settings) error {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if s.ProjectName == "" {
		s.ProjectName = model.DefaultSettings().ProjectName
	}
	if !s.SortKey.Valid() {
		s.SortKey = model.SortByCreationDate
	}
	if !s.SortDirection.Valid() {
		s.SortDirection = model.SortAsc
	}
	ws.settings = s
	return ws.local.SaveSettings(ws.deviceID, s)
}

// Export serializes the selected tasks (all when ids is empty) verbatim.
func (ws *Workspace) Export(ids []model.TaskID) ([]byte, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	all := ws.store.Snapshot()
	if len(ids) == 0 {
		ws.record(activity.EventTasksExported, activity.EventMetadata{"count": len(all)})
		return transfer.ExportJSON(all)
	}

	want := make(map[model.TaskID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	selected := make([]model.Task, 0, len(ids))
	for _, t := range all {
		if want[t.ID] {
			selected = append(selected, t)
		}
	}
	ws.record(activity.EventTasksExported, activity.EventMetadata{"count": len(selected)})
	return transfer.ExportJSON(selected)
}

// ImportConfirm admits the selected records from a validated batch. Records
// colliding with an existing store id get a fresh id; existing records are
// never overwritten. Admitted tasks persist like any other mutation.
func (ws *Workspace) ImportConfirm(ctx context.Context, admitted []model.Task) []model.Task {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	renamed := transfer.ResolveCollisions(admitted, ws.store.Has)
	ws.store.Append(renamed)

	if ws.engine.SignedIn() {
		for _, t := range renamed {
			ws.engine.TaskUpserted(ctx, t)
		}
	} else if err := ws.local.SaveTasks(ws.deviceID, ws.store.Snapshot()); err != nil {
		ws.notify("Save failed", "Imported tasks could not be written to local storage.")
	}
	ws.record(activity.EventTasksImported, activity.EventMetadata{"count": len(renamed)})
	return renamed
}

// SyncState reports the engine state for the session endpoint.
func (ws *Workspace) SyncState() syncer.State {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.engine.State()
}
