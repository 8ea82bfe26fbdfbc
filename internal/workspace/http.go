package workspace

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Sunilsolankiji/MyTasks/internal/httpmw"
	"github.com/Sunilsolankiji/MyTasks/internal/model"
	"github.com/Sunilsolankiji/MyTasks/internal/task"
	"github.com/Sunilsolankiji/MyTasks/internal/transfer"
)

const maxImportBytes = 16 << 20 // attachments are data URLs; imports can be large

type Handler struct {
	manager *Manager
}

func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

func (h *Handler) workspaceForRequest(r *http.Request) *Workspace {
	return h.manager.ForDevice(httpmw.DeviceIDFromContext(r.Context()))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

// /api/tasks  (collection)
func (h *Handler) TasksRoot(w http.ResponseWriter, r *http.Request) {
	ws := h.workspaceForRequest(r)

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, ws.Tasks())

	case http.MethodPost:
		var in model.Draft
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		t, err := ws.Add(r.Context(), in)
		if err != nil {
			if errors.Is(err, task.ErrEmptyTitle) {
				writeErr(w, http.StatusBadRequest, err.Error())
				return
			}
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, t)

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// /api/tasks/{id} and /api/tasks/{id}/complete
func (h *Handler) TasksSub(w http.ResponseWriter, r *http.Request) {
	ws := h.workspaceForRequest(r)

	tail := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/tasks/"), "/")
	if tail == "" {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}
	parts := strings.Split(tail, "/")
	id := model.TaskID(parts[0])

	if len(parts) == 2 && parts[1] == "complete" {
		if r.Method != http.MethodPost {
			writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var in struct {
			Completed bool `json:"completed"`
		}
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		t, found := ws.ToggleComplete(r.Context(), id, in.Completed)
		if !found {
			writeErr(w, http.StatusNotFound, "task not found")
			return
		}
		writeJSON(w, http.StatusOK, t)
		return
	}

	if len(parts) != 1 {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodPatch, http.MethodPut:
		var p task.Patch
		if err := decodeJSON(r, &p); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		t, found, err := ws.Update(r.Context(), id, p)
		if err != nil {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
		if !found {
			// update on a missing id is a silent no-op for the client
			writeJSON(w, http.StatusOK, map[string]any{"ok": true, "updated": false})
			return
		}
		writeJSON(w, http.StatusOK, t)

	case http.MethodDelete:
		ws.Remove(r.Context(), id)
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// GET /api/views?search=&sortKey=&sortDirection=
func (h *Handler) Views(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ws := h.workspaceForRequest(r)
	q := task.Query{
		Search:        r.URL.Query().Get("search"),
		SortKey:       model.SortKey(r.URL.Query().Get("sortKey")),
		SortDirection: model.SortDirection(r.URL.Query().Get("sortDirection")),
	}
	writeJSON(w, http.StatusOK, ws.Views(q, time.Now()))
}

// /api/settings
func (h *Handler) Settings(w http.ResponseWriter, r *http.Request) {
	ws := h.workspaceForRequest(r)

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, ws.Settings())

	case http.MethodPut:
		var in model.Settings
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		if err := ws.UpdateSettings(in); err != nil {
			writeErr(w, http.StatusInternalServerError, "could not save settings")
			return
		}
		writeJSON(w, http.StatusOK, ws.Settings())

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// POST /api/tasks/import/preview — validates the uploaded batch and echoes
// the decoded records for selection. All-or-nothing: one bad record rejects
// the file.
func (h *Handler) ImportPreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "could not read upload")
		return
	}

	tasks, err := transfer.ValidateBatch(raw)
	if err != nil {
		var be *transfer.BatchError
		if errors.As(err, &be) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error": be.Error(),
				"index": be.Index,
				"field": be.Field,
			})
			return
		}
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks, "count": len(tasks)})
}

// POST /api/tasks/import/confirm — admits the selected records. The body is
// re-validated; the preview response is not trusted state.
func (h *Handler) ImportConfirm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ws := h.workspaceForRequest(r)

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "could not read upload")
		return
	}
	tasks, err := transfer.ValidateBatch(raw)
	if err != nil {
		writeErr(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	admitted := ws.ImportConfirm(r.Context(), tasks)
	writeJSON(w, http.StatusOK, map[string]any{"imported": len(admitted), "tasks": admitted})
}

// GET /api/tasks/export?ids=a,b,c — empty ids exports everything. The
// response is a download named with the current date.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ws := h.workspaceForRequest(r)

	var ids []model.TaskID
	if raw := strings.TrimSpace(r.URL.Query().Get("ids")); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				ids = append(ids, model.TaskID(s))
			}
		}
	}

	b, err := ws.Export(ids)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "could not serialize tasks")
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+transfer.ExportFilename(time.Now())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// GET /api/notifications — drains the pending sync notifications.
func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ws := h.workspaceForRequest(r)
	writeJSON(w, http.StatusOK, map[string]any{"notifications": ws.DrainNotifications()})
}

// GET /api/sync/state
func (h *Handler) SyncState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ws := h.workspaceForRequest(r)
	writeJSON(w, http.StatusOK, map[string]any{"state": ws.SyncState()})
}
