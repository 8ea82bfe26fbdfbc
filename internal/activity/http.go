package activity

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/Sunilsolankiji/MyTasks/internal/httpmw"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Events handles GET /api/activity. Optional query params: since (RFC3339)
// and types (comma-separated event types).
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}

	deviceID := httpmw.DeviceIDFromContext(r.Context())

	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "since must be RFC3339"})
			return
		}
		since = t
	}

	var types []EventType
	if raw := r.URL.Query().Get("types"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				types = append(types, EventType(part))
			}
		}
	}

	events, err := h.repo.GetEvents(deviceID, since, types)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "could not load activity"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

// Stats handles GET /api/activity/summary?since=RFC3339 (default: last 30 days).
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}

	deviceID := httpmw.DeviceIDFromContext(r.Context())

	since := time.Now().AddDate(0, 0, -30)
	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "since must be RFC3339"})
			return
		}
		since = t
	}

	events, err := h.repo.GetEvents(deviceID, since, nil)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "could not load activity"})
		return
	}
	writeJSON(w, http.StatusOK, Summarize(events, since))
}
