package weather

import (
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"strings"
	"time"
)

type Handler struct {
	refresher *Refresher
}

func NewHandler(refresher *Refresher) *Handler {
	return &Handler{refresher: refresher}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

// GET /api/weather?q=<location>
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeErr(w, http.StatusBadRequest, "missing q")
		return
	}
	cur, err := h.refresher.Current(r.Context(), q)
	if err != nil {
		if errors.Is(err, ErrMissingAPIKey) {
			writeErr(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeErr(w, http.StatusBadGateway, "weather lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, cur)
}

// GET /api/weather/effect?q=<location> — the decorative overlay: the effect
// kind for the current conditions and a particle plan the page can render.
func (h *Handler) Effect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeErr(w, http.StatusBadRequest, "missing q")
		return
	}
	cur, err := h.refresher.Current(r.Context(), q)
	if err != nil {
		// the overlay is decorative; failures degrade to no effect
		writeJSON(w, http.StatusOK, map[string]any{"effect": EffectNone, "particles": []Particle{}})
		return
	}
	kind := EffectFor(cur)
	plan := PlanFor(kind, rand.New(rand.NewSource(time.Now().UnixNano())))
	writeJSON(w, http.StatusOK, map[string]any{"effect": kind, "particles": plan.Particles, "weather": cur})
}

// GET /api/locations?q=<prefix>
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	locs, err := h.refresher.client.SearchLocations(r.Context(), q)
	if err != nil {
		if errors.Is(err, ErrMissingAPIKey) {
			writeErr(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeErr(w, http.StatusBadGateway, "location search failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"locations": locs})
}
