package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Sunilsolankiji/MyTasks/internal/config"
	"github.com/Sunilsolankiji/MyTasks/internal/serverapp"
)

func TestServer_HealthAndReadinessExposeRequestID(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		res := app.request(http.MethodGet, path, nil, "")
		if res.Code != http.StatusOK {
			t.Fatalf("%s expected 200, got %d body=%s", path, res.Code, res.Body.String())
		}
		if rid := strings.TrimSpace(res.Header().Get("X-Request-Id")); rid == "" {
			t.Fatalf("%s missing X-Request-Id header", path)
		}
	}
}

func TestServer_TaskRoundTripAcrossViews(t *testing.T) {
	app := newTestApp(t)

	createRes := app.json(http.MethodPost, "/api/tasks", map[string]any{
		"title":    "Water the plants",
		"priority": "high",
		"date":     time.Now().Format(time.RFC3339),
	})
	if createRes.Code != http.StatusCreated {
		t.Fatalf("create expected 201, got %d body=%s", createRes.Code, createRes.Body.String())
	}
	created := decodeBodyMap(t, createRes)
	taskID := asString(t, created["id"])

	viewsRes := app.request(http.MethodGet, "/api/views", nil, "")
	if viewsRes.Code != http.StatusOK {
		t.Fatalf("views expected 200, got %d body=%s", viewsRes.Code, viewsRes.Body.String())
	}
	views := decodeBodyMap(t, viewsRes)
	if !viewContains(views, "today", taskID) {
		t.Fatalf("task due today should be in today, body=%s", viewsRes.Body.String())
	}
	if viewContains(views, "completed", taskID) {
		t.Fatalf("open task must not be in completed, body=%s", viewsRes.Body.String())
	}

	completeRes := app.json(http.MethodPost, "/api/tasks/"+taskID+"/complete", map[string]any{
		"completed": true,
	})
	if completeRes.Code != http.StatusOK {
		t.Fatalf("complete expected 200, got %d body=%s", completeRes.Code, completeRes.Body.String())
	}
	completed := decodeBodyMap(t, completeRes)
	if done, _ := completed["completed"].(bool); !done {
		t.Fatalf("expected completed=true, body=%s", completeRes.Body.String())
	}
	if completed["completionDate"] == nil {
		t.Fatalf("expected completionDate to be set, body=%s", completeRes.Body.String())
	}

	viewsRes = app.request(http.MethodGet, "/api/views", nil, "")
	views = decodeBodyMap(t, viewsRes)
	if viewContains(views, "today", taskID) {
		t.Fatalf("completed task must leave today, body=%s", viewsRes.Body.String())
	}
	if !viewContains(views, "completed", taskID) {
		t.Fatalf("completed task should be in completed, body=%s", viewsRes.Body.String())
	}

	delRes := app.request(http.MethodDelete, "/api/tasks/"+taskID, nil, "")
	if delRes.Code != http.StatusOK {
		t.Fatalf("delete expected 200, got %d body=%s", delRes.Code, delRes.Body.String())
	}
	listRes := app.request(http.MethodGet, "/api/tasks", nil, "")
	if strings.Contains(listRes.Body.String(), taskID) {
		t.Fatalf("deleted task still listed, body=%s", listRes.Body.String())
	}
}

func TestServer_ExportImportRoundTrip(t *testing.T) {
	app := newTestApp(t)

	createRes := app.json(http.MethodPost, "/api/tasks", map[string]any{
		"title": "Renew passport",
	})
	if createRes.Code != http.StatusCreated {
		t.Fatalf("create expected 201, got %d body=%s", createRes.Code, createRes.Body.String())
	}
	taskID := asString(t, decodeBodyMap(t, createRes)["id"])

	exportRes := app.request(http.MethodGet, "/api/tasks/export", nil, "")
	if exportRes.Code != http.StatusOK {
		t.Fatalf("export expected 200, got %d body=%s", exportRes.Code, exportRes.Body.String())
	}
	if cd := exportRes.Header().Get("Content-Disposition"); !strings.Contains(cd, "my-tasks-backup-") {
		t.Fatalf("export missing download filename, got %q", cd)
	}
	exported := exportRes.Body.Bytes()

	previewRes := app.request(http.MethodPost, "/api/tasks/import/preview", bytes.NewReader(exported), "application/json")
	if previewRes.Code != http.StatusOK {
		t.Fatalf("preview expected 200, got %d body=%s", previewRes.Code, previewRes.Body.String())
	}

	// importing the export back collides on every id; the collision is
	// resolved with fresh ids, never by overwriting
	confirmRes := app.request(http.MethodPost, "/api/tasks/import/confirm", bytes.NewReader(exported), "application/json")
	if confirmRes.Code != http.StatusOK {
		t.Fatalf("confirm expected 200, got %d body=%s", confirmRes.Code, confirmRes.Body.String())
	}
	confirm := decodeBodyMap(t, confirmRes)
	if n, _ := confirm["imported"].(float64); n != 1 {
		t.Fatalf("expected 1 imported task, body=%s", confirmRes.Body.String())
	}

	listRes := app.request(http.MethodGet, "/api/tasks", nil, "")
	var tasks []map[string]any
	if err := json.Unmarshal(listRes.Body.Bytes(), &tasks); err != nil {
		t.Fatalf("decode task list: %v body=%s", err, listRes.Body.String())
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks after import, got %d", len(tasks))
	}
	ids := map[string]bool{}
	for _, task := range tasks {
		ids[asString(t, task["id"])] = true
	}
	if !ids[taskID] || len(ids) != 2 {
		t.Fatalf("expected original id plus one fresh id, got %v", ids)
	}
}

func TestServer_ImportRejectsInvalidBatch(t *testing.T) {
	app := newTestApp(t)

	// completed without a completion date is contradictory
	bad := `[{"id":"t1","title":"Broken","priority":"low","creationDate":"2026-01-05T10:00:00Z","completed":true}]`
	res := app.request(http.MethodPost, "/api/tasks/import/preview", strings.NewReader(bad), "application/json")
	if res.Code != http.StatusUnprocessableEntity {
		t.Fatalf("preview expected 422, got %d body=%s", res.Code, res.Body.String())
	}
	body := decodeBodyMap(t, res)
	if idx, _ := body["index"].(float64); idx != 0 {
		t.Fatalf("expected failing index 0, body=%s", res.Body.String())
	}
}

func TestServer_AccountFlowAndStatic(t *testing.T) {
	app := newTestApp(t)
	const email = "integration@example.com"

	registerRes := app.json(http.MethodPost, "/api/auth/register", map[string]any{
		"email":    email,
		"password": "hunter22",
	})
	if registerRes.Code != http.StatusCreated {
		t.Fatalf("register expected 201, got %d body=%s", registerRes.Code, registerRes.Body.String())
	}

	sessionRes := app.request(http.MethodGet, "/api/auth/session", nil, "")
	session := decodeBodyMap(t, sessionRes)
	if signedIn, _ := session["signedIn"].(bool); !signedIn {
		t.Fatalf("expected signed-in session, body=%s", sessionRes.Body.String())
	}

	stateRes := app.request(http.MethodGet, "/api/sync/state", nil, "")
	state := decodeBodyMap(t, stateRes)
	if s := asString(t, state["state"]); s != "signed_in_steady" && s != "signed_in_reconciling" {
		t.Fatalf("expected signed-in sync state, got %q", s)
	}

	signOutRes := app.json(http.MethodPost, "/api/auth/sign-out", nil)
	if signOutRes.Code != http.StatusOK {
		t.Fatalf("sign-out expected 200, got %d body=%s", signOutRes.Code, signOutRes.Body.String())
	}
	sessionRes = app.request(http.MethodGet, "/api/auth/session", nil, "")
	session = decodeBodyMap(t, sessionRes)
	if signedIn, _ := session["signedIn"].(bool); signedIn {
		t.Fatalf("expected signed-out session, body=%s", sessionRes.Body.String())
	}

	staticRes := app.request(http.MethodGet, "/static/js/app.js", nil, "")
	if staticRes.Code != http.StatusOK {
		t.Fatalf("embedded static asset expected 200, got %d", staticRes.Code)
	}
	if staticRes.Body.Len() == 0 {
		t.Fatalf("embedded static asset should not be empty")
	}
}

type testApp struct {
	handler http.Handler
	logs    *bytes.Buffer
	cookies map[string]*http.Cookie
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	dataDir := t.TempDir()
	cfg := &config.Config{}
	cfg.ApplyDefaults()
	cfg.Storage.DataDir = dataDir
	cfg.Storage.SQLitePath = filepath.Join(dataDir, "mytasks.db")

	var logs bytes.Buffer
	logger := log.New(&logs, "", 0)

	app, err := serverapp.New(serverapp.Options{
		Config: cfg,
		Logger: logger,
	})
	if err != nil {
		t.Fatalf("serverapp.New: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })

	return &testApp{
		handler: app.Handler,
		logs:    &logs,
		cookies: map[string]*http.Cookie{},
	}
}

func (a *testApp) json(method, path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	return a.request(method, path, bytes.NewReader(b), "application/json")
}

func (a *testApp) request(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, c := range a.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	a.captureCookies(rec.Result())
	return rec
}

func (a *testApp) captureCookies(res *http.Response) {
	for _, c := range res.Cookies() {
		if c == nil {
			continue
		}
		if c.MaxAge < 0 || strings.TrimSpace(c.Value) == "" {
			delete(a.cookies, c.Name)
			continue
		}
		cp := *c
		a.cookies[c.Name] = &cp
	}
}

func decodeBodyMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode json body failed: %v body=%s", err, rec.Body.String())
	}
	return out
}

func asString(t *testing.T, v any) string {
	t.Helper()
	s, ok := v.(string)
	if !ok {
		t.Fatalf("expected string, got %T (%v)", v, v)
	}
	return s
}

func viewContains(views map[string]any, view, taskID string) bool {
	list, _ := views[view].([]any)
	for _, item := range list {
		m, _ := item.(map[string]any)
		if m != nil {
			if id, _ := m["id"].(string); id == taskID {
				return true
			}
		}
	}
	return false
}
