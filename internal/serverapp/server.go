// Package serverapp assembles the HTTP application: storage, auth, the
// per-device workspaces, the weather collaborator, and the route table.
package serverapp

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Sunilsolankiji/MyTasks/internal/activity"
	"github.com/Sunilsolankiji/MyTasks/internal/auth"
	"github.com/Sunilsolankiji/MyTasks/internal/config"
	"github.com/Sunilsolankiji/MyTasks/internal/httpmw"
	"github.com/Sunilsolankiji/MyTasks/internal/kvstore"
	"github.com/Sunilsolankiji/MyTasks/internal/localstore"
	"github.com/Sunilsolankiji/MyTasks/internal/remote"
	"github.com/Sunilsolankiji/MyTasks/internal/weather"
	"github.com/Sunilsolankiji/MyTasks/internal/workspace"
	staticfiles "github.com/Sunilsolankiji/MyTasks/static"
)

type Options struct {
	Config        *config.Config
	StaticDir     string
	UseDiskStatic bool
	Logger        *log.Logger
}

// App owns the long-lived collaborators so the caller can shut them down.
type App struct {
	Handler http.Handler

	manager   *workspace.Manager
	refresher *weather.Refresher
	closeDB   func() error
}

// Close tears down the auth subscription, stops the weather refresher and
// closes the task database.
func (a *App) Close() error {
	a.manager.Teardown()
	a.refresher.Stop()
	if a.closeDB != nil {
		return a.closeDB()
	}
	return nil
}

func New(opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if strings.TrimSpace(opts.StaticDir) == "" {
		opts.StaticDir = "static"
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	cfg := opts.Config

	mux := http.NewServeMux()

	staticHandler := http.FileServer(http.FS(staticfiles.EmbeddedFS()))
	if opts.UseDiskStatic {
		staticHandler = http.FileServer(http.Dir(opts.StaticDir))
	}
	mux.Handle("/static/", http.StripPrefix("/static/", staticHandler))
	mux.Handle("/", staticHandler)

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "mytasks",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	kv, err := kvstore.New(cfg.Storage.DataDir)
	if err != nil {
		return nil, err
	}
	local := localstore.New(kv, opts.Logger)

	db, err := remote.Open(cfg.Storage.SQLitePath)
	if err != nil {
		return nil, err
	}
	collection := remote.NewCollection(db)

	authRepo, err := auth.NewFileRepo(filepath.Join(cfg.Storage.DataDir, "auth"))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	authService := auth.NewService(authRepo, opts.Logger)
	authService.SetSessionTTL(cfg.Auth.SessionTTL)
	authService.SetSecureCookie(cfg.Auth.SecureCookie)

	activityRepo := activity.NewMemoryRepository()

	manager := workspace.NewManager(local, collection, opts.Logger)
	manager.SetActivity(activityRepo)
	manager.Init(authService.Events())

	authHandler := auth.NewHandler(authService)
	mux.HandleFunc("/api/auth/register", authHandler.Register)
	mux.HandleFunc("/api/auth/sign-in", authHandler.SignIn)
	mux.HandleFunc("/api/auth/session", authHandler.Session)
	mux.HandleFunc("/api/auth/sign-out", authHandler.SignOut)
	mux.Handle("/api/account", authService.RequireAPI(http.HandlerFunc(authHandler.Account)))

	wsHandler := workspace.NewHandler(manager)
	mux.HandleFunc("/api/tasks", wsHandler.TasksRoot)
	mux.HandleFunc("/api/tasks/export", wsHandler.Export)
	mux.HandleFunc("/api/tasks/import/preview", wsHandler.ImportPreview)
	mux.HandleFunc("/api/tasks/import/confirm", wsHandler.ImportConfirm)
	mux.HandleFunc("/api/tasks/", wsHandler.TasksSub)
	mux.HandleFunc("/api/views", wsHandler.Views)
	mux.HandleFunc("/api/settings", wsHandler.Settings)
	mux.HandleFunc("/api/notifications", wsHandler.Notifications)
	mux.HandleFunc("/api/sync/state", wsHandler.SyncState)

	activityHandler := activity.NewHandler(activityRepo)
	mux.HandleFunc("/api/activity", activityHandler.Events)
	mux.HandleFunc("/api/activity/summary", activityHandler.Stats)

	weatherClient := weather.NewClient(cfg.Weather.BaseURL, cfg.Weather.APIKey)
	refresher := weather.NewRefresher(weatherClient, cfg.Weather.RefreshInterval, opts.Logger)
	refresher.Start()
	weatherHandler := weather.NewHandler(refresher)
	mux.HandleFunc("/api/weather", weatherHandler.Current)
	mux.HandleFunc("/api/weather/effect", weatherHandler.Effect)
	mux.HandleFunc("/api/locations", weatherHandler.Search)

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if err := db.PingContext(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"ok":    false,
				"error": "task database unavailable",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "mytasks",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	handler := httpmw.Chain(
		mux,
		httpmw.WithAccessLog(opts.Logger),
		httpmw.WithRequestID,
		httpmw.WithDeviceID,
		httpmw.WithRecover(opts.Logger),
	)

	return &App{
		Handler:   handler,
		manager:   manager,
		refresher: refresher,
		closeDB:   db.Close,
	}, nil
}

func UseDiskStaticByEnv() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("MYTASKS_DEV_STATIC"))) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
