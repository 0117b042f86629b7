// Package api exposes the detection engine over HTTP: project
// registration, alert listing and resolution, scan triggering, and
// notification reads.
package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/sedalabs/scriptscan/internal/alerting"
	"github.com/sedalabs/scriptscan/internal/scanner"
	"github.com/sedalabs/scriptscan/internal/storage"
	"github.com/sedalabs/scriptscan/internal/types"
)

// Server routes HTTP requests to the engine's components
type Server struct {
	router  chi.Router
	store   storage.Storage
	manager *alerting.Manager
	scanner *scanner.Scanner
}

// ServerConfig holds the server's dependencies
type ServerConfig struct {
	Store   storage.Storage
	Manager *alerting.Manager

	// Scanner enables POST /api/scan. Nil disables on-demand scans.
	Scanner *scanner.Scanner
}

// NewServer creates the API server and wires its routes
func NewServer(cfg *ServerConfig) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Manager == nil {
		return nil, fmt.Errorf("manager is required")
	}

	s := &Server{
		router:  chi.NewRouter(),
		store:   cfg.Store,
		manager: cfg.Manager,
		scanner: cfg.Scanner,
	}
	s.routes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Printf("[API] %s %s (%v)", r.Method, r.URL.Path, time.Since(start))
		})
	})

	s.router.Get("/api/health", s.handleHealth)

	s.router.Get("/api/projects", s.handleListProjects)
	s.router.Post("/api/projects", s.handleCreateProject)

	s.router.Get("/api/files", s.handleListFiles)

	s.router.Get("/api/alerts", s.handleListAlerts)
	s.router.Post("/api/alerts/{id}/dismiss", s.resolveHandler(types.AlertDismissed))
	s.router.Post("/api/alerts/{id}/merge", s.resolveHandler(types.AlertMerged))

	s.router.Get("/api/notifications", s.handleListNotifications)
	s.router.Post("/api/notifications/{id}/read", s.handleMarkNotificationRead)

	s.router.Post("/api/scan", s.handleScan)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.store.ListProjects(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"projects": projects})
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		RepoURL string `json:"repo_url"`
		OwnerID string `json:"owner_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	project := &types.Project{
		Name:    req.Name,
		Status:  types.ProjectActive,
		RepoURL: req.RepoURL,
		OwnerID: req.OwnerID,
	}
	if err := s.store.CreateProject(r.Context(), project); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if projectID := r.URL.Query().Get("project_id"); projectID != "" {
		files, err := s.store.ListFilesByProject(ctx, projectID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"files": files})
		return
	}

	kind := types.FileKind(r.URL.Query().Get("kind"))
	if !kind.IsValid() {
		writeError(w, http.StatusBadRequest, fmt.Errorf("project_id or a valid kind is required"))
		return
	}
	files, err := s.store.ListFilesByKind(ctx, kind)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"files": files})
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	filter := storage.AlertFilter{
		UserID: r.URL.Query().Get("user_id"),
		FileID: r.URL.Query().Get("file_id"),
	}

	if raw := r.URL.Query().Get("status"); raw != "" {
		status := types.AlertStatus(raw)
		if !status.IsValid() {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid status %q", raw))
			return
		}
		filter.Status = &status
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", raw))
			return
		}
		filter.Limit = limit
	}

	alerts, err := s.store.ListAlerts(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"alerts": alerts})
}

// resolveHandler builds the dismiss and merge handlers, which differ
// only in the terminal status they apply.
func (s *Server) resolveHandler(status types.AlertStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := chi.URLParam(r, "id")

		alert, err := s.store.GetAlert(ctx, id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if alert == nil {
			writeError(w, http.StatusNotFound, fmt.Errorf("alert %s not found", id))
			return
		}
		if alert.Status != types.AlertPending {
			writeError(w, http.StatusConflict, fmt.Errorf("alert %s is already %s", id, alert.Status))
			return
		}

		var resolveErr error
		switch status {
		case types.AlertDismissed:
			resolveErr = s.manager.Dismiss(ctx, id)
		case types.AlertMerged:
			resolveErr = s.manager.Merge(ctx, id)
		}
		if resolveErr != nil {
			writeError(w, http.StatusInternalServerError, resolveErr)
			return
		}

		alert, err = s.store.GetAlert(ctx, id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, alert)
	}
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("user_id is required"))
		return
	}
	unreadOnly := r.URL.Query().Get("unread") == "true"

	notifications, err := s.store.ListNotifications(r.Context(), userID, unreadOnly)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"notifications": notifications})
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.MarkNotificationRead(r.Context(), id); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if s.scanner == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("on-demand scanning is not enabled"))
		return
	}

	stats, err := s.scanner.Scan(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		log.Printf("[API] request failed (%d): %v", status, err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
