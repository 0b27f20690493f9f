// Package server provides the HTTP surface over the analytics core:
// insight read/write, dashboard, and repository list endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Nethaiah/commitlens/github"
	"github.com/Nethaiah/commitlens/logger"
	"github.com/Nethaiah/commitlens/models"
	"github.com/Nethaiah/commitlens/service"
	"github.com/Nethaiah/commitlens/stats"
)

// HealthChecker defines an interface for checking a dependency's health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// InsightGateway abstracts insight fetch/generate for the handlers
// (for testability)
type InsightGateway interface {
	Fetch(ctx context.Context, userID, rangeKey, repo string) (models.InsightPayload, error)
	Generate(ctx context.Context, userID string, snapshot models.StatsSnapshot) (models.InsightPayload, error)
}

// Dashboard abstracts the service operations used by the handlers
// (for testability)
type Dashboard interface {
	GetDashboardData(ctx context.Context, rangeKey, repo string) (*models.DashboardData, error)
	GetRepositories(ctx context.Context, opts stats.FilterOptions) (*service.RepositoriesView, error)
	GetRepositoryCommits(ctx context.Context, owner, name string, perPage int) ([]models.Commit, error)
}

// Handler wraps application dependencies for HTTP handlers.
type Handler struct {
	sessions SessionProvider
	insights InsightGateway
	svc      Dashboard
	db       HealthChecker
}

// NewHandler creates a new Handler instance. db may be nil when the
// cache store is not configured.
func NewHandler(sessions SessionProvider, insights InsightGateway, svc Dashboard, db HealthChecker) *Handler {
	return &Handler{sessions: sessions, insights: insights, svc: svc, db: db}
}

// Router configures the chi router with all routes and middleware.
func (h *Handler) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)

	r.Route("/api", func(r chi.Router) {
		r.Get("/insights", h.GetInsight)
		r.Post("/insights", h.GenerateInsight)
		r.Get("/dashboard", h.GetDashboard)
		r.Get("/repositories", h.GetRepositories)
		r.Get("/repositories/{owner}/{name}/commits", h.GetRepositoryCommits)
	})

	return r
}

// Healthz is a liveness probe endpoint.
//
// GET /healthz
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz checks the cache store and returns 200 only when healthy.
//
// GET /readyz
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	status := http.StatusOK
	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			checks["postgres"] = "error: " + err.Error()
			status = http.StatusServiceUnavailable
		} else {
			checks["postgres"] = "ok"
		}
	} else {
		checks["postgres"] = "not configured"
	}

	writeJSON(w, status, map[string]any{"status": http.StatusText(status), "checks": checks})
}

// requireSession resolves the request's session, writing the 401
// response itself when absent.
func (h *Handler) requireSession(w http.ResponseWriter, r *http.Request) *models.Session {
	session, err := h.sessions.GetSession(r)
	if err != nil || session == nil {
		if err != nil {
			logger.Warn("Session resolution failed", zap.Error(err))
		}
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return nil
	}
	return session
}

// GetInsight returns the cached insight for the key triple, or a 404
// not-found signal on any kind of miss.
//
// GET /api/insights?range=1y&repo=All+Repositories
func (h *Handler) GetInsight(w http.ResponseWriter, r *http.Request) {
	session := h.requireSession(w, r)
	if session == nil {
		return
	}

	rangeKey := r.URL.Query().Get("range")
	if rangeKey == "" {
		rangeKey = "1y"
	}
	repo := r.URL.Query().Get("repo")
	if repo == "" {
		repo = models.AllRepositories
	}

	payload, err := h.insights.Fetch(r.Context(), session.User.ID, rangeKey, repo)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]bool{"notFound": true})
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// GenerateInsight accepts a stats snapshot and returns a freshly
// generated (or fallback) insight payload.
//
// POST /api/insights
func (h *Handler) GenerateInsight(w http.ResponseWriter, r *http.Request) {
	session := h.requireSession(w, r)
	if session == nil {
		return
	}

	var snapshot models.StatsSnapshot
	if err := json.NewDecoder(r.Body).Decode(&snapshot); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if snapshot.RangeKey == "" {
		snapshot.RangeKey = "1y"
	}
	if snapshot.Repo == "" {
		snapshot.Repo = models.AllRepositories
	}

	payload, err := h.insights.Generate(r.Context(), session.User.ID, snapshot)
	if err != nil {
		logger.Error("Insight generation failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// GetDashboard returns the aggregated dashboard data for a range.
//
// GET /api/dashboard?range=30d&repo=All+Repositories
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	session := h.requireSession(w, r)
	if session == nil {
		return
	}

	rangeKey := r.URL.Query().Get("range")
	repo := r.URL.Query().Get("repo")
	if repo == "" {
		repo = models.AllRepositories
	}

	data, err := h.svc.GetDashboardData(r.Context(), rangeKey, repo)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// GetRepositories returns the filtered, sorted repository list and the
// overview counters.
//
// GET /api/repositories?query=&language=all&visibility=all&scope=all&sortBy=updated
func (h *Handler) GetRepositories(w http.ResponseWriter, r *http.Request) {
	session := h.requireSession(w, r)
	if session == nil {
		return
	}

	q := r.URL.Query()
	opts := stats.FilterOptions{
		Query:        q.Get("query"),
		Language:     q.Get("language"),
		Visibility:   q.Get("visibility"),
		Scope:        q.Get("scope"),
		HideForks:    q.Get("hideForks") == "true",
		HideArchived: q.Get("hideArchived") == "true",
		SortBy:       q.Get("sortBy"),
		ViewerLogin:  session.User.Login,
	}

	view, err := h.svc.GetRepositories(r.Context(), opts)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GetRepositoryCommits returns the sampled recent commits of one
// repository.
//
// GET /api/repositories/{owner}/{name}/commits?per_page=10
func (h *Handler) GetRepositoryCommits(w http.ResponseWriter, r *http.Request) {
	session := h.requireSession(w, r)
	if session == nil {
		return
	}

	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	commits, err := h.svc.GetRepositoryCommits(r.Context(), chi.URLParam(r, "owner"), chi.URLParam(r, "name"), perPage)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, commits)
}

// writeUpstreamError maps GitHub failures to 502 and everything else
// to 500, always carrying the message.
func writeUpstreamError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, github.ErrUpstreamUnavailable) {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}
