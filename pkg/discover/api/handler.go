package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-discover/pkg/discover"
)

// Handler serves the discover feed and its admin operations
type Handler struct {
	service discover.Service
}

func NewHandler(service discover.Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for feed endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/feed", h.GetFeed)
	r.Get("/stats", h.GetStats)
	return r
}

// AdminRoutes returns the router for reconciliation endpoints. Callers must
// mount it behind RequireAdmin.
func (h *Handler) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/reconcile", h.Reconcile)
	r.Post("/cleanup", h.Cleanup)
	return r
}

// GetFeed returns one page of public content from other users.
//
// Query parameters: cursor, limit (1-50, default 20), type (content type filter).
func (h *Handler) GetFeed(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		writeStatus(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	query := r.URL.Query()
	req := discover.FeedRequest{
		CallerID:    caller.ID,
		Cursor:      query.Get("cursor"),
		ContentType: discover.ContentType(query.Get("type")),
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, "feed", &discover.ValidationError{Field: "limit", Value: raw, Err: discover.ErrInvalidLimit})
			return
		}
		req.Limit = limit
	}

	page, err := h.service.GetPublicFeed(r.Context(), req)
	if err != nil {
		writeError(w, r, "feed", err)
		return
	}
	render.JSON(w, r, page)
}

// GetStats returns counts of public content
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		writeError(w, r, "stats", err)
		return
	}
	render.JSON(w, r, stats)
}

// Reconcile rebuilds the index from the source tables
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ReconcileAll(r.Context())
	if err != nil {
		writeError(w, r, "reconcile", err)
		return
	}
	render.JSON(w, r, result)
}

// Cleanup removes index rows whose source is gone
func (h *Handler) Cleanup(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.CleanupOrphans(r.Context())
	if err != nil {
		writeError(w, r, "cleanup", err)
		return
	}
	render.JSON(w, r, result)
}

// NewRouter assembles the full HTTP surface: /health, the feed under
// /api/v1/discover and the admin operations under /api/v1/admin/discover.
func NewRouter(service discover.Service, auth *Auth) chi.Router {
	h := NewHandler(service)
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.CallerAuth)
		r.Mount("/discover", h.Routes())
		r.With(RequireAdmin).Mount("/admin/discover", h.AdminRoutes())
	})
	return r
}
