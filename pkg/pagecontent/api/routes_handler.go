package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/clubinho/content-backend/pkg/pagecontent"
)

// RoutesHandler handles HTTP requests for routes: listing, lookup by id,
// and the read-side slug resolution the public site uses.
type RoutesHandler struct {
	service pagecontent.Service
	logger  *slog.Logger
}

// NewRoutesHandler creates a new routes handler
func NewRoutesHandler(service pagecontent.Service, logger *slog.Logger) *RoutesHandler {
	return &RoutesHandler{service: service, logger: logger}
}

// Routes returns the routes for route management
func (h *RoutesHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListRoutes)
	r.Get("/resolve", h.ResolvePath)
	r.Get("/{id}", h.GetRoute)
	r.Patch("/{id}", h.UpdateRoute)
	r.Delete("/{id}", h.RemoveRoute)

	return r
}

// ListRoutes returns all routes.
func (h *RoutesHandler) ListRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := h.service.ListRoutes(r.Context())
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, routes)
}

// ResolvePath resolves a slug to its route.
func (h *RoutesHandler) ResolvePath(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		renderError(w, r, &pagecontent.ValidationError{Field: "path", Reason: "missing path parameter"})
		return
	}

	route, err := h.service.GetRouteByPath(r.Context(), path)
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, route)
}

// GetRoute returns one route by id.
func (h *RoutesHandler) GetRoute(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, &pagecontent.ValidationError{Field: "id", Reason: "invalid uuid"})
		return
	}

	route, err := h.service.GetRoute(r.Context(), id)
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, route)
}

// UpdateRoute applies a partial route update.
func (h *RoutesHandler) UpdateRoute(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, &pagecontent.ValidationError{Field: "id", Reason: "invalid uuid"})
		return
	}

	var patch pagecontent.RoutePatch
	if err := render.DecodeJSON(r.Body, &patch); err != nil {
		renderError(w, r, &pagecontent.ValidationError{Field: "body", Reason: "invalid json"})
		return
	}

	route, err := h.service.UpdateRoute(r.Context(), id, patch)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "update route failed", "route_id", id, "error", err)
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, route)
}

// RemoveRoute deletes a route by id; removing an absent route succeeds.
func (h *RoutesHandler) RemoveRoute(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, &pagecontent.ValidationError{Field: "id", Reason: "invalid uuid"})
		return
	}

	if err := h.service.RemoveRoute(r.Context(), id); err != nil {
		h.logger.ErrorContext(r.Context(), "remove route failed", "route_id", id, "error", err)
		renderError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
