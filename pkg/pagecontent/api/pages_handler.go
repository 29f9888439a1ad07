// Package api exposes thin HTTP adapters over the pagecontent service.
// Handlers parse the wire shapes and delegate; all behavior lives in the
// core package.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/clubinho/content-backend/pkg/pagecontent"
)

// maxUploadMemory bounds the in-memory part of multipart parsing.
const maxUploadMemory = 32 << 20

// PagesHandler handles HTTP requests for page aggregates.
type PagesHandler struct {
	service pagecontent.Service
	logger  *slog.Logger
}

// NewPagesHandler creates a new pages handler
func NewPagesHandler(service pagecontent.Service, logger *slog.Logger) *PagesHandler {
	return &PagesHandler{service: service, logger: logger}
}

// Routes returns the routes for pages
func (h *PagesHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreatePage)
	r.Get("/", h.ListPages)
	r.Get("/{id}", h.GetPage)
	r.Put("/{id}", h.UpdatePage)
	r.Delete("/{id}", h.DeletePage)

	return r
}

// CreatePage accepts a multipart form: a "payload" part holding the JSON
// CreatePageRequest and one file part per upload descriptor, named by its
// file field key.
func (h *PagesHandler) CreatePage(w http.ResponseWriter, r *http.Request) {
	var req pagecontent.CreatePageRequest
	files, err := parseMultipartRequest(r, &req)
	if err != nil {
		renderError(w, r, err)
		return
	}

	view, err := h.service.CreatePage(r.Context(), req, files)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "create page failed", "error", err)
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, view)
}

// UpdatePage accepts the same multipart form as CreatePage with an
// UpdatePageRequest payload.
func (h *PagesHandler) UpdatePage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, &pagecontent.ValidationError{Field: "id", Reason: "invalid uuid"})
		return
	}

	var req pagecontent.UpdatePageRequest
	files, err := parseMultipartRequest(r, &req)
	if err != nil {
		renderError(w, r, err)
		return
	}

	view, err := h.service.UpdatePage(r.Context(), id, req, files)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "update page failed", "page_id", id, "error", err)
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, view)
}

// GetPage returns one page aggregate.
func (h *PagesHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, &pagecontent.ValidationError{Field: "id", Reason: "invalid uuid"})
		return
	}

	view, err := h.service.GetPage(r.Context(), id)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, view)
}

// ListPages returns every page of the requested kind.
func (h *PagesHandler) ListPages(w http.ResponseWriter, r *http.Request) {
	kind := pagecontent.PageKind(r.URL.Query().Get("kind"))
	views, err := h.service.ListPages(r.Context(), kind)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, views)
}

// DeletePage removes a page aggregate.
func (h *PagesHandler) DeletePage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, &pagecontent.ValidationError{Field: "id", Reason: "invalid uuid"})
		return
	}

	if err := h.service.DeletePage(r.Context(), id); err != nil {
		h.logger.ErrorContext(r.Context(), "delete page failed", "page_id", id, "error", err)
		renderError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseMultipartRequest decodes the "payload" JSON part into dst and
// collects the file parts keyed by their form field name.
func parseMultipartRequest(r *http.Request, dst interface{}) (map[string]pagecontent.UploadFile, error) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return nil, &pagecontent.ValidationError{Field: "body", Reason: "invalid multipart form"}
	}

	payload := r.FormValue("payload")
	if payload == "" {
		return nil, &pagecontent.ValidationError{Field: "payload", Reason: "missing payload part"}
	}
	if err := json.Unmarshal([]byte(payload), dst); err != nil {
		return nil, &pagecontent.ValidationError{Field: "payload", Reason: "invalid json"}
	}

	files := make(map[string]pagecontent.UploadFile)
	for key, headers := range r.MultipartForm.File {
		if len(headers) == 0 {
			continue
		}
		fh := headers[0]
		f, err := fh.Open()
		if err != nil {
			return nil, &pagecontent.ValidationError{Field: key, Reason: "unreadable file part"}
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, &pagecontent.ValidationError{Field: key, Reason: "unreadable file part"}
		}
		files[key] = pagecontent.UploadFile{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		}
	}
	return files, nil
}

// renderError maps the service error taxonomy onto HTTP statuses.
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *pagecontent.ValidationError

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
	case errors.Is(err, pagecontent.ErrUnknownPageKind):
		status = http.StatusBadRequest
	case errors.Is(err, pagecontent.ErrPageNotFound),
		errors.Is(err, pagecontent.ErrRouteNotFound),
		errors.Is(err, pagecontent.ErrSectionNotFound),
		errors.Is(err, pagecontent.ErrMediaItemNotFound):
		status = http.StatusNotFound
	case errors.Is(err, pagecontent.ErrRoutePathTaken):
		status = http.StatusConflict
	}

	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": err.Error()})
}
