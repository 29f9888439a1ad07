package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubinho/content-backend/pkg/pagecontent"
)

func TestListRoutesEndpoint(t *testing.T) {
	router := setupRouter(t)
	createGallery(t, router, "Fotos de Natal")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/routes/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var routes []pagecontent.Route
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &routes))
	require.Len(t, routes, 1)
	assert.Equal(t, "galeria_fotos_de_natal", routes[0].Path)
}

func TestResolvePathEndpoint(t *testing.T) {
	router := setupRouter(t)
	view := createGallery(t, router, "Fotos de Natal")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/routes/resolve?path=galeria_fotos_de_natal", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var route pagecontent.Route
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &route))
	assert.Equal(t, view.Page.ID, route.EntityID)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/routes/resolve?path=galeria_nada", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/routes/resolve", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRouteEndpoint(t *testing.T) {
	router := setupRouter(t)
	view := createGallery(t, router, "Fotos de Natal")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/routes/"+view.Route.ID.String(), nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/routes/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateRouteEndpoint(t *testing.T) {
	router := setupRouter(t)
	createGallery(t, router, "Fotos de Natal")
	second := createGallery(t, router, "Fotos Antigas")

	body := strings.NewReader(`{"title": "Fotos Renomeadas"}`)
	req := httptest.NewRequest(http.MethodPatch, "/routes/"+second.Route.ID.String(), body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var route pagecontent.Route
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &route))
	assert.Equal(t, "Fotos Renomeadas", route.Title)
	assert.Equal(t, "galeria_fotos_antigas", route.Path)

	// Stealing another route's path is a conflict.
	body = strings.NewReader(`{"path": "galeria_fotos_de_natal"}`)
	req = httptest.NewRequest(http.MethodPatch, "/routes/"+second.Route.ID.String(), body)
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRemoveRouteEndpoint(t *testing.T) {
	router := setupRouter(t)
	view := createGallery(t, router, "Fotos de Natal")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/routes/"+view.Route.ID.String(), nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Absent routes delete cleanly.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/routes/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
