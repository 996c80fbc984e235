// Copyright (c) 2026 Promptlib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package directory_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/promptlib/internal/core/directory"
	"github.com/taibuivan/promptlib/internal/platform/ctxutil"
	"github.com/taibuivan/promptlib/internal/platform/sec"
)

func newDirectoryRouter(t *testing.T, store *fakeStore) (http.Handler, *directory.Caches) {
	t.Helper()
	caches := newCaches(t)
	reader := directory.NewCachedService(directory.NewService(store, discardLogger()), caches)
	handler := directory.NewHandler(reader, directory.DefaultPolicies())

	router := chi.NewRouter()
	router.Route("/prompts", handler.RegisterPromptRoutes)
	router.Route("/agents", handler.RegisterAgentRoutes)
	return router, caches
}

func seededStore() *fakeStore {
	store := newFakeStore()
	store.addAuthor("a1", "Ada", false)
	store.addPrompt("p1", "a1", "Category Guide", directory.TypePrompt, 1)
	store.addPrompt("p2", "a1", "Reviewer", directory.TypeAgent, 2)
	return store
}

func get(router http.Handler, target string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))
	return recorder
}

/*
TestHandler_CacheControl verifies every family advertises its own header.
*/
func TestHandler_CacheControl(t *testing.T) {
	router, _ := newDirectoryRouter(t, seededStore())

	tests := []struct {
		target string
		header string
	}{
		{"/prompts/", "public, max-age=1800, s-maxage=10800, stale-while-revalidate=3600"},
		{"/prompts/?q=cat", "public, max-age=900, s-maxage=3600, stale-while-revalidate=1800"},
		{"/prompts/ada", "public, max-age=900, s-maxage=3600, stale-while-revalidate=1800"},
		{"/prompts/ada/category-guide", "public, max-age=3600, s-maxage=43200, stale-while-revalidate=7200"},
		{"/agents/", "public, max-age=1800, s-maxage=10800, stale-while-revalidate=3600"},
		{"/agents/ada", "public, max-age=900, s-maxage=3600, stale-while-revalidate=1800"},
		{"/agents/ada/reviewer", "public, max-age=3600, s-maxage=43200, stale-while-revalidate=7200"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			recorder := get(router, tt.target)
			assert.Equal(t, http.StatusOK, recorder.Code)
			assert.Equal(t, tt.header, recorder.Header().Get("Cache-Control"))
		})
	}
}

/*
TestHandler_Search returns the search envelope when q is given.
*/
func TestHandler_Search(t *testing.T) {
	router, caches := newDirectoryRouter(t, seededStore())

	recorder := get(router, "/prompts/?q=%20CAT%20&page=1")
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Data directory.SearchResults `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "CAT", body.Data.Query)
	assert.Equal(t, 1, body.Data.TotalResults)
	assert.Equal(t, 1, caches.Stats().Search.Size)
}

/*
TestHandler_NotFound maps absent results and non-agent prompts to 404.
*/
func TestHandler_NotFound(t *testing.T) {
	router, caches := newDirectoryRouter(t, seededStore())

	for _, target := range []string{"/prompts/ghost", "/agents/ghost", "/prompts/ada/missing", "/agents/ada/category-guide"} {
		t.Run(target, func(t *testing.T) {
			recorder := get(router, target)
			assert.Equal(t, http.StatusNotFound, recorder.Code)
			assert.Equal(t, "no-store", recorder.Header().Get("Cache-Control"))
			assert.Contains(t, recorder.Body.String(), "NOT_FOUND")
		})
	}

	// The non-agent prompt itself was found, so it stays cached for the /prompts route
	assert.Equal(t, 1, caches.Stats().Prompt.Size)
}

/*
TestHandler_StoreFailure maps store errors to 500 without leaking the cause.
*/
func TestHandler_StoreFailure(t *testing.T) {
	store := seededStore()
	store.fail["CountAuthors"] = errors.New("pq: password authentication failed")
	router, _ := newDirectoryRouter(t, store)

	recorder := get(router, "/prompts/?page=2")
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "password")
	assert.Equal(t, "no-store", recorder.Header().Get("Cache-Control"))
}

func withRole(role sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := &sec.AuthClaims{Role: string(role)}
			next.ServeHTTP(writer, request.WithContext(ctxutil.WithClaims(request.Context(), claims)))
		})
	}
}

/*
TestAdminHandler enforces roles and flushes the requested scope.
*/
func TestAdminHandler(t *testing.T) {
	store := seededStore()
	caches := newCaches(t)
	reader := directory.NewCachedService(directory.NewService(store, discardLogger()), caches)
	admin := directory.NewAdminHandler(caches, directory.NewInvalidator(caches, nil, discardLogger()))

	route := func(role sec.UserRole) http.Handler {
		router := chi.NewRouter()
		router.Use(withRole(role))
		router.Route("/admin/cache", admin.RegisterRoutes)
		return router
	}

	_, err := reader.GetPromptBySlug(t.Context(), "ada", "reviewer")
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, get(route(sec.RoleEditor), "/admin/cache/stats").Code)

	stats := get(route(sec.RoleAdmin), "/admin/cache/stats")
	require.Equal(t, http.StatusOK, stats.Code)
	assert.Contains(t, stats.Body.String(), `"prompt":{"size":1,"max":500}`)

	body := `{"scope":"prompt","authorSlug":"ada","promptSlug":"reviewer"}`

	recorder := httptest.NewRecorder()
	route(sec.RoleEditor).ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/admin/cache/invalidate", strings.NewReader(body)))
	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Equal(t, 1, caches.Stats().Prompt.Size)

	recorder = httptest.NewRecorder()
	route(sec.RoleAdmin).ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/admin/cache/invalidate", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"removed":1`)
	assert.Equal(t, 0, caches.Stats().Prompt.Size)

	recorder = httptest.NewRecorder()
	route(sec.RoleAdmin).ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/admin/cache/invalidate", strings.NewReader(`{"scope":"nope"}`)))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
