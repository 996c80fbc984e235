// Copyright (c) 2026 Promptlib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package directory

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/promptlib/internal/platform/constants"
	"github.com/taibuivan/promptlib/internal/platform/middleware"
	requestutil "github.com/taibuivan/promptlib/internal/platform/request"
	"github.com/taibuivan/promptlib/internal/platform/respond"
	"github.com/taibuivan/promptlib/internal/platform/sec"
)

// AdminHandler exposes read-cache statistics and invalidation.
type AdminHandler struct {
	caches      *Caches
	invalidator *Invalidator
}

// NewAdminHandler creates the cache administration handler.
func NewAdminHandler(caches *Caches, invalidator *Invalidator) *AdminHandler {
	return &AdminHandler{caches: caches, invalidator: invalidator}
}

// RegisterRoutes mounts the admin endpoints under /admin/cache.
// Requires [middleware.Authenticate] upstream.
func (handler *AdminHandler) RegisterRoutes(router chi.Router) {
	router.Use(middleware.RequireRole(sec.RoleAdmin))
	router.Get("/stats", handler.stats)
	router.Post("/invalidate", handler.invalidate)
}

type invalidateResponse struct {
	Invalidation
	Removed int        `json:"removed"`
	Stats   CacheStats `json:"stats"`
}

func (handler *AdminHandler) stats(writer http.ResponseWriter, request *http.Request) {
	writer.Header().Set(constants.HeaderCacheControl, "no-store")
	respond.OK(writer, handler.caches.Stats())
}

func (handler *AdminHandler) invalidate(writer http.ResponseWriter, request *http.Request) {
	var input Invalidation
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	removed, err := handler.invalidator.Invalidate(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, invalidateResponse{
		Invalidation: input,
		Removed:      removed,
		Stats:        handler.caches.Stats(),
	})
}
