// Copyright (c) 2026 Promptlib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/promptlib/internal/platform/apperr"
	"github.com/taibuivan/promptlib/internal/platform/constants"
	"github.com/taibuivan/promptlib/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/promptlib/internal/platform/request"
	"github.com/taibuivan/promptlib/internal/platform/respond"
)

// MaxImportBytes bounds the size of an import document.
const MaxImportBytes = 10 << 20

// Handler serves the personal library. Responses are private and never cached.
type Handler struct {
	service *Service
}

// NewHandler creates the library HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the library endpoints under /library.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Use(noStore)

	router.Route("/prompts", func(r chi.Router) {
		r.Get("/", handler.listPrompts)
		r.Post("/", handler.createPrompt)
		r.Get("/{id}", handler.getPrompt)
		r.Patch("/{id}", handler.updatePrompt)
		r.Delete("/{id}", handler.deletePrompt)
	})

	router.Route("/tags", func(r chi.Router) {
		r.Get("/", handler.listTags)
		r.Post("/", handler.createTag)
		r.Get("/{id}", handler.getTag)
		r.Patch("/{id}", handler.updateTag)
		r.Delete("/{id}", handler.deleteTag)
	})

	router.Get("/settings", handler.getSettings)
	router.Put("/settings", handler.updateSettings)

	router.Get("/export", handler.export)
	router.Post("/import", handler.importLibrary)
}

func noStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set(constants.HeaderCacheControl, "no-store")
		next.ServeHTTP(writer, request)
	})
}

// fail logs the failed operation with its key parameters before responding.
func fail(writer http.ResponseWriter, request *http.Request, operation string, err error, attrs ...any) {
	logger := ctxutil.Operation(request.Context(), operation, attrs...)

	if appErr := apperr.As(err); appErr != nil && appErr.HTTPStatus < http.StatusInternalServerError {
		logger.WarnContext(request.Context(), "library_request_rejected", slog.String("code", appErr.Code))
	}

	ctx := ctxutil.WithLogger(request.Context(), logger)
	respond.Error(writer, request.WithContext(ctx), err)
}

// # Prompts

// listPrompts returns the most recently updated prompts first. With "q",
// "tags", "sort" or "order" present it filters and sorts instead.
func (handler *Handler) listPrompts(writer http.ResponseWriter, request *http.Request) {
	query := requestutil.SearchQuery(request)
	tagIDs := requestutil.List(request, "tags")
	field := request.URL.Query().Get("sort")
	direction := request.URL.Query().Get("order")

	if field == "" && direction == "" {
		prompts, err := handler.service.SearchPrompts(request.Context(), query, tagIDs)
		if err != nil {
			fail(writer, request, "library.search_prompts", err, slog.String("query", query))
			return
		}
		respond.OK(writer, prompts)
		return
	}

	option, err := ParseSortOption(field, direction)
	if err != nil {
		fail(writer, request, "library.list_prompts", err, slog.String("sort", field), slog.String("order", direction))
		return
	}

	prompts, err := handler.service.ListPrompts(request.Context())
	if err != nil {
		fail(writer, request, "library.list_prompts", err)
		return
	}
	respond.OK(writer, Filter(prompts, query, tagIDs, option))
}

func (handler *Handler) getPrompt(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	prompt, err := handler.service.GetPrompt(request.Context(), id)
	if err == nil && prompt == nil {
		err = apperr.NotFound("Prompt")
	}
	if err != nil {
		fail(writer, request, "library.get_prompt", err, slog.String("id", id))
		return
	}
	respond.OK(writer, prompt)
}

func (handler *Handler) createPrompt(writer http.ResponseWriter, request *http.Request) {
	var input PromptInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		fail(writer, request, "library.create_prompt", err)
		return
	}

	prompt, err := handler.service.CreatePrompt(request.Context(), input)
	if err != nil {
		fail(writer, request, "library.create_prompt", err)
		return
	}
	respond.Created(writer, prompt)
}

func (handler *Handler) updatePrompt(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	var patch PromptPatch
	if err := requestutil.DecodeJSON(request, &patch); err != nil {
		fail(writer, request, "library.update_prompt", err, slog.String("id", id))
		return
	}

	prompt, err := handler.service.UpdatePrompt(request.Context(), id, patch)
	if err == nil && prompt == nil {
		err = apperr.NotFound("Prompt")
	}
	if err != nil {
		fail(writer, request, "library.update_prompt", err, slog.String("id", id))
		return
	}
	respond.OK(writer, prompt)
}

func (handler *Handler) deletePrompt(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	deleted, err := handler.service.DeletePrompt(request.Context(), id)
	if err == nil && !deleted {
		err = apperr.NotFound("Prompt")
	}
	if err != nil {
		fail(writer, request, "library.delete_prompt", err, slog.String("id", id))
		return
	}
	respond.NoContent(writer)
}

// # Tags

type tagInput struct {
	Name string `json:"name"`
}

// listTags returns every tag by name. "ids" restricts the list to those tags
// in the given order; "slug" returns the single matching tag.
func (handler *Handler) listTags(writer http.ResponseWriter, request *http.Request) {
	if tagSlug := request.URL.Query().Get("slug"); tagSlug != "" {
		tag, err := handler.service.GetTagBySlug(request.Context(), tagSlug)
		if err == nil && tag == nil {
			err = apperr.NotFound("Tag")
		}
		if err != nil {
			fail(writer, request, "library.get_tag_by_slug", err, slog.String("slug", tagSlug))
			return
		}
		respond.OK(writer, tag)
		return
	}

	var (
		tags []Tag
		err  error
	)
	if ids := requestutil.List(request, "ids"); len(ids) > 0 {
		tags, err = handler.service.GetTagsByIDs(request.Context(), ids)
	} else {
		tags, err = handler.service.ListTags(request.Context())
	}
	if err != nil {
		fail(writer, request, "library.list_tags", err)
		return
	}
	respond.OK(writer, tags)
}

func (handler *Handler) getTag(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	tag, err := handler.service.GetTag(request.Context(), id)
	if err == nil && tag == nil {
		err = apperr.NotFound("Tag")
	}
	if err != nil {
		fail(writer, request, "library.get_tag", err, slog.String("id", id))
		return
	}
	respond.OK(writer, tag)
}

func (handler *Handler) createTag(writer http.ResponseWriter, request *http.Request) {
	var input tagInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		fail(writer, request, "library.create_tag", err)
		return
	}

	tag, err := handler.service.CreateTag(request.Context(), input.Name)
	if err != nil {
		fail(writer, request, "library.create_tag", err, slog.String("name", input.Name))
		return
	}
	respond.Created(writer, tag)
}

func (handler *Handler) updateTag(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	var input tagInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		fail(writer, request, "library.update_tag", err, slog.String("id", id))
		return
	}

	tag, err := handler.service.UpdateTag(request.Context(), id, input.Name)
	if err == nil && tag == nil {
		err = apperr.NotFound("Tag")
	}
	if err != nil {
		fail(writer, request, "library.update_tag", err, slog.String("id", id))
		return
	}
	respond.OK(writer, tag)
}

func (handler *Handler) deleteTag(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	deleted, err := handler.service.DeleteTag(request.Context(), id)
	if err == nil && !deleted {
		err = apperr.NotFound("Tag")
	}
	if err != nil {
		fail(writer, request, "library.delete_tag", err, slog.String("id", id))
		return
	}
	respond.NoContent(writer)
}

// # Settings

func (handler *Handler) getSettings(writer http.ResponseWriter, request *http.Request) {
	settings, err := handler.service.GetSettings(request.Context())
	if err != nil {
		fail(writer, request, "library.get_settings", err)
		return
	}
	respond.OK(writer, settings)
}

func (handler *Handler) updateSettings(writer http.ResponseWriter, request *http.Request) {
	var patch SettingsPatch
	if err := requestutil.DecodeJSON(request, &patch); err != nil {
		fail(writer, request, "library.update_settings", err)
		return
	}

	settings, err := handler.service.UpdateSettings(request.Context(), patch)
	if err != nil {
		fail(writer, request, "library.update_settings", err)
		return
	}
	respond.OK(writer, settings)
}

// # Export / Import

// export returns the bare export document so it can be saved and re-imported as is.
func (handler *Handler) export(writer http.ResponseWriter, request *http.Request) {
	document, err := handler.service.Export(request.Context())
	if err != nil {
		fail(writer, request, "library.export", err)
		return
	}
	writer.Header().Set("Content-Disposition", `attachment; filename="promptlib-export.json"`)
	respond.JSON(writer, http.StatusOK, document)
}

func (handler *Handler) importLibrary(writer http.ResponseWriter, request *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(writer, request.Body, MaxImportBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = apperr.ValidationError("Import document is too large")
		}
		fail(writer, request, "library.import", err)
		return
	}

	result, err := handler.service.Import(request.Context(), raw)
	if err != nil {
		fail(writer, request, "library.import", err, slog.Int("bytes", len(raw)))
		return
	}
	respond.OK(writer, result)
}
