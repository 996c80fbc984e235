// Copyright (c) 2026 Promptlib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package directory

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/promptlib/internal/platform/apperr"
	"github.com/taibuivan/promptlib/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/promptlib/internal/platform/request"
	"github.com/taibuivan/promptlib/internal/platform/respond"
)

// Handler serves the public directory. It only parses parameters, calls the
// reader and advertises each family's Cache-Control.
type Handler struct {
	reader   Reader
	policies Policies
}

// NewHandler creates a handler over reader. policies supply the Cache-Control
// headers even when the in-process cache is disabled.
func NewHandler(reader Reader, policies Policies) *Handler {
	return &Handler{reader: reader, policies: policies}
}

// RegisterPromptRoutes mounts the untyped directory under /prompts.
func (handler *Handler) RegisterPromptRoutes(router chi.Router) {
	router.Get("/", handler.listing(""))
	router.Get("/{authorSlug}", handler.getAuthorPage)
	router.Get("/{authorSlug}/{promptSlug}", handler.getPrompt)
}

// RegisterAgentRoutes mounts the agent directory under /agents.
func (handler *Handler) RegisterAgentRoutes(router chi.Router) {
	router.Get("/", handler.listing(TypeAgent))
	router.Get("/{authorSlug}", handler.getAuthorPageGrouped)
	router.Get("/{authorSlug}/{promptSlug}", handler.getAgent)
}

// fail logs the failed operation with its key parameters before responding.
func fail(writer http.ResponseWriter, request *http.Request, operation string, err error, attrs ...any) {
	logger := ctxutil.Operation(request.Context(), operation, attrs...)

	if appErr := apperr.As(err); appErr != nil && appErr.HTTPStatus < http.StatusInternalServerError {
		logger.WarnContext(request.Context(), "directory_request_rejected", slog.String("code", appErr.Code))
	}

	ctx := ctxutil.WithLogger(request.Context(), logger)
	respond.Error(writer, request.WithContext(ctx), err)
}

// listing serves the library page, or search results when "q" is present.
func (handler *Handler) listing(promptType PromptType) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		page := requestutil.Page(request)

		if query := requestutil.SearchQuery(request); query != "" {
			results, err := handler.reader.SearchPrompts(request.Context(), query, page, promptType)
			if err != nil {
				fail(writer, request, "directory.search_prompts", err,
					slog.String("query", query), slog.Int("page", page), slog.String("type", string(promptType)))
				return
			}
			respond.Cached(writer, handler.policies.Search.CacheControl(), results)
			return
		}

		data, err := handler.reader.GetLibraryPage(request.Context(), page, promptType)
		if err != nil {
			fail(writer, request, "directory.get_library_page", err,
				slog.Int("page", page), slog.String("type", string(promptType)))
			return
		}
		respond.Cached(writer, handler.policies.Library.CacheControl(), data)
	}
}

func (handler *Handler) getAuthorPage(writer http.ResponseWriter, request *http.Request) {
	authorSlug := requestutil.Param(request, "authorSlug")
	page := requestutil.Page(request)

	data, err := handler.reader.GetAuthorPageBySlug(request.Context(), authorSlug, page)
	if err == nil && data == nil {
		err = apperr.NotFound("Author")
	}
	if err != nil {
		fail(writer, request, "directory.get_author_page", err,
			slog.String("author_slug", authorSlug), slog.Int("page", page))
		return
	}

	respond.Cached(writer, handler.policies.Author.CacheControl(), data)
}

func (handler *Handler) getAuthorPageGrouped(writer http.ResponseWriter, request *http.Request) {
	authorSlug := requestutil.Param(request, "authorSlug")
	page := requestutil.Page(request)

	data, err := handler.reader.GetAuthorPageGrouped(request.Context(), authorSlug, page)
	if err == nil && data == nil {
		err = apperr.NotFound("Author")
	}
	if err != nil {
		fail(writer, request, "directory.get_author_page_grouped", err,
			slog.String("author_slug", authorSlug), slog.Int("page", page))
		return
	}

	respond.Cached(writer, handler.policies.Author.CacheControl(), data)
}

func (handler *Handler) getPrompt(writer http.ResponseWriter, request *http.Request) {
	handler.servePrompt(writer, request, "directory.get_prompt", "Prompt", func(*Prompt) bool { return true })
}

// getAgent serves only agent prompts; any other type is reported as not found.
func (handler *Handler) getAgent(writer http.ResponseWriter, request *http.Request) {
	handler.servePrompt(writer, request, "directory.get_agent", "Agent prompt", func(p *Prompt) bool { return p.Type == TypeAgent })
}

func (handler *Handler) servePrompt(writer http.ResponseWriter, request *http.Request, operation, resource string, accept func(*Prompt) bool) {
	authorSlug := requestutil.Param(request, "authorSlug")
	promptSlug := requestutil.Param(request, "promptSlug")

	prompt, err := handler.reader.GetPromptBySlug(request.Context(), authorSlug, promptSlug)
	if err == nil && (prompt == nil || !accept(prompt)) {
		err = apperr.NotFound(resource)
	}
	if err != nil {
		fail(writer, request, operation, err,
			slog.String("author_slug", authorSlug), slog.String("prompt_slug", promptSlug))
		return
	}

	respond.Cached(writer, handler.policies.Prompt.CacheControl(), prompt)
}
