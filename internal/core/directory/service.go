// Copyright (c) 2026 Promptlib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package directory

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/promptlib/internal/platform/dberr"
	"github.com/taibuivan/promptlib/pkg/pagination"
	"github.com/taibuivan/promptlib/pkg/slice"
)

// Reader is the page-shaped read surface served over HTTP.
//
// Lookups that find nothing return a nil view and a nil error.
// Both [Service] and [CachedService] implement it.
type Reader interface {
	GetLibraryPage(ctx context.Context, page int, promptType PromptType) (*LibraryPage, error)
	SearchPrompts(ctx context.Context, query string, page int, promptType PromptType) (*SearchResults, error)
	GetAuthorPageBySlug(ctx context.Context, authorSlug string, page int) (*AuthorPage, error)
	GetAuthorPageGrouped(ctx context.Context, authorSlug string, page int) (*AuthorPageGrouped, error)
	GetPromptBySlug(ctx context.Context, authorSlug, promptSlug string) (*Prompt, error)
}

// Service is the query facade over the directory store.
type Service struct {
	store     Store
	assembler *Assembler
	logger    *slog.Logger
}

// NewService creates the facade and its assembler.
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		assembler: NewAssembler(store),
		logger:    logger,
	}
}

// absent turns a not-found store error into a nil result.
func absent[T any](value *T, err error) (*T, error) {
	if dberr.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// # Listings

// GetLibraryPage returns the highlighted authors and one page of the other
// authors, each with a preview. A non-empty promptType restricts the previews
// to that type and drops authors without any.
func (service *Service) GetLibraryPage(ctx context.Context, page int, promptType PromptType) (*LibraryPage, error) {
	window := pagination.For(page, AuthorsPerPage)

	var (
		highlighted []AuthorWithPrompts
		authors     []AuthorWithPrompts
		total       int
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() (err error) {
		highlighted, err = service.assembler.HighlightedAuthors(groupCtx, promptType)
		return err
	})
	group.Go(func() (err error) {
		authors, total, err = service.assembler.AuthorsPage(groupCtx, window, promptType)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return &LibraryPage{
		HighlightedAuthors: highlighted,
		Authors:            authors,
		TotalAuthors:       total,
		CurrentPage:        window.Page,
		TotalPages:         pagination.TotalPages(total, AuthorsPerPage),
	}, nil
}

// SearchPrompts returns one page of prompts whose title, description or body
// contains query, case-insensitively.
func (service *Service) SearchPrompts(ctx context.Context, query string, page int, promptType PromptType) (*SearchResults, error) {
	window := pagination.For(page, SearchResultsPerPage)
	filter := SearchFilter{Query: query, Type: promptType}

	var (
		prompts []Prompt
		total   int
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() (err error) {
		total, err = service.store.CountSearchPrompts(groupCtx, filter)
		return err
	})
	group.Go(func() (err error) {
		prompts, err = service.store.SearchPrompts(groupCtx, filter, window.Limit, window.Offset)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	tagged, err := service.assembler.AttachTags(ctx, prompts)
	if err != nil {
		return nil, err
	}

	return &SearchResults{
		Prompts:      tagged,
		TotalResults: total,
		CurrentPage:  window.Page,
		TotalPages:   pagination.TotalPages(total, SearchResultsPerPage),
		Query:        query,
	}, nil
}

// # Authors

// GetAuthorByID returns the author or nil when it does not exist.
func (service *Service) GetAuthorByID(ctx context.Context, id string) (*Author, error) {
	author, err := service.store.GetAuthorByID(ctx, id)
	return absent(author, err)
}

// GetAuthorBySlug returns the author or nil when it does not exist.
func (service *Service) GetAuthorBySlug(ctx context.Context, slug string) (*Author, error) {
	author, err := service.store.GetAuthorBySlug(ctx, slug)
	return absent(author, err)
}

// GetAuthorPage returns one page of the author's prompts, or nil for an unknown author.
func (service *Service) GetAuthorPage(ctx context.Context, authorID string, page int) (*AuthorPage, error) {
	author, err := service.GetAuthorByID(ctx, authorID)
	if err != nil || author == nil {
		return nil, err
	}
	return service.authorPage(ctx, author, page)
}

// GetAuthorPageBySlug is [Service.GetAuthorPage] keyed by author slug.
func (service *Service) GetAuthorPageBySlug(ctx context.Context, authorSlug string, page int) (*AuthorPage, error) {
	author, err := service.GetAuthorBySlug(ctx, authorSlug)
	if err != nil || author == nil {
		return nil, err
	}
	return service.authorPage(ctx, author, page)
}

func (service *Service) authorPage(ctx context.Context, author *Author, page int) (*AuthorPage, error) {
	window := pagination.For(page, PromptsPerPage)

	var (
		prompts []Prompt
		total   int
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() (err error) {
		total, err = service.store.CountPromptsByAuthor(groupCtx, author.ID)
		return err
	})
	group.Go(func() (err error) {
		prompts, err = service.store.ListPromptsByAuthor(groupCtx, author.ID, window.Limit, window.Offset)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	tagged, err := service.assembler.AttachTags(ctx, prompts)
	if err != nil {
		return nil, err
	}

	return &AuthorPage{
		Author:       *author,
		Prompts:      tagged,
		TotalPrompts: total,
		CurrentPage:  window.Page,
		TotalPages:   pagination.TotalPages(total, PromptsPerPage),
	}, nil
}

// GetAuthorPageGrouped returns every prompt of the author split into agents
// and the rest (prompts and skills), or nil for an unknown author.
//
// Groups are not paginated: page is echoed and TotalPages is always 1.
func (service *Service) GetAuthorPageGrouped(ctx context.Context, authorSlug string, page int) (*AuthorPageGrouped, error) {
	author, err := service.GetAuthorBySlug(ctx, authorSlug)
	if err != nil || author == nil {
		return nil, err
	}

	prompts, err := service.store.ListPromptsByAuthor(ctx, author.ID, 0, 0)
	if err != nil {
		return nil, err
	}

	tagged, err := service.assembler.AttachTags(ctx, prompts)
	if err != nil {
		return nil, err
	}

	agents, others := slice.Partition(tagged, func(p Prompt) bool { return p.Type == TypeAgent })

	return &AuthorPageGrouped{
		Author:       *author,
		Prompts:      others,
		Agents:       agents,
		TotalPrompts: len(others),
		TotalAgents:  len(agents),
		CurrentPage:  pagination.For(page, PromptsPerPage).Page,
		TotalPages:   1,
	}, nil
}

// # Prompts

// GetPromptByID returns the prompt with its author and tags, or nil.
func (service *Service) GetPromptByID(ctx context.Context, id string) (*Prompt, error) {
	prompt, err := service.store.GetPromptByID(ctx, id)
	prompt, err = absent(prompt, err)
	if err != nil || prompt == nil {
		return nil, err
	}
	return service.withTags(ctx, prompt)
}

// GetPromptBySlug returns the author's prompt with its author and tags, or nil.
// Agent prompts also carry their tools and per-agent setup URLs.
func (service *Service) GetPromptBySlug(ctx context.Context, authorSlug, promptSlug string) (*Prompt, error) {
	prompt, err := service.store.GetPromptBySlug(ctx, authorSlug, promptSlug)
	prompt, err = absent(prompt, err)
	if err != nil || prompt == nil {
		return nil, err
	}

	if prompt.Type != TypeAgent {
		return service.withTags(ctx, prompt)
	}

	var (
		tagged *Prompt
		tools  []AgentTool
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() (err error) {
		tagged, err = service.withTags(groupCtx, prompt)
		return err
	})
	group.Go(func() (err error) {
		tools, err = service.store.ListToolsByPrompt(groupCtx, prompt.ID)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	tagged.Tools = tools
	service.logger.DebugContext(ctx, "agent_tools_loaded",
		slog.String("prompt_id", prompt.ID),
		slog.Int("tools", len(tools)),
	)
	return tagged, nil
}

func (service *Service) withTags(ctx context.Context, prompt *Prompt) (*Prompt, error) {
	tagged, err := service.assembler.AttachTags(ctx, []Prompt{*prompt})
	if err != nil {
		return nil, err
	}
	return &tagged[0], nil
}
