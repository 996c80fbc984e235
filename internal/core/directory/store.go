// Copyright (c) 2026 Promptlib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package directory

import "context"

// SearchFilter narrows a prompt search.
type SearchFilter struct {
	// Query is matched case-insensitively as a substring of title, description or body.
	Query string

	// Type restricts results to one prompt type; empty matches every type.
	Type PromptType
}

// Store is the fixed-shape query surface of the directory database.
//
// Every method issues exactly one query. Methods taking id sets are used by
// the [Assembler] to stay N+1 free; callers never pass an empty set.
//
// Single-row lookups return a not-found [apperr.AppError] (see dberr.IsNotFound)
// when nothing matches. An empty PromptType means "any type".
type Store interface {
	ListHighlightedAuthors(ctx context.Context) ([]Author, error)
	ListAuthors(ctx context.Context, limit, offset int) ([]Author, error)
	CountAuthors(ctx context.Context) (int, error)

	GetAuthorByID(ctx context.Context, id string) (*Author, error)
	GetAuthorBySlug(ctx context.Context, slug string) (*Author, error)

	// ListPromptsByAuthors returns every prompt of the given authors, newest first.
	ListPromptsByAuthors(ctx context.Context, authorIDs []string, promptType PromptType) ([]Prompt, error)
	CountPromptsByAuthors(ctx context.Context, authorIDs []string, promptType PromptType) (map[string]int, error)

	// ListPromptsByAuthor returns one page of an author's prompts, newest first.
	// A limit of 0 returns every prompt.
	ListPromptsByAuthor(ctx context.Context, authorID string, limit, offset int) ([]Prompt, error)
	CountPromptsByAuthor(ctx context.Context, authorID string) (int, error)

	// SearchPrompts returns one page of matches, newest first, with the author joined inline.
	SearchPrompts(ctx context.Context, filter SearchFilter, limit, offset int) ([]Prompt, error)
	CountSearchPrompts(ctx context.Context, filter SearchFilter) (int, error)

	GetPromptByID(ctx context.Context, id string) (*Prompt, error)
	GetPromptBySlug(ctx context.Context, authorSlug, promptSlug string) (*Prompt, error)

	// ListTagsByPrompts fetches the tags of every given prompt in one association query.
	ListTagsByPrompts(ctx context.Context, promptIDs []string) (map[string][]Tag, error)
	ListToolsByPrompt(ctx context.Context, promptID string) ([]AgentTool, error)
}
