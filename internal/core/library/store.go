// Copyright (c) 2026 Promptlib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"

	"github.com/taibuivan/promptlib/internal/platform/apperr"
)

// Store persists the library collections.
//
// Lookups of a missing record return an [apperr.AppError] with code NOT_FOUND.
// Implementations copy slices on write so no caller-owned slice is retained.
type Store interface {
	// Upgrade prepares the collections and records [SchemaVersion]. It is idempotent.
	Upgrade(ctx context.Context) error

	// ListPrompts returns every prompt, most recently updated first.
	ListPrompts(ctx context.Context) ([]Prompt, error)
	GetPrompt(ctx context.Context, id string) (*Prompt, error)
	PutPrompt(ctx context.Context, prompt Prompt) error
	DeletePrompt(ctx context.Context, id string) (bool, error)

	// ListTags returns every tag ordered by name.
	ListTags(ctx context.Context) ([]Tag, error)
	GetTag(ctx context.Context, id string) (*Tag, error)
	// GetTagBySlug returns the tag with slug. Ties resolve to the smallest id.
	GetTagBySlug(ctx context.Context, slug string) (*Tag, error)
	PutTag(ctx context.Context, tag Tag) error
	DeleteTag(ctx context.Context, id string) (bool, error)

	GetSettings(ctx context.Context) (*Settings, error)
	PutSettings(ctx context.Context, settings Settings) error
}

var (
	errPromptNotFound   = apperr.NotFound("Prompt")
	errTagNotFound      = apperr.NotFound("Tag")
	errSettingsNotFound = apperr.NotFound("Settings")
)

func clonePrompt(prompt Prompt) Prompt {
	prompt.TagIDs = cloneIDs(prompt.TagIDs)
	return prompt
}

// cloneIDs copies ids, normalising nil to an empty slice so it encodes as [].
func cloneIDs(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}
