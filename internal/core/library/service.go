// Copyright (c) 2026 Promptlib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/promptlib/internal/platform/dberr"
	"github.com/taibuivan/promptlib/internal/platform/validate"
	"github.com/taibuivan/promptlib/pkg/slice"
	"github.com/taibuivan/promptlib/pkg/slug"
	"github.com/taibuivan/promptlib/pkg/uuidv7"
)

// Field limits for library writes.
const (
	MaxTitleLength   = 200
	MaxTagNameLength = 50
)

// Service implements the library operations over a [Store].
//
// Lookups that find nothing return a nil record and a nil error, and deletes
// report whether anything was removed.
type Service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a [Service].
type Option func(*Service)

// WithClock replaces the time source used for created-at and updated-at stamps.
func WithClock(now func() time.Time) Option {
	return func(service *Service) { service.now = now }
}

// NewService creates a library service.
func NewService(store Store, logger *slog.Logger, opts ...Option) *Service {
	service := &Service{store: store, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// timestamp truncates to milliseconds so stored times survive a JSON round trip
// and match the precision of the updated-at ordering.
func (service *Service) timestamp() time.Time {
	return service.now().UTC().Truncate(time.Millisecond)
}

func absent[T any](value *T, err error) (*T, error) {
	if dberr.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// # Prompts

// ListPrompts returns every prompt, most recently updated first.
func (service *Service) ListPrompts(ctx context.Context) ([]Prompt, error) {
	return service.store.ListPrompts(ctx)
}

// GetPrompt returns the prompt, or nil when it does not exist.
func (service *Service) GetPrompt(ctx context.Context, id string) (*Prompt, error) {
	prompt, err := service.store.GetPrompt(ctx, id)
	return absent(prompt, err)
}

// CreatePrompt stores a new prompt with fresh id and timestamps.
func (service *Service) CreatePrompt(ctx context.Context, input PromptInput) (*Prompt, error) {
	validator := &validate.Validator{}
	validator.Required("title", input.Title).
		MaxLen("title", input.Title, MaxTitleLength).
		UUIDs("tagIds", input.TagIDs)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	now := service.timestamp()
	prompt := Prompt{
		ID:        uuidv7.New(),
		Title:     strings.TrimSpace(input.Title),
		Markdown:  input.Markdown,
		TagIDs:    cloneIDs(input.TagIDs),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := service.store.PutPrompt(ctx, prompt); err != nil {
		return nil, err
	}
	return &prompt, nil
}

// UpdatePrompt applies patch and bumps the updated-at stamp. It returns nil
// when the prompt does not exist.
func (service *Service) UpdatePrompt(ctx context.Context, id string, patch PromptPatch) (*Prompt, error) {
	validator := &validate.Validator{}
	if patch.Title != nil {
		validator.Required("title", *patch.Title).MaxLen("title", *patch.Title, MaxTitleLength)
	}
	if patch.TagIDs != nil {
		validator.UUIDs("tagIds", *patch.TagIDs)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	prompt, err := service.GetPrompt(ctx, id)
	if err != nil || prompt == nil {
		return nil, err
	}

	if patch.Title != nil {
		prompt.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Markdown != nil {
		prompt.Markdown = *patch.Markdown
	}
	if patch.TagIDs != nil {
		prompt.TagIDs = cloneIDs(*patch.TagIDs)
	}
	prompt.UpdatedAt = service.timestamp()

	if err := service.store.PutPrompt(ctx, *prompt); err != nil {
		return nil, err
	}
	return prompt, nil
}

// DeletePrompt removes the prompt and reports whether it existed.
func (service *Service) DeletePrompt(ctx context.Context, id string) (bool, error) {
	return service.store.DeletePrompt(ctx, id)
}

// SearchPrompts returns the prompts whose title or markdown contains query
// (case-insensitive) and that carry every tag in tagIDs. Order follows
// [Service.ListPrompts].
func (service *Service) SearchPrompts(ctx context.Context, query string, tagIDs []string) ([]Prompt, error) {
	prompts, err := service.store.ListPrompts(ctx)
	if err != nil {
		return nil, err
	}
	matcher := newMatcher(query, tagIDs)
	return slice.Filter(prompts, matcher.matches), nil
}

// # Tags

// ListTags returns every tag ordered by name.
func (service *Service) ListTags(ctx context.Context) ([]Tag, error) {
	return service.store.ListTags(ctx)
}

// GetTag returns the tag, or nil when it does not exist.
func (service *Service) GetTag(ctx context.Context, id string) (*Tag, error) {
	tag, err := service.store.GetTag(ctx, id)
	return absent(tag, err)
}

// GetTagBySlug returns the tag with slug, or nil when none exists.
func (service *Service) GetTagBySlug(ctx context.Context, tagSlug string) (*Tag, error) {
	tag, err := service.store.GetTagBySlug(ctx, tagSlug)
	return absent(tag, err)
}

// GetTagsByIDs returns the tags for ids in the given order, skipping missing ones.
func (service *Service) GetTagsByIDs(ctx context.Context, ids []string) ([]Tag, error) {
	tags := make([]Tag, 0, len(ids))
	for _, id := range ids {
		tag, err := service.GetTag(ctx, id)
		if err != nil {
			return nil, err
		}
		if tag != nil {
			tags = append(tags, *tag)
		}
	}
	return tags, nil
}

// CreateTag stores a tag named after the trimmed name with a derived slug.
func (service *Service) CreateTag(ctx context.Context, name string) (*Tag, error) {
	if err := validateTagName(name); err != nil {
		return nil, err
	}

	tag := Tag{
		ID:        uuidv7.New(),
		Name:      strings.TrimSpace(name),
		Slug:      slug.From(name),
		CreatedAt: service.timestamp(),
	}

	if err := service.store.PutTag(ctx, tag); err != nil {
		return nil, err
	}
	return &tag, nil
}

// UpdateTag renames the tag and regenerates its slug. It returns nil when the
// tag does not exist.
func (service *Service) UpdateTag(ctx context.Context, id, name string) (*Tag, error) {
	if err := validateTagName(name); err != nil {
		return nil, err
	}

	tag, err := service.GetTag(ctx, id)
	if err != nil || tag == nil {
		return nil, err
	}

	tag.Name = strings.TrimSpace(name)
	tag.Slug = slug.From(name)

	if err := service.store.PutTag(ctx, *tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// DeleteTag removes the tag and reports whether it existed. Prompts keep
// referencing the id; [Service.GetTagsByIDs] skips it from then on.
func (service *Service) DeleteTag(ctx context.Context, id string) (bool, error) {
	return service.store.DeleteTag(ctx, id)
}

func validateTagName(name string) error {
	validator := &validate.Validator{}
	validator.Required("name", name).MaxLen("name", strings.TrimSpace(name), MaxTagNameLength)
	return validator.Err()
}

// # Settings

// GetSettings returns the stored settings, or [DefaultSettings] when none exist.
func (service *Service) GetSettings(ctx context.Context) (*Settings, error) {
	settings, err := service.store.GetSettings(ctx)
	if dberr.IsNotFound(err) {
		defaults := DefaultSettings()
		return &defaults, nil
	}
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// UpdateSettings merges patch over the current settings. The version is always
// [SettingsVersion].
func (service *Service) UpdateSettings(ctx context.Context, patch SettingsPatch) (*Settings, error) {
	validator := &validate.Validator{}
	if patch.Theme != nil {
		validator.OneOf("theme", *patch.Theme, ThemeSystem, ThemeLight, ThemeDark)
	}
	if patch.UI != nil && patch.UI.CardSize != nil {
		validator.OneOf("ui.cardSize", *patch.UI.CardSize, CardSizeMedium, CardSizeLarge)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	settings, err := service.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	if patch.Theme != nil {
		settings.Theme = *patch.Theme
	}
	if patch.UI != nil && patch.UI.CardSize != nil {
		settings.UI.CardSize = *patch.UI.CardSize
	}
	settings.Version = SettingsVersion

	if err := service.store.PutSettings(ctx, *settings); err != nil {
		return nil, err
	}
	return settings, nil
}
