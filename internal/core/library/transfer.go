// Copyright (c) 2026 Promptlib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/promptlib/internal/platform/apperr"
)

// exportTimeLayout renders millisecond UTC stamps such as 2026-01-02T03:04:05.000Z.
const exportTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// ErrInvalidExport is returned when an import document fails [ValidateExport].
var ErrInvalidExport = apperr.ValidationError("Invalid export document")

// Export snapshots every prompt and tag into an [ExportData] document.
func (service *Service) Export(ctx context.Context) (*ExportData, error) {
	var (
		prompts []Prompt
		tags    []Tag
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() (err error) {
		prompts, err = service.store.ListPrompts(groupCtx)
		return err
	})
	group.Go(func() (err error) {
		tags, err = service.store.ListTags(groupCtx)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return &ExportData{
		ExportVersion: ExportVersion,
		ExportedAt:    service.timestamp().Format(exportTimeLayout),
		Data:          ExportBody{Prompts: prompts, Tags: tags},
	}, nil
}

// ValidateExport reports whether raw has the shape of an export document:
// exportVersion exactly 1, a string exportedAt and prompts/tags arrays.
// Records inside the arrays are checked when decoded by [Service.Import].
func ValidateExport(raw []byte) bool {
	var document struct {
		ExportVersion json.RawMessage `json:"exportVersion"`
		ExportedAt    json.RawMessage `json:"exportedAt"`
		Data          *struct {
			Prompts json.RawMessage `json:"prompts"`
			Tags    json.RawMessage `json:"tags"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &document); err != nil {
		return false
	}

	var version float64
	if err := json.Unmarshal(document.ExportVersion, &version); err != nil || version != ExportVersion {
		return false
	}

	var exportedAt string
	if err := json.Unmarshal(document.ExportedAt, &exportedAt); err != nil {
		return false
	}

	if document.Data == nil {
		return false
	}
	return isArray(document.Data.Prompts) && isArray(document.Data.Tags)
}

func isArray(raw json.RawMessage) bool {
	return strings.HasPrefix(strings.TrimSpace(string(raw)), "[")
}

// Import validates and decodes raw, then writes its tags followed by its
// prompts. Nothing is written when validation or decoding fails.
//
// A record whose id already exists (in the store, or earlier in the same
// document) is stored under a fresh id. Prompt tag references follow the
// remapped tag ids. Records without an id are skipped.
func (service *Service) Import(ctx context.Context, raw []byte) (*ImportResult, error) {
	if !ValidateExport(raw) {
		return nil, ErrInvalidExport
	}

	var document ExportData
	if err := json.Unmarshal(raw, &document); err != nil {
		invalid := apperr.ValidationError("Invalid export document")
		invalid.Cause = err
		return nil, invalid
	}

	existingPrompts, err := service.store.ListPrompts(ctx)
	if err != nil {
		return nil, err
	}
	existingTags, err := service.store.ListTags(ctx)
	if err != nil {
		return nil, err
	}

	promptIDs := make(map[string]struct{}, len(existingPrompts))
	for _, prompt := range existingPrompts {
		promptIDs[prompt.ID] = struct{}{}
	}
	tagIDs := make(map[string]struct{}, len(existingTags))
	for _, tag := range existingTags {
		tagIDs[tag.ID] = struct{}{}
	}

	result := &ImportResult{}
	remapped := make(map[string]string, len(document.Data.Tags))

	for _, tag := range document.Data.Tags {
		if tag.ID == "" {
			result.TagsSkipped++
			continue
		}

		originalID := tag.ID
		tag.ID = freshID(tagIDs, tag.ID)
		remapped[originalID] = tag.ID

		if err := service.store.PutTag(ctx, tag); err != nil {
			return nil, err
		}
		tagIDs[tag.ID] = struct{}{}
		result.TagsImported++
	}

	for _, prompt := range document.Data.Prompts {
		if prompt.ID == "" {
			result.PromptsSkipped++
			continue
		}

		prompt.ID = freshID(promptIDs, prompt.ID)
		references := make([]string, len(prompt.TagIDs))
		for i, tagID := range prompt.TagIDs {
			if newID, found := remapped[tagID]; found {
				tagID = newID
			}
			references[i] = tagID
		}
		prompt.TagIDs = references

		if err := service.store.PutPrompt(ctx, prompt); err != nil {
			return nil, err
		}
		promptIDs[prompt.ID] = struct{}{}
		result.PromptsImported++
	}

	service.logger.InfoContext(ctx, "library_imported",
		slog.Int("prompts_imported", result.PromptsImported),
		slog.Int("tags_imported", result.TagsImported),
		slog.Int("prompts_skipped", result.PromptsSkipped),
		slog.Int("tags_skipped", result.TagsSkipped),
	)

	return result, nil
}

// freshID returns id unless it is taken, in which case it returns a new random id.
func freshID(taken map[string]struct{}, id string) string {
	if _, found := taken[id]; found {
		return uuid.NewString()
	}
	return id
}
