// Copyright (c) 2026 Promptlib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package library implements the personal prompt library.

A library holds a user's own prompts and tags plus a single settings record.
Records are kept in a key-value [Store] (Redis in production, memory for tests
and single-node runs) and can be exported to, and imported from, a versioned
JSON document.

Collections:

  - prompts: ordered by most recent update.
  - tags: ordered by name.
  - settings: one record keyed by [SettingsVersion].
*/
package library

import "time"

// # Versions

const (
	// SchemaVersion is the storage layout written by [Store.Upgrade].
	SchemaVersion = 1

	// SettingsVersion keys the single settings record.
	SettingsVersion = 1

	// ExportVersion is the only export document version accepted by import.
	ExportVersion = 1
)

// # Settings Values

const (
	ThemeSystem = "system"
	ThemeLight  = "light"
	ThemeDark   = "dark"

	CardSizeMedium = "m"
	CardSizeLarge  = "l"
)

// # Entities

// Prompt is a user-authored markdown prompt.
type Prompt struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Markdown  string    `json:"markdown"`
	TagIDs    []string  `json:"tagIds"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Tag labels prompts. Slug is derived from Name on every write.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
}

// UISettings groups presentation preferences.
type UISettings struct {
	CardSize string `json:"cardSize"`
}

// Settings is the single per-library preferences record.
type Settings struct {
	Version int        `json:"version"`
	Theme   string     `json:"theme"`
	UI      UISettings `json:"ui"`
}

// DefaultSettings is returned when no settings record has been stored yet.
func DefaultSettings() Settings {
	return Settings{
		Version: SettingsVersion,
		Theme:   ThemeSystem,
		UI:      UISettings{CardSize: CardSizeMedium},
	}
}

// # Inputs

// PromptInput carries the fields of a new prompt.
type PromptInput struct {
	Title    string   `json:"title"`
	Markdown string   `json:"markdown"`
	TagIDs   []string `json:"tagIds"`
}

// PromptPatch updates only the non-nil fields of a prompt.
type PromptPatch struct {
	Title    *string   `json:"title"`
	Markdown *string   `json:"markdown"`
	TagIDs   *[]string `json:"tagIds"`
}

// SettingsPatch updates only the non-nil settings. The version is never patchable.
type SettingsPatch struct {
	Theme *string `json:"theme"`
	UI    *struct {
		CardSize *string `json:"cardSize"`
	} `json:"ui"`
}

// # Export / Import

// ExportData is the portable library document.
type ExportData struct {
	ExportVersion int        `json:"exportVersion"`
	ExportedAt    string     `json:"exportedAt"`
	Data          ExportBody `json:"data"`
}

// ExportBody holds the exported collections.
type ExportBody struct {
	Prompts []Prompt `json:"prompts"`
	Tags    []Tag    `json:"tags"`
}

// ImportResult counts what an import wrote. Colliding ids are remapped, not
// skipped, so the skipped counters stay zero for well-formed documents.
type ImportResult struct {
	PromptsImported int `json:"promptsImported"`
	TagsImported    int `json:"tagsImported"`
	PromptsSkipped  int `json:"promptsSkipped"`
	TagsSkipped     int `json:"tagsSkipped"`
}
