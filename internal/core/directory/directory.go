// Copyright (c) 2026 Promptlib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package directory serves the public prompt directory: authors, their prompts,
tags and agent tools, read from PostgreSQL.

Layers, leaf first:

  - [Store]: fixed-shape queries (PostgresRepository).
  - [Assembler]: tag attachment and author previews without N+1 queries.
  - [Service]: page-shaped read operations.
  - [CachedService]: the same operations behind the read-through [Caches].
  - [Handler]: thin HTTP handlers that only parse, call and set Cache-Control.
*/
package directory

import "time"

// PromptType classifies a directory prompt.
type PromptType string

const (
	TypePrompt PromptType = "prompt"
	TypeAgent  PromptType = "agent"
	TypeSkill  PromptType = "skill"
)

// Valid reports whether t is one of the known prompt types.
func (t PromptType) Valid() bool {
	switch t {
	case TypePrompt, TypeAgent, TypeSkill:
		return true
	}
	return false
}

// Page sizes and preview bounds.
const (
	AuthorsPerPage       = 10
	PromptsPreviewLimit  = 6
	PromptsPerPage       = 30
	SearchResultsPerPage = 24
)

// Author is a directory author. Read-only from the API's perspective.
type Author struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Slug              string    `json:"slug"`
	PublicDescription *string   `json:"public_description"`
	Link              *string   `json:"link"`
	AvatarURL         *string   `json:"avatar_url"`
	Verified          bool      `json:"verified"`
	Highlighted       bool      `json:"highlighted"`
	CreatedAt         time.Time `json:"created_at"`
}

// Tag labels prompts through the prompt/tag association.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AgentTool is a tool an agent prompt relies on.
type AgentTool struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Slug string  `json:"slug"`
	URL  *string `json:"url"`

	// SetupURL is specific to one agent/tool pairing.
	SetupURL *string `json:"setup_url"`
}

// Prompt is a directory prompt. Slug is unique per author, not globally.
type Prompt struct {
	ID                    string     `json:"id"`
	Title                 string     `json:"title"`
	Slug                  string     `json:"slug"`
	Prompt                string     `json:"prompt"`
	Description           *string    `json:"description"`
	AdditionalInformation *string    `json:"additional_information"`
	AuthorID              string     `json:"author_id"`
	Type                  PromptType `json:"type"`
	CreatedAt             time.Time  `json:"created_at"`

	// Author is joined inline by search and single lookups.
	Author *Author `json:"author,omitempty"`

	Tags  []Tag       `json:"tags"`
	Tools []AgentTool `json:"tools,omitempty"`
}

// # View Models
//
// View models are built fresh per request (cache permitting) and must not be
// mutated once returned: cached instances are shared between requests.

// AuthorWithPrompts is an author with a bounded, newest-first preview.
type AuthorWithPrompts struct {
	Author
	Prompts      []Prompt `json:"prompts"`
	TotalPrompts int      `json:"totalPrompts"`
}

// LibraryPage is the directory front page.
type LibraryPage struct {
	HighlightedAuthors []AuthorWithPrompts `json:"highlightedAuthors"`
	Authors            []AuthorWithPrompts `json:"authors"`
	TotalAuthors       int                 `json:"totalAuthors"`
	CurrentPage        int                 `json:"currentPage"`
	TotalPages         int                 `json:"totalPages"`
}

// SearchResults is one page of prompts matching a query.
type SearchResults struct {
	Prompts      []Prompt `json:"prompts"`
	TotalResults int      `json:"totalResults"`
	CurrentPage  int      `json:"currentPage"`
	TotalPages   int      `json:"totalPages"`
	Query        string   `json:"query"`
}

// AuthorPage is one page of a single author's prompts.
type AuthorPage struct {
	Author       Author   `json:"author"`
	Prompts      []Prompt `json:"prompts"`
	TotalPrompts int      `json:"totalPrompts"`
	CurrentPage  int      `json:"currentPage"`
	TotalPages   int      `json:"totalPages"`
}

// AuthorPageGrouped is every prompt of an author split by type.
//
// TotalPages is always 1: groups are not paginated.
type AuthorPageGrouped struct {
	Author       Author   `json:"author"`
	Prompts      []Prompt `json:"prompts"`
	Agents       []Prompt `json:"agents"`
	TotalPrompts int      `json:"totalPrompts"`
	TotalAgents  int      `json:"totalAgents"`
	CurrentPage  int      `json:"currentPage"`
	TotalPages   int      `json:"totalPages"`
}
