// Copyright (c) 2026 Promptlib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package directory_test

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/taibuivan/promptlib/internal/core/directory"
	"github.com/taibuivan/promptlib/internal/platform/apperr"
)

// fakeStore is an in-memory directory.Store that records every call.
type fakeStore struct {
	mu sync.Mutex

	authors []directory.Author
	prompts []directory.Prompt
	tags    map[string][]directory.Tag
	tools   map[string][]directory.AgentTool

	calls map[string]int
	fail  map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tags:  map[string][]directory.Tag{},
		tools: map[string][]directory.AgentTool{},
		calls: map[string]int{},
		fail:  map[string]error{},
	}
}

var epoch = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func (s *fakeStore) addAuthor(id, name string, highlighted bool) directory.Author {
	author := directory.Author{
		ID:          id,
		Name:        name,
		Slug:        strings.ToLower(strings.ReplaceAll(name, " ", "-")),
		Highlighted: highlighted,
		CreatedAt:   epoch,
	}
	s.authors = append(s.authors, author)
	return author
}

// addPrompt creates a prompt whose creation time grows with age, so later calls are newer.
func (s *fakeStore) addPrompt(id, authorID, title string, promptType directory.PromptType, age int) directory.Prompt {
	prompt := directory.Prompt{
		ID:        id,
		Title:     title,
		Slug:      strings.ToLower(strings.ReplaceAll(title, " ", "-")),
		Prompt:    "Body of " + title,
		AuthorID:  authorID,
		Type:      promptType,
		CreatedAt: epoch.Add(time.Duration(age) * time.Minute),
	}
	s.prompts = append(s.prompts, prompt)
	return prompt
}

func (s *fakeStore) record(method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[method]++
	return s.fail[method]
}

func (s *fakeStore) count(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

func (s *fakeStore) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := 0
	for _, n := range s.calls {
		sum += n
	}
	return sum
}

func (s *fakeStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = map[string]int{}
}

func (s *fakeStore) authorByID(id string) *directory.Author {
	for i := range s.authors {
		if s.authors[i].ID == id {
			a := s.authors[i]
			return &a
		}
	}
	return nil
}

func newestFirst(prompts []directory.Prompt) []directory.Prompt {
	slices.SortStableFunc(prompts, func(a, b directory.Prompt) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return prompts
}

func page[T any](items []T, limit, offset int) []T {
	if limit == 0 {
		return items
	}
	if offset >= len(items) {
		return []T{}
	}
	return items[offset:min(offset+limit, len(items))]
}

func (s *fakeStore) filterAuthors(highlighted bool) []directory.Author {
	var out []directory.Author
	for _, a := range s.authors {
		if a.Highlighted == highlighted {
			out = append(out, a)
		}
	}
	slices.SortStableFunc(out, func(a, b directory.Author) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

func (s *fakeStore) ListHighlightedAuthors(context.Context) ([]directory.Author, error) {
	if err := s.record("ListHighlightedAuthors"); err != nil {
		return nil, err
	}
	return s.filterAuthors(true), nil
}

func (s *fakeStore) ListAuthors(_ context.Context, limit, offset int) ([]directory.Author, error) {
	if err := s.record("ListAuthors"); err != nil {
		return nil, err
	}
	return page(s.filterAuthors(false), limit, offset), nil
}

func (s *fakeStore) CountAuthors(context.Context) (int, error) {
	if err := s.record("CountAuthors"); err != nil {
		return 0, err
	}
	return len(s.filterAuthors(false)), nil
}

func (s *fakeStore) GetAuthorByID(_ context.Context, id string) (*directory.Author, error) {
	if err := s.record("GetAuthorByID"); err != nil {
		return nil, err
	}
	if a := s.authorByID(id); a != nil {
		return a, nil
	}
	return nil, apperr.NotFound("Resource")
}

func (s *fakeStore) GetAuthorBySlug(_ context.Context, slug string) (*directory.Author, error) {
	if err := s.record("GetAuthorBySlug"); err != nil {
		return nil, err
	}
	for _, a := range s.authors {
		if a.Slug == slug {
			return &a, nil
		}
	}
	return nil, apperr.NotFound("Resource")
}

func (s *fakeStore) ListPromptsByAuthors(_ context.Context, authorIDs []string, promptType directory.PromptType) ([]directory.Prompt, error) {
	if err := s.record("ListPromptsByAuthors"); err != nil {
		return nil, err
	}
	var out []directory.Prompt
	for _, p := range s.prompts {
		if slices.Contains(authorIDs, p.AuthorID) && (promptType == "" || p.Type == promptType) {
			out = append(out, p)
		}
	}
	return newestFirst(out), nil
}

func (s *fakeStore) CountPromptsByAuthors(_ context.Context, authorIDs []string, promptType directory.PromptType) (map[string]int, error) {
	if err := s.record("CountPromptsByAuthors"); err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, p := range s.prompts {
		if slices.Contains(authorIDs, p.AuthorID) && (promptType == "" || p.Type == promptType) {
			counts[p.AuthorID]++
		}
	}
	return counts, nil
}

func (s *fakeStore) byAuthor(authorID string) []directory.Prompt {
	var out []directory.Prompt
	for _, p := range s.prompts {
		if p.AuthorID == authorID {
			out = append(out, p)
		}
	}
	return newestFirst(out)
}

func (s *fakeStore) ListPromptsByAuthor(_ context.Context, authorID string, limit, offset int) ([]directory.Prompt, error) {
	if err := s.record("ListPromptsByAuthor"); err != nil {
		return nil, err
	}
	return page(s.byAuthor(authorID), limit, offset), nil
}

func (s *fakeStore) CountPromptsByAuthor(_ context.Context, authorID string) (int, error) {
	if err := s.record("CountPromptsByAuthor"); err != nil {
		return 0, err
	}
	return len(s.byAuthor(authorID)), nil
}

// matches mirrors the ILIKE '%q%' predicate of the SQL store.
func matches(p directory.Prompt, filter directory.SearchFilter) bool {
	q := strings.ToLower(filter.Query)
	description := ""
	if p.Description != nil {
		description = *p.Description
	}
	hit := strings.Contains(strings.ToLower(p.Title), q) ||
		strings.Contains(strings.ToLower(description), q) ||
		strings.Contains(strings.ToLower(p.Prompt), q)
	return hit && (filter.Type == "" || p.Type == filter.Type)
}

func (s *fakeStore) search(filter directory.SearchFilter) []directory.Prompt {
	var out []directory.Prompt
	for _, p := range s.prompts {
		if matches(p, filter) {
			p.Author = s.authorByID(p.AuthorID)
			out = append(out, p)
		}
	}
	return newestFirst(out)
}

func (s *fakeStore) SearchPrompts(_ context.Context, filter directory.SearchFilter, limit, offset int) ([]directory.Prompt, error) {
	if err := s.record("SearchPrompts"); err != nil {
		return nil, err
	}
	return page(s.search(filter), limit, offset), nil
}

func (s *fakeStore) CountSearchPrompts(_ context.Context, filter directory.SearchFilter) (int, error) {
	if err := s.record("CountSearchPrompts"); err != nil {
		return 0, err
	}
	return len(s.search(filter)), nil
}

func (s *fakeStore) GetPromptByID(_ context.Context, id string) (*directory.Prompt, error) {
	if err := s.record("GetPromptByID"); err != nil {
		return nil, err
	}
	for _, p := range s.prompts {
		if p.ID == id {
			p.Author = s.authorByID(p.AuthorID)
			return &p, nil
		}
	}
	return nil, apperr.NotFound("Resource")
}

func (s *fakeStore) GetPromptBySlug(_ context.Context, authorSlug, promptSlug string) (*directory.Prompt, error) {
	if err := s.record("GetPromptBySlug"); err != nil {
		return nil, err
	}
	for _, p := range s.prompts {
		author := s.authorByID(p.AuthorID)
		if author != nil && author.Slug == authorSlug && p.Slug == promptSlug {
			p.Author = author
			return &p, nil
		}
	}
	return nil, apperr.NotFound("Resource")
}

func (s *fakeStore) ListTagsByPrompts(_ context.Context, promptIDs []string) (map[string][]directory.Tag, error) {
	if err := s.record("ListTagsByPrompts"); err != nil {
		return nil, err
	}
	out := map[string][]directory.Tag{}
	for _, id := range promptIDs {
		if tags, ok := s.tags[id]; ok {
			out[id] = tags
		}
	}
	return out, nil
}

func (s *fakeStore) ListToolsByPrompt(_ context.Context, promptID string) ([]directory.AgentTool, error) {
	if err := s.record("ListToolsByPrompt"); err != nil {
		return nil, err
	}
	return s.tools[promptID], nil
}

// seedAuthors adds n non-highlighted authors, each with perAuthor prompts.
func seedAuthors(store *fakeStore, n, perAuthor int) {
	for i := range n {
		authorID := fmt.Sprintf("author-%02d", i)
		store.addAuthor(authorID, fmt.Sprintf("Author %02d", i), false)
		for j := range perAuthor {
			promptID := fmt.Sprintf("%s-prompt-%02d", authorID, j)
			store.addPrompt(promptID, authorID, fmt.Sprintf("Prompt %02d %02d", i, j), directory.TypePrompt, j)
			store.tags[promptID] = []directory.Tag{{ID: "tag-writing", Name: "writing"}}
		}
	}
}
