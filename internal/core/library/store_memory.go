// Copyright (c) 2026 Promptlib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"cmp"
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps the library in process memory. It backs tests and
// single-node deployments started with LIBRARY_BACKEND=memory.
type MemoryStore struct {
	mu       sync.RWMutex
	prompts  map[string]Prompt
	tags     map[string]Tag
	settings *Settings
	version  int
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		prompts: make(map[string]Prompt),
		tags:    make(map[string]Tag),
	}
}

// Upgrade records the schema version. Memory collections always exist.
func (store *MemoryStore) Upgrade(_ context.Context) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.version = max(store.version, SchemaVersion)
	return nil
}

// Version reports the recorded schema version, zero before the first upgrade.
func (store *MemoryStore) Version() int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.version
}

// # Prompts

func (store *MemoryStore) ListPrompts(_ context.Context) ([]Prompt, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	prompts := make([]Prompt, 0, len(store.prompts))
	for _, prompt := range store.prompts {
		prompts = append(prompts, clonePrompt(prompt))
	}

	slices.SortFunc(prompts, func(a, b Prompt) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return prompts, nil
}

func (store *MemoryStore) GetPrompt(_ context.Context, id string) (*Prompt, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	prompt, found := store.prompts[id]
	if !found {
		return nil, errPromptNotFound
	}
	prompt = clonePrompt(prompt)
	return &prompt, nil
}

func (store *MemoryStore) PutPrompt(_ context.Context, prompt Prompt) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.prompts[prompt.ID] = clonePrompt(prompt)
	return nil
}

func (store *MemoryStore) DeletePrompt(_ context.Context, id string) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if _, found := store.prompts[id]; !found {
		return false, nil
	}
	delete(store.prompts, id)
	return true, nil
}

// # Tags

func (store *MemoryStore) ListTags(_ context.Context) ([]Tag, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	tags := make([]Tag, 0, len(store.tags))
	for _, tag := range store.tags {
		tags = append(tags, tag)
	}

	slices.SortFunc(tags, func(a, b Tag) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return tags, nil
}

func (store *MemoryStore) GetTag(_ context.Context, id string) (*Tag, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	tag, found := store.tags[id]
	if !found {
		return nil, errTagNotFound
	}
	return &tag, nil
}

func (store *MemoryStore) GetTagBySlug(_ context.Context, slug string) (*Tag, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	var found *Tag
	for _, tag := range store.tags {
		if tag.Slug == slug && (found == nil || tag.ID < found.ID) {
			match := tag
			found = &match
		}
	}
	if found == nil {
		return nil, errTagNotFound
	}
	return found, nil
}

func (store *MemoryStore) PutTag(_ context.Context, tag Tag) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.tags[tag.ID] = tag
	return nil
}

func (store *MemoryStore) DeleteTag(_ context.Context, id string) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if _, found := store.tags[id]; !found {
		return false, nil
	}
	delete(store.tags, id)
	return true, nil
}

// # Settings

func (store *MemoryStore) GetSettings(_ context.Context) (*Settings, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	if store.settings == nil {
		return nil, errSettingsNotFound
	}
	settings := *store.settings
	return &settings, nil
}

func (store *MemoryStore) PutSettings(_ context.Context, settings Settings) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.settings = &settings
	return nil
}
