// Copyright (c) 2026 Promptlib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package directory

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/taibuivan/promptlib/internal/platform/cache"
)

// Family names one read-cache store.
type Family string

const (
	FamilyLibrary Family = "library"
	FamilyAuthor  Family = "author"
	FamilyPrompt  Family = "prompt"
	FamilySearch  Family = "search"
)

// Policies configures the four read-cache families.
type Policies struct {
	Library cache.Policy
	Author  cache.Policy
	Prompt  cache.Policy
	Search  cache.Policy
}

// DefaultPolicies returns the production capacities, lifetimes and advertised headers.
func DefaultPolicies() Policies {
	return Policies{
		Library: cache.Policy{
			Name:                 string(FamilyLibrary),
			MaxEntries:           50,
			TTL:                  3 * time.Hour,
			BrowserMaxAge:        30 * time.Minute,
			EdgeMaxAge:           3 * time.Hour,
			StaleWhileRevalidate: time.Hour,
		},
		Author: cache.Policy{
			Name:                 string(FamilyAuthor),
			MaxEntries:           100,
			TTL:                  time.Hour,
			BrowserMaxAge:        15 * time.Minute,
			EdgeMaxAge:           time.Hour,
			StaleWhileRevalidate: 30 * time.Minute,
		},
		Prompt: cache.Policy{
			Name:                 string(FamilyPrompt),
			MaxEntries:           500,
			TTL:                  12 * time.Hour,
			BrowserMaxAge:        time.Hour,
			EdgeMaxAge:           12 * time.Hour,
			StaleWhileRevalidate: 2 * time.Hour,
		},
		Search: cache.Policy{
			Name:                 string(FamilySearch),
			MaxEntries:           100,
			TTL:                  time.Hour,
			BrowserMaxAge:        15 * time.Minute,
			EdgeMaxAge:           time.Hour,
			StaleWhileRevalidate: 30 * time.Minute,
		},
	}
}

// # Keys

// LibraryKey is "page:<n>", or "<type>:page:<n>" for a typed listing.
func LibraryKey(page int, promptType PromptType) string {
	key := "page:" + strconv.Itoa(page)
	if promptType != "" {
		return string(promptType) + ":" + key
	}
	return key
}

// AuthorKey is "author:<slug>:page:<n>".
func AuthorKey(authorSlug string, page int) string {
	return authorPrefix(authorSlug) + "page:" + strconv.Itoa(page)
}

// AuthorGroupedKey is "author:<slug>:grouped:page:<n>".
func AuthorGroupedKey(authorSlug string, page int) string {
	return authorPrefix(authorSlug) + "grouped:page:" + strconv.Itoa(page)
}

// PromptKey is "prompt:<authorSlug>:<promptSlug>".
func PromptKey(authorSlug, promptSlug string) string {
	return promptPrefix(authorSlug) + keySegment(promptSlug)
}

// SearchKey is "search:<lowercased query>:page:<n>", or
// "search:<type>:<lowercased query>:page:<n>" for a typed search.
func SearchKey(query string, page int, promptType PromptType) string {
	key := keySegment(strings.ToLower(query)) + ":page:" + strconv.Itoa(page)
	if promptType != "" {
		key = string(promptType) + ":" + key
	}
	return "search:" + key
}

func authorPrefix(authorSlug string) string { return "author:" + keySegment(authorSlug) + ":" }
func promptPrefix(authorSlug string) string { return "prompt:" + keySegment(authorSlug) + ":" }

// segmentEscaper percent-encodes the key separator, and the escape character
// itself, so a caller-supplied segment never spans two key fields.
var segmentEscaper = strings.NewReplacer("%", "%25", ":", "%3A")

func keySegment(value string) string {
	return segmentEscaper.Replace(value)
}

// # Stores

// authorView holds either view stored in the author family, so that both share
// one capacity and one slug prefix.
type authorView struct {
	page    *AuthorPage
	grouped *AuthorPageGrouped
}

// Caches holds one store per family.
type Caches struct {
	policies Policies
	library  *cache.Store[*LibraryPage]
	author   *cache.Store[authorView]
	prompt   *cache.Store[*Prompt]
	search   *cache.Store[*SearchResults]
}

// NewCaches builds the four stores. opts apply to every store.
func NewCaches(policies Policies, opts ...cache.Option) (*Caches, error) {
	library, err := cache.New[*LibraryPage](policies.Library, opts...)
	if err != nil {
		return nil, err
	}
	author, err := cache.New[authorView](policies.Author, opts...)
	if err != nil {
		return nil, err
	}
	prompt, err := cache.New[*Prompt](policies.Prompt, opts...)
	if err != nil {
		return nil, err
	}
	search, err := cache.New[*SearchResults](policies.Search, opts...)
	if err != nil {
		return nil, err
	}

	return &Caches{
		policies: policies,
		library:  library,
		author:   author,
		prompt:   prompt,
		search:   search,
	}, nil
}

// Policies returns the configuration the stores were built with.
func (c *Caches) Policies() Policies {
	return c.policies
}

// # Invalidation

// Clear empties one family.
func (c *Caches) Clear(family Family) error {
	switch family {
	case FamilyLibrary:
		c.library.Purge()
	case FamilyAuthor:
		c.author.Purge()
	case FamilyPrompt:
		c.prompt.Purge()
	case FamilySearch:
		c.search.Purge()
	default:
		return fmt.Errorf("directory: unknown cache family %q", family)
	}
	return nil
}

// ClearAll empties every family.
func (c *Caches) ClearAll() {
	c.library.Purge()
	c.author.Purge()
	c.prompt.Purge()
	c.search.Purge()
}

// ClearAuthor drops every author-family entry of authorSlug, or the whole
// family when authorSlug is empty. It returns the number of entries removed,
// or -1 after a full purge.
func (c *Caches) ClearAuthor(authorSlug string) int {
	if authorSlug == "" {
		c.author.Purge()
		return -1
	}
	return c.author.DeletePrefix(authorPrefix(authorSlug))
}

// ClearPrompt drops one prompt entry, every prompt entry of authorSlug when
// promptSlug is empty, or the whole family when both are empty. It returns the
// number of entries removed, or -1 after a full purge.
func (c *Caches) ClearPrompt(authorSlug, promptSlug string) int {
	switch {
	case authorSlug == "":
		c.prompt.Purge()
		return -1
	case promptSlug != "":
		if c.prompt.Delete(PromptKey(authorSlug, promptSlug)) {
			return 1
		}
		return 0
	default:
		return c.prompt.DeletePrefix(promptPrefix(authorSlug))
	}
}

// CacheStats reports occupancy per family.
type CacheStats struct {
	Library cache.Stats `json:"library"`
	Author  cache.Stats `json:"author"`
	Prompt  cache.Stats `json:"prompt"`
	Search  cache.Stats `json:"search"`
}

// Stats reports the size and capacity of every family.
func (c *Caches) Stats() CacheStats {
	return CacheStats{
		Library: c.library.Stats(),
		Author:  c.author.Stats(),
		Prompt:  c.prompt.Stats(),
		Search:  c.search.Stats(),
	}
}

// # Read-Through

// CachedService serves [Reader] calls from [Caches], falling through to next on a miss.
// Nil results (unknown author or prompt) are returned but never stored.
type CachedService struct {
	next   Reader
	caches *Caches
}

// NewCachedService wraps next with caches.
func NewCachedService(next Reader, caches *Caches) *CachedService {
	return &CachedService{next: next, caches: caches}
}

func (service *CachedService) GetLibraryPage(ctx context.Context, page int, promptType PromptType) (*LibraryPage, error) {
	value, _, err := service.caches.library.GetOrFetch(ctx, LibraryKey(page, promptType),
		func(ctx context.Context) (*LibraryPage, bool, error) {
			result, err := service.next.GetLibraryPage(ctx, page, promptType)
			return result, result != nil, err
		})
	return value, err
}

func (service *CachedService) SearchPrompts(ctx context.Context, query string, page int, promptType PromptType) (*SearchResults, error) {
	value, _, err := service.caches.search.GetOrFetch(ctx, SearchKey(query, page, promptType),
		func(ctx context.Context) (*SearchResults, bool, error) {
			result, err := service.next.SearchPrompts(ctx, query, page, promptType)
			return result, result != nil, err
		})
	return value, err
}

func (service *CachedService) GetAuthorPageBySlug(ctx context.Context, authorSlug string, page int) (*AuthorPage, error) {
	value, _, err := service.caches.author.GetOrFetch(ctx, AuthorKey(authorSlug, page),
		func(ctx context.Context) (authorView, bool, error) {
			result, err := service.next.GetAuthorPageBySlug(ctx, authorSlug, page)
			return authorView{page: result}, result != nil, err
		})
	return value.page, err
}

func (service *CachedService) GetAuthorPageGrouped(ctx context.Context, authorSlug string, page int) (*AuthorPageGrouped, error) {
	value, _, err := service.caches.author.GetOrFetch(ctx, AuthorGroupedKey(authorSlug, page),
		func(ctx context.Context) (authorView, bool, error) {
			result, err := service.next.GetAuthorPageGrouped(ctx, authorSlug, page)
			return authorView{grouped: result}, result != nil, err
		})
	return value.grouped, err
}

func (service *CachedService) GetPromptBySlug(ctx context.Context, authorSlug, promptSlug string) (*Prompt, error) {
	value, _, err := service.caches.prompt.GetOrFetch(ctx, PromptKey(authorSlug, promptSlug),
		func(ctx context.Context) (*Prompt, bool, error) {
			result, err := service.next.GetPromptBySlug(ctx, authorSlug, promptSlug)
			return result, result != nil, err
		})
	return value, err
}
