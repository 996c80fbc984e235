// Copyright (c) 2026 Promptlib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/promptlib/internal/platform/apperr"
	"github.com/taibuivan/promptlib/internal/platform/constants"
	"github.com/taibuivan/promptlib/internal/platform/validate"
)

// Scope selects what an [Invalidation] clears.
type Scope string

const (
	ScopeAll     Scope = "all"
	ScopeLibrary Scope = "library"
	ScopeAuthor  Scope = "author"
	ScopePrompt  Scope = "prompt"
	ScopeSearch  Scope = "search"
)

// Invalidation describes a read-cache flush after the directory data changed.
//
// For ScopeAuthor an AuthorSlug narrows the flush to that author. For
// ScopePrompt an AuthorSlug narrows it to the author's prompts, and a
// PromptSlug further to one prompt.
type Invalidation struct {
	Scope      Scope  `json:"scope"`
	AuthorSlug string `json:"authorSlug,omitempty"`
	PromptSlug string `json:"promptSlug,omitempty"`
}

// Validate checks the scope and that slugs are only given where they apply.
func (inv Invalidation) Validate() error {
	validator := &validate.Validator{}

	validator.OneOf("scope", string(inv.Scope),
		string(ScopeAll), string(ScopeLibrary), string(ScopeAuthor), string(ScopePrompt), string(ScopeSearch))

	narrowable := inv.Scope == ScopeAuthor || inv.Scope == ScopePrompt
	validator.Custom("authorSlug", inv.AuthorSlug != "" && !narrowable, "Only allowed for scope author or prompt")
	validator.Custom("promptSlug", inv.PromptSlug != "" && inv.Scope != ScopePrompt, "Only allowed for scope prompt")
	validator.Custom("promptSlug", inv.PromptSlug != "" && inv.AuthorSlug == "", "Requires authorSlug")

	return validator.Err()
}

// Apply performs inv on the stores. It returns the number of entries removed
// by a narrowed flush, or -1 when whole stores were purged.
func (c *Caches) Apply(inv Invalidation) int {
	switch inv.Scope {
	case ScopeAuthor:
		return c.ClearAuthor(inv.AuthorSlug)
	case ScopePrompt:
		return c.ClearPrompt(inv.AuthorSlug, inv.PromptSlug)
	case ScopeLibrary:
		c.library.Purge()
	case ScopeSearch:
		c.search.Purge()
	default:
		c.ClearAll()
	}
	return -1
}

// message is the pub/sub payload; Origin lets an instance skip its own broadcasts.
type message struct {
	Origin string `json:"origin"`
	Invalidation
}

// Invalidator applies invalidations locally and relays them to the other API
// instances over Redis pub/sub.
type Invalidator struct {
	caches  *Caches
	client  redis.UniversalClient
	channel string
	origin  string
	logger  *slog.Logger
}

// NewInvalidator creates an invalidator for caches. A nil client keeps
// invalidations local to this process.
func NewInvalidator(caches *Caches, client redis.UniversalClient, logger *slog.Logger) *Invalidator {
	return &Invalidator{
		caches:  caches,
		client:  client,
		channel: constants.RedisChannelCacheInvalidate,
		origin:  uuid.NewString(),
		logger:  logger,
	}
}

// Invalidate validates inv, applies it to the local stores and broadcasts it.
//
// The local flush happens even when publishing fails; the returned error then
// means other instances may still serve the old views until their TTL runs out.
func (invalidator *Invalidator) Invalidate(ctx context.Context, inv Invalidation) (int, error) {
	if err := inv.Validate(); err != nil {
		return 0, err
	}

	removed := invalidator.caches.Apply(inv)
	invalidator.logger.InfoContext(ctx, "cache_invalidated",
		slog.String("scope", string(inv.Scope)),
		slog.String("author_slug", inv.AuthorSlug),
		slog.String("prompt_slug", inv.PromptSlug),
		slog.Int("removed", removed),
	)

	if invalidator.client == nil {
		return removed, nil
	}

	payload, err := json.Marshal(message{Origin: invalidator.origin, Invalidation: inv})
	if err != nil {
		return removed, apperr.Internal(fmt.Errorf("encode invalidation: %w", err))
	}

	if err := invalidator.client.Publish(ctx, invalidator.channel, payload).Err(); err != nil {
		return removed, apperr.Internal(fmt.Errorf("publish invalidation: %w", err))
	}
	return removed, nil
}

// Run applies invalidations broadcast by other instances until ctx is done.
// It returns nil on cancellation and the subscription error otherwise.
func (invalidator *Invalidator) Run(ctx context.Context) error {
	if invalidator.client == nil {
		<-ctx.Done()
		return nil
	}

	subscription := invalidator.client.Subscribe(ctx, invalidator.channel)
	defer subscription.Close()

	// Wait for the subscription confirmation so no broadcast is missed after Run reports ready
	if _, err := subscription.Receive(ctx); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil
		}
		return fmt.Errorf("directory: subscribe %s: %w", invalidator.channel, err)
	}
	invalidator.logger.Info("cache_invalidation_subscribed", slog.String("channel", invalidator.channel))

	messages := subscription.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case received, ok := <-messages:
			if !ok {
				return nil
			}
			invalidator.handle(ctx, received.Payload)
		}
	}
}

func (invalidator *Invalidator) handle(ctx context.Context, payload string) {
	var msg message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		invalidator.logger.WarnContext(ctx, "cache_invalidation_malformed", slog.Any("error", err))
		return
	}

	if msg.Origin == invalidator.origin {
		return
	}

	if err := msg.Invalidation.Validate(); err != nil {
		invalidator.logger.WarnContext(ctx, "cache_invalidation_rejected",
			slog.String("origin", msg.Origin),
			slog.Any("error", err),
		)
		return
	}

	removed := invalidator.caches.Apply(msg.Invalidation)
	invalidator.logger.InfoContext(ctx, "cache_invalidation_applied",
		slog.String("origin", msg.Origin),
		slog.String("scope", string(msg.Scope)),
		slog.Int("removed", removed),
	)
}
