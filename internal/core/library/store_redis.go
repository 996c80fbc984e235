// Copyright (c) 2026 Promptlib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/promptlib/internal/platform/apperr"
	"github.com/taibuivan/promptlib/internal/platform/constants"
	"github.com/taibuivan/promptlib/internal/platform/dberr"
)

// Key layout under the library prefix:
//
//	prompts             hash   id -> JSON prompt
//	prompts:by-updated  zset   id scored by updated-at (unix ms)
//	tags                hash   id -> JSON tag
//	tags:by-name        zset   "name\x00id", all scores 0 (lexical)
//	tags:by-slug        zset   "slug\x00id", all scores 0 (lexical)
//	settings            hash   version -> JSON settings
//	schema              string schema version
const (
	keyPrompts          = "prompts"
	keyPromptsByUpdated = "prompts:by-updated"
	keyTags             = "tags"
	keyTagsByName       = "tags:by-name"
	keyTagsBySlug       = "tags:by-slug"
	keySettings         = "settings"
	keySchema           = "schema"

	indexSeparator = "\x00"
)

// RedisStore keeps the library in Redis hashes with sorted-set orderings.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a store rooted at [constants.RedisPrefixLibrary].
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return NewRedisStoreWithPrefix(client, constants.RedisPrefixLibrary)
}

// NewRedisStoreWithPrefix creates a store rooted at prefix, which lets several
// libraries share one Redis database.
func NewRedisStoreWithPrefix(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (store *RedisStore) key(name string) string {
	return store.prefix + name
}

func wrap(err error, action string) error {
	return apperr.Internal(fmt.Errorf("library: %s: %w", action, err))
}

// # Schema

// Upgrade rebuilds the ordering indexes from the record hashes when the stored
// schema version is older than [SchemaVersion], then records the new version.
func (store *RedisStore) Upgrade(ctx context.Context) error {
	version, err := store.Version(ctx)
	if err != nil {
		return err
	}
	if version >= SchemaVersion {
		return nil
	}

	prompts, err := store.client.HGetAll(ctx, store.key(keyPrompts)).Result()
	if err != nil {
		return wrap(err, "upgrade prompts")
	}
	tags, err := store.client.HGetAll(ctx, store.key(keyTags)).Result()
	if err != nil {
		return wrap(err, "upgrade tags")
	}

	_, err = store.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, store.key(keyPromptsByUpdated), store.key(keyTagsByName), store.key(keyTagsBySlug))

		for _, raw := range prompts {
			var prompt Prompt
			if err := json.Unmarshal([]byte(raw), &prompt); err != nil {
				return err
			}
			pipe.ZAdd(ctx, store.key(keyPromptsByUpdated), updatedMember(prompt))
		}
		for _, raw := range tags {
			var tag Tag
			if err := json.Unmarshal([]byte(raw), &tag); err != nil {
				return err
			}
			store.indexTag(ctx, pipe, tag)
		}

		pipe.Set(ctx, store.key(keySchema), SchemaVersion, 0)
		return nil
	})
	if err != nil {
		return wrap(err, "upgrade")
	}
	return nil
}

// Version reports the recorded schema version, zero before the first upgrade.
func (store *RedisStore) Version(ctx context.Context) (int, error) {
	version, err := store.client.Get(ctx, store.key(keySchema)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, wrap(err, "read schema version")
	}
	return version, nil
}

// # Prompts

func (store *RedisStore) ListPrompts(ctx context.Context) ([]Prompt, error) {
	ids, err := store.client.ZRevRange(ctx, store.key(keyPromptsByUpdated), 0, -1).Result()
	if err != nil {
		return nil, wrap(err, "list prompts")
	}
	return loadAll[Prompt](ctx, store, keyPrompts, ids)
}

func (store *RedisStore) GetPrompt(ctx context.Context, id string) (*Prompt, error) {
	return load[Prompt](ctx, store, keyPrompts, id, errPromptNotFound)
}

func (store *RedisStore) PutPrompt(ctx context.Context, prompt Prompt) error {
	prompt = clonePrompt(prompt)
	raw, err := json.Marshal(prompt)
	if err != nil {
		return wrap(err, "encode prompt")
	}

	_, err = store.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, store.key(keyPrompts), prompt.ID, raw)
		pipe.ZAdd(ctx, store.key(keyPromptsByUpdated), updatedMember(prompt))
		return nil
	})
	if err != nil {
		return wrap(err, "put prompt")
	}
	return nil
}

func (store *RedisStore) DeletePrompt(ctx context.Context, id string) (bool, error) {
	var removed *redis.IntCmd
	_, err := store.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.HDel(ctx, store.key(keyPrompts), id)
		pipe.ZRem(ctx, store.key(keyPromptsByUpdated), id)
		return nil
	})
	if err != nil {
		return false, wrap(err, "delete prompt")
	}
	return removed.Val() > 0, nil
}

// # Tags

func (store *RedisStore) ListTags(ctx context.Context) ([]Tag, error) {
	members, err := store.client.ZRange(ctx, store.key(keyTagsByName), 0, -1).Result()
	if err != nil {
		return nil, wrap(err, "list tags")
	}

	ids := make([]string, len(members))
	for i, member := range members {
		ids[i] = memberID(member)
	}
	return loadAll[Tag](ctx, store, keyTags, ids)
}

func (store *RedisStore) GetTag(ctx context.Context, id string) (*Tag, error) {
	return load[Tag](ctx, store, keyTags, id, errTagNotFound)
}

// GetTagBySlug reads the first slug index entry in the range [slug\x00, slug\x01).
func (store *RedisStore) GetTagBySlug(ctx context.Context, slug string) (*Tag, error) {
	members, err := store.client.ZRangeByLex(ctx, store.key(keyTagsBySlug), &redis.ZRangeBy{
		Min:   "[" + slug + indexSeparator,
		Max:   "(" + slug + "\x01",
		Count: 1,
	}).Result()
	if err != nil {
		return nil, wrap(err, "get tag by slug")
	}
	if len(members) == 0 {
		return nil, errTagNotFound
	}
	return store.GetTag(ctx, memberID(members[0]))
}

// PutTag writes the tag and moves its index entries when the name or slug changed.
// The read of the previous name and the write run under WATCH.
func (store *RedisStore) PutTag(ctx context.Context, tag Tag) error {
	raw, err := json.Marshal(tag)
	if err != nil {
		return wrap(err, "encode tag")
	}

	tagsKey := store.key(keyTags)
	err = store.client.Watch(ctx, func(tx *redis.Tx) error {
		previous, err := tx.HGet(ctx, tagsKey, tag.ID).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if len(previous) > 0 {
				var old Tag
				if err := json.Unmarshal(previous, &old); err == nil {
					store.unindexTag(ctx, pipe, old)
				}
			}
			pipe.HSet(ctx, tagsKey, tag.ID, raw)
			store.indexTag(ctx, pipe, tag)
			return nil
		})
		return err
	}, tagsKey)
	if err != nil {
		return wrap(err, "put tag")
	}
	return nil
}

func (store *RedisStore) DeleteTag(ctx context.Context, id string) (bool, error) {
	tag, err := store.GetTag(ctx, id)
	if dberr.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var removed *redis.IntCmd
	_, err = store.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.HDel(ctx, store.key(keyTags), id)
		store.unindexTag(ctx, pipe, *tag)
		return nil
	})
	if err != nil {
		return false, wrap(err, "delete tag")
	}
	return removed.Val() > 0, nil
}

// # Settings

func (store *RedisStore) GetSettings(ctx context.Context) (*Settings, error) {
	return load[Settings](ctx, store, keySettings, strconv.Itoa(SettingsVersion), errSettingsNotFound)
}

func (store *RedisStore) PutSettings(ctx context.Context, settings Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return wrap(err, "encode settings")
	}
	if err := store.client.HSet(ctx, store.key(keySettings), strconv.Itoa(SettingsVersion), raw).Err(); err != nil {
		return wrap(err, "put settings")
	}
	return nil
}

// # Helpers

func updatedMember(prompt Prompt) redis.Z {
	return redis.Z{Score: float64(prompt.UpdatedAt.UnixMilli()), Member: prompt.ID}
}

func nameMember(tag Tag) string {
	return tag.Name + indexSeparator + tag.ID
}

func slugMember(tag Tag) string {
	return tag.Slug + indexSeparator + tag.ID
}

// memberID extracts the record id from a lexical index member.
func memberID(member string) string {
	return member[strings.LastIndex(member, indexSeparator)+1:]
}

func (store *RedisStore) indexTag(ctx context.Context, pipe redis.Pipeliner, tag Tag) {
	pipe.ZAdd(ctx, store.key(keyTagsByName), redis.Z{Member: nameMember(tag)})
	pipe.ZAdd(ctx, store.key(keyTagsBySlug), redis.Z{Member: slugMember(tag)})
}

func (store *RedisStore) unindexTag(ctx context.Context, pipe redis.Pipeliner, tag Tag) {
	pipe.ZRem(ctx, store.key(keyTagsByName), nameMember(tag))
	pipe.ZRem(ctx, store.key(keyTagsBySlug), slugMember(tag))
}

func load[T any](ctx context.Context, store *RedisStore, collection, id string, notFound error) (*T, error) {
	raw, err := store.client.HGet(ctx, store.key(collection), id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, notFound
	}
	if err != nil {
		return nil, wrap(err, "get "+collection)
	}

	var record T
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, wrap(err, "decode "+collection)
	}
	return &record, nil
}

// loadAll fetches ids in order. Ids whose record vanished since the index read are skipped.
func loadAll[T any](ctx context.Context, store *RedisStore, collection string, ids []string) ([]T, error) {
	records := make([]T, 0, len(ids))
	if len(ids) == 0 {
		return records, nil
	}

	values, err := store.client.HMGet(ctx, store.key(collection), ids...).Result()
	if err != nil {
		return nil, wrap(err, "list "+collection)
	}

	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}
		var record T
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			return nil, wrap(err, "decode "+collection)
		}
		records = append(records, record)
	}
	return records, nil
}
