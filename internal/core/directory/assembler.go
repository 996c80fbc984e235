// Copyright (c) 2026 Promptlib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package directory

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/promptlib/pkg/pagination"
	"github.com/taibuivan/promptlib/pkg/slice"
)

// Assembler composes authors, prompt previews, counts and tags into view
// models with a fixed number of queries regardless of how many authors are
// involved.
type Assembler struct {
	store Store
}

// NewAssembler creates an assembler over store.
func NewAssembler(store Store) *Assembler {
	return &Assembler{store: store}
}

// AttachTags returns a copy of prompts with their tags loaded by one association query.
// Every returned prompt has a non-nil tag list without duplicate ids.
func (assembler *Assembler) AttachTags(ctx context.Context, prompts []Prompt) ([]Prompt, error) {
	if len(prompts) == 0 {
		return []Prompt{}, nil
	}

	promptIDs := slice.Map(prompts, func(p Prompt) string { return p.ID })
	tagsByPrompt, err := assembler.store.ListTagsByPrompts(ctx, promptIDs)
	if err != nil {
		return nil, err
	}

	out := slices.Clone(prompts)
	for i := range out {
		out[i].Tags = uniqueTags(tagsByPrompt[out[i].ID])
	}
	return out, nil
}

func uniqueTags(tags []Tag) []Tag {
	out := make([]Tag, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		if _, dup := seen[tag.ID]; dup {
			continue
		}
		seen[tag.ID] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// HighlightedAuthors returns every highlighted author with its preview.
func (assembler *Assembler) HighlightedAuthors(ctx context.Context, promptType PromptType) ([]AuthorWithPrompts, error) {
	authors, err := assembler.store.ListHighlightedAuthors(ctx)
	if err != nil {
		return nil, err
	}
	return assembler.AuthorsWithPrompts(ctx, authors, promptType)
}

// AuthorsPage returns one page of non-highlighted authors with previews and
// the total number of non-highlighted authors.
func (assembler *Assembler) AuthorsPage(ctx context.Context, window pagination.Window, promptType PromptType) ([]AuthorWithPrompts, int, error) {
	var (
		authors []Author
		total   int
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() (err error) {
		total, err = assembler.store.CountAuthors(groupCtx)
		return err
	})
	group.Go(func() (err error) {
		authors, err = assembler.store.ListAuthors(groupCtx, window.Limit, window.Offset)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, 0, err
	}

	withPrompts, err := assembler.AuthorsWithPrompts(ctx, authors, promptType)
	if err != nil {
		return nil, 0, err
	}
	return withPrompts, total, nil
}

// AuthorsWithPrompts attaches newest-first previews (at most [PromptsPreviewLimit])
// and total counts to authors, preserving the author order.
//
// With a non-empty promptType, only prompts of that type are considered and
// authors left with no such prompt are dropped. Without one, such authors are
// kept with an empty preview.
func (assembler *Assembler) AuthorsWithPrompts(ctx context.Context, authors []Author, promptType PromptType) ([]AuthorWithPrompts, error) {
	if len(authors) == 0 {
		return []AuthorWithPrompts{}, nil
	}

	authorIDs := slice.Map(authors, func(a Author) string { return a.ID })

	var (
		prompts []Prompt
		counts  map[string]int
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() (err error) {
		prompts, err = assembler.store.ListPromptsByAuthors(groupCtx, authorIDs, promptType)
		return err
	})
	group.Go(func() (err error) {
		counts, err = assembler.store.CountPromptsByAuthors(groupCtx, authorIDs, promptType)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	// Prompts arrive newest first, so the first N seen per author are its preview
	perAuthor := make(map[string]int, len(authors))
	previews := make([]Prompt, 0, len(authors)*PromptsPreviewLimit)
	for _, prompt := range prompts {
		if perAuthor[prompt.AuthorID] >= PromptsPreviewLimit {
			continue
		}
		perAuthor[prompt.AuthorID]++
		previews = append(previews, prompt)
	}

	tagged, err := assembler.AttachTags(ctx, previews)
	if err != nil {
		return nil, err
	}

	byAuthor := make(map[string][]Prompt, len(authors))
	for _, prompt := range tagged {
		byAuthor[prompt.AuthorID] = append(byAuthor[prompt.AuthorID], prompt)
	}

	result := make([]AuthorWithPrompts, 0, len(authors))
	for _, author := range authors {
		total := counts[author.ID]
		if promptType != "" && total == 0 {
			continue
		}

		preview := byAuthor[author.ID]
		if preview == nil {
			preview = []Prompt{}
		}

		result = append(result, AuthorWithPrompts{
			Author:       author,
			Prompts:      preview,
			TotalPrompts: total,
		})
	}

	return result, nil
}
