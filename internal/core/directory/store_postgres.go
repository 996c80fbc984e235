// Copyright (c) 2026 Promptlib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package directory

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/promptlib/internal/platform/database/schema"
	"github.com/taibuivan/promptlib/internal/platform/dberr"
)

// PostgresRepository implements [Store] on a pgx pool.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository wraps an open pool.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// LikePattern builds the ILIKE pattern for a substring match on query.
// LIKE metacharacters in the query are escaped so they match literally.
func LikePattern(query string) string {
	escaper := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + escaper.Replace(query) + "%"
}

// # Column Lists

func qualified(alias string, columns []string) string {
	out := make([]string, len(columns))
	for i, column := range columns {
		out[i] = alias + "." + column
	}
	return strings.Join(out, ", ")
}

var (
	authorColumns = qualified("a", schema.Author.Columns())
	promptColumns = qualified("p", schema.Prompt.Columns())
)

// authorDest and promptDest follow the order of the schema Columns() lists.
func authorDest(a *Author) []any {
	return []any{&a.ID, &a.Name, &a.Slug, &a.PublicDescription, &a.Link, &a.AvatarURL,
		&a.Verified, &a.Highlighted, &a.CreatedAt}
}

func promptDest(p *Prompt) []any {
	return []any{&p.ID, &p.Title, &p.Slug, &p.Prompt, &p.Description, &p.AdditionalInformation,
		&p.AuthorID, &p.Type, &p.CreatedAt}
}

func scanAuthor(row pgx.Row, a *Author) error {
	return row.Scan(authorDest(a)...)
}

// args accumulates positional parameters while a query is composed.
type args []any

func (a *args) add(value any) string {
	*a = append(*a, value)
	return "$" + strconv.Itoa(len(*a))
}

// # Authors

func (repository *PostgresRepository) ListHighlightedAuthors(ctx context.Context) ([]Author, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s a WHERE a.%s = TRUE ORDER BY a.%s ASC`,
		authorColumns, schema.Author.Table, schema.Author.Highlighted, schema.Author.Name)

	return repository.queryAuthors(ctx, "list_highlighted_authors", query)
}

func (repository *PostgresRepository) ListAuthors(ctx context.Context, limit, offset int) ([]Author, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s a WHERE a.%s = FALSE ORDER BY a.%s ASC LIMIT $1 OFFSET $2`,
		authorColumns, schema.Author.Table, schema.Author.Highlighted, schema.Author.Name)

	return repository.queryAuthors(ctx, "list_authors", query, limit, offset)
}

func (repository *PostgresRepository) CountAuthors(ctx context.Context) (int, error) {
	query := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s = FALSE`, schema.Author.Table, schema.Author.Highlighted)

	var total int
	if err := repository.db.QueryRow(ctx, query).Scan(&total); err != nil {
		return 0, dberr.Wrap(err, "count_authors")
	}
	return total, nil
}

func (repository *PostgresRepository) GetAuthorByID(ctx context.Context, id string) (*Author, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s a WHERE a.%s = $1`, authorColumns, schema.Author.Table, schema.Author.ID)

	author := &Author{}
	if err := scanAuthor(repository.db.QueryRow(ctx, query, id), author); err != nil {
		return nil, dberr.Wrap(err, "get_author_by_id")
	}
	return author, nil
}

func (repository *PostgresRepository) GetAuthorBySlug(ctx context.Context, slug string) (*Author, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s a WHERE a.%s = $1`, authorColumns, schema.Author.Table, schema.Author.Slug)

	author := &Author{}
	if err := scanAuthor(repository.db.QueryRow(ctx, query, slug), author); err != nil {
		return nil, dberr.Wrap(err, "get_author_by_slug")
	}
	return author, nil
}

func (repository *PostgresRepository) queryAuthors(ctx context.Context, action, query string, params ...any) ([]Author, error) {
	rows, err := repository.db.Query(ctx, query, params...)
	if err != nil {
		return nil, dberr.Wrap(err, action)
	}
	defer rows.Close()

	authors := []Author{}
	for rows.Next() {
		var author Author
		if err := scanAuthor(rows, &author); err != nil {
			return nil, dberr.Wrap(err, "scan_author")
		}
		authors = append(authors, author)
	}

	return authors, dberr.Wrap(rows.Err(), action)
}

// # Prompts

func (repository *PostgresRepository) ListPromptsByAuthors(ctx context.Context, authorIDs []string, promptType PromptType) ([]Prompt, error) {
	var params args
	query := fmt.Sprintf(`SELECT %s FROM %s p WHERE p.%s = ANY(%s::uuid[])`,
		promptColumns, schema.Prompt.Table, schema.Prompt.AuthorID, params.add(authorIDs))

	if promptType != "" {
		query += fmt.Sprintf(` AND p.%s = %s`, schema.Prompt.Type, params.add(string(promptType)))
	}
	query += fmt.Sprintf(` ORDER BY p.%s DESC`, schema.Prompt.CreatedAt)

	return repository.queryPrompts(ctx, "list_prompts_by_authors", query, false, params...)
}

func (repository *PostgresRepository) CountPromptsByAuthors(ctx context.Context, authorIDs []string, promptType PromptType) (map[string]int, error) {
	var params args
	query := fmt.Sprintf(`SELECT %s, count(*) FROM %s WHERE %s = ANY(%s::uuid[])`,
		schema.Prompt.AuthorID, schema.Prompt.Table, schema.Prompt.AuthorID, params.add(authorIDs))

	if promptType != "" {
		query += fmt.Sprintf(` AND %s = %s`, schema.Prompt.Type, params.add(string(promptType)))
	}
	query += fmt.Sprintf(` GROUP BY %s`, schema.Prompt.AuthorID)

	rows, err := repository.db.Query(ctx, query, params...)
	if err != nil {
		return nil, dberr.Wrap(err, "count_prompts_by_authors")
	}
	defer rows.Close()

	counts := make(map[string]int, len(authorIDs))
	for rows.Next() {
		var (
			authorID string
			count    int
		)
		if err := rows.Scan(&authorID, &count); err != nil {
			return nil, dberr.Wrap(err, "scan_prompt_count")
		}
		counts[authorID] = count
	}

	return counts, dberr.Wrap(rows.Err(), "count_prompts_by_authors")
}

func (repository *PostgresRepository) ListPromptsByAuthor(ctx context.Context, authorID string, limit, offset int) ([]Prompt, error) {
	var params args
	query := fmt.Sprintf(`SELECT %s FROM %s p WHERE p.%s = %s ORDER BY p.%s DESC`,
		promptColumns, schema.Prompt.Table, schema.Prompt.AuthorID, params.add(authorID), schema.Prompt.CreatedAt)

	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %s OFFSET %s`, params.add(limit), params.add(offset))
	}

	return repository.queryPrompts(ctx, "list_prompts_by_author", query, false, params...)
}

func (repository *PostgresRepository) CountPromptsByAuthor(ctx context.Context, authorID string) (int, error) {
	query := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s = $1`, schema.Prompt.Table, schema.Prompt.AuthorID)

	var total int
	if err := repository.db.QueryRow(ctx, query, authorID).Scan(&total); err != nil {
		return 0, dberr.Wrap(err, "count_prompts_by_author")
	}
	return total, nil
}

// searchWhere renders the OR-ed substring match plus the optional AND-ed type restriction.
func searchWhere(filter SearchFilter, params *args) string {
	pattern := params.add(LikePattern(filter.Query))
	where := fmt.Sprintf(`(p.%s ILIKE %s OR p.%s ILIKE %s OR p.%s ILIKE %s)`,
		schema.Prompt.Title, pattern, schema.Prompt.Description, pattern, schema.Prompt.Prompt, pattern)

	if filter.Type != "" {
		where += fmt.Sprintf(` AND p.%s = %s`, schema.Prompt.Type, params.add(string(filter.Type)))
	}
	return where
}

func (repository *PostgresRepository) SearchPrompts(ctx context.Context, filter SearchFilter, limit, offset int) ([]Prompt, error) {
	var params args
	where := searchWhere(filter, &params)

	query := fmt.Sprintf(`
		SELECT %s, %s
		FROM %s p
		JOIN %s a ON a.%s = p.%s
		WHERE %s
		ORDER BY p.%s DESC
		LIMIT %s OFFSET %s`,
		promptColumns, authorColumns,
		schema.Prompt.Table,
		schema.Author.Table, schema.Author.ID, schema.Prompt.AuthorID,
		where,
		schema.Prompt.CreatedAt,
		params.add(limit), params.add(offset),
	)

	return repository.queryPrompts(ctx, "search_prompts", query, true, params...)
}

func (repository *PostgresRepository) CountSearchPrompts(ctx context.Context, filter SearchFilter) (int, error) {
	var params args
	query := fmt.Sprintf(`SELECT count(*) FROM %s p WHERE %s`, schema.Prompt.Table, searchWhere(filter, &params))

	var total int
	if err := repository.db.QueryRow(ctx, query, params...).Scan(&total); err != nil {
		return 0, dberr.Wrap(err, "count_search_prompts")
	}
	return total, nil
}

func (repository *PostgresRepository) GetPromptByID(ctx context.Context, id string) (*Prompt, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s
		FROM %s p
		JOIN %s a ON a.%s = p.%s
		WHERE p.%s = $1`,
		promptColumns, authorColumns,
		schema.Prompt.Table,
		schema.Author.Table, schema.Author.ID, schema.Prompt.AuthorID,
		schema.Prompt.ID,
	)

	return repository.queryPromptWithAuthor(ctx, "get_prompt_by_id", query, id)
}

func (repository *PostgresRepository) GetPromptBySlug(ctx context.Context, authorSlug, promptSlug string) (*Prompt, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s
		FROM %s p
		JOIN %s a ON a.%s = p.%s
		WHERE a.%s = $1 AND p.%s = $2`,
		promptColumns, authorColumns,
		schema.Prompt.Table,
		schema.Author.Table, schema.Author.ID, schema.Prompt.AuthorID,
		schema.Author.Slug, schema.Prompt.Slug,
	)

	return repository.queryPromptWithAuthor(ctx, "get_prompt_by_slug", query, authorSlug, promptSlug)
}

func (repository *PostgresRepository) queryPromptWithAuthor(ctx context.Context, action, query string, params ...any) (*Prompt, error) {
	prompt := &Prompt{Author: &Author{}}
	dest := append(promptDest(prompt), authorDest(prompt.Author)...)

	if err := repository.db.QueryRow(ctx, query, params...).Scan(dest...); err != nil {
		return nil, dberr.Wrap(err, action)
	}
	return prompt, nil
}

func (repository *PostgresRepository) queryPrompts(ctx context.Context, action, query string, withAuthor bool, params ...any) ([]Prompt, error) {
	rows, err := repository.db.Query(ctx, query, params...)
	if err != nil {
		return nil, dberr.Wrap(err, action)
	}
	defer rows.Close()

	prompts := []Prompt{}
	for rows.Next() {
		var prompt Prompt
		dest := promptDest(&prompt)
		if withAuthor {
			prompt.Author = &Author{}
			dest = append(dest, authorDest(prompt.Author)...)
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, dberr.Wrap(err, "scan_prompt")
		}
		prompts = append(prompts, prompt)
	}

	return prompts, dberr.Wrap(rows.Err(), action)
}

// # Associations

func (repository *PostgresRepository) ListTagsByPrompts(ctx context.Context, promptIDs []string) (map[string][]Tag, error) {
	query := fmt.Sprintf(`
		SELECT pt.%s, t.%s, t.%s
		FROM %s pt
		JOIN %s t ON t.%s = pt.%s
		WHERE pt.%s = ANY($1::uuid[])
		ORDER BY t.%s ASC`,
		schema.PromptTag.PromptID, schema.Tag.ID, schema.Tag.Name,
		schema.PromptTag.Table,
		schema.Tag.Table, schema.Tag.ID, schema.PromptTag.TagID,
		schema.PromptTag.PromptID,
		schema.Tag.Name,
	)

	rows, err := repository.db.Query(ctx, query, promptIDs)
	if err != nil {
		return nil, dberr.Wrap(err, "list_tags_by_prompts")
	}
	defer rows.Close()

	tags := make(map[string][]Tag, len(promptIDs))
	for rows.Next() {
		var (
			promptID string
			tag      Tag
		)
		if err := rows.Scan(&promptID, &tag.ID, &tag.Name); err != nil {
			return nil, dberr.Wrap(err, "scan_prompt_tag")
		}
		tags[promptID] = append(tags[promptID], tag)
	}

	return tags, dberr.Wrap(rows.Err(), "list_tags_by_prompts")
}

func (repository *PostgresRepository) ListToolsByPrompt(ctx context.Context, promptID string) ([]AgentTool, error) {
	query := fmt.Sprintf(`
		SELECT t.%s, t.%s, t.%s, t.%s, tp.%s
		FROM %s tp
		JOIN %s t ON t.%s = tp.%s
		WHERE tp.%s = $1
		ORDER BY t.%s ASC`,
		schema.AgentTool.ID, schema.AgentTool.Name, schema.AgentTool.Slug, schema.AgentTool.URL, schema.AgentToolPrompt.SetupURL,
		schema.AgentToolPrompt.Table,
		schema.AgentTool.Table, schema.AgentTool.ID, schema.AgentToolPrompt.ToolID,
		schema.AgentToolPrompt.PromptID,
		schema.AgentTool.Name,
	)

	rows, err := repository.db.Query(ctx, query, promptID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_tools_by_prompt")
	}
	defer rows.Close()

	tools := []AgentTool{}
	for rows.Next() {
		var tool AgentTool
		if err := rows.Scan(&tool.ID, &tool.Name, &tool.Slug, &tool.URL, &tool.SetupURL); err != nil {
			return nil, dberr.Wrap(err, "scan_agent_tool")
		}
		tools = append(tools, tool)
	}

	return tools, dberr.Wrap(rows.Err(), "list_tools_by_prompt")
}
