package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/dstanek/workgraph/internal/domain/search"
)

// SearchRepository implements search.Repository over the FTS5 index
type SearchRepository struct {
	db *DB
}

// NewSearchRepository creates a new SearchRepository
func NewSearchRepository(db *DB) *SearchRepository {
	return &SearchRepository{db: db}
}

// Search performs a full-text search over project and task codes and titles
func (r *SearchRepository) Search(ctx context.Context, query string, opts search.Options) ([]search.Result, error) {
	baseQuery := `
		SELECT kind, item_id, code, title
		FROM items_fts
		WHERE items_fts MATCH ?
	`
	args := []any{query}

	if len(opts.Kinds) > 0 {
		placeholders := make([]string, len(opts.Kinds))
		for i, kind := range opts.Kinds {
			placeholders[i] = "?"
			args = append(args, string(kind))
		}
		baseQuery += fmt.Sprintf(" AND kind IN (%s)", strings.Join(placeholders, ","))
	}

	baseQuery += " ORDER BY rank"
	if opts.Limit > 0 {
		baseQuery += " LIMIT ?"
		args = append(args, opts.Limit)
	}
	if opts.Offset > 0 {
		baseQuery += " OFFSET ?"
		args = append(args, opts.Offset)
	}

	rows, err := r.db.QueryContext(ctx, baseQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	defer rows.Close()

	var results []search.Result
	for rows.Next() {
		var res search.Result
		if err := rows.Scan(&res.Kind, &res.ID, &res.Code, &res.Title); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
