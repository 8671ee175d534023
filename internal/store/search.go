// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// QueryOptions holds parameters for citation index queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string over reference titles
	// and journals.
	Query string

	// RefType filters by reference type.
	RefType types.RefType

	// Year filters by publication year.
	Year string

	// ArticleID filters by source document.
	ArticleID string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.RefType == "" && q.Year == "" && q.ArticleID == ""
}

// SearchResult is a stored reference with its source-article identity.
type SearchResult struct {
	types.Reference `yaml:",inline"`
	ArticleID       string `json:"article_id" yaml:"article_id"`
	ArticleTitle    string `json:"article_title" yaml:"article_title"`
}

// Search queries the citation index with optional full-text search and
// structured filters. Full-text queries are ranked by relevance;
// structured-only queries come back in article and bibliography order.
func (s *Store) Search(ctx context.Context, opts QueryOptions) ([]SearchResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT r.article_id, r.ref_type, r.authors, r.year, r.title, r.journal,
				r.volume, r.page_first, r.page_last, r.doi,
				r.institution, r.book_title, r.chapter_title,
				a.title
			FROM refs_fts
			JOIN refs r ON r.rowid = refs_fts.rowid
			LEFT JOIN articles a ON r.article_id = a.id
			WHERE refs_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT r.article_id, r.ref_type, r.authors, r.year, r.title, r.journal,
				r.volume, r.page_first, r.page_last, r.doi,
				r.institution, r.book_title, r.chapter_title,
				a.title
			FROM refs r
			LEFT JOIN articles a ON r.article_id = a.id
			WHERE 1=1`)
	}

	if opts.RefType != "" {
		qb.WriteString(` AND r.ref_type = ?`)
		args = append(args, string(opts.RefType))
	}

	if opts.Year != "" {
		qb.WriteString(` AND r.year = ?`)
		args = append(args, opts.Year)
	}

	if opts.ArticleID != "" {
		qb.WriteString(` AND r.article_id = ?`)
		args = append(args, opts.ArticleID)
	}

	if useFTS {
		qb.WriteString(` ORDER BY refs_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY r.article_id, r.position`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying citation index: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var (
			sr          SearchResult
			refType     string
			authorsJSON string
			title       sql.NullString
		)
		err := rows.Scan(
			&sr.ArticleID, &refType, &authorsJSON, &sr.Year, &sr.Title, &sr.Journal,
			&sr.Volume, &sr.PageFirst, &sr.PageLast, &sr.DOI,
			&sr.Institution, &sr.BookTitle, &sr.ChapterTitle,
			&title,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning result row: %w", err)
		}

		sr.RefType = types.RefType(refType)
		if err := json.Unmarshal([]byte(authorsJSON), &sr.Authors); err != nil {
			return nil, fmt.Errorf("decoding authors for %s: %w", sr.ArticleID, err)
		}
		if title.Valid {
			sr.ArticleTitle = title.String
		}
		results = append(results, sr)
	}

	return results, rows.Err()
}
