// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists extracted citation records in a SQLite index
// with full-text search over reference titles and journals.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/citation-engine/internal/htmlref"
	"github.com/pdiddy/citation-engine/pkg/types"
)

const dbFile = "citations.db"

// Store manages the citation index SQLite database.
type Store struct {
	db         *sql.DB
	indexDir   string
	maxResults int
}

// NewStore opens or creates the citation index at indexDir/citations.db,
// creating the schema if it does not exist.
func NewStore(cfg types.IndexConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.IndexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(cfg.IndexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		indexDir:   cfg.IndexDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS articles (
			id TEXT PRIMARY KEY,
			title TEXT,
			authors TEXT,
			published_date TEXT,
			volume TEXT,
			issue TEXT,
			page_first TEXT,
			page_last TEXT,
			citations INTEGER,
			doi TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS refs (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			article_id TEXT NOT NULL REFERENCES articles(id),
			position INTEGER NOT NULL,
			ref_type TEXT NOT NULL,
			authors TEXT NOT NULL,
			year TEXT,
			title TEXT,
			journal TEXT,
			volume TEXT,
			page_first TEXT,
			page_last TEXT,
			doi TEXT,
			institution TEXT,
			book_title TEXT,
			chapter_title TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_refs_article_id ON refs(article_id)`,
		`CREATE INDEX IF NOT EXISTS idx_refs_type ON refs(ref_type)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='refs_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE refs_fts USING fts5(title, journal, content=refs, content_rowid=rowid)`,
			`CREATE TRIGGER refs_ai AFTER INSERT ON refs BEGIN
				INSERT INTO refs_fts(rowid, title, journal) VALUES (new.rowid, new.title, new.journal);
			END`,
			`CREATE TRIGGER refs_ad AFTER DELETE ON refs BEGIN
				INSERT INTO refs_fts(refs_fts, rowid, title, journal) VALUES('delete', old.rowid, old.title, old.journal);
			END`,
			`CREATE TRIGGER refs_au AFTER UPDATE ON refs BEGIN
				INSERT INTO refs_fts(refs_fts, rowid, title, journal) VALUES('delete', old.rowid, old.title, old.journal);
				INSERT INTO refs_fts(rowid, title, journal) VALUES (new.rowid, new.title, new.journal);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from an indexing run.
type IngestSummary struct {
	Indexed int
	Failed  int
}

// Total returns the number of articles processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Failed
}

// Ingest writes extracted records into the index, replacing any earlier
// rows for the same document. A record that fails to ingest is reported
// and skipped without affecting its siblings.
func (s *Store) Ingest(ctx context.Context, records []htmlref.ArticleRecord, w io.Writer) (IngestSummary, error) {
	var summary IngestSummary

	for _, record := range records {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		if err := s.ingestArticle(ctx, record); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", record.DocID, err)
			summary.Failed++
			continue
		}
		fmt.Fprintf(w, "indexed %s (%d references)\n", record.DocID, len(record.Article.References))
		summary.Indexed++
	}

	fmt.Fprintf(w, "\nindexed: %d, failed: %d\n", summary.Indexed, summary.Failed)
	return summary, nil
}

func (s *Store) ingestArticle(ctx context.Context, record htmlref.ArticleRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Replace semantics: old references go first.
	if _, err := tx.ExecContext(ctx, `DELETE FROM refs WHERE article_id = ?`, record.DocID); err != nil {
		return fmt.Errorf("deleting old references: %w", err)
	}

	a := record.Article
	authorsJSON, _ := json.Marshal(a.Authors)
	dateStr := ""
	if !a.PublishedDate.IsZero() {
		dateStr = a.PublishedDate.Format(time.DateOnly)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO articles (id, title, authors, published_date, volume, issue, page_first, page_last, citations, doi)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, authors=excluded.authors,
			published_date=excluded.published_date, volume=excluded.volume,
			issue=excluded.issue, page_first=excluded.page_first,
			page_last=excluded.page_last, citations=excluded.citations,
			doi=excluded.doi`,
		record.DocID, a.Title, string(authorsJSON), dateStr,
		a.Volume, a.Issue, a.PageFirst, a.PageLast, a.Citations, a.DOI,
	)
	if err != nil {
		return fmt.Errorf("upserting article: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO refs (article_id, position, ref_type, authors, year, title, journal,
			volume, page_first, page_last, doi, institution, book_title, chapter_title)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, ref := range a.References {
		refAuthorsJSON, _ := json.Marshal(ref.Authors)
		_, err := stmt.ExecContext(ctx,
			record.DocID, i, string(ref.RefType), string(refAuthorsJSON),
			ref.Year, ref.Title, ref.Journal,
			ref.Volume, ref.PageFirst, ref.PageLast,
			ref.DOI, ref.Institution, ref.BookTitle, ref.ChapterTitle,
		)
		if err != nil {
			return fmt.Errorf("inserting reference %d: %w", i, err)
		}
	}

	return tx.Commit()
}
