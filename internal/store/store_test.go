// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/citation-engine/internal/htmlref"
	"github.com/pdiddy/citation-engine/pkg/types"
)

// --- test helpers ---

func testSetup(t *testing.T) *Store {
	t.Helper()

	cfg := types.IndexConfig{
		IndexDir:   t.TempDir(),
		MaxResults: 20,
	}
	store, err := NewStore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func sampleRecord(docID string) htmlref.ArticleRecord {
	return htmlref.ArticleRecord{
		DocID: docID,
		Article: types.ArticleMetadata{
			Title:         "Example Paper",
			Authors:       []string{"Jane Doe", "John Roe"},
			PublishedDate: time.Date(2003, time.December, 3, 0, 0, 0, 0, time.UTC),
			Volume:        "56",
			Issue:         "1",
			Citations:     42,
			DOI:           "10.1111/1540-6261.00505",
			References: []types.Reference{
				{
					RefType: types.RefArticle, Authors: []string{"Smith"},
					Year: "2001", Title: "Asset pricing tests",
					Journal: "The Journal of Finance", Volume: "56",
					PageFirst: "1", PageLast: "30", DOI: "10.1111/jofi.12737",
				},
				{
					RefType: types.RefWorkingPaper, Authors: []string{"Doe, Alice"},
					Year: "2005", Title: "Liquidity and crises", Institution: "MIT",
				},
				{
					RefType: types.RefBook, Authors: []string{"Merton, Robert"},
					Year: "1990", BookTitle: "Continuous-Time Finance",
				},
			},
		},
	}
}

func ingestHelper(t *testing.T, store *Store, records ...htmlref.ArticleRecord) {
	t.Helper()
	var buf strings.Builder
	summary, err := store.Ingest(context.Background(), records, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Failed != 0 {
		t.Fatalf("Failed = %d, want 0; output: %s", summary.Failed, buf.String())
	}
}

// --- schema tests ---

func TestNewStoreCreatesSchema(t *testing.T) {
	store := testSetup(t)

	tables := []string{"articles", "refs", "refs_fts"}
	for _, table := range tables {
		var count int
		err := store.db.QueryRow(
			`SELECT count(*) FROM sqlite_master WHERE type IN ('table','view') AND name = ?`, table,
		).Scan(&count)
		if err != nil {
			t.Fatalf("checking table %s: %v", table, err)
		}
		if count == 0 {
			t.Errorf("table %s does not exist", table)
		}
	}
}

func TestNewStoreCreatesDBFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(types.IndexConfig{IndexDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if _, err := os.Stat(filepath.Join(dir, dbFile)); os.IsNotExist(err) {
		t.Errorf("database file not created in %s", dir)
	}
}

// --- ingest tests ---

func TestIngest(t *testing.T) {
	store := testSetup(t)

	ingestHelper(t, store, sampleRecord("jofi.1"), sampleRecord("jofi.2"))

	var articles, refs int
	if err := store.db.QueryRow(`SELECT count(*) FROM articles`).Scan(&articles); err != nil {
		t.Fatal(err)
	}
	if err := store.db.QueryRow(`SELECT count(*) FROM refs`).Scan(&refs); err != nil {
		t.Fatal(err)
	}
	if articles != 2 {
		t.Errorf("articles = %d, want 2", articles)
	}
	if refs != 6 {
		t.Errorf("refs = %d, want 6", refs)
	}
}

func TestIngestReplacesEarlierRows(t *testing.T) {
	store := testSetup(t)

	ingestHelper(t, store, sampleRecord("jofi.1"))

	// Re-ingest the same document with a shorter bibliography.
	record := sampleRecord("jofi.1")
	record.Article.References = record.Article.References[:1]
	ingestHelper(t, store, record)

	var articles, refs int
	if err := store.db.QueryRow(`SELECT count(*) FROM articles`).Scan(&articles); err != nil {
		t.Fatal(err)
	}
	if err := store.db.QueryRow(`SELECT count(*) FROM refs WHERE article_id = 'jofi.1'`).Scan(&refs); err != nil {
		t.Fatal(err)
	}
	if articles != 1 {
		t.Errorf("articles = %d, want 1", articles)
	}
	if refs != 1 {
		t.Errorf("refs = %d, want 1", refs)
	}
}

func TestIngestStoresAllFields(t *testing.T) {
	store := testSetup(t)
	ingestHelper(t, store, sampleRecord("jofi.1"))

	results, err := store.Search(context.Background(), QueryOptions{ArticleID: "jofi.1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	r := results[0]
	if r.RefType != types.RefArticle {
		t.Errorf("RefType = %q, want %q", r.RefType, types.RefArticle)
	}
	if len(r.Authors) != 1 || r.Authors[0] != "Smith" {
		t.Errorf("Authors = %v, want [Smith]", r.Authors)
	}
	if r.Year != "2001" {
		t.Errorf("Year = %q, want 2001", r.Year)
	}
	if r.Journal != "The Journal of Finance" {
		t.Errorf("Journal = %q, want The Journal of Finance", r.Journal)
	}
	if r.DOI != "10.1111/jofi.12737" {
		t.Errorf("DOI = %q, want 10.1111/jofi.12737", r.DOI)
	}
	if r.ArticleTitle != "Example Paper" {
		t.Errorf("ArticleTitle = %q, want Example Paper", r.ArticleTitle)
	}

	if wp := results[1]; wp.Institution != "MIT" {
		t.Errorf("Institution = %q, want MIT", wp.Institution)
	}
	if book := results[2]; book.BookTitle != "Continuous-Time Finance" {
		t.Errorf("BookTitle = %q, want Continuous-Time Finance", book.BookTitle)
	}
}

// --- search tests ---

func TestSearchFullText(t *testing.T) {
	store := testSetup(t)
	ingestHelper(t, store, sampleRecord("jofi.1"))

	results, err := store.Search(context.Background(), QueryOptions{Query: "pricing"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Title != "Asset pricing tests" {
		t.Errorf("Title = %q, want Asset pricing tests", results[0].Title)
	}
}

func TestSearchFilters(t *testing.T) {
	store := testSetup(t)
	ingestHelper(t, store, sampleRecord("jofi.1"))

	tests := []struct {
		name string
		opts QueryOptions
		want int
	}{
		{"by type", QueryOptions{RefType: types.RefWorkingPaper}, 1},
		{"by year", QueryOptions{Year: "1990"}, 1},
		{"by article", QueryOptions{ArticleID: "jofi.1"}, 3},
		{"type and year miss", QueryOptions{RefType: types.RefBook, Year: "2001"}, 0},
		{"query and type", QueryOptions{Query: "Finance", RefType: types.RefArticle}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := store.Search(context.Background(), tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if len(results) != tt.want {
				t.Errorf("got %d results, want %d", len(results), tt.want)
			}
		})
	}
}

func TestSearchMaxResults(t *testing.T) {
	store := testSetup(t)
	ingestHelper(t, store, sampleRecord("jofi.1"))

	results, err := store.Search(context.Background(), QueryOptions{ArticleID: "jofi.1", MaxResults: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Errorf("got %d results, want MaxResults cap of 2", len(results))
	}
}

func TestQueryOptionsIsEmpty(t *testing.T) {
	if !(QueryOptions{MaxResults: 5}).IsEmpty() {
		t.Error("options with only MaxResults should be empty")
	}
	if (QueryOptions{Year: "2001"}).IsEmpty() {
		t.Error("options with a year filter should not be empty")
	}
}

// --- export tests ---

func TestExportJSON(t *testing.T) {
	store := testSetup(t)
	ingestHelper(t, store, sampleRecord("jofi.1"))

	if err := store.ExportJSON(context.Background()); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(store.indexDir, "export.json"))
	if err != nil {
		t.Fatal(err)
	}

	var entries []SearchResult
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("got %d entries, want 3", len(entries))
	}
}

func TestExportYAML(t *testing.T) {
	store := testSetup(t)
	ingestHelper(t, store, sampleRecord("jofi.1"))

	if err := store.ExportYAML(context.Background()); err != nil {
		t.Fatalf("ExportYAML: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(store.indexDir, "export.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Asset pricing tests") {
		t.Errorf("export missing reference title; got:\n%s", data)
	}
}
