// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package htmlref

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pdiddy/citation-engine/pkg/types"
)

func sampleRecords() []ArticleRecord {
	return []ArticleRecord{
		{
			DocID: "jofi.00505",
			Article: types.ArticleMetadata{
				Title:         "Example Paper",
				Authors:       []string{"Jane Doe", "John Roe"},
				PublishedDate: time.Date(2003, time.December, 3, 0, 0, 0, 0, time.UTC),
				Volume:        "56",
				Issue:         "1",
				PageFirst:     "100",
				PageLast:      "130",
				Citations:     42,
				DOI:           "10.1111/1540-6261.00505",
				References: []types.Reference{
					{
						RefType: types.RefArticle, Authors: []string{"Smith"},
						Year: "2001", Title: "Asset pricing",
						Journal: "The Journal of Finance", Volume: "56",
						PageFirst: "1", PageLast: "30",
					},
					{
						RefType: types.RefWorkingPaper, Authors: []string{"Doe, Alice"},
						Year: "2005", Title: "Liquidity", Institution: "MIT",
					},
				},
			},
		},
		{
			DocID:   "jofi.00000",
			Article: types.ArticleMetadata{Title: "No References", Citations: -1},
		},
	}
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "articles.json")
	if err := WriteJSON(path, sampleRecords()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var entries []map[string]any
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	first := entries[0]["article"].(map[string]any)
	if first["authors"] != "Jane Doe; John Roe" {
		t.Errorf("authors = %v, want semicolon join", first["authors"])
	}
	if first["published_date"] != "2003-12-03" {
		t.Errorf("published_date = %v, want 2003-12-03", first["published_date"])
	}
	if first["citations"] != float64(42) {
		t.Errorf("citations = %v, want 42", first["citations"])
	}

	second := entries[1]["article"].(map[string]any)
	if second["published_date"] != nil {
		t.Errorf("absent date = %v, want null", second["published_date"])
	}
	if second["citations"] != nil {
		t.Errorf("absent citations = %v, want null", second["citations"])
	}
	if refs := entries[1]["references"].([]any); len(refs) != 0 {
		t.Errorf("references = %v, want empty array, not null", refs)
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "articles.csv")
	if err := WriteCSV(path, sampleRecords()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading csv: %v", err)
	}

	// Header + two reference rows + one row for the reference-less article.
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(rows))
	}
	if len(rows[0]) != 22 {
		t.Errorf("header has %d columns, want 22", len(rows[0]))
	}
	if rows[0][0] != "doc_id" || rows[0][10] != "reference.ref_type" {
		t.Errorf("unexpected header layout: %v", rows[0])
	}

	// Article columns repeat on each reference row.
	if rows[1][0] != "jofi.00505" || rows[2][0] != "jofi.00505" {
		t.Errorf("doc_id not repeated: %q, %q", rows[1][0], rows[2][0])
	}
	if rows[1][10] != "article" || rows[2][10] != "working_paper" {
		t.Errorf("ref types = %q, %q, want article, working_paper", rows[1][10], rows[2][10])
	}
	if rows[1][3] != "2003-12-03" {
		t.Errorf("published date = %q, want 2003-12-03", rows[1][3])
	}

	// The reference-less article keeps its row with blank reference columns.
	if rows[3][0] != "jofi.00000" || rows[3][8] != "" || rows[3][10] != "" {
		t.Errorf("reference-less row = %v", rows[3])
	}
}
