// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package htmlref

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// exportEntry is the nested per-article JSON projection.
type exportEntry struct {
	DocID      string            `json:"doc_id"`
	Article    exportArticle     `json:"article"`
	References []types.Reference `json:"references"`
}

// exportArticle flattens the article-level fields for export: authors
// join with semicolons, the date becomes an ISO-8601 string or null, and
// an absent citation count becomes null.
type exportArticle struct {
	Title         string  `json:"title"`
	Authors       string  `json:"authors"`
	PublishedDate *string `json:"published_date"`
	Volume        string  `json:"volume"`
	Issue         string  `json:"issue"`
	PageFirst     string  `json:"page_first"`
	PageLast      string  `json:"page_last"`
	Citations     *int    `json:"citations"`
	DOI           string  `json:"doi"`
}

func toExportEntry(r ArticleRecord) exportEntry {
	a := r.Article

	entry := exportEntry{
		DocID: r.DocID,
		Article: exportArticle{
			Title:     a.Title,
			Authors:   strings.Join(a.Authors, "; "),
			Volume:    a.Volume,
			Issue:     a.Issue,
			PageFirst: a.PageFirst,
			PageLast:  a.PageLast,
			DOI:       a.DOI,
		},
		References: a.References,
	}
	if !a.PublishedDate.IsZero() {
		date := a.PublishedDate.Format(time.DateOnly)
		entry.Article.PublishedDate = &date
	}
	if a.Citations >= 0 {
		n := a.Citations
		entry.Article.Citations = &n
	}
	if entry.References == nil {
		entry.References = []types.Reference{}
	}
	return entry
}

// WriteJSON writes the per-article nested projection.
func WriteJSON(path string, records []ArticleRecord) error {
	entries := make([]exportEntry, len(records))
	for i, r := range records {
		entries[i] = toExportEntry(r)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// csvHeader lists the flat row-per-reference columns. Article fields are
// repeated on every row of the same article.
var csvHeader = []string{
	"doc_id",
	"article.title", "article.authors", "article.published_date",
	"article.volume", "article.issue", "article.page_first", "article.page_last",
	"article.citations", "article.doi",
	"reference.ref_type", "reference.authors", "reference.year",
	"reference.title", "reference.journal", "reference.volume",
	"reference.page_first", "reference.page_last", "reference.doi",
	"reference.working_paper_institution", "reference.book_title",
	"reference.chapter_title",
}

// WriteCSV writes the flat row-per-reference projection. An article with
// no surviving references still contributes one row with empty reference
// columns, so no article silently disappears from the table.
func WriteCSV(path string, records []ArticleRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating csv %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, r := range records {
		articleCols := articleColumns(r)
		if len(r.Article.References) == 0 {
			if err := w.Write(append(articleCols, make([]string, 12)...)); err != nil {
				return fmt.Errorf("writing csv row: %w", err)
			}
			continue
		}
		for _, ref := range r.Article.References {
			row := append(articleCols, referenceColumns(ref)...)
			if err := w.Write(row); err != nil {
				return fmt.Errorf("writing csv row: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

func articleColumns(r ArticleRecord) []string {
	a := r.Article

	date := ""
	if !a.PublishedDate.IsZero() {
		date = a.PublishedDate.Format(time.DateOnly)
	}
	citations := ""
	if a.Citations >= 0 {
		citations = strconv.Itoa(a.Citations)
	}

	return []string{
		r.DocID,
		a.Title, strings.Join(a.Authors, "; "), date,
		a.Volume, a.Issue, a.PageFirst, a.PageLast,
		citations, a.DOI,
	}
}

func referenceColumns(ref types.Reference) []string {
	return []string{
		ref.RefType.String(), strings.Join(ref.Authors, "; "), ref.Year,
		ref.Title, ref.Journal, ref.Volume,
		ref.PageFirst, ref.PageLast, ref.DOI,
		ref.Institution, ref.BookTitle, ref.ChapterTitle,
	}
}
