// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the shared records produced by the extraction
// pipeline and the configuration structs consumed by its stages.
package types

import "time"

// RefType classifies a bibliography entry. The zero value is not valid;
// extraction always assigns RefArticle before any heuristic runs.
type RefType string

const (
	RefArticle      RefType = "article"
	RefWorkingPaper RefType = "working_paper"
	RefBook         RefType = "book"
)

// String returns the serialized form of the reference type.
func (t RefType) String() string {
	return string(t)
}

// Reference is one parsed entry from an article's bibliography.
//
// Fields outside the active type's relevant set may still be populated
// when the source markup carried spurious data; consumers are expected
// to ignore them rather than rely on mutual exclusivity.
type Reference struct {
	// RefType is set once, by the first matching classification rule.
	RefType RefType `json:"ref_type" yaml:"ref_type"`

	// Authors lists cleaned author names in source order. Always non-empty
	// for references that survive extraction; zero-author entries are
	// discarded by the article extractor.
	Authors []string `json:"authors" yaml:"authors"`

	// Year is the 4-digit publication year (19xx/20xx), or empty.
	Year string `json:"year" yaml:"year"`

	// Title is the article title, or a synthesized working-paper title.
	Title string `json:"title" yaml:"title"`

	// Journal is the venue name. Meaningful for RefArticle only.
	Journal string `json:"journal" yaml:"journal"`

	// Volume, PageFirst, and PageLast are numeric strings. PageFirst and
	// PageLast hold the sentinel "forthcoming" for papers not yet in print.
	Volume    string `json:"volume" yaml:"volume"`
	PageFirst string `json:"page_first" yaml:"page_first"`
	PageLast  string `json:"page_last" yaml:"page_last"`

	// DOI is the validated identifier in canonical 10.NNNN/suffix form,
	// or empty when no candidate passed validation.
	DOI string `json:"doi" yaml:"doi"`

	// Institution is the issuing body of a working paper.
	Institution string `json:"working_paper_institution" yaml:"working_paper_institution"`

	// BookTitle and ChapterTitle are set for RefBook entries.
	BookTitle    string `json:"book_title" yaml:"book_title"`
	ChapterTitle string `json:"chapter_title" yaml:"chapter_title"`
}

// ArticleMetadata is the structured record extracted from one saved
// article page. Absent fields stay at their zero value; extraction never
// fails a whole document over a missing or malformed field.
type ArticleMetadata struct {
	// Title is the article title.
	Title string `json:"title" yaml:"title"`

	// Authors lists article authors, de-duplicated by cleaned value,
	// in first-seen order.
	Authors []string `json:"authors" yaml:"authors"`

	// PublishedDate is the online publication date. Zero means absent.
	PublishedDate time.Time `json:"published_date" yaml:"published_date"`

	// Volume and Issue are kept as strings so leading-zero forms survive.
	Volume string `json:"volume" yaml:"volume"`
	Issue  string `json:"issue" yaml:"issue"`

	// PageFirst and PageLast bound the article's page range.
	PageFirst string `json:"page_first" yaml:"page_first"`
	PageLast  string `json:"page_last" yaml:"page_last"`

	// Citations is the cited-by count, or -1 when absent.
	Citations int `json:"citations" yaml:"citations"`

	// DOI is the article identifier with the resolver prefix stripped.
	DOI string `json:"doi" yaml:"doi"`

	// References holds the parsed bibliography in source order. Every
	// entry has at least one author.
	References []Reference `json:"references" yaml:"references"`
}

// IsEmpty reports whether extraction recovered nothing at all from the
// document. Used by the batch driver to count blank results separately
// from hard failures.
func (a ArticleMetadata) IsEmpty() bool {
	return a.Title == "" && len(a.Authors) == 0 && a.PublishedDate.IsZero() &&
		a.DOI == "" && len(a.References) == 0
}
