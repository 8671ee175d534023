// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package htmlref

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/citation-engine/internal/textnorm"
	"github.com/pdiddy/citation-engine/pkg/types"
)

// Saved pages vary across site revisions, so every top-level field is
// resolved through an ordered chain of selectors; the first element
// present wins.
var (
	titleSelectors     = []string{"h1.citation__title", "h1.article-title"}
	authorSelectors    = []string{"a.author-name", "div.author-info"}
	dateSelectors      = []string{"span.epub-date", "span.pub-date"}
	volumeSelectors    = []string{"span.volume-issue", "div.volume-issue"}
	pageSelectors      = []string{"span.page-range", "div.page-range"}
	citationSelectors  = []string{"a.cited-by-count", "span.cited-by-count"}
	doiSelectors       = []string{"a.epub-doi", "a.article-doi"}
	referenceSelectors = []string{"ul.rlist.separator li", "ul.rlist li"}
)

var (
	// volumeIssueRe matches the combined tombstone "Volume X, Issue Y" text.
	volumeIssueRe = regexp.MustCompile(`Volume\s*(\d+),\s*Issue\s*(\d+)`)

	// articlePagesRe matches the tombstone "p. X-Y" page range.
	articlePagesRe = regexp.MustCompile(`p\.\s*(\d+)\s*[-–]\s*(\d+)`)

	// intRe matches the first integer substring of the citation count.
	intRe = regexp.MustCompile(`\d+`)
)

// dateLayout parses textual dates like "3 December 2003".
const dateLayout = "2 January 2006"

// resolverPrefix is stripped from DOI link addresses.
const resolverPrefix = "doi.org/"

// ParseArticleFile reads one saved article page and extracts its
// metadata. A file that cannot be read or parsed as HTML yields an
// all-absent record and the error; the caller logs and moves on.
func ParseArticleFile(path string) (types.ArticleMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return emptyArticle(), fmt.Errorf("opening page %s: %w", path, err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return emptyArticle(), fmt.Errorf("parsing page %s: %w", path, err)
	}
	return ParseArticle(doc), nil
}

// ParseArticle extracts the metadata record from a parsed article page.
// It never panics past its boundary: an unexpected failure yields an
// all-absent record.
func ParseArticle(doc *goquery.Document) (meta types.ArticleMetadata) {
	meta = emptyArticle()

	defer func() {
		if recover() != nil {
			meta = emptyArticle()
		}
	}()

	if sel := firstPresent(doc, titleSelectors); sel != nil {
		meta.Title = textnorm.CleanText(sel.Text())
	}

	meta.Authors = extractArticleAuthors(doc)
	meta.PublishedDate = extractDate(doc)

	if sel := firstPresent(doc, volumeSelectors); sel != nil {
		if m := volumeIssueRe.FindStringSubmatch(sel.Text()); m != nil {
			meta.Volume = m[1]
			meta.Issue = m[2]
		}
	}

	if sel := firstPresent(doc, pageSelectors); sel != nil {
		if m := articlePagesRe.FindStringSubmatch(sel.Text()); m != nil {
			meta.PageFirst = m[1]
			meta.PageLast = m[2]
		}
	}

	if sel := firstPresent(doc, citationSelectors); sel != nil {
		if m := intRe.FindString(sel.Text()); m != "" {
			if n, err := strconv.Atoi(m); err == nil {
				meta.Citations = n
			}
		}
	}

	meta.DOI = extractArticleDOI(doc)
	meta.References = extractReferences(doc)

	return meta
}

func emptyArticle() types.ArticleMetadata {
	return types.ArticleMetadata{Citations: -1}
}

// firstPresent returns the first selection matched by the ordered
// selector chain, or nil when no selector matches.
func firstPresent(doc *goquery.Document, selectors []string) *goquery.Selection {
	for _, selector := range selectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			return sel
		}
	}
	return nil
}

// extractArticleAuthors collects author names from the first populated
// author block. Per entry it prefers a nested label element's text, then
// the title attribute, then the element's own text. Names are
// de-duplicated by cleaned value in first-seen order.
func extractArticleAuthors(doc *goquery.Document) []string {
	sel := firstPresent(doc, authorSelectors)
	if sel == nil {
		return nil
	}

	var authors []string
	seen := make(map[string]bool)

	sel.Each(func(_ int, s *goquery.Selection) {
		var name string
		if span := s.Find("span").First(); span.Length() > 0 {
			name = span.Text()
		} else if title, ok := s.Attr("title"); ok && title != "" {
			name = title
		} else {
			name = s.Text()
		}

		name = textnorm.CleanText(name)
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		authors = append(authors, name)
	})

	return authors
}

// extractDate parses the publication date element. The text is a
// "<day> <Month> <year>" expression, optionally behind a label like
// "First published:". Unparsable or absent dates resolve to the zero
// time, not an error.
func extractDate(doc *goquery.Document) time.Time {
	sel := firstPresent(doc, dateSelectors)
	if sel == nil {
		return time.Time{}
	}

	text := strings.TrimSpace(sel.First().Text())
	if idx := strings.LastIndex(text, ":"); idx >= 0 {
		text = strings.TrimSpace(text[idx+1:])
	}

	t, err := time.Parse(dateLayout, text)
	if err != nil {
		return time.Time{}
	}
	return t
}

// extractArticleDOI reads the DOI link and strips the resolver prefix
// from its address, falling back to the link text.
func extractArticleDOI(doc *goquery.Document) string {
	sel := firstPresent(doc, doiSelectors)
	if sel == nil {
		return ""
	}

	value, ok := sel.First().Attr("href")
	if !ok || value == "" {
		value = strings.TrimSpace(sel.First().Text())
	}
	if idx := strings.Index(value, resolverPrefix); idx >= 0 {
		value = value[idx+len(resolverPrefix):]
	}
	return value
}

// extractReferences walks the reference-list container, strips every
// embedded hyperlink and button except DOI-resolver links (which keep
// the DOI recoverable while eliminating cited-by/search noise), and
// classifies each entry. Entries with zero extractable authors are
// low-confidence noise and are discarded.
func extractReferences(doc *goquery.Document) []types.Reference {
	var items *goquery.Selection
	for _, selector := range referenceSelectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			items = sel
			break
		}
	}
	if items == nil {
		return nil
	}

	var refs []types.Reference
	items.Each(func(_ int, li *goquery.Selection) {
		li.Find("a, button").Each(func(_ int, s *goquery.Selection) {
			if href, ok := s.Attr("href"); ok && strings.Contains(href, "doi.org") {
				return
			}
			s.Remove()
		})

		ref := ParseReference(li)
		if len(ref.Authors) > 0 {
			refs = append(refs, ref)
		}
	})

	return refs
}
