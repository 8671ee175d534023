// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package htmlref extracts structured bibliographic records from saved
// article pages. reference.go classifies one reference-list entry and
// pulls its type-specific fields out of irregular citation markup.
package htmlref

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/citation-engine/internal/textnorm"
	"github.com/pdiddy/citation-engine/pkg/types"
)

// Selectors for the tagged sub-fields of a reference entry.
const (
	selAuthor       = ".author"
	selPubYear      = ".pubYear"
	selArticleTitle = ".articleTitle"
	selChapterTitle = ".chapterTitle"
	selBookTitle    = ".bookTitle"
	selOtherTitle   = ".otherTitle"
	selItalic       = "i, em"
	selVol          = ".vol"
	selPageFirst    = ".pageFirst"
	selPageLast     = ".pageLast"
)

var (
	// refYearRe matches a 4-digit publication year.
	refYearRe = regexp.MustCompile(`(19|20)\d{2}`)

	// workingPaperRe captures the institution that follows a "working
	// paper" marker, up to a year, sentence terminator, or end of text.
	workingPaperRe = regexp.MustCompile(`[Ww]orking\s+[Pp]aper,?\s*(.*?)(?:\s*\d{4}|\s*$|[,.])`)

	// institutionRe matches an organizational name by its suffix word.
	institutionRe = regexp.MustCompile(`(?:[A-Z][A-Za-z&'.-]+\s+)*(?:University|Institute|College|School)(?:\s+of(?:\s+[A-Z][A-Za-z]+)+)?`)

	// volMarkerRe matches an explicit volume marker after the journal name.
	volMarkerRe = regexp.MustCompile(`(?:Vol(?:ume)?\.?\s*)(\d+)`)

	// bareVolRe matches a bare "N," volume token.
	bareVolRe = regexp.MustCompile(`(\d+)\s*,`)

	// pageRangeRe matches a "first-last" page range with an optional
	// "pp."/"p." prefix.
	pageRangeRe = regexp.MustCompile(`(?:pp?\.\s*)?(\d+)\s*[-–]\s*(\d+)`)

	// doiShapeRe is the canonical DOI shape; candidates that fail it are
	// discarded rather than kept.
	doiShapeRe = regexp.MustCompile(`^10\.\d{4,}/[-._;()/:\w]+$`)

	// doiTextRe finds a DOI in free text after a "doi:" label or a
	// resolver URL prefix.
	doiTextRe = regexp.MustCompile(`(?:doi:?\s*|https?://(?:dx\.)?doi\.org/)(10\.\d{4,}/[-._;()/:\w]+)`)
)

// ParseReference classifies one reference-entry fragment and extracts its
// fields. The caller is expected to have stripped non-DOI hyperlinks and
// buttons beforehand. It never panics past its boundary: any internal
// failure yields the record accumulated so far, with remaining fields
// left absent.
func ParseReference(sel *goquery.Selection) (ref types.Reference) {
	ref = types.Reference{RefType: types.RefArticle}

	defer func() {
		// A malformed fragment must not abort the surrounding document.
		_ = recover()
	}()

	ref.Authors = extractRefAuthors(sel)

	if yearText, ok := firstText(sel, selPubYear); ok {
		ref.Year = textnorm.ExtractYear(yearText)
	}

	fullText := sel.Text()
	classify(sel, fullText, &ref)
	applyTitleFields(sel, &ref)
	splitTitleJournal(&ref)

	if ref.RefType == types.RefArticle {
		extractVolumeAndPages(sel, fullText, &ref)
	} else {
		// Dedicated numeric fields are still read when tagged; heuristic
		// passes may disagree with the assigned type and consumers ignore
		// the extras.
		readTaggedNumbers(sel, &ref)
	}

	ref.DOI = extractDOI(sel, fullText)
	applyForthcoming(&ref)

	return ref
}

// extractRefAuthors cleans every tagged author element. Results shorter
// than three characters are treated as parsing noise (stray initials)
// and dropped.
func extractRefAuthors(sel *goquery.Selection) []string {
	var authors []string
	sel.Find(selAuthor).Each(func(_ int, s *goquery.Selection) {
		name := textnorm.CleanAuthors(s.Text())
		name = textnorm.SplitName(name)
		if len(name) <= 2 {
			return
		}
		name = strings.Trim(name, ", ")
		if name != "" {
			authors = append(authors, name)
		}
	})
	return authors
}

// classify assigns the reference type by the first matching rule:
//
//  1. the fragment text contains "working paper" → working paper
//  2. the fragment has an italicized venue → article
//  3. otherwise → book
//
// The type is set exactly once here; only the other-title override in
// applyTitleFields may change it afterwards.
func classify(sel *goquery.Selection, fullText string, ref *types.Reference) {
	lower := strings.ToLower(fullText)

	if idx := strings.Index(lower, "working paper"); idx >= 0 {
		ref.RefType = types.RefWorkingPaper
		if m := workingPaperRe.FindStringSubmatch(fullText); m != nil {
			if inst := strings.Trim(m[1], "., "); inst != "" {
				ref.Institution = inst
			}
		}
		// Title sits between the year marker and the working-paper marker
		// when both are locatable.
		if loc := refYearRe.FindStringIndex(fullText); loc != nil && loc[1] < idx {
			if title := textnorm.CleanText(fullText[loc[1]:idx]); title != "" {
				ref.Title = title
			}
		}
		return
	}

	italics := sel.Find(selItalic)
	if italics.Length() > 0 {
		ref.RefType = types.RefArticle
		var parts []string
		italics.Each(func(_ int, s *goquery.Selection) {
			if j := textnorm.CleanJournal(s.Text()); j != "" {
				parts = append(parts, j)
			}
		})
		ref.Journal = strings.Join(parts, " ")
		return
	}

	ref.RefType = types.RefBook
}

// applyTitleFields overwrites title fields from the dedicated tagged
// elements; structured fields take precedence over the text heuristics in
// classify. An other-title that itself mentions a working or discussion
// paper reclassifies the entry after the fact.
func applyTitleFields(sel *goquery.Selection, ref *types.Reference) {
	if text, ok := firstText(sel, selChapterTitle); ok {
		ref.ChapterTitle = textnorm.CleanText(text)
	}
	if text, ok := firstText(sel, selBookTitle); ok {
		ref.BookTitle = textnorm.CleanText(text)
	}

	if text, ok := firstText(sel, selArticleTitle); ok {
		ref.Title = textnorm.CleanText(text)
		return
	}

	text, ok := firstText(sel, selOtherTitle)
	if !ok {
		return
	}
	ref.Title = textnorm.CleanText(text)

	lower := strings.ToLower(text)
	if strings.Contains(lower, "working paper") || strings.Contains(lower, "discussion paper") {
		ref.RefType = types.RefWorkingPaper
		if ref.Institution == "" {
			if inst := institutionRe.FindString(sel.Text()); inst != "" {
				ref.Institution = inst
			}
		}
	}
}

// splitTitleJournal recovers a venue that bled into the title field.
// Some entries carry "Title Journal of X" in one node; the venue half is
// moved into the journal field when that field is still empty.
func splitTitleJournal(ref *types.Reference) {
	const marker = " Journal of "
	if ref.Title == "" || !strings.Contains(ref.Title, marker) {
		return
	}
	parts := strings.SplitN(ref.Title, marker, 2)
	ref.Title = textnorm.CleanText(parts[0])
	if ref.Journal == "" {
		ref.Journal = "Journal of " + textnorm.CleanText(parts[1])
	}
}

// readTaggedNumbers reads the dedicated volume and page elements.
func readTaggedNumbers(sel *goquery.Selection, ref *types.Reference) {
	if text, ok := firstText(sel, selVol); ok {
		ref.Volume = textnorm.CleanVolume(text)
	}
	if text, ok := firstText(sel, selPageFirst); ok {
		ref.PageFirst = textnorm.CleanPages(text)
	}
	if text, ok := firstText(sel, selPageLast); ok {
		ref.PageLast = textnorm.CleanPages(text)
	}
}

// extractVolumeAndPages fills volume and page bounds for article
// references. Dedicated tagged elements win; otherwise the text following
// the journal name is scanned for a "Vol. N" marker, a bare "N," token,
// and a "first-last" page range.
func extractVolumeAndPages(sel *goquery.Selection, fullText string, ref *types.Reference) {
	readTaggedNumbers(sel, ref)
	if ref.Volume != "" && ref.PageFirst != "" && ref.PageLast != "" {
		return
	}

	after := fullText
	if ref.Journal != "" {
		if idx := strings.Index(fullText, ref.Journal); idx >= 0 {
			after = fullText[idx+len(ref.Journal):]
		}
	}

	if ref.Volume == "" {
		if m := volMarkerRe.FindStringSubmatch(after); m != nil {
			ref.Volume = m[1]
		} else if m := bareVolRe.FindStringSubmatch(after); m != nil {
			ref.Volume = m[1]
		}
	}

	if ref.PageFirst == "" || ref.PageLast == "" {
		// Scan past the volume token so "56, 1-30" does not reuse 56.
		scan := after
		if ref.Volume != "" {
			if idx := strings.Index(scan, ref.Volume); idx >= 0 {
				scan = scan[idx+len(ref.Volume):]
			}
		}
		if m := pageRangeRe.FindStringSubmatch(scan); m != nil {
			ref.PageFirst = m[1]
			ref.PageLast = m[2]
		}
	}
}

// extractDOI tries the candidate DOI locations in fixed priority order
// and validates the winner against the canonical shape. Invalid
// candidates resolve to absent rather than being kept.
func extractDOI(sel *goquery.Selection, fullText string) string {
	var doi string

	// 1. A dedicated DOI-bearing element: the data-doi attribute, else the
	// hidden element's own text.
	if attr, ok := sel.Find("[data-doi]").First().Attr("data-doi"); ok && attr != "" {
		doi = attr
	}
	if doi == "" {
		sel.Find(".hidden").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			for _, tok := range strings.Fields(s.Text()) {
				if strings.HasPrefix(tok, "10.") {
					doi = tok
					return false
				}
			}
			return true
		})
	}

	// 2. Any hyperlink through a DOI resolver.
	if doi == "" {
		sel.Find("a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			href, ok := s.Attr("href")
			if !ok || !strings.Contains(href, "doi.org") {
				return true
			}
			if idx := strings.Index(href, "doi.org/"); idx >= 0 {
				doi = href[idx+len("doi.org/"):]
			}
			return doi == ""
		})
	}

	// 3. Free-text scan for a labeled DOI.
	if doi == "" {
		if m := doiTextRe.FindStringSubmatch(fullText); m != nil {
			doi = m[1]
		}
	}

	doi = strings.Trim(doi, ".,; ")
	if !doiShapeRe.MatchString(doi) {
		return ""
	}
	return doi
}

// applyForthcoming handles papers cited before print: the token is
// stripped from the journal name and both page bounds become the
// "forthcoming" sentinel.
func applyForthcoming(ref *types.Reference) {
	if !strings.Contains(strings.ToLower(ref.Journal), "forthcoming") {
		return
	}
	j := strings.ReplaceAll(ref.Journal, ", forthcoming", "")
	j = strings.ReplaceAll(j, "forthcoming", "")
	ref.Journal = strings.Trim(j, ", ")
	ref.PageFirst = "forthcoming"
	ref.PageLast = "forthcoming"
}

// firstText returns the text of the first element matching the selector.
func firstText(sel *goquery.Selection, selector string) (string, bool) {
	found := sel.Find(selector).First()
	if found.Length() == 0 {
		return "", false
	}
	return found.Text(), true
}
