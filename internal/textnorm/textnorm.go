// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textnorm cleans raw text fragments captured from citation markup.
//
// Citation pages frequently bleed adjacent-field text into a single DOM
// text node, so every transform here is a defensive truncate-on-noise
// heuristic: each rule names one noise pattern and cuts the text at its
// first appearance. The transforms trade recall for precision and make no
// attempt at grammatical parsing.
package textnorm

import (
	"regexp"
	"strings"
)

// Noise rules applied by CleanText, in order.
var (
	// doiBleedRe matches an embedded DOI and everything after it.
	doiBleedRe = regexp.MustCompile(`10\.\d{4,}.*$`)

	// ornamentRe matches citation-database decorations appended by the
	// publisher ("Web of Science®", "Google Scholar", ...).
	ornamentRe = regexp.MustCompile(`Web of Science®|Google Scholar|CrossRef|PubMed|Scopus`)

	// pageBleedRe matches a page-range pattern and everything after it.
	pageBleedRe = regexp.MustCompile(`\d+[-–]\d+.*$`)

	// numWordBleedRe matches a number followed by prose, a volume/venue
	// fragment bleeding into the field.
	numWordBleedRe = regexp.MustCompile(`\d+\s+[A-Za-z].*$`)

	// spaceRunRe matches runs of whitespace and control characters.
	spaceRunRe = regexp.MustCompile(`\s+`)

	// trailingParenRe matches a parenthetical at the end of the text.
	trailingParenRe = regexp.MustCompile(`\s*\([^)]*\)\s*$`)

	// trailingYearRe matches a publication year and everything after it.
	trailingYearRe = regexp.MustCompile(`\s*(19|20)\d{2}.*$`)
)

// trimCutset is stripped from both ends after the noise rules run.
// Brackets are deliberately not included; CleanJournal inspects them.
const trimCutset = " \t.,;:"

// CleanText is the baseline transform every other cleaner applies first.
// It removes the noise patterns above, collapses whitespace runs to single
// spaces, and strips leading/trailing punctuation. Empty input yields the
// empty string. CleanText is idempotent.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	s = doiBleedRe.ReplaceAllString(s, "")
	s = ornamentRe.ReplaceAllString(s, "")
	s = pageBleedRe.ReplaceAllString(s, "")
	s = numWordBleedRe.ReplaceAllString(s, "")
	s = spaceRunRe.ReplaceAllString(s, " ")

	// Tail ornaments can nest ("Title (note)."): stripped punctuation may
	// expose a parenthetical or year, so these rules run to a fixpoint.
	for {
		prev := s
		s = trailingParenRe.ReplaceAllString(s, "")
		s = trailingYearRe.ReplaceAllString(s, "")
		s = strings.Trim(s, trimCutset)
		if s == prev {
			return s
		}
	}
}

// journalSignalWords mark journal-name content. A second occurrence of
// any one of them means trailing venue noise was concatenated onto the
// field, so the text is cut at the start of the second match.
var journalSignalWords = []string{"Journal", "Proceedings", "Conference", "Transactions"}

// Truncation rules shared by CleanJournal and CleanAuthors.
var (
	// digitBleedRe matches a digit run and everything after it.
	digitBleedRe = regexp.MustCompile(`\s*\d+.*$`)

	// bareYearBleedRe matches any 4-digit run and everything after it.
	bareYearBleedRe = regexp.MustCompile(`\s*\d{4}.*$`)

	// signalWordBleedRe matches a journal signal word bleeding into an
	// author field.
	signalWordBleedRe = regexp.MustCompile(`\s*(?:Journal|Proceedings|Conference)\s+.*$`)

	// connectorBleedRes match connector words that begin trailing noise
	// ("... using high-frequency data", "... for the cross-section").
	connectorBleedRes = []*regexp.Regexp{
		regexp.MustCompile(`\s*using\s+.*$`),
		regexp.MustCompile(`\s*with\s+.*$`),
		regexp.MustCompile(`\s*based\s+on\s+.*$`),
		regexp.MustCompile(`\s*for\s+.*$`),
		regexp.MustCompile(`\s*in\s+.*$`),
	}
)

// CleanJournal extracts a journal name from a field that may carry
// trailing author or venue noise. Text beginning with an opening bracket
// is treated as non-journal content and dropped entirely.
func CleanJournal(s string) string {
	s = CleanText(s)
	if s == "" {
		return ""
	}

	for _, word := range journalSignalWords {
		if second := secondIndex(s, word); second >= 0 {
			s = strings.TrimSpace(s[:second])
		}
	}

	if strings.HasPrefix(s, "[") {
		return ""
	}

	s = digitBleedRe.ReplaceAllString(s, "")
	for _, re := range connectorBleedRes {
		s = re.ReplaceAllString(s, "")
	}
	return strings.TrimSpace(s)
}

// secondIndex returns the byte offset of the second occurrence of sub in
// s, or -1 if sub occurs fewer than twice.
func secondIndex(s, sub string) int {
	first := strings.Index(s, sub)
	if first < 0 {
		return -1
	}
	rest := strings.Index(s[first+len(sub):], sub)
	if rest < 0 {
		return -1
	}
	return first + len(sub) + rest
}

// CleanAuthors extracts author names from a field that may carry trailing
// year, venue, or title noise. Same truncation policy as CleanJournal,
// targeted at author-field contamination.
func CleanAuthors(s string) string {
	s = CleanText(s)
	if s == "" {
		return ""
	}
	s = bareYearBleedRe.ReplaceAllString(s, "")
	s = signalWordBleedRe.ReplaceAllString(s, "")
	for _, re := range connectorBleedRes {
		s = re.ReplaceAllString(s, "")
	}
	return strings.TrimSpace(s)
}

// yearRe matches a 4-digit year in 1900-2099.
var yearRe = regexp.MustCompile(`(19|20)\d{2}`)

// ExtractYear returns the first 4-digit year found in the text, or the
// empty string.
func ExtractYear(s string) string {
	return yearRe.FindString(s)
}

// digitRunRe matches the first run of digits.
var digitRunRe = regexp.MustCompile(`\d+`)

// CleanPages returns the first digit run in the text. Multi-part page
// fields ("123a") lose their suffix; that is the intended behavior.
func CleanPages(s string) string {
	return digitRunRe.FindString(s)
}

// CleanVolume returns the first digit run in the text. Roman-numeral
// volumes yield the empty string.
func CleanVolume(s string) string {
	return digitRunRe.FindString(s)
}

// Rules applied by SplitName.
var (
	// nameNoiseRe matches digits, brackets, and parentheses inside a name.
	nameNoiseRe = regexp.MustCompile(`[\d\[\]()]`)

	// bareInitialMidRe matches an isolated single letter between spaces, a
	// stray initial whose period was lost.
	bareInitialMidRe = regexp.MustCompile(`\s+[A-Za-z]\s+`)

	// bareInitialEndRe matches an isolated single letter ending the name.
	bareInitialEndRe = regexp.MustCompile(`\s+[A-Za-z]$`)
)

// SplitName strips digits, brackets, parens, and bare single-letter
// initials from an author name, then applies the baseline clean.
func SplitName(s string) string {
	s = nameNoiseRe.ReplaceAllString(s, "")
	s = bareInitialMidRe.ReplaceAllString(s, " ")
	s = bareInitialEndRe.ReplaceAllString(s, "")
	return CleanText(s)
}
