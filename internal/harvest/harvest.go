// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package harvest collects volume/issue links and DOIs from saved
// journal index pages. It is a single-pass scrape over HTML already on
// disk; fetching the pages is someone else's problem.
package harvest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"

	"github.com/PuerkitoBio/goquery"
)

// VolumeLink is one issue-archive link.
type VolumeLink struct {
	Volume int
	Issue  int
	URL    string
}

var (
	// volumeLinkRe matches issue-archive hrefs like
	// https://afajof.org/issue/volume-76-issue-2/.
	volumeLinkRe = regexp.MustCompile(`^https://afajof\.org/issue/volume-(\d+)-issue-(\d+)/$`)

	// doiLabelRe matches labeled DOIs in issue-page text.
	doiLabelRe = regexp.MustCompile(`DOI:\s*(\d+\.\d+/jofi\.\d+)`)
)

// VolumeLinks returns every hyperlink in the document whose address is
// an issue-archive link, in document order.
func VolumeLinks(doc *goquery.Document) []VolumeLink {
	var links []VolumeLink
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		m := volumeLinkRe.FindStringSubmatch(href)
		if m == nil {
			return
		}
		volume, _ := strconv.Atoi(m[1])
		issue, _ := strconv.Atoi(m[2])
		links = append(links, VolumeLink{Volume: volume, Issue: issue, URL: href})
	})
	return links
}

// DOILinks returns every labeled DOI in the document's text, in
// document order. Duplicates are kept; the worklist consumer dedupes.
func DOILinks(doc *goquery.Document) []string {
	var dois []string
	for _, m := range doiLabelRe.FindAllStringSubmatch(doc.Text(), -1) {
		dois = append(dois, m[1])
	}
	return dois
}

// WriteVolumeCSV writes harvested volume links with a Volume,Issue,URL
// header.
func WriteVolumeCSV(w io.Writer, links []VolumeLink) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Volume", "Issue", "URL"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, l := range links {
		row := []string{strconv.Itoa(l.Volume), strconv.Itoa(l.Issue), l.URL}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// AppendDOICSV appends harvested DOIs to path with their source page,
// writing the DOI,Source URL header only when the file is new or empty.
func AppendDOICSV(path, source string, dois []string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	cw := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := cw.Write([]string{"DOI", "Source URL"}); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for _, doi := range dois {
		if err := cw.Write([]string{doi, source}); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
