// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestVolumeLinks(t *testing.T) {
	doc := parseDoc(t, `<html><body>
<a href="https://afajof.org/issue/volume-76-issue-2/">Vol 76 Iss 2</a>
<a href="https://afajof.org/about/">About</a>
<a href="https://afajof.org/issue/volume-9-issue-1/">Vol 9 Iss 1</a>
<a href="https://example.com/issue/volume-1-issue-1/">elsewhere</a>
</body></html>`)

	links := VolumeLinks(doc)

	if len(links) != 2 {
		t.Fatalf("got %d links, want 2", len(links))
	}
	if links[0].Volume != 76 || links[0].Issue != 2 {
		t.Errorf("links[0] = %+v, want volume 76 issue 2", links[0])
	}
	if links[1].Volume != 9 || links[1].Issue != 1 {
		t.Errorf("links[1] = %+v, want volume 9 issue 1", links[1])
	}
	if links[0].URL != "https://afajof.org/issue/volume-76-issue-2/" {
		t.Errorf("links[0].URL = %q", links[0].URL)
	}
}

func TestDOILinks(t *testing.T) {
	doc := parseDoc(t, `<html><body>
<p>First article DOI: 10.1111/jofi.13022 and more text</p>
<p>Second DOI: 10.1111/jofi.13023</p>
<p>Repeat DOI: 10.1111/jofi.13022</p>
<p>No label here 10.1111/jofi.99999</p>
</body></html>`)

	dois := DOILinks(doc)

	want := []string{"10.1111/jofi.13022", "10.1111/jofi.13023", "10.1111/jofi.13022"}
	if len(dois) != len(want) {
		t.Fatalf("dois = %v, want %v", dois, want)
	}
	for i := range want {
		if dois[i] != want[i] {
			t.Errorf("dois[%d] = %q, want %q", i, dois[i], want[i])
		}
	}
}

func TestWriteVolumeCSV(t *testing.T) {
	var buf strings.Builder
	links := []VolumeLink{
		{Volume: 76, Issue: 2, URL: "https://afajof.org/issue/volume-76-issue-2/"},
	}
	if err := WriteVolumeCSV(&buf, links); err != nil {
		t.Fatalf("WriteVolumeCSV: %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0][0] != "Volume" || rows[0][1] != "Issue" || rows[0][2] != "URL" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "76" || rows[1][1] != "2" {
		t.Errorf("row = %v", rows[1])
	}
}

func TestAppendDOICSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dois.csv")

	if err := AppendDOICSV(path, "page-1", []string{"10.1111/jofi.1"}); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := AppendDOICSV(path, "page-2", []string{"10.1111/jofi.2"}); err != nil {
		t.Fatalf("second append: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	// One header despite two appends.
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0][0] != "DOI" || rows[0][1] != "Source URL" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][1] != "page-1" || rows[2][1] != "page-2" {
		t.Errorf("source columns = %q, %q", rows[1][1], rows[2][1])
	}
}
