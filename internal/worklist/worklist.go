// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package worklist converts and reads the paper worklists that drive
// batch acquisition.
package worklist

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// TitlesToCSV converts a plain-text file of one paper title per line
// into a single-column CSV. Blank lines are skipped.
func TitlesToCSV(in io.Reader, out io.Writer) error {
	w := csv.NewWriter(out)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		title := strings.TrimSpace(scanner.Text())
		if title == "" {
			continue
		}
		if err := w.Write([]string{title}); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading titles: %w", err)
	}

	w.Flush()
	return w.Error()
}

// ReadDOIs reads the DOI column of a worklist CSV. The header row names
// the columns; files without a DOI column are an error.
func ReadDOIs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening worklist %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading worklist header: %w", err)
	}

	doiCol := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), "DOI") {
			doiCol = i
			break
		}
	}
	if doiCol < 0 {
		return nil, fmt.Errorf("worklist %s has no DOI column", path)
	}

	var dois []string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading worklist row: %w", err)
		}
		if doiCol >= len(row) {
			continue
		}
		if doi := strings.TrimSpace(row[doiCol]); doi != "" {
			dois = append(dois, doi)
		}
	}
	return dois, nil
}
