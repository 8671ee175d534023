// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package htmlref

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// ArticleRecord pairs an extracted record with its source document ID
// (the page filename without extension).
type ArticleRecord struct {
	DocID   string                `json:"doc_id" yaml:"doc_id"`
	Article types.ArticleMetadata `json:"article" yaml:"article"`
}

// BatchSummary holds counts from a batch extraction run.
type BatchSummary struct {
	Extracted int
	Empty     int
	Failed    int
}

// Total returns the number of documents processed.
func (s BatchSummary) Total() int {
	return s.Extracted + s.Empty + s.Failed
}

// HasFailures reports whether any documents failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// ExtractAll extracts every .html file in cfg.PagesDir. Documents are
// independent, so they are processed by a pool of cfg.Workers goroutines;
// results come back in input order regardless of completion order. A
// document that fails to parse is reported and skipped without affecting
// its siblings.
func ExtractAll(ctx context.Context, cfg types.ExtractConfig, w io.Writer) ([]ArticleRecord, BatchSummary, error) {
	entries, err := os.ReadDir(cfg.PagesDir)
	if err != nil {
		return nil, BatchSummary{}, fmt.Errorf("reading pages directory %s: %w", cfg.PagesDir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".html") {
			continue
		}
		paths = append(paths, filepath.Join(cfg.PagesDir, entry.Name()))
	}
	sort.Strings(paths)

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	type outcome struct {
		record ArticleRecord
		err    error
	}
	outcomes := make([]outcome, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var mu sync.Mutex
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			meta, err := ParseArticleFile(path)
			record := ArticleRecord{DocID: DocID(path), Article: meta}
			mu.Lock()
			outcomes[i] = outcome{record: record, err: err}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, BatchSummary{}, err
	}

	var (
		results []ArticleRecord
		summary BatchSummary
	)
	for _, o := range outcomes {
		switch {
		case o.err != nil:
			fmt.Fprintf(w, "failed    %s: %v\n", o.record.DocID, o.err)
			summary.Failed++
		case o.record.Article.IsEmpty():
			fmt.Fprintf(w, "empty     %s\n", o.record.DocID)
			summary.Empty++
			results = append(results, o.record)
		default:
			fmt.Fprintf(w, "extracted %s (%d references)\n",
				o.record.DocID, len(o.record.Article.References))
			summary.Extracted++
			results = append(results, o.record)
		}
	}

	fmt.Fprintf(w, "\nextracted: %d, empty: %d, failed: %d\n",
		summary.Extracted, summary.Empty, summary.Failed)

	return results, summary, nil
}

// DocID derives the document identifier from the page path.
func DocID(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
