package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citation-engine/internal/htmlref"
	"github.com/pdiddy/citation-engine/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract [pages...]",
	Short: "Extract article metadata and references from saved pages",
	Long: `Extract parses saved article HTML and produces one structured record
per page: title, authors, publication date, volume/issue, page range,
citation count, DOI, and the parsed reference list. Pages that fail to
parse are reported and skipped; they never abort the rest of the batch.

Pass page files as arguments, or --batch to process every .html file in
--pages-dir.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		batch, _ := cmd.Flags().GetBool("batch")
		if !batch && len(args) == 0 {
			return fmt.Errorf("no pages given: pass page files or --batch")
		}

		cfg := types.ExtractConfig{
			PagesDir:  stringSetting(cmd, "pages-dir", "extract.pages_dir"),
			OutputDir: stringSetting(cmd, "output-dir", "extract.output_dir"),
			Workers:   intSetting(cmd, "workers", "extract.workers"),
		}

		var (
			records []htmlref.ArticleRecord
			summary htmlref.BatchSummary
		)

		if batch {
			var err error
			records, summary, err = htmlref.ExtractAll(cmd.Context(), cfg, os.Stdout)
			if err != nil {
				return err
			}
		} else {
			records, summary = extractFiles(args)
		}

		outJSON, _ := cmd.Flags().GetString("out-json")
		outCSV, _ := cmd.Flags().GetString("out-csv")

		// Batch runs without explicit output paths write both projections
		// into the output directory.
		if batch && outJSON == "" && outCSV == "" {
			if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
			outJSON = filepath.Join(cfg.OutputDir, "articles.json")
			outCSV = filepath.Join(cfg.OutputDir, "references.csv")
		}

		if outJSON != "" {
			if err := htmlref.WriteJSON(outJSON, records); err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, "Wrote", outJSON)
		}
		if outCSV != "" {
			if err := htmlref.WriteCSV(outCSV, records); err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, "Wrote", outCSV)
		}

		if summary.HasFailures() {
			return fmt.Errorf("%d of %d pages failed", summary.Failed, summary.Total())
		}
		return nil
	},
}

// extractFiles handles explicit page arguments, with the same
// per-document failure isolation as the batch path.
func extractFiles(paths []string) ([]htmlref.ArticleRecord, htmlref.BatchSummary) {
	var (
		records []htmlref.ArticleRecord
		summary htmlref.BatchSummary
	)
	for _, path := range paths {
		meta, err := htmlref.ParseArticleFile(path)
		if err != nil {
			fmt.Fprintf(os.Stdout, "failed    %s: %v\n", path, err)
			summary.Failed++
			continue
		}
		record := htmlref.ArticleRecord{DocID: htmlref.DocID(path), Article: meta}
		if meta.IsEmpty() {
			fmt.Fprintf(os.Stdout, "empty     %s\n", record.DocID)
			summary.Empty++
		} else {
			fmt.Fprintf(os.Stdout, "extracted %s (%d references)\n", record.DocID, len(meta.References))
			summary.Extracted++
		}
		records = append(records, record)
	}
	return records, summary
}

func init() {
	extractCmd.Flags().String("pages-dir", "pages", "directory of saved article HTML files")
	extractCmd.Flags().String("output-dir", "output", "directory for batch output files")
	extractCmd.Flags().String("out-json", "", "write per-article JSON to this path")
	extractCmd.Flags().String("out-csv", "", "write row-per-reference CSV to this path")
	extractCmd.Flags().Int("workers", 1, "number of pages extracted concurrently")
	extractCmd.Flags().Bool("batch", false, "process every .html file in pages-dir")

	rootCmd.AddCommand(extractCmd)
}
