package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citation-engine/internal/htmlref"
	"github.com/pdiddy/citation-engine/internal/store"
	"github.com/pdiddy/citation-engine/pkg/types"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Maintain and query the citation index",
	Long: `Index builds a searchable SQLite index from extracted records, with
full-text search over reference titles and journals.`,
}

var indexBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Extract pages and ingest the records into the index",
	RunE: func(cmd *cobra.Command, args []string) error {
		extractCfg := types.ExtractConfig{
			PagesDir: stringSetting(cmd, "pages-dir", "extract.pages_dir"),
			Workers:  intSetting(cmd, "workers", "extract.workers"),
		}

		records, _, err := htmlref.ExtractAll(cmd.Context(), extractCfg, os.Stdout)
		if err != nil {
			return err
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		summary, err := s.Ingest(cmd.Context(), records, os.Stdout)
		if err != nil {
			return err
		}
		if summary.Failed > 0 {
			return fmt.Errorf("%d of %d articles failed to index", summary.Failed, summary.Total())
		}
		return nil
	},
}

var indexSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the citation index",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		refType, _ := cmd.Flags().GetString("type")
		year, _ := cmd.Flags().GetString("year")
		query, _ := cmd.Flags().GetString("query")
		articleID, _ := cmd.Flags().GetString("article")
		maxResults, _ := cmd.Flags().GetInt("max-results")

		opts := store.QueryOptions{
			Query:      query,
			RefType:    types.RefType(refType),
			Year:       year,
			ArticleID:  articleID,
			MaxResults: maxResults,
		}
		if opts.IsEmpty() {
			return fmt.Errorf("no query or filters given")
		}

		results, err := s.Search(cmd.Context(), opts)
		if err != nil {
			return err
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			data, err := json.MarshalIndent(results, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling results: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		for _, r := range results {
			venue := r.Journal
			if r.RefType == types.RefWorkingPaper {
				venue = r.Institution
			} else if r.RefType == types.RefBook {
				venue = r.BookTitle
			}
			fmt.Printf("%-14s %s (%s) %s | %s [%s]\n",
				r.RefType, joinOrDash(r.Authors), r.Year, r.Title, venue, r.ArticleID)
		}
		fmt.Fprintf(os.Stderr, "%d results\n", len(results))
		return nil
	},
}

var indexExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the citation index to YAML or JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		format, _ := cmd.Flags().GetString("format")
		switch format {
		case "yaml":
			return s.ExportYAML(cmd.Context())
		case "json":
			return s.ExportJSON(cmd.Context())
		default:
			return fmt.Errorf("unknown format %q: want yaml or json", format)
		}
	},
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg := types.IndexConfig{
		IndexDir:   stringSetting(cmd, "index-dir", "index.index_dir"),
		MaxResults: intSetting(cmd, "max-results", "index.max_results"),
	}
	return store.NewStore(cfg)
}

func joinOrDash(parts []string) string {
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, "; ")
}

func init() {
	for _, c := range []*cobra.Command{indexBuildCmd, indexSearchCmd, indexExportCmd} {
		c.Flags().String("index-dir", "index", "directory containing the SQLite database")
		c.Flags().Int("max-results", 20, "maximum number of search results")
	}

	indexBuildCmd.Flags().String("pages-dir", "pages", "directory of saved article HTML files")
	indexBuildCmd.Flags().Int("workers", 1, "number of pages extracted concurrently")

	indexSearchCmd.Flags().String("query", "", "full-text search over reference titles and journals")
	indexSearchCmd.Flags().String("type", "", "filter by reference type: article, working_paper, or book")
	indexSearchCmd.Flags().String("year", "", "filter by publication year")
	indexSearchCmd.Flags().String("article", "", "filter by source document ID")
	indexSearchCmd.Flags().Bool("json", false, "output results as JSON")

	indexExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	indexCmd.AddCommand(indexBuildCmd)
	indexCmd.AddCommand(indexSearchCmd)
	indexCmd.AddCommand(indexExportCmd)
	rootCmd.AddCommand(indexCmd)
}
