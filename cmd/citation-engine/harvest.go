package main

import (
	"fmt"
	"os"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"

	"github.com/pdiddy/citation-engine/internal/harvest"
	"github.com/pdiddy/citation-engine/pkg/types"
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Harvest issue links and DOIs from saved index pages",
}

var harvestVolumesCmd = &cobra.Command{
	Use:   "volumes <index.html>",
	Short: "Collect volume/issue archive links into a CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := openPage(args[0])
		if err != nil {
			return err
		}

		links := harvest.VolumeLinks(doc)
		cfg := harvestConfig(cmd)

		f, err := os.Create(cfg.VolumesOut)
		if err != nil {
			return fmt.Errorf("creating %s: %w", cfg.VolumesOut, err)
		}
		defer f.Close()

		if err := harvest.WriteVolumeCSV(f, links); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote %d links to %s\n", len(links), cfg.VolumesOut)
		return nil
	},
}

var harvestDOIsCmd = &cobra.Command{
	Use:   "dois <page.html>...",
	Short: "Collect labeled DOIs into a CSV (appends)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath := harvestConfig(cmd).DOIsOut

		total := 0
		for _, path := range args {
			doc, err := openPage(path)
			if err != nil {
				fmt.Fprintf(os.Stdout, "failed  %s: %v\n", path, err)
				continue
			}
			dois := harvest.DOILinks(doc)
			if err := harvest.AppendDOICSV(outPath, path, dois); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "scanned %s (%d DOIs)\n", path, len(dois))
			total += len(dois)
		}

		fmt.Fprintf(os.Stderr, "Appended %d DOIs to %s\n", total, outPath)
		return nil
	},
}

// harvestConfig resolves the stage settings from the command's own
// "out" flag and the config file. Each subcommand reads only its field.
func harvestConfig(cmd *cobra.Command) types.HarvestConfig {
	return types.HarvestConfig{
		VolumesOut: stringSetting(cmd, "out", "harvest.volumes_out"),
		DOIsOut:    stringSetting(cmd, "out", "harvest.dois_out"),
	}
}

// openPage parses a saved HTML file.
func openPage(path string) (*goquery.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening page %s: %w", path, err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("parsing page %s: %w", path, err)
	}
	return doc, nil
}

func init() {
	harvestVolumesCmd.Flags().String("out", "volume_links.csv", "output CSV path")
	harvestDOIsCmd.Flags().String("out", "dois.csv", "output CSV path (appended to)")

	harvestCmd.AddCommand(harvestVolumesCmd)
	harvestCmd.AddCommand(harvestDOIsCmd)
	rootCmd.AddCommand(harvestCmd)
}
