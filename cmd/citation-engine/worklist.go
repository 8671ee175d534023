package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citation-engine/internal/worklist"
)

var worklistCmd = &cobra.Command{
	Use:   "worklist",
	Short: "Convert and inspect paper worklists",
}

var worklistConvertCmd = &cobra.Command{
	Use:   "convert <titles.txt> <out.csv>",
	Short: "Convert a plain-text title list into a worklist CSV",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening titles %s: %w", args[0], err)
		}
		defer in.Close()

		out, err := os.Create(args[1])
		if err != nil {
			return fmt.Errorf("creating %s: %w", args[1], err)
		}
		defer out.Close()

		if err := worklist.TitlesToCSV(in, out); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Wrote", args[1])
		return nil
	},
}

var worklistDOIsCmd = &cobra.Command{
	Use:   "dois <worklist.csv>",
	Short: "Print the DOI column of a worklist, one per line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dois, err := worklist.ReadDOIs(args[0])
		if err != nil {
			return err
		}
		for _, doi := range dois {
			fmt.Println(doi)
		}
		return nil
	},
}

func init() {
	worklistCmd.AddCommand(worklistConvertCmd)
	worklistCmd.AddCommand(worklistDOIsCmd)
	rootCmd.AddCommand(worklistCmd)
}
