package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"carereviews/cli/api"
	"carereviews/cli/export"
)

var (
	exportOpts api.ListOptions
	exportOut  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export published reviews to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		reviews, err := newClient().ListReviews(exportOpts)
		if err != nil {
			return err
		}
		raw, err := export.GenerateReviewExport(reviews)
		if err != nil {
			return err
		}
		if err := os.WriteFile(exportOut, raw, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d review(s) to %s\n", len(reviews), exportOut)
		return nil
	},
}

func init() {
	addListFlags(exportCmd, &exportOpts)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "reviews.xlsx", "output file")
	rootCmd.AddCommand(exportCmd)
}
