package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/homefront-labs/leadscout/internal/model"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate lead statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		stats, err := st.GetStats(ctx)
		if err != nil {
			return eris.Wrap(err, "stats")
		}

		formatStats(os.Stdout, stats)
		return nil
	},
}

func formatStats(w io.Writer, stats *model.Stats) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Total leads\t%d\n", stats.TotalLeads)
	fmt.Fprintf(tw, "With email\t%d\n", stats.LeadsWithEmail)
	fmt.Fprintf(tw, "With phone\t%d\n", stats.LeadsWithPhone)
	fmt.Fprintf(tw, "New today\t%d\n", stats.NewToday)
	fmt.Fprintf(tw, "Total searches\t%d\n", stats.TotalSearches)
	if stats.MostUsedTemplate != "" {
		fmt.Fprintf(tw, "Most used template\t%s\n", stats.MostUsedTemplate)
	}
	tw.Flush()
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
