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

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent search runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		entries, err := st.GetSearchHistory(ctx, historyLimit)
		if err != nil {
			return eris.Wrap(err, "history")
		}

		if len(entries) == 0 {
			fmt.Fprintln(os.Stderr, "No search history.")
			return nil
		}

		formatHistory(os.Stdout, entries)
		return nil
	},
}

func formatHistory(w io.Writer, entries []model.SearchHistoryEntry) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tTEMPLATE\tLOCATIONS\tRESULTS\tNEW\tDUPES")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\n",
			e.Timestamp.Format("2006-01-02 15:04"),
			e.Template, e.Locations, e.NumResults, e.NewLeads, e.DuplicateLeads)
	}
	tw.Flush()
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "max entries to show")
	rootCmd.AddCommand(historyCmd)
}
