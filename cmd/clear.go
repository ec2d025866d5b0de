package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all leads and search history",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !clearYes {
			return eris.New("refusing to clear without --yes")
		}

		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.ClearAll(ctx); err != nil {
			return eris.Wrap(err, "clear")
		}
		fmt.Println("All leads and search history cleared.")
		return nil
	},
}

func init() {
	clearCmd.Flags().BoolVar(&clearYes, "yes", false, "confirm deletion")
	rootCmd.AddCommand(clearCmd)
}
