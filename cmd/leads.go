package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/homefront-labs/leadscout/internal/model"
	"github.com/homefront-labs/leadscout/internal/score"
	"github.com/homefront-labs/leadscout/internal/store"
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Inspect and manage stored leads",
}

var (
	leadsTemplate string
	leadsLimit    int
	leadsMinScore int
	leadsGoodOnly bool
)

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored leads with derived scores",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		leads, err := st.GetAllLeads(ctx, store.LeadFilter{
			Template: leadsTemplate,
			Limit:    leadsLimit,
		})
		if err != nil {
			return eris.Wrap(err, "leads list")
		}

		if len(leads) == 0 {
			fmt.Fprintln(os.Stderr, "No leads found.")
			return nil
		}

		formatLeadsList(os.Stdout, leads, time.Now(), leadsMinScore, leadsGoodOnly)
		return nil
	},
}

var leadsDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete leads by ID",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		n, err := st.DeleteLeads(ctx, args)
		if err != nil {
			return eris.Wrap(err, "leads delete")
		}
		fmt.Printf("Deleted %d lead(s)\n", n)
		return nil
	},
}

func formatLeadsList(w io.Writer, leads []model.Lead, now time.Time, minScore int, goodOnly bool) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCORE\tGOOD\tNAME\tCOMPANY\tEMAIL\tPHONE\tSOURCE\tURL")
	for _, l := range leads {
		r := score.Score(score.FromLead(l), now)
		if r.Score < minScore {
			continue
		}
		if goodOnly && !r.GoodLead {
			continue
		}
		good := ""
		if r.GoodLead {
			good = "yes"
		}
		name := strings.TrimSpace(l.FirstName + " " + l.LastName)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Score, good, name, l.CompanyName, l.Email, l.Phone, l.LeadSource, l.WebsiteURL)
	}
	tw.Flush()
}

func init() {
	leadsListCmd.Flags().StringVar(&leadsTemplate, "template", "", "filter by template name")
	leadsListCmd.Flags().IntVar(&leadsLimit, "limit", 0, "max leads to return (0 = all)")
	leadsListCmd.Flags().IntVar(&leadsMinScore, "min-score", 0, "hide leads scoring below this")
	leadsListCmd.Flags().BoolVar(&leadsGoodOnly, "good-only", false, "show only good leads")
	leadsCmd.AddCommand(leadsListCmd)
	leadsCmd.AddCommand(leadsDeleteCmd)
	rootCmd.AddCommand(leadsCmd)
}
