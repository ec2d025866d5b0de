package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/homefront-labs/leadscout/internal/model"
	"github.com/homefront-labs/leadscout/internal/store"
	"github.com/homefront-labs/leadscout/pkg/reddit"
)

var (
	cleanupApply   bool
	cleanupMaxAge  int
	cleanupNoFetch bool
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove stale reddit leads",
	Long:  "Deletes reddit leads whose post is older than the age limit or whose post date cannot be determined. Dry run by default; pass --apply to delete.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		leads, err := st.GetAllLeads(ctx, store.LeadFilter{})
		if err != nil {
			return eris.Wrap(err, "cleanup: load leads")
		}

		var redditClient reddit.Client
		if !cleanupNoFetch {
			redditClient = reddit.NewClient(reddit.WithUserAgent(cfg.Reddit.UserAgent))
		}

		stale := findStaleRedditLeads(ctx, leads, redditClient, cleanupMaxAge, time.Now())
		if len(stale) == 0 {
			fmt.Fprintln(os.Stderr, "No stale reddit leads.")
			return nil
		}

		ids := make([]string, 0, len(stale))
		for _, l := range stale {
			fmt.Printf("%s\t%s\n", l.ID, l.WebsiteURL)
			ids = append(ids, l.ID)
		}

		if !cleanupApply {
			fmt.Printf("Would delete %d lead(s). Re-run with --apply to delete.\n", len(ids))
			return nil
		}

		n, err := st.DeleteLeads(ctx, ids)
		if err != nil {
			return eris.Wrap(err, "cleanup: delete")
		}
		zap.L().Info("cleanup complete", zap.Int("deleted", n))
		fmt.Printf("Deleted %d lead(s)\n", n)
		return nil
	},
}

// findStaleRedditLeads returns reddit leads past the age limit. Leads with
// no stored post date get one lookup attempt; if the date still cannot be
// determined they are treated as stale.
func findStaleRedditLeads(ctx context.Context, leads []model.Lead, client reddit.Client, maxAgeDays int, now time.Time) []model.Lead {
	cutoff := now.AddDate(0, 0, -maxAgeDays)

	var stale []model.Lead
	for _, l := range leads {
		if l.LeadSource != model.SourceReddit {
			continue
		}

		created := l.PostCreatedAt
		if created == nil && client != nil {
			if t, err := client.PostCreatedAt(ctx, l.WebsiteURL); err == nil {
				created = &t
			} else {
				zap.L().Debug("post date lookup failed",
					zap.String("url", l.WebsiteURL), zap.Error(err))
			}
		}

		if created == nil || created.Before(cutoff) {
			stale = append(stale, l)
		}
	}
	return stale
}

func init() {
	cleanupCmd.Flags().BoolVar(&cleanupApply, "apply", false, "actually delete (default is a dry run)")
	cleanupCmd.Flags().IntVar(&cleanupMaxAge, "max-age-days", 60, "age limit for reddit posts")
	cleanupCmd.Flags().BoolVar(&cleanupNoFetch, "no-fetch", false, "skip reddit lookups for leads missing a post date")
	rootCmd.AddCommand(cleanupCmd)
}
