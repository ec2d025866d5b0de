package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/homefront-labs/leadscout/internal/pipeline"
)

var (
	searchTemplate      string
	searchLocations     []string
	searchSites         []string
	searchMaxResults    int
	searchIncludeEmails bool
	searchStrict        bool
	searchPlaces        bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run a discovery search and store new leads",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		maxResults := searchMaxResults
		if maxResults == 0 {
			maxResults = cfg.Search.MaxResults
		}

		result, err := env.Pipeline.Run(ctx, pipeline.RunParams{
			Template:         searchTemplate,
			Locations:        searchLocations,
			Sites:            searchSites,
			MaxResults:       maxResults,
			IncludeEmails:    searchIncludeEmails,
			Strict:           searchStrict,
			UsePlaces:        searchPlaces,
			RedditMaxAgeDays: cfg.Search.RedditMaxAgeDays,
		})
		if err != nil {
			return eris.Wrap(err, "search run")
		}

		zap.L().Info("search complete",
			zap.String("template", searchTemplate),
			zap.Int("fetched", result.ResultsFetched),
			zap.Int("new", len(result.NewLeads)),
			zap.Int("duplicates", result.DuplicateLeads),
			zap.Int("api_queries", result.APIQueriesUsed),
		)

		return writeRunResult(os.Stdout, result)
	},
}

func writeRunResult(w io.Writer, result *pipeline.RunResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func init() {
	searchCmd.Flags().StringVar(&searchTemplate, "template", "", "search template name (required, see: leadscout templates list)")
	searchCmd.Flags().StringSliceVar(&searchLocations, "locations", nil, "target locations, e.g. \"Austin, TX\" (required)")
	searchCmd.Flags().StringSliceVar(&searchSites, "sites", nil, "override the template's site restriction")
	searchCmd.Flags().IntVar(&searchMaxResults, "max-results", 0, "max search results to fetch (default from config)")
	searchCmd.Flags().BoolVar(&searchIncludeEmails, "include-emails", false, "bias the query toward pages exposing consumer email addresses")
	searchCmd.Flags().BoolVar(&searchStrict, "strict", false, "drop results without an intent or keyword match")
	searchCmd.Flags().BoolVar(&searchPlaces, "places", false, "also query Google Places for local businesses")
	_ = searchCmd.MarkFlagRequired("template")
	_ = searchCmd.MarkFlagRequired("locations")
	rootCmd.AddCommand(searchCmd)
}
