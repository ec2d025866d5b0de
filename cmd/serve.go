package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/homefront-labs/leadscout/internal/pipeline"
	"github.com/homefront-labs/leadscout/internal/score"
	"github.com/homefront-labs/leadscout/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		mux := buildMux(env, cfg.Search.RedditMaxAgeDays)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// buildMux wires the HTTP routes. Split out of the serve command so the
// routing can be tested without binding a port.
func buildMux(env *pipelineEnv, redditMaxAgeDays int) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /search", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Template      string   `json:"template"`
			Locations     []string `json:"locations"`
			Sites         []string `json:"sites"`
			MaxResults    int      `json:"max_results"`
			IncludeEmails bool     `json:"include_emails"`
			Strict        bool     `json:"strict"`
			UsePlaces     bool     `json:"use_places"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.Template == "" {
			http.Error(w, `{"error":"template is required"}`, http.StatusBadRequest)
			return
		}
		if len(req.Locations) == 0 {
			http.Error(w, `{"error":"locations is required"}`, http.StatusBadRequest)
			return
		}

		result, err := env.Pipeline.Run(r.Context(), pipeline.RunParams{
			Template:         req.Template,
			Locations:        req.Locations,
			Sites:            req.Sites,
			MaxResults:       req.MaxResults,
			IncludeEmails:    req.IncludeEmails,
			Strict:           req.Strict,
			UsePlaces:        req.UsePlaces,
			RedditMaxAgeDays: redditMaxAgeDays,
		})
		if err != nil {
			zap.L().Error("search request failed",
				zap.String("template", req.Template), zap.Error(err))
			http.Error(w, `{"error":"search failed"}`, http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, result)
	})

	mux.HandleFunc("GET /leads", func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		leads, err := env.Store.GetAllLeads(r.Context(), store.LeadFilter{
			Template: r.URL.Query().Get("template"),
			Limit:    limit,
		})
		if err != nil {
			http.Error(w, `{"error":"load leads failed"}`, http.StatusInternalServerError)
			return
		}

		now := time.Now()
		type scoredLead struct {
			Lead   any          `json:"lead"`
			Scores score.Result `json:"scores"`
		}
		out := make([]scoredLead, 0, len(leads))
		for _, l := range leads {
			out = append(out, scoredLead{Lead: l, Scores: score.Score(score.FromLead(l), now)})
		}
		writeJSON(w, http.StatusOK, out)
	})

	mux.HandleFunc("GET /stats", func(w http.ResponseWriter, r *http.Request) {
		stats, err := env.Store.GetStats(r.Context())
		if err != nil {
			http.Error(w, `{"error":"stats failed"}`, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	})

	mux.HandleFunc("GET /history", func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit == 0 {
			limit = 20
		}
		entries, err := env.Store.GetSearchHistory(r.Context(), limit)
		if err != nil {
			http.Error(w, `{"error":"history failed"}`, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, entries)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
