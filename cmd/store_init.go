package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/homefront-labs/leadscout/internal/store"
	"github.com/homefront-labs/leadscout/internal/templates"
)

// initStore opens the configured backend and applies migrations.
func initStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "sqlite":
		path := cfg.Store.Path
		if path == "" {
			path = "data/leads.db"
		}
		st, err = store.NewSQLite(path)
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// loadTemplates returns the built-in registry, merged with the custom
// template file when one is configured.
func loadTemplates() (*templates.Registry, error) {
	return templates.Load(cfg.Templates.Path)
}
