package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/hyperengineering/devtrack/internal/config"
	"github.com/hyperengineering/devtrack/internal/store"
)

// openStore loads offline configuration and opens the database, honouring --db.
func openStore() (*store.SQLiteStore, *config.Config, error) {
	cfg, err := config.LoadOffline()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	path := cfg.Database.Path
	if dbPathOverride != "" {
		path = dbPathOverride
	}
	s, err := store.NewSQLiteStore(path)
	if err != nil {
		return nil, nil, err
	}
	return s, cfg, nil
}

// printJSON marshals v to JSON and writes to the given writer.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newTabWriter returns a configured tabwriter for aligned columns.
func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}
