package main

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abelbrown/peopledesk/internal/api"
	"github.com/abelbrown/peopledesk/internal/config"
)

// eventLogPath returns the client's events.jsonl.
func eventLogPath() string {
	return filepath.Join(config.Dir(), "events.jsonl")
}

// commandContext bounds a command by the --timeout flag.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, timeout)
}

// newClient builds an API client for server, falling back to the client
// config (and its PEOPLEDESK_URL / PEOPLEDESK_TOKEN overrides).
func newClient(server string) (*api.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if server != "" {
		cfg.Server.URL = server
	}
	return api.New(api.Options{
		BaseURL: cfg.Server.URL,
		Token:   cfg.Server.Token,
		Timeout: cfg.RequestTimeout(),
	}), nil
}

// truncate shortens a string to max runes, appending "..." if truncated.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
