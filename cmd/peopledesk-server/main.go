// Command peopledesk-server serves the peopledesk REST API. Settings come
// from PEOPLEDESK_* environment variables (see server.Config).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/abelbrown/peopledesk/internal/logging"
	"github.com/abelbrown/peopledesk/internal/server"
)

func main() {
	cfg, err := server.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "peopledesk-server: config: %v\n", err)
		os.Exit(2)
	}
	logging.InitWriter(os.Stderr, cfg.LogLevel, cfg.LogFormat == "json")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info("starting", "env", cfg.Env, "db", cfg.DB, "seed", cfg.Seed)
	if err := server.Run(ctx, cfg); err != nil {
		logging.Error("server stopped", "err", err)
		os.Exit(1)
	}
	logging.Info("stopped")
}
