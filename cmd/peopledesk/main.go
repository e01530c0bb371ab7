// Command peopledesk is the terminal client for the peopledesk HR API.
//
// Usage:
//
//	peopledesk                              Open the default tab
//	peopledesk --open '/leave?page=2'       Open a location
//	peopledesk --server http://hr:8080      Override the server URL
//	peopledesk --employee e-1               Scope per-employee tabs to one person
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/peopledesk/internal/api"
	"github.com/abelbrown/peopledesk/internal/collection"
	"github.com/abelbrown/peopledesk/internal/config"
	"github.com/abelbrown/peopledesk/internal/coord"
	"github.com/abelbrown/peopledesk/internal/hr"
	"github.com/abelbrown/peopledesk/internal/logging"
	"github.com/abelbrown/peopledesk/internal/otel"
	"github.com/abelbrown/peopledesk/internal/ui"
)

func main() {
	open := flag.String("open", "", "Location to open, e.g. /leave?filter=pending")
	server := flag.String("server", "", "API base URL (overrides config and PEOPLEDESK_URL)")
	noPoll := flag.Bool("no-poll", false, "Disable the background change watcher")
	employee := flag.String("employee", "", "Scope per-employee tabs to this employee id")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())

	dataDir := config.Dir()
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *server != "" {
		cfg.Server.URL = *server
	}

	if err := logging.Init(dataDir); err != nil {
		log.Printf("Warning: file logging disabled: %v", err)
	}
	defer logging.Close()

	// Structured events: JSONL on disk plus an in-memory tail for the overlay
	var events *otel.Logger
	eventFile, err := os.OpenFile(filepath.Join(dataDir, "events.jsonl"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		logging.Warn("event log disabled", "err", err)
		events = otel.NewNullLogger()
	} else {
		defer eventFile.Close()
		events = otel.NewLogger(eventFile)
	}
	ring := otel.NewRingBuffer(512)
	events.SetRingBuffer(ring)
	events.Info(otel.KindStartup, "main", "peopledesk "+cfg.Server.URL)

	client := api.New(api.Options{
		BaseURL:        cfg.Server.URL,
		Token:          cfg.Server.Token,
		Timeout:        cfg.RequestTimeout(),
		RequestsPerSec: cfg.Server.RequestsPerSec,
		Events:         events,
	})
	registry := collection.NewRegistry(events)
	cmds := ui.Commands{Ctx: ctx, Client: client, Timeout: cfg.RequestTimeout()}

	deps := ui.ListDeps{
		Registry:  registry,
		Events:    events,
		PageSize:  cfg.Lists.PageSize,
		Debounce:  cfg.Debounce(),
		Timeout:   cfg.RequestTimeout(),
		Scope:     employeeScope(*employee),
		Act:       cmds.Act,
		LoadStats: cmds.LoadStats,
		Detail: func(kind hr.Kind, id, title string, row any, width int) tea.Cmd {
			return ui.RenderDetail(kind, id, title, row, width, cfg.UI.Theme)
		},
	}

	// A bare tab name reopens that tab at its remembered query
	startRaw := *open
	if startRaw == "" {
		startRaw = cfg.UI.DefaultTab
	}
	start, err := collection.ParseLocation(startRaw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "peopledesk: bad location %q: %v\n", startRaw, err)
		os.Exit(2)
	}

	kinds := hr.Kinds()
	app := ui.NewAppWithConfig(ui.AppConfig{
		Kinds: kinds,
		NewScreen: func(kind hr.Kind) (ui.Screen, error) {
			return ui.NewScreen(kind, client, deps)
		},
		Create:    cmds.Create,
		Start:     start,
		Locations: cfg.Locations,
		Registry:  registry,
		ToastTTL:  cfg.ToastDuration(),
		Obs:       ui.ObsConfig{Ring: ring, Events: events},
	})

	program := tea.NewProgram(app, tea.WithAltScreen())

	var watcher *coord.Coordinator
	if !*noPoll && cfg.PollInterval() > 0 {
		watcher = coord.New(client, registry, kinds, cfg.PollInterval())
		watcher.Start(ctx, program)
	}

	final, runErr := program.Run()

	cancel()
	if watcher != nil {
		watcher.Wait()
	}

	if m, ok := final.(ui.App); ok {
		for kind, loc := range m.Locations() {
			cfg.RememberLocation(kind, loc)
		}
		m.Close()
		if err := cfg.Save(); err != nil {
			logging.Warn("failed to save config", "err", err)
		}
	} else {
		app.Close()
	}

	events.Info(otel.KindShutdown, "main", "")
	events.Close()

	if runErr != nil {
		logging.Error("program exited", "err", runErr)
		fmt.Fprintf(os.Stderr, "peopledesk: %v\n", runErr)
		os.Exit(1)
	}
}

// employeeScope scopes per-employee tabs; a location's own employeeId wins.
func employeeScope(id string) collection.Scope {
	if id == "" {
		return nil
	}
	return collection.Scope{hr.ScopeEmployee: id}
}
