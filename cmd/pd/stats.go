package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abelbrown/peopledesk/internal/api"
	"github.com/abelbrown/peopledesk/internal/hr"
	"github.com/abelbrown/peopledesk/internal/store"
)

var (
	statsDB     string
	statsServer string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Record counts per kind and status",
	Long: `Reads counts straight from a store with --db, or through a running
server with --server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		var (
			stats map[hr.Kind]api.Stats
			err   error
		)
		if statsServer != "" {
			client, cerr := newClient(statsServer)
			if cerr != nil {
				return cerr
			}
			stats, err = client.Summary(ctx, hr.Kinds()...)
		} else {
			stats, err = storeStats(ctx, statsDB)
		}
		if err != nil {
			return err
		}
		printStats(cmd.OutOrStdout(), stats)
		return nil
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsDB, "db", "peopledesk.db", "SQLite database path")
	statsCmd.Flags().StringVar(&statsServer, "server", "", "Read through the API at this URL instead")
}

func storeStats(ctx context.Context, path string) (map[hr.Kind]api.Stats, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	out := make(map[hr.Kind]api.Stats)
	for _, k := range hr.Kinds() {
		counts, err := st.Counts(ctx, string(k))
		if err != nil {
			return nil, err
		}
		s := api.Stats{Kind: k, ByStatus: counts}
		for _, n := range counts {
			s.Total += n
		}
		out[k] = s
	}
	return out, nil
}

func printStats(w io.Writer, stats map[hr.Kind]api.Stats) {
	kinds := make([]hr.Kind, 0, len(stats))
	for k := range stats {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	fmt.Fprintln(w, "=== Records ===")
	total := 0
	for _, k := range kinds {
		s := stats[k]
		total += s.Total
		parts := make([]string, 0, len(s.ByStatus))
		for _, st := range s.Statuses() {
			parts = append(parts, fmt.Sprintf("%s=%d", st, s.ByStatus[st]))
		}
		fmt.Fprintf(w, "  %-14s %5d  %s\n", k, s.Total, truncate(strings.Join(parts, " "), 60))
	}
	fmt.Fprintf(w, "  %-14s %5d\n", "total", total)
}
