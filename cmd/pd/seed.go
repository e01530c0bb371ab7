package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abelbrown/peopledesk/internal/logging"
	"github.com/abelbrown/peopledesk/internal/server"
	"github.com/abelbrown/peopledesk/internal/store"
)

var (
	seedDB    string
	seedForce bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo data set into a store",
	Long: `Writes the demo employees, attendance, overtime, complaints, payslips,
leave requests, perks, announcements and plans. Record ids are stable, so
seeding twice overwrites rather than duplicates. A store that already holds
records is left alone unless --force is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		st, err := store.Open(seedDB)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		total, err := st.Total(ctx)
		if err != nil {
			return err
		}
		if total > 0 && !seedForce {
			fmt.Fprintf(cmd.OutOrStdout(), "%s already holds %d records (use --force to reseed)\n", seedDB, total)
			return nil
		}

		start := time.Now()
		n, err := server.Seed(ctx, st, time.Now())
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		logging.Debug("seeded", "db", seedDB, "records", n, "took", time.Since(start))
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d records into %s\n", n, seedDB)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedDB, "db", "peopledesk.db", "SQLite database path")
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "Seed even when the store is not empty")
}
