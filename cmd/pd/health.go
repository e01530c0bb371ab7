package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var healthServer string

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that a peopledesk server answers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		client, err := newClient(healthServer)
		if err != nil {
			return err
		}
		start := time.Now()
		if err := client.Health(ctx); err != nil {
			return fmt.Errorf("%s: %w", client.BaseURL(), err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s ok (%s)\n", client.BaseURL(), time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	healthCmd.Flags().StringVar(&healthServer, "server", "", "API base URL (default from config)")
}
