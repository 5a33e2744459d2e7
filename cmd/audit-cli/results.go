package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"indiamart-audit/internal/common/database"
	"indiamart-audit/internal/store"
)

func resultsCmd() *cobra.Command {
	var (
		sessionID string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "results",
		Short: "Show the persisted results of a session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			pg, err := database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			defer pg.Close()

			results, err := store.NewResultStore(pg, log).ListResults(cmd.Context(), sessionID)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				return fmt.Errorf("no results for session %s", sessionID)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			printResults(out, results)
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "session id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	_ = cmd.MarkFlagRequired("session")
	return cmd
}
