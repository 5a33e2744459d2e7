package main

import (
	"github.com/spf13/cobra"

	"indiamart-audit/internal/common/database"
	"indiamart-audit/internal/store"
)

func statusCmd() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the progress of a session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			rdb := database.NewRedis(cfg.Database.Redis)
			defer rdb.Close()

			session, err := store.NewSessionTracker(rdb.Client, cfg.SessionTTL()).Get(cmd.Context(), sessionID)
			if err != nil {
				return err
			}
			printSession(cmd.OutOrStdout(), session)
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "session id")
	_ = cmd.MarkFlagRequired("session")
	return cmd
}
