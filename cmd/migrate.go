package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the store and queue schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.store.Migrate(ctx); err != nil {
			return err
		}
		if m, ok := env.queue.(migrator); ok {
			if err := m.Migrate(ctx); err != nil {
				return err
			}
		}

		zap.L().Info("migration complete",
			zap.String("store", cfg.Store.Driver),
			zap.String("queue", cfg.Queue.Driver),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
