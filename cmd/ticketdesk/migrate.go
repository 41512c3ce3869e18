package main

import (
	"ticketdesk/internal/store/postgres"

	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply or inspect database migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status"},
		RunE:      runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	command := "up"
	if len(args) == 1 {
		command = args[0]
	}

	cfg, logger, err := loadEnv()
	if err != nil {
		return err
	}
	pool, err := openPool(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	logger.Info("running migrations", "command", command)
	if err := postgres.Migrate(cmd.Context(), pool, command); err != nil {
		logger.Error("migration failed", "error", err)
		return err
	}
	logger.Info("migrations finished", "command", command)
	return nil
}
