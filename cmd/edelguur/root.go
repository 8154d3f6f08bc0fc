package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/edelguur/admin-backend/pkg/config"
	"github.com/edelguur/admin-backend/pkg/db"
	"github.com/edelguur/admin-backend/pkg/logger"
)

// env is the configuration, logger and database shared by every subcommand.
type env struct {
	cfg  *config.Config
	logg *logger.Logger
	db   *db.Client
}

// open loads the environment and connects to the database. Callers close the client.
func open(ctx context.Context) (*env, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logg := logger.New(logger.Options{
		ServiceName: "edelguur-cli",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})
	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return &env{cfg: cfg, logg: logg, db: client}, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "edelguur",
		Short:         "Operate the edelguur admin backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newUsersCmd(), newOrdersCmd(), newHousekeepingCmd())
	return root
}
