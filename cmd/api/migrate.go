package main

import (
	"errors"

	pg "child-immunization-history/internal/adapters/storage/postgres"
	"child-immunization-history/internal/platform/config"

	"github.com/spf13/cobra"
)

var migrateDown bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Aplica las migraciones de Postgres (DB_DSN)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.DBDSN == "" {
			return errors.New("DB_DSN is required")
		}
		return pg.Migrate(cfg.DBDSN, migrateDown)
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "revierte la última migración")
}
