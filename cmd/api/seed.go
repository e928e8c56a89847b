package main

import (
	"errors"
	"fmt"

	pg "child-immunization-history/internal/adapters/storage/postgres"
	"child-immunization-history/internal/domain/schedule"
	"child-immunization-history/internal/platform/config"

	"github.com/spf13/cobra"
)

var seedCatalogCmd = &cobra.Command{
	Use:   "seed-catalog [file.yaml]",
	Short: "Reemplaza el calendario activo en Postgres",
	Long:  `Carga el calendario desde un YAML (o el embebido si no se pasa archivo) y lo deja como versión activa.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.DBDSN == "" {
			return errors.New("DB_DSN is required")
		}

		path := cfg.CatalogPath
		if len(args) == 1 {
			path = args[0]
		}
		catalog, err := schedule.LoadFile(path)
		if err != nil {
			return err
		}
		if _, issues := catalog.Validate(); len(issues) > 0 {
			for _, is := range issues {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s dose %d: %s\n", is.VaccineID, is.DoseNumber, is.Reason)
			}
		}

		db, err := pg.Open(cfg.DBDSN)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := pg.NewCatalogRepo(db).ReplaceCatalog(cmd.Context(), catalog); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "catalog %s loaded (%d entries)\n", catalog.Version, len(catalog.Entries))
		return nil
	},
}
