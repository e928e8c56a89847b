// @title Child Immunization History API
// @version 1.0
// @description Historial de vacunación infantil, estado según calendario y notificaciones a tutores.
// @BasePath /
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "immunization",
	Short: "Historial de vacunación infantil",
	Long:  `API de historial de vacunación, barrido de notificaciones y utilidades de base de datos.`,
	// Sin subcomando levanta el API.
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, workerCmd, migrateCmd, seedCatalogCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
