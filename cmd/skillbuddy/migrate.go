package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/skillbuddy/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the schema of the configured remote store",
	Long:  `Create the documents table (postgres, sqlite) or the list indexes (mongo). Safe to run repeatedly.`,
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	backend, closeFn, err := openRemote(cmd.Context(), cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to connect to %s store: %w", cfg.Store.Driver, err)
	}
	defer closeFn()

	out := cmd.OutOrStdout()
	if backend == nil {
		fmt.Fprintln(out, "Local storage needs no migration")
		return nil
	}
	if err := migrateWithin(cmd.Context(), cfg.Store, backend); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %s store\n", backend.Name())
	return nil
}
