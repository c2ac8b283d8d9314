package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/skillbuddy/internal/config"
	"github.com/jonathan/skillbuddy/internal/logging"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server exposing the auth, profile, interview, user and feedback endpoints.
The store driver comes from STORE_DRIVER (local, postgres, mongo or sqlite).`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 5000, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Pretty)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	st, closeStore := openStore(cmd.Context(), cfg.Store, logger)
	defer closeStore()

	catalog, err := loadCatalog(cfg.Questions.File)
	if err != nil {
		return err
	}

	srv, err := buildServer(cfg, st, catalog, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Start()
}
