package main

import (
	"fmt"
	"os"

	"dahabiya-site/internal/config"
	"dahabiya-site/internal/data"
	"dahabiya-site/internal/logger"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var configFile string

func main() {
	root := &cobra.Command{
		Use:   "dahabiya-site",
		Short: "Nile dahabiya cruise website",
		// Running without a subcommand starts the server.
		RunE:          runServe,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default: ./config.yml)")
	root.AddCommand(serveCmd(), migrateCmd(), seedCmd())

	if err := root.Execute(); err != nil {
		// Use fmt here because the logger may not be initialized.
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads and validates the configuration and builds the logger.
func loadConfig() (*config.Config, logger.Logger, error) {
	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.LoadConfigFile(configFile)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log := logger.New(cfg.Log, os.Stdout)
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, log, nil
}

// openDB connects to the database and brings its schema up to date.
func openDB(cfg *config.Config, log logger.Logger) (*sqlx.DB, error) {
	log.Info("Connecting to the database...")
	db, err := data.NewDB(cfg.DB)
	if err != nil {
		return nil, err
	}
	log.Info("Applying database migrations...")
	if err := data.ApplyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	log.Info("Migrations applied successfully.")
	return db, nil
}

func migrateCmd() *cobra.Command {
	var rollback int
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations, or roll back with --rollback N",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := data.NewDB(cfg.DB)
			if err != nil {
				return err
			}
			defer db.Close()

			if rollback > 0 {
				if err := data.RollbackMigrations(db, rollback); err != nil {
					return err
				}
				log.Info(fmt.Sprintf("Rolled back %d migration(s).", rollback))
				return nil
			}
			if err := data.ApplyMigrations(db); err != nil {
				return err
			}
			log.Info("Migrations applied successfully.")
			return nil
		},
	}
	cmd.Flags().IntVar(&rollback, "rollback", 0, "number of migrations to roll back")
	return cmd
}
