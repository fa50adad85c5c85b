package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/updatelog/internal/shared"
	"github.com/desertthunder/updatelog/internal/sources"
	"github.com/urfave/cli/v3"
)

// SetupDatabase creates the config file when missing, initializes the database, and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	r.config = config
	r.configPath = configPath
	r.sources = sources.NewRegistry(config.Sources)

	r.logger.Info("initializing database", "path", config.Database.Path)

	s, err := r.openStore()
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer s.close()

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return nil
}
