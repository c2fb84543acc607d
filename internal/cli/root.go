// Package cli implements the geoctl command tree.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/geo-explorer/internal/app"
	"github.com/heartmarshall/geo-explorer/internal/config"
)

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config (default: CONFIG_PATH or ./config.yaml)")
}

var rootCmd = &cobra.Command{
	Use:           "geoctl",
	Short:         "Search and import continents, countries and cities",
	Version:       app.BuildVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFrom(configPath)
	}
	return config.Load()
}

// withComponents builds the application components for one command run.
func withComponents(cmd *cobra.Command, fn func(c *app.Components, logger *slog.Logger) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := app.NewLoggerTo(cmd.ErrOrStderr(), cfg.Log)

	c, err := app.Build(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	return fn(c, logger)
}
