// Package main provides the knotic command line: the HTTP API server plus
// one-shot résumé normalization, matching and readiness commands.
package main

import (
	"fmt"
	"os"

	"github.com/jonathan/knotic/internal/config"
	"github.com/jonathan/knotic/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile  string
	logDebug bool
	logJSON  bool
)

var rootCmd = &cobra.Command{
	Use:   "knotic",
	Short: "Résumé to job description match analysis",
	Long: "knotic structures résumé PDFs, scores them against job descriptions and " +
		"tracks job applications through a REST API.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is knotic.yaml in current directory)")
	rootCmd.PersistentFlags().BoolVarP(&logDebug, "debug", "d", false, "debug logging")
	rootCmd.PersistentFlags().BoolVarP(&logJSON, "json", "j", false, "json format for logging")
}

// setup loads and validates configuration and builds the logger. Flags
// only ever enable debug or JSON logging on top of the config.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	cfg.Log.Debug = cfg.Log.Debug || logDebug
	cfg.Log.JSON = cfg.Log.JSON || logJSON

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return cfg, logger, nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
