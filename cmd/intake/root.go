package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/inquiry-intake/internal/app"
	"github.com/joseph-ayodele/inquiry-intake/internal/common"
)

var (
	configPath string
	envFile    string
	verbose    bool

	cfg    *common.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "intake",
	Short: "Turn free-form insurance inquiries into structured records",
	Long: `intake extracts a fixed set of yacht-insurance fields from an inquiry and
an optional attachment, then fills remaining gaps from web search.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if envFile == "" {
			envFile = ".env"
		}
		if err := common.LoadDotEnv(envFile); err != nil {
			return err
		}
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = app.NewLogger(os.Stderr, level, false)
		slog.SetDefault(logger)

		c, err := common.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = c
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "path to a .env file (default .env when present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// buildApp wires the pipeline from the loaded config.
func buildApp(ctx context.Context) (*app.App, error) {
	return app.New(ctx, cfg, logger)
}
