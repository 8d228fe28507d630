package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/chaz8081/gostt-batch/internal/config"
)

var (
	configPath string
	logLevel   string

	// cfg is loaded before any subcommand runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "gostt-batch",
	Short: "Transcribe recorded audio files with whisper.cpp",
	Long: `gostt-batch resamples an audio file with ffmpeg, runs a whisper model over it
and writes the transcript next to the source:

  <dir>/records/<label>_<day>_<month>_<year>.wav
  <dir>/transcriptions/<label>_<day>_<month>_<year>.txt

Defaults come from ~/.config/gostt-batch/config.yaml (see "gostt-batch config init").`,
	Version:       GetVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}

		loaded, err := loadConfig(configPath)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if cmd.Flags().Changed("log-level") {
			loaded.LogLevel = logLevel
		}
		cfg = loaded

		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: config.ParseLogLevel(cfg.LogLevel),
		})))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default: $GOSTT_BATCH_CONFIG or ~/.config/gostt-batch/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.SetVersionTemplate(GetVersionInfo() + "\n")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads the config from the specified path, or from
// $GOSTT_BATCH_CONFIG, or falls back to the default config path, or uses
// built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = os.Getenv(config.EnvConfigPath)
	}
	if path != "" {
		return config.Load(path)
	}

	defaultPath := config.DefaultConfigPath()
	if _, err := os.Stat(defaultPath); err == nil {
		loaded, err := config.Load(defaultPath)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", defaultPath, err)
		}
		slog.Debug("Config loaded", "path", defaultPath)
		return loaded, nil
	}

	slog.Debug("No config file found, using defaults")
	return config.Default(), nil
}
