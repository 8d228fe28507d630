package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names an alternate config file.
const EnvConfigPath = "GOSTT_BATCH_CONFIG"

// Config holds all application configuration.
type Config struct {
	Model      string           `yaml:"model"`
	Device     string           `yaml:"device"` // "cpu", "cuda" or "metal"
	ModelsDir  string           `yaml:"models_dir"`
	Download   bool             `yaml:"auto_download"`
	Transcribe TranscribeConfig `yaml:"transcribe"`
	Output     OutputConfig     `yaml:"output"`
	FFmpeg     string           `yaml:"ffmpeg"`
	LogLevel   string           `yaml:"log_level"`
}

// TranscribeConfig holds decoding parameters passed to the model.
type TranscribeConfig struct {
	Language string `yaml:"language"`
	Task     string `yaml:"task"` // "transcribe" or "translate"
	BeamSize int    `yaml:"beam_size"`
	BestOf   int    `yaml:"best_of"`
	Threads  uint   `yaml:"threads"` // 0 picks a value from the device
}

// OutputConfig names the directories created next to the source file.
type OutputConfig struct {
	RecordsDir        string `yaml:"records_dir"`
	TranscriptionsDir string `yaml:"transcriptions_dir"`
}

// DefaultConfigDir returns the default config directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "gostt-batch")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// DefaultModelsDir returns the directory model weights are stored in.
func DefaultModelsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "models"
	}
	return filepath.Join(home, ".local", "share", "gostt-batch", "models")
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Model:     "large-v2",
		Device:    "cpu",
		ModelsDir: DefaultModelsDir(),
		Download:  true,
		Transcribe: TranscribeConfig{
			Language: "es",
			Task:     "transcribe",
			BeamSize: 5,
			BestOf:   5,
		},
		Output: OutputConfig{
			RecordsDir:        "records",
			TranscriptionsDir: "transcriptions",
		},
		FFmpeg:   "ffmpeg",
		LogLevel: "info",
	}
}

// Load reads and parses a YAML config file. Missing fields are filled
// with defaults. Tilde (~) in models_dir and ffmpeg is expanded to the user's
// home directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.ModelsDir = expandTilde(cfg.ModelsDir)
	cfg.FFmpeg = expandTilde(cfg.FFmpeg)

	return cfg, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model must not be empty")
	}

	switch c.Device {
	case "cpu", "cuda", "metal":
	default:
		return fmt.Errorf("device must be \"cpu\", \"cuda\" or \"metal\", got %q", c.Device)
	}

	if c.ModelsDir == "" {
		return fmt.Errorf("models_dir must not be empty")
	}

	if c.Transcribe.Language == "" {
		return fmt.Errorf("transcribe.language must not be empty")
	}

	switch c.Transcribe.Task {
	case "transcribe", "translate":
	default:
		return fmt.Errorf("transcribe.task must be \"transcribe\" or \"translate\", got %q", c.Transcribe.Task)
	}

	if c.Transcribe.BeamSize < 1 {
		return fmt.Errorf("transcribe.beam_size must be >= 1")
	}

	if c.Transcribe.BestOf < 1 {
		return fmt.Errorf("transcribe.best_of must be >= 1")
	}

	if c.Output.RecordsDir == "" || c.Output.TranscriptionsDir == "" {
		return fmt.Errorf("output.records_dir and output.transcriptions_dir must not be empty")
	}

	if c.Output.RecordsDir == c.Output.TranscriptionsDir {
		return fmt.Errorf("output.records_dir and output.transcriptions_dir must differ")
	}

	if c.FFmpeg == "" {
		return fmt.Errorf("ffmpeg must not be empty")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}

	return nil
}

// ParseLogLevel maps a config log level to a slog.Level. Unknown values
// fall back to info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

const defaultHeader = `# gostt-batch configuration
#
# model:   whisper model size (tiny, base, small, medium, large-v1, large-v2, large-v3)
# device:  cpu loads 8-bit quantized weights, cuda/metal load float16 weights
# Flags passed to "gostt-batch transcribe" override these values.

`

// WriteDefault writes the default config to DefaultConfigPath. If a file is
// already there it is left untouched and ("", nil) is returned.
func WriteDefault() (string, error) {
	path := DefaultConfigPath()
	if _, err := os.Stat(path); err == nil {
		return "", nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("creating config dir: %w", err)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return "", fmt.Errorf("encoding default config: %w", err)
	}

	if err := os.WriteFile(path, append([]byte(defaultHeader), data...), 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}
	return path, nil
}

// expandTilde replaces a leading ~ with the user's home directory.
func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
