package config

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dpshade/pocket-embed/internal/errors"
	"github.com/dpshade/pocket-embed/internal/models"
)

// EnvLibraryDir overrides the library directory
const EnvLibraryDir = "POCKET_EMBED_DIR"

// FileName is the config file inside the library directory
const FileName = "config.yaml"

// Config holds user preferences loaded from config.yaml
type Config struct {
	HistoryLimit int           `yaml:"history_limit"`
	Timeout      time.Duration `yaml:"timeout"`
	DefaultColor string        `yaml:"default_color"`
	LogLevel     string        `yaml:"log_level"`
	PreviewWidth int           `yaml:"preview_width"`

	// LibraryDir is resolved at load time and never read from the file
	LibraryDir string `yaml:"-"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		HistoryLimit: 50,
		Timeout:      10 * time.Second,
		DefaultColor: models.FormatColor(models.DefaultColor),
		LogLevel:     "info",
		PreviewWidth: 80,
	}
}

// ResolveLibraryDir picks the library directory: an explicit dir, then
// $POCKET_EMBED_DIR, then ~/.pocket-embed
func ResolveLibraryDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	if env := os.Getenv(EnvLibraryDir); env != "" {
		return env, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".pocket-embed"), nil
}

// Load reads config.yaml from the resolved library directory. A missing file
// yields the defaults; keys absent from the file keep their defaults.
func Load(dir string) (*Config, error) {
	libDir, err := ResolveLibraryDir(dir)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	cfg.LibraryDir = libDir

	data, err := os.ReadFile(filepath.Join(libDir, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.StorageError("read "+FileName, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.CorruptedError(FileName, err)
	}
	cfg.LibraryDir = libDir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	var problems []string
	if c.HistoryLimit <= 0 {
		problems = append(problems, "history_limit must be positive")
	}
	if c.Timeout <= 0 {
		problems = append(problems, "timeout must be positive")
	}
	if c.PreviewWidth < 20 {
		problems = append(problems, "preview_width must be at least 20")
	}
	if c.DefaultColor != "" {
		if n, err := models.ParseColor(c.DefaultColor); err != nil || n < 0 || n > models.MaxColor {
			problems = append(problems, fmt.Sprintf("default_color '%s' is not a color", c.DefaultColor))
		}
	}
	if _, ok := levels[strings.ToLower(c.LogLevel)]; !ok {
		problems = append(problems, fmt.Sprintf("log_level '%s' is not one of debug, info, warn, error", c.LogLevel))
	}

	if len(problems) > 0 {
		return errors.ValidationError("Invalid configuration in " + FileName).
			WithDetails(strings.Join(problems, "; "))
	}
	return nil
}

// Save writes the configuration to config.yaml
func (c *Config) Save() error {
	if err := os.MkdirAll(c.LibraryDir, 0755); err != nil {
		return errors.StorageError("create library directory", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.StorageError("encode "+FileName, err)
	}
	if err := os.WriteFile(filepath.Join(c.LibraryDir, FileName), data, 0644); err != nil {
		return errors.StorageError("write "+FileName, err)
	}
	return nil
}

// Color returns the default color as an integer
func (c *Config) Color() int {
	n, err := models.ParseColor(c.DefaultColor)
	if err != nil || c.DefaultColor == "" {
		return models.DefaultColor
	}
	return n
}

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// Level returns the configured log level
func (c *Config) Level() slog.Level {
	if l, ok := levels[strings.ToLower(c.LogLevel)]; ok {
		return l
	}
	return slog.LevelInfo
}
