package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the settings haarview reads at startup.
type Config struct {
	APIURL         string
	OutputDir      string
	LogDir         string
	LogLevel       string
	RequestTimeout time.Duration
}

const (
	defaultConfigPath     = "~/.config/haarview/config.toml"
	defaultAPIURL         = "http://127.0.0.1:5000"
	defaultOutputDir      = "~/Downloads"
	defaultLogDir         = "~/.local/share/haarview/logs"
	defaultLogLevel       = "info"
	defaultRequestTimeout = 30 * time.Second
)

// Environment variables that override file values.
const (
	EnvAPIURL    = "HAARVIEW_API_URL"
	EnvOutputDir = "HAARVIEW_OUTPUT_DIR"
	EnvLogDir    = "HAARVIEW_LOG_DIR"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:         defaultAPIURL,
		OutputDir:      mustExpand(defaultOutputDir),
		LogDir:         mustExpand(defaultLogDir),
		LogLevel:       defaultLogLevel,
		RequestTimeout: defaultRequestTimeout,
	}
}

// LoadDotEnv loads KEY=value pairs from path into the process environment
// without replacing variables already set. A missing file is ignored.
func LoadDotEnv(path string) error {
	if strings.TrimSpace(path) == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load parses the config file at path (the default location when empty),
// falls back to defaults for missing values and applies environment
// overrides.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	raw, err := readFile(resolved)
	if err != nil {
		return Config{}, err
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(raw.OutputDir); v != "" {
		cfg.OutputDir = v
	}
	if v := strings.TrimSpace(raw.LogDir); v != "" {
		cfg.LogDir = v
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if raw.RequestTimeout < 0 {
		return Config{}, fmt.Errorf("request_timeout must not be negative")
	}
	if raw.RequestTimeout > 0 {
		cfg.RequestTimeout = time.Duration(raw.RequestTimeout) * time.Second
	}

	applyEnv(&cfg)
	cfg.OutputDir = mustExpand(cfg.OutputDir)
	cfg.LogDir = mustExpand(cfg.LogDir)
	return cfg, nil
}

type fileConfig struct {
	APIURL         string `toml:"api_url"`
	OutputDir      string `toml:"output_dir"`
	LogDir         string `toml:"log_dir"`
	LogLevel       string `toml:"log_level"`
	RequestTimeout int    `toml:"request_timeout"`
}

func readFile(path string) (fileConfig, error) {
	var raw fileConfig
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return raw, nil
		}
		return raw, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return raw, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return raw, fmt.Errorf("parse config: %w", err)
	}
	return raw, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvOutputDir)); v != "" {
		cfg.OutputDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogDir)); v != "" {
		cfg.LogDir = v
	}
}

// LogPath returns the application log file.
func (c Config) LogPath() string {
	dir := c.LogDir
	if strings.TrimSpace(dir) == "" {
		dir = mustExpand(defaultLogDir)
	}
	return filepath.Join(dir, "haarview.log")
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
