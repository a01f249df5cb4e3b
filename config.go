package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const configFileName = "config.toml"

// HueConfig selects the Hue entertainment area mirrored by the Hue sink.
type HueConfig struct {
	Enabled  bool    `toml:"enabled"`
	BridgeID string  `toml:"bridge_id"`
	BridgeIP string  `toml:"bridge_ip"`
	AreaID   string  `toml:"area_id"`
	Channels []uint8 `toml:"channels"`
}

// Config holds all pixelpick settings.
type Config struct {
	Display      int       `toml:"display"`
	Capture      string    `toml:"capture"`
	Preview      bool      `toml:"preview"`
	ToastSeconds int       `toml:"toast_seconds"`
	Listen       string    `toml:"listen"`
	LogLevel     string    `toml:"log_level"`
	LogFile      string    `toml:"log_file"`
	Hue          HueConfig `toml:"hue"`
}

// configDir overrides the default configuration directory for testing.
// When empty, ~/.pixelpick is used.
var configDir string

// ConfigDir returns the directory holding the config file, credentials and log.
func ConfigDir() (string, error) {
	if configDir != "" {
		return configDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".pixelpick"), nil
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() Config {
	return Config{
		Display:      0,
		Capture:      CaptureAuto,
		Preview:      true,
		ToastSeconds: 3,
		LogLevel:     "info",
	}
}

// LoadConfig reads path (or the default config file when path is empty) over
// the defaults and applies PIXELPICK_* environment overrides. A missing file
// is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		dir, err := ConfigDir()
		if err != nil {
			return cfg, err
		}
		path = filepath.Join(dir, configFileName)
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	var errs []string

	if v := os.Getenv("PIXELPICK_DISPLAY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("PIXELPICK_DISPLAY: %v", err))
		} else {
			cfg.Display = n
		}
	}
	if v := os.Getenv("PIXELPICK_CAPTURE"); v != "" {
		cfg.Capture = strings.ToLower(v)
	}
	if v := os.Getenv("PIXELPICK_PREVIEW"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("PIXELPICK_PREVIEW: %v", err))
		} else {
			cfg.Preview = b
		}
	}
	if v := os.Getenv("PIXELPICK_TOAST_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("PIXELPICK_TOAST_SECONDS: %v", err))
		} else {
			cfg.ToastSeconds = n
		}
	}
	if v := os.Getenv("PIXELPICK_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("PIXELPICK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("PIXELPICK_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}

	if len(errs) > 0 {
		return errors.New("invalid environment:\n  - " + strings.Join(errs, "\n  - "))
	}
	return nil
}

// Validate checks the configuration and reports every problem at once.
func (c Config) Validate() error {
	var errs []string

	if c.Display < 0 {
		errs = append(errs, "display must not be negative")
	}
	switch c.Capture {
	case CaptureAuto, CapturePortal, CaptureFFmpeg, CaptureX11:
	default:
		errs = append(errs, fmt.Sprintf("unknown capture method %q (want auto, portal, ffmpeg or x11)", c.Capture))
	}
	if c.ToastSeconds <= 0 {
		errs = append(errs, "toast_seconds must be positive")
	}
	if _, err := parseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Hue.Enabled {
		if c.Hue.BridgeID == "" || c.Hue.BridgeIP == "" {
			errs = append(errs, "hue.bridge_id and hue.bridge_ip are required when hue is enabled (run `pixelpick hue pair`)")
		}
		if c.Hue.AreaID == "" {
			errs = append(errs, "hue.area_id is required when hue is enabled")
		}
		if len(c.Hue.Channels) == 0 {
			errs = append(errs, "hue.channels must list at least one channel")
		}
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  - " + strings.Join(errs, "\n  - "))
	}
	return nil
}

// ToastDuration is how long transient page messages stay visible.
func (c Config) ToastDuration() time.Duration {
	return time.Duration(c.ToastSeconds) * time.Second
}

// SaveConfig writes cfg to path (or the default config file), creating the
// directory if needed.
func SaveConfig(path string, cfg Config) error {
	if path == "" {
		dir, err := ConfigDir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, configFileName)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
