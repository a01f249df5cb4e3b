package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

func parseLogLevel(s string) (logrus.Level, error) {
	lvl, err := logrus.ParseLevel(s)
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("invalid log_level %q", s)
	}
	return lvl, nil
}

// NewFileLogger returns a logger writing to the configured log file (default
// pixelpick.log in the config directory). The terminal belongs to the page,
// so nothing is logged to stdout or stderr.
func NewFileLogger(cfg Config) (*logrus.Logger, func() error, error) {
	path := cfg.LogFile
	if path == "" {
		dir, err := ConfigDir()
		if err != nil {
			return nil, nil, err
		}
		path = filepath.Join(dir, "pixelpick.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	lvl, err := parseLogLevel(cfg.LogLevel)
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	log := &logrus.Logger{
		Out: f,
		Formatter: &logrus.TextFormatter{
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		},
		Hooks: make(logrus.LevelHooks),
		Level: lvl,
	}
	return log, f.Close, nil
}
