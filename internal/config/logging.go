package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"
)

func Development() bool {
	return lookupFlag("DEVELOPMENT", false)
}

type Logging struct {
	Level logrus.Level
	JSON  bool
	// File enables a rotated copy of the log when set.
	File          string
	FileMaxSizeMB int
	FileBackups   int
}

func NewLogging() (*Logging, error) {
	cfg := &Logging{
		Level:         logrus.InfoLevel,
		File:          lookupString("LOG_FILE", ""),
		FileMaxSizeMB: 50,
		FileBackups:   3,
	}

	if Development() {
		cfg.Level = logrus.DebugLevel
	}
	if levelStr, ok := os.LookupEnv("LOG_LEVEL"); ok {
		level, err := logrus.ParseLevel(levelStr)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		cfg.Level = level
	}

	switch format := strings.ToLower(lookupString("LOG_FORMAT", "text")); format {
	case "text":
	case "json":
		cfg.JSON = true
	default:
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", format)
	}

	var err error
	if cfg.FileMaxSizeMB, err = lookupInt("LOG_FILE_MAX_SIZE_MB", cfg.FileMaxSizeMB); err != nil {
		return nil, err
	}
	if cfg.FileBackups, err = lookupInt("LOG_FILE_BACKUPS", cfg.FileBackups); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c Logging) formatter() logrus.Formatter {
	if c.JSON {
		return &logrus.JSONFormatter{}
	}
	return &logrus.TextFormatter{ForceColors: Development(), FullTimestamp: true}
}

// NewLogger builds the process logger writing to out and, if configured, to
// a rotated file.
func (c Logging) NewLogger(out io.Writer) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(c.Level)
	log.SetFormatter(c.formatter())

	if c.File != "" {
		hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
			Filename:   c.File,
			MaxSize:    c.FileMaxSizeMB,
			MaxBackups: c.FileBackups,
			MaxAge:     28,
			Level:      c.Level,
			Formatter:  &logrus.JSONFormatter{},
		})
		if err != nil {
			return nil, fmt.Errorf("unable to create log file hook: %w", err)
		}
		log.AddHook(hook)
	}

	return log, nil
}
