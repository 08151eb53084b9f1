// Package log implements structured logging using logrus.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/framewatch/framewatch/internal/config"
)

var (
	mu     sync.RWMutex
	logger = logrus.New()
)

// GetLogger returns the process-wide logger. Safe to call before Init;
// the zero configuration logs text at info level to stdout.
func GetLogger() *logrus.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Init configures the global logger from config. Stdout is always an
// output; a rotating file output is added when enabled.
func Init(cfg config.LogConfig) error {
	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	writers := []io.Writer{os.Stdout}
	if cfg.File.Enabled {
		writers = append(writers, newFileWriter(cfg.File))
	}

	var formatter logrus.Formatter
	switch strings.ToLower(cfg.Format) {
	case "json":
		formatter = &logrus.JSONFormatter{}
	case "text", "":
		formatter = &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		}
	default:
		return fmt.Errorf("unsupported log format: %s (must be json or text)", cfg.Format)
	}

	mu.Lock()
	defer mu.Unlock()
	logger.SetLevel(level)
	logger.SetFormatter(formatter)
	logger.SetOutput(io.MultiWriter(writers...))
	return nil
}

// newFileWriter creates a lumberjack writer for log rotation.
func newFileWriter(fc config.FileLogConfig) io.Writer {
	return &lumberjack.Logger{
		Filename:   fc.Path,
		MaxSize:    fc.MaxSizeMB,
		MaxBackups: fc.MaxBackups,
		MaxAge:     fc.MaxAgeDays,
		Compress:   fc.Compress,
	}
}
