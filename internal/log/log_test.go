package log

import (
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/framewatch/framewatch/internal/config"
)

func TestInitSetsLevelAndFormat(t *testing.T) {
	err := Init(config.LogConfig{Level: "debug", Format: "json"})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	l := GetLogger()
	if l.GetLevel() != logrus.DebugLevel {
		t.Errorf("Expected debug level, got %s", l.GetLevel())
	}
	if _, ok := l.Formatter.(*logrus.JSONFormatter); !ok {
		t.Errorf("Expected JSON formatter, got %T", l.Formatter)
	}
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	if err := Init(config.LogConfig{Level: "loud", Format: "text"}); err == nil {
		t.Error("Expected error for unknown level, got nil")
	}
}

func TestInitRejectsUnknownFormat(t *testing.T) {
	if err := Init(config.LogConfig{Level: "info", Format: "xml"}); err == nil {
		t.Error("Expected error for unknown format, got nil")
	}
}
