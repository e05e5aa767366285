package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matthieukhl/quotedesk/internal/config"
)

func TestNew_WritesToConfiguredFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotedesk.log")

	log, err := New(&config.LoggerConfig{Level: "debug", Encoding: "json", File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	log.Info("inventory refreshed")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "inventory refreshed") {
		t.Fatalf("expected log line in file, got %q", string(data))
	}
}

func TestNew_RejectsBadSettings(t *testing.T) {
	cases := []config.LoggerConfig{
		{Level: "loud", Encoding: "console"},
		{Level: "info", Encoding: "xml"},
	}
	for _, c := range cases {
		if _, err := New(&c); err == nil {
			t.Fatalf("expected error for %+v", c)
		}
	}
}
