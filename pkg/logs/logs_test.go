package logs

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mediconnect/mediconnect_backend/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"info":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewHandler_JSONOutsideDevelopment(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{}
	cfg.Server.Environment = "production"
	cfg.Logging.Output.Stdout = true

	slog.New(newHandler(cfg, &buf)).Info("appointment booked", "appointment_id", "a-1")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected JSON line, got %q: %v", buf.String(), err)
	}
	if rec["msg"] != "appointment booked" || rec["appointment_id"] != "a-1" {
		t.Errorf("unexpected record: %v", rec)
	}
}

func TestNewHandler_TextInDevelopmentAndLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{}
	cfg.Server.Environment = "development"
	cfg.Logging.Level = "warn"

	logger := slog.New(newHandler(cfg, &buf))
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record should be filtered: %q", out)
	}
	if !strings.Contains(out, "msg=shown") {
		t.Errorf("expected text record, got %q", out)
	}
}

func TestNewHandler_FileOnly(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{}
	cfg.Server.Environment = "production"
	cfg.Logging.Output.File.Enabled = true
	cfg.Logging.Output.File.Path = filepath.Join(t.TempDir(), "app.log")

	slog.New(newHandler(cfg, &buf)).Info("to file")

	if buf.Len() != 0 {
		t.Errorf("stdout should be unused when only file output is enabled, got %q", buf.String())
	}
}
