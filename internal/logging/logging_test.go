package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for name, want := range cases {
		got, err := ParseLevel(name)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v", name, got, err)
		}
	}

	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected unknown level error")
	}
}

func TestNewFiltersByLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, "warn", false)
	logger.Info("hidden")
	logger.Warn("network recognition failure", "kind", "network-unavailable")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected info to be filtered: %q", out)
	}
	if !strings.Contains(out, "network recognition failure") || !strings.Contains(out, "kind=network-unavailable") {
		t.Fatalf("expected warn line with attrs: %q", out)
	}
}

func TestNewUnknownLevelWarnsAndUsesInfo(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, "chatty", false)
	logger.Debug("hidden")
	logger.Info("shown")

	out := buf.String()
	if !strings.Contains(out, "falling back to info logging") || !strings.Contains(out, "shown") || strings.Contains(out, "hidden") {
		t.Fatalf("unexpected output: %q", out)
	}
}
