package common

import (
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupLoggerWithFileWritesAndCounts(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(prev)
		log.SetOutput(os.Stderr)
	})

	path := filepath.Join(t.TempDir(), "tabletop.log")
	SetupLoggerWithFile("warn", "json", path, 1, 1, 1, false)
	before := GetLogCounters()

	slog.Info("dropped below level")
	slog.Warn("catalog warning", "id", "g1")
	slog.Error("catalog error")

	after := GetLogCounters()
	if after["warn"]-before["warn"] != 1 || after["error"]-before["error"] != 1 {
		t.Fatalf("counters before=%v after=%v", before, after)
	}
	if after["info"] != before["info"] {
		t.Fatalf("info below level was counted: before=%v after=%v", before, after)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(b)
	if !strings.Contains(out, `"msg":"catalog warning"`) || strings.Contains(out, "dropped below level") {
		t.Fatalf("unexpected log file contents %q", out)
	}
}
