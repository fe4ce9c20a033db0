package common

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchFilesDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, dir, "games.json", "[]")
	other := writeFile(t, dir, "other.json", "[]")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hits := make(chan string, 8)
	done := make(chan error, 1)
	go func() {
		done <- WatchFiles(ctx, []string{target}, 50*time.Millisecond, func(p string) { hits <- p })
	}()
	// let the watcher register before writing
	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(target, []byte(`[{"name":"A","type":"BaseGame"}]`), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	_ = os.WriteFile(other, []byte("{}"), 0o644)

	select {
	case p := <-hits:
		want, _ := filepath.Abs(target)
		if p != want {
			t.Fatalf("callback for %s, want %s", p, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no callback after write")
	}
	select {
	case p := <-hits:
		t.Fatalf("unexpected second callback for %s", p)
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatal(err)
	}
}
