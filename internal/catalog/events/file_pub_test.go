package events

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFilePublisherChainsAcrossRestarts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "changes.log")
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	p, err := NewFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range []Change{
		{Type: TypeCreated, ID: "b1", Kind: "BaseGame", At: at},
		{Type: TypeCreated, ID: "e1", Kind: "Expansion", BaseGameID: "b1", At: at},
		{Type: TypeDeleted, ID: "b1", Kind: "BaseGame", At: at},
	} {
		if err := p.Publish(ctx, c); err != nil {
			t.Fatal(err)
		}
	}
	_ = p.Close()

	p = New(Config{Driver: "file", File: path})
	if _, ok := p.(*filePublisher); !ok {
		t.Fatalf("expected file publisher, got %T", p)
	}
	if err := p.Publish(ctx, Change{Type: TypeUpdated, ID: "e1", At: at}); err != nil {
		t.Fatal(err)
	}
	_ = p.Close()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	n, err := VerifyChain(bytes.NewReader(b))
	if err != nil || n != 4 {
		t.Fatalf("verify: n=%d err=%v", n, err)
	}

	tampered := strings.Replace(string(b), `"id":"e1","kind":"Expansion"`, `"id":"e2","kind":"Expansion"`, 1)
	if _, err := VerifyChain(strings.NewReader(tampered)); err == nil {
		t.Fatal("expected a tampered entry to break the chain")
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	dropped := strings.Join(append([]string{lines[0]}, lines[2:]...), "\n")
	if _, err := VerifyChain(strings.NewReader(dropped)); err == nil {
		t.Fatal("expected a removed entry to break the chain")
	}
}
