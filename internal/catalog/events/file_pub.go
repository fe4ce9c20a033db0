package events

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// ChainEntry is one line of the file publisher's log. Hash covers the
// previous hash followed by the entry encoded with an empty Hash.
type ChainEntry struct {
	Change
	Prev string `json:"prev"`
	Hash string `json:"hash"`
}

type filePublisher struct {
	mu   sync.Mutex
	f    *os.File
	prev []byte
}

// NewFile appends change events to a hash-chained JSON lines file, resuming
// the chain from the file's last entry.
func NewFile(path string) (Publisher, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	prev, err := lastHash(path)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &filePublisher{f: f, prev: prev}, nil
}

func (p *filePublisher) Close() error { return p.f.Close() }

func (p *filePublisher) Publish(_ context.Context, c Change) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	line, h, err := seal(c, p.prev)
	if err != nil {
		return err
	}
	if _, err := p.f.Write(append(line, '\n')); err != nil {
		return err
	}
	p.prev = h
	return nil
}

func seal(c Change, prev []byte) ([]byte, []byte, error) {
	e := ChainEntry{Change: c, Prev: hex.EncodeToString(prev)}
	b, err := json.Marshal(e)
	if err != nil {
		return nil, nil, err
	}
	sum := sha256.Sum256(append(append([]byte{}, prev...), b...))
	e.Hash = hex.EncodeToString(sum[:])
	b, err = json.Marshal(e)
	return b, sum[:], err
}

func lastHash(path string) ([]byte, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return make([]byte, sha256.Size), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var last []byte
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := bytes.TrimSpace(sc.Bytes()); len(line) > 0 {
			last = append(last[:0], line...)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if last == nil {
		return make([]byte, sha256.Size), nil
	}
	var e ChainEntry
	if err := json.Unmarshal(last, &e); err != nil {
		return nil, fmt.Errorf("%s: last entry: %w", path, err)
	}
	return hex.DecodeString(e.Hash)
}

// VerifyChain re-computes every hash in a file publisher log and returns the
// number of entries checked. It fails at the first broken link.
func VerifyChain(r io.Reader) (int, error) {
	prev := make([]byte, sha256.Size)
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		n++
		var e ChainEntry
		if err := json.Unmarshal(line, &e); err != nil {
			return n, fmt.Errorf("entry %d: %w", n, err)
		}
		if e.Prev != hex.EncodeToString(prev) {
			return n, fmt.Errorf("entry %d: prev hash does not match entry %d", n, n-1)
		}
		_, h, err := seal(e.Change, prev)
		if err != nil {
			return n, err
		}
		if e.Hash != hex.EncodeToString(h) {
			return n, fmt.Errorf("entry %d (%s %s): hash mismatch", n, e.Type, e.ID)
		}
		prev = h
	}
	return n, sc.Err()
}
