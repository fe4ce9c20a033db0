package catalog

import (
	"context"
	"os"
	"testing"

	"github.com/cuihairu/tabletop/internal/ports"
	"github.com/cuihairu/tabletop/internal/repo/storetest"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// newTestStore connects to TABLETOP_TEST_REDIS_URL under a throwaway prefix.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("TABLETOP_TEST_REDIS_URL")
	if url == "" {
		t.Skip("TABLETOP_TEST_REDIS_URL not set; skip redis store tests")
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	cli := redis.NewClient(opt)
	prefix := "tabletop-test:" + uuid.NewString()
	s := NewFromClient(cli, prefix)
	if err := s.Ping(context.Background()); err != nil {
		_ = cli.Close()
		t.Skipf("redis not reachable: %v", err)
	}
	t.Cleanup(func() {
		ctx := context.Background()
		iter := cli.Scan(ctx, 0, prefix+":*", 100).Iterator()
		for iter.Next(ctx) {
			cli.Del(ctx, iter.Val())
		}
		_ = cli.Close()
	})
	return s
}

func TestRedisStoreConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) ports.BoardGameStore { return newTestStore(t) })
}

func TestPutMovesIndexes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	b1, _ := s.Add(ctx, &ports.BoardGame{Name: "A", Kind: ports.KindBaseGame, BaseGameID: ports.NoBaseGame})
	b2, _ := s.Add(ctx, &ports.BoardGame{Name: "B", Kind: ports.KindBaseGame, BaseGameID: ports.NoBaseGame})
	e, err := s.Add(ctx, &ports.BoardGame{Name: "E", Kind: ports.KindExpansion, BaseGameID: b1})
	if err != nil {
		t.Fatal(err)
	}
	g, err := s.Get(ctx, e)
	if err != nil {
		t.Fatal(err)
	}
	g.BaseGameID = b2
	if err := s.Put(ctx, g); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Query(ctx, ports.BaseGameIs(b1)); len(got) != 0 {
		t.Fatalf("stale base index entry: %d records", len(got))
	}
	got, err := s.Query(ctx, ports.BaseGameIs(b2))
	if err != nil || len(got) != 1 || got[0].ID != e {
		t.Fatalf("expected %s under new base, got %v, %v", e, got, err)
	}
}
