// Package storetest holds the behavior every ports.BoardGameStore adapter must
// show. Adapter packages call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/cuihairu/tabletop/internal/ports"
	"github.com/google/go-cmp/cmp"
)

// Factory returns an empty store. Cleanup is registered on t by the factory.
type Factory func(t *testing.T) ports.BoardGameStore

func Run(t *testing.T, newStore Factory) {
	t.Run("AddGet", func(t *testing.T) { testAddGet(t, newStore(t)) })
	t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, newStore(t)) })
	t.Run("PutReplaces", func(t *testing.T) { testPutReplaces(t, newStore(t)) })
	t.Run("PutFieldsKeepsExpansions", func(t *testing.T) { testPutFieldsKeepsExpansions(t, newStore(t)) })
	t.Run("PutFieldsMissing", func(t *testing.T) { testPutFieldsMissing(t, newStore(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, newStore(t)) })
	t.Run("List", func(t *testing.T) { testList(t, newStore(t)) })
	t.Run("Query", func(t *testing.T) { testQuery(t, newStore(t)) })
	t.Run("AddExpansionIdempotent", func(t *testing.T) { testAddExpansionIdempotent(t, newStore(t)) })
	t.Run("RemoveExpansion", func(t *testing.T) { testRemoveExpansion(t, newStore(t)) })
	t.Run("SetBaseGame", func(t *testing.T) { testSetBaseGame(t, newStore(t)) })
	t.Run("ConcurrentAddExpansion", func(t *testing.T) { testConcurrentAddExpansion(t, newStore(t)) })
}

func mustAdd(t *testing.T, s ports.BoardGameStore, g *ports.BoardGame) string {
	t.Helper()
	id, err := s.Add(context.Background(), g)
	if err != nil {
		t.Fatalf("add %q: %v", g.Name, err)
	}
	if id == "" {
		t.Fatalf("add %q: empty id", g.Name)
	}
	return id
}

func mustGet(t *testing.T, s ports.BoardGameStore, id string) *ports.BoardGame {
	t.Helper()
	g, err := s.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get %s: %v", id, err)
	}
	return g
}

func base(name string) *ports.BoardGame {
	return &ports.BoardGame{Name: name, Kind: ports.KindBaseGame, BaseGameID: ports.NoBaseGame, MinPlayers: 1, MaxPlayers: 4}
}

func expansion(name, baseID string) *ports.BoardGame {
	return &ports.BoardGame{Name: name, Kind: ports.KindExpansion, BaseGameID: baseID, MinPlayers: 1, MaxPlayers: 4}
}

func ids(games []*ports.BoardGame) []string {
	out := make([]string, 0, len(games))
	for _, g := range games {
		out = append(out, g.ID)
	}
	sort.Strings(out)
	return out
}

func sorted(v ...string) []string {
	sort.Strings(v)
	return v
}

func testAddGet(t *testing.T, s ports.BoardGameStore) {
	in := &ports.BoardGame{
		ID:          "ignored",
		Name:        "Carcassonne",
		ReleaseYear: 2000,
		Publisher:   "Hans im Glück",
		MinPlayers:  2,
		MaxPlayers:  5,
		Kind:        ports.KindBaseGame,
		BaseGameID:  ports.NoBaseGame,
		Standalone:  true,
	}
	id := mustAdd(t, s, in)
	if id == "ignored" {
		t.Fatalf("store kept caller id")
	}
	got := mustGet(t, s, id)
	want := in.Clone()
	want.ID = id
	want.Expansions = []ports.ExpansionRef{}
	opt := cmp.FilterPath(func(p cmp.Path) bool {
		n := p.Last().String()
		return n == ".CreatedAt" || n == ".UpdatedAt"
	}, cmp.Ignore())
	if diff := cmp.Diff(want, got, opt); diff != "" {
		t.Fatalf("get mismatch (-want +got):\n%s", diff)
	}
}

func testGetMissing(t *testing.T, s ports.BoardGameStore) {
	if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testPutReplaces(t *testing.T, s ports.BoardGameStore) {
	ctx := context.Background()
	id := mustAdd(t, s, base("Catan"))
	g := mustGet(t, s, id)
	g.Name = "Catan (5th)"
	g.Expansions = []ports.ExpansionRef{{ID: "x2", Name: "Seafarers"}, {ID: "x1", Name: "Cities"}}
	if err := s.Put(ctx, g); err != nil {
		t.Fatalf("put: %v", err)
	}
	got := mustGet(t, s, id)
	if got.Name != "Catan (5th)" {
		t.Fatalf("name not replaced: %q", got.Name)
	}
	if diff := cmp.Diff(g.Expansions, got.Expansions); diff != "" {
		t.Fatalf("expansions (-want +got):\n%s", diff)
	}
	g.Expansions = nil
	if err := s.Put(ctx, g); err != nil {
		t.Fatalf("put: %v", err)
	}
	if got := mustGet(t, s, id); len(got.Expansions) != 0 {
		t.Fatalf("expected expansions cleared, got %v", got.Expansions)
	}
}

// A base game read before an expansion was linked and written back with
// PutFields must still list that expansion afterwards.
func testPutFieldsKeepsExpansions(t *testing.T, s ports.BoardGameStore) {
	ctx := context.Background()
	id := mustAdd(t, s, base("Catan"))
	if err := s.AddExpansion(ctx, id, ports.ExpansionRef{ID: "x1", Name: "Cities"}); err != nil {
		t.Fatalf("add expansion: %v", err)
	}
	stale := mustGet(t, s, id)
	if err := s.AddExpansion(ctx, id, ports.ExpansionRef{ID: "x2", Name: "Seafarers"}); err != nil {
		t.Fatalf("add expansion: %v", err)
	}

	stale.Name = "Catan (5th)"
	stale.Publisher = "Kosmos"
	stale.Expansions = nil
	if err := s.PutFields(ctx, stale); err != nil {
		t.Fatalf("put fields: %v", err)
	}
	got := mustGet(t, s, id)
	if got.Name != "Catan (5th)" || got.Publisher != "Kosmos" {
		t.Fatalf("fields not written: %+v", got)
	}
	want := []ports.ExpansionRef{{ID: "x1", Name: "Cities"}, {ID: "x2", Name: "Seafarers"}}
	if diff := cmp.Diff(want, got.Expansions); diff != "" {
		t.Fatalf("expansions (-want +got):\n%s", diff)
	}
	if listed, err := s.Query(ctx, ports.ListsExpansion("x2")); err != nil || len(listed) != 1 || listed[0].ID != id {
		t.Fatalf("query after put fields: %v %v", ids(listed), err)
	}
}

func testPutFieldsMissing(t *testing.T, s ports.BoardGameStore) {
	g := base("Ghost")
	g.ID = "nope"
	if err := s.PutFields(context.Background(), g); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testDelete(t *testing.T, s ports.BoardGameStore) {
	ctx := context.Background()
	id := mustAdd(t, s, base("Azul"))
	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, id); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, id); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func testList(t *testing.T, s ports.BoardGameStore) {
	var want []string
	for i := 0; i < 5; i++ {
		want = append(want, mustAdd(t, s, base(fmt.Sprintf("Game %d", i))))
	}
	got, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if diff := cmp.Diff(sorted(want...), ids(got)); diff != "" {
		t.Fatalf("list ids (-want +got):\n%s", diff)
	}
}

func testQuery(t *testing.T, s ports.BoardGameStore) {
	ctx := context.Background()
	b1 := mustAdd(t, s, base("Dominion"))
	b2 := mustAdd(t, s, base("Agricola"))
	e1 := mustAdd(t, s, expansion("Intrigue", b1))
	e2 := mustAdd(t, s, expansion("Seaside", b1))
	mustAdd(t, s, expansion("Farmers", b2))
	if err := s.AddExpansion(ctx, b1, ports.ExpansionRef{ID: e1, Name: "Intrigue"}); err != nil {
		t.Fatalf("add expansion: %v", err)
	}
	if err := s.AddExpansion(ctx, b2, ports.ExpansionRef{ID: e1, Name: "Intrigue"}); err != nil {
		t.Fatalf("add expansion: %v", err)
	}

	got, err := s.Query(ctx, ports.BaseGameIs(b1))
	if err != nil {
		t.Fatalf("query base: %v", err)
	}
	if diff := cmp.Diff(sorted(e1, e2), ids(got)); diff != "" {
		t.Fatalf("baseGame == (-want +got):\n%s", diff)
	}

	got, err = s.Query(ctx, ports.ListsExpansion(e1))
	if err != nil {
		t.Fatalf("query expansions: %v", err)
	}
	if diff := cmp.Diff(sorted(b1, b2), ids(got)); diff != "" {
		t.Fatalf("expansions array-contains (-want +got):\n%s", diff)
	}

	got, err = s.Query(ctx, ports.ListsExpansion("missing"))
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty result, got %v, %v", ids(got), err)
	}

	if _, err := s.Query(ctx, ports.Filter{Field: "publisher", Op: ports.OpEqual, Value: "x"}); !errors.Is(err, ports.ErrUnsupportedQuery) {
		t.Fatalf("expected ErrUnsupportedQuery, got %v", err)
	}
}

func testAddExpansionIdempotent(t *testing.T, s ports.BoardGameStore) {
	ctx := context.Background()
	b := mustAdd(t, s, base("Terraforming Mars"))
	refs := []ports.ExpansionRef{{ID: "e-1", Name: "Prelude"}, {ID: "e-2", Name: "Venus Next"}, {ID: "e-1", Name: "Prelude"}}
	for _, r := range refs {
		if err := s.AddExpansion(ctx, b, r); err != nil {
			t.Fatalf("add expansion %s: %v", r.ID, err)
		}
	}
	want := []ports.ExpansionRef{{ID: "e-1", Name: "Prelude"}, {ID: "e-2", Name: "Venus Next"}}
	if diff := cmp.Diff(want, mustGet(t, s, b).Expansions); diff != "" {
		t.Fatalf("expansions (-want +got):\n%s", diff)
	}
	if err := s.AddExpansion(ctx, "missing", ports.ExpansionRef{ID: "e-3"}); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testRemoveExpansion(t *testing.T, s ports.BoardGameStore) {
	ctx := context.Background()
	b := mustAdd(t, s, base("Wingspan"))
	for _, r := range []ports.ExpansionRef{{ID: "a", Name: "Europe"}, {ID: "b", Name: "Oceania"}} {
		if err := s.AddExpansion(ctx, b, r); err != nil {
			t.Fatalf("add expansion: %v", err)
		}
	}
	if err := s.RemoveExpansion(ctx, b, "a"); err != nil {
		t.Fatalf("remove expansion: %v", err)
	}
	if err := s.RemoveExpansion(ctx, b, "not-listed"); err != nil {
		t.Fatalf("remove unlisted expansion: %v", err)
	}
	want := []ports.ExpansionRef{{ID: "b", Name: "Oceania"}}
	if diff := cmp.Diff(want, mustGet(t, s, b).Expansions); diff != "" {
		t.Fatalf("expansions (-want +got):\n%s", diff)
	}
	got, err := s.Query(ctx, ports.ListsExpansion("a"))
	if err != nil || len(got) != 0 {
		t.Fatalf("removed expansion still indexed: %v, %v", ids(got), err)
	}
	if err := s.RemoveExpansion(ctx, "missing", "b"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testSetBaseGame(t *testing.T, s ports.BoardGameStore) {
	ctx := context.Background()
	b := mustAdd(t, s, base("Root"))
	e := mustAdd(t, s, expansion("Riverfolk", b))
	if err := s.SetBaseGame(ctx, e, ports.NoBaseGame); err != nil {
		t.Fatalf("set base game: %v", err)
	}
	got := mustGet(t, s, e)
	if got.BaseGameID != ports.NoBaseGame || got.Name != "Riverfolk" {
		t.Fatalf("unexpected record after SetBaseGame: %+v", got)
	}
	left, err := s.Query(ctx, ports.BaseGameIs(b))
	if err != nil || len(left) != 0 {
		t.Fatalf("expected no records pointing at %s, got %v, %v", b, ids(left), err)
	}
	if err := s.SetBaseGame(ctx, "missing", b); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testConcurrentAddExpansion(t *testing.T, s ports.BoardGameStore) {
	ctx := context.Background()
	b := mustAdd(t, s, base("Gloomhaven"))
	const n = 16
	var wg sync.WaitGroup
	errs := make(chan error, 2*n)
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			errs <- s.AddExpansion(ctx, b, ports.ExpansionRef{ID: fmt.Sprintf("distinct-%02d", i), Name: "x"})
		}(i)
		go func() {
			defer wg.Done()
			errs <- s.AddExpansion(ctx, b, ports.ExpansionRef{ID: "same", Name: "Forgotten Circles"})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent add expansion: %v", err)
		}
	}
	got := mustGet(t, s, b).Expansions
	if len(got) != n+1 {
		t.Fatalf("expected %d entries, got %d: %v", n+1, len(got), got)
	}
	seen := map[string]int{}
	for _, e := range got {
		seen[e.ID]++
	}
	if seen["same"] != 1 {
		t.Fatalf("expected exactly one entry for the repeated id, got %d", seen["same"])
	}
}
