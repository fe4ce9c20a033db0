package view

import (
	"errors"
	"testing"

	"github.com/cuihairu/tabletop/internal/ports"
	"github.com/google/go-cmp/cmp"
)

func loaded(t *testing.T, names ...string) State {
	t.Helper()
	return Reduce(NewState(2024), FetchFulfilled{Records: games(names...)})
}

func TestSortToggling(t *testing.T) {
	s := loaded(t, "Game 2", "Game 10", "Game 1")

	s = Reduce(s, SortBy{Field: FieldName})
	if s.SortField != FieldName || s.SortDirection != Ascending {
		t.Fatalf("first sort: %s %v", s.SortField, s.SortDirection)
	}
	if diff := cmp.Diff([]string{"Game 1", "Game 2", "Game 10"}, names(s.Filtered)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}

	s = Reduce(s, SortBy{Field: FieldName})
	if s.SortDirection != Descending {
		t.Fatal("same field twice should flip to descending")
	}
	if diff := cmp.Diff([]string{"Game 10", "Game 2", "Game 1"}, names(s.Filtered)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}

	s = Reduce(s, SortBy{Field: FieldPublisher})
	if s.SortField != FieldPublisher || s.SortDirection != Ascending {
		t.Fatalf("new field should reset to ascending: %s %v", s.SortField, s.SortDirection)
	}
}

func TestSortByExpansionsLeavesStateUnchanged(t *testing.T) {
	s := Reduce(loaded(t, "b", "a"), SortBy{Field: FieldName})
	s = Reduce(s, SortBy{Field: FieldName})
	next := Reduce(s, SortBy{Field: FieldExpansions})
	if next.SortField != FieldName || next.SortDirection != Descending {
		t.Fatalf("expansions sort changed state: %s %v", next.SortField, next.SortDirection)
	}
	if diff := cmp.Diff(names(s.Filtered), names(next.Filtered)); diff != "" {
		t.Fatalf("(-before +after):\n%s", diff)
	}
}

func TestFilterByKeepsSort(t *testing.T) {
	s := loaded(t, "Azul", "Catan 2", "catan 10", "Catan 1")
	s = Reduce(s, SortBy{Field: FieldName})
	s = Reduce(s, FilterBy{Query: "CATAN"})
	if s.SearchQuery != "CATAN" {
		t.Fatalf("query not stored: %q", s.SearchQuery)
	}
	if diff := cmp.Diff([]string{"Catan 1", "Catan 2", "catan 10"}, names(s.Filtered)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if len(s.Records) != 4 {
		t.Fatal("filtering must not drop records")
	}

	s = Reduce(s, ResetFilters{})
	if s.SearchQuery != "" || s.SortField != FieldNone || len(s.Filtered) != 4 {
		t.Fatalf("reset incomplete: %+v", s)
	}
}

func TestUpdateSearchQueryDoesNotFilter(t *testing.T) {
	s := Reduce(loaded(t, "Azul", "Catan"), UpdateSearchQuery{Query: "zzz"})
	if s.SearchQuery != "zzz" || len(s.Filtered) != 2 {
		t.Fatalf("unexpected state %+v", s)
	}
}

func TestModalAndCurrent(t *testing.T) {
	s := loaded(t, "Azul", "Catan")
	s = Reduce(s, UpdateModal{Modal: ModalEdit, ID: "b"})
	if s.Modal != ModalEdit || s.Current.Name != "Catan" {
		t.Fatalf("edit should load record b, got %+v", s.Current)
	}
	s = Reduce(s, UpdateCurrent{Field: FieldName, Value: "Catan (5th)"})
	s = Reduce(s, UpdateCurrent{Field: FieldMaxPlayers, Value: "six"})
	if s.Current.Name != "Catan (5th)" || s.Current.MaxPlayers != 0 {
		t.Fatalf("unexpected current %+v", s.Current)
	}
	if s.Filtered[1].Name != "Catan" {
		t.Fatal("editing current must not touch the list")
	}

	s = Reduce(s, UpdateModal{Modal: ModalEdit, ID: "missing"})
	if diff := cmp.Diff(Blank(2024), s.Current); diff != "" {
		t.Fatalf("unknown id should give a blank form (-want +got):\n%s", diff)
	}
	s = Reduce(s, UpdateModal{Modal: ModalNone})
	if s.Modal != ModalNone || s.Current.BaseGameID != ports.NoBaseGame || !s.Current.Standalone {
		t.Fatalf("closing should reset current: %+v", s.Current)
	}
}

func TestFetchLifecycle(t *testing.T) {
	s := Reduce(NewState(2024), FetchPending{})
	if s.Status != StatusLoading {
		t.Fatalf("status = %v", s.Status)
	}
	boom := errors.New("boom")
	s = Reduce(s, FetchRejected{Err: boom})
	if s.Status != StatusFailed || !errors.Is(s.Err, boom) {
		t.Fatalf("status = %v err = %v", s.Status, s.Err)
	}
	s = Reduce(s, FetchFulfilled{Records: games("A")})
	if s.Status != StatusIdle || s.Err != nil || len(s.Records) != 1 {
		t.Fatalf("unexpected state %+v", s)
	}
}

func TestMutationFulfilled(t *testing.T) {
	s := loaded(t, "Azul")
	s = Reduce(s, SortBy{Field: FieldName})
	s = Reduce(s, SortBy{Field: FieldName})
	s = Reduce(s, FilterBy{Query: "game"})
	s = Reduce(s, UpdateModal{Modal: ModalAdd})
	s = Reduce(s, UpdateCurrent{Field: FieldName, Value: "Game 3"})

	s = Reduce(s, MutationFulfilled{Op: MutationCreate, Records: games("Azul", "Game 2", "Game 10")})
	if s.Modal != ModalNone || s.Current.Name != "" {
		t.Fatalf("create should close the form: %+v", s)
	}
	if diff := cmp.Diff([]string{"Game 10", "Game 2"}, names(s.Filtered)); diff != "" {
		t.Fatalf("search and sort should be re-applied (-want +got):\n%s", diff)
	}

	s = Reduce(s, UpdateModal{Modal: ModalDelete})
	s = Reduce(s, MutationFulfilled{Op: MutationDelete, Records: games("Azul")})
	if s.Modal != ModalDelete {
		t.Fatal("delete leaves the modal to the caller")
	}
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	s := loaded(t, "b", "a", "c")
	before := names(s.Filtered)
	_ = Reduce(s, SortBy{Field: FieldName})
	if diff := cmp.Diff(before, names(s.Filtered)); diff != "" {
		t.Fatalf("input state changed (-before +after):\n%s", diff)
	}
}

func TestBaseGamesOnly(t *testing.T) {
	s := loaded(t, "Base", "Exp")
	s.Filtered[1].Kind = ports.KindExpansion
	got := BaseGamesOnly(s)
	if len(got) != 1 || got[0].Name != "Base" {
		t.Fatalf("unexpected selection %v", names(got))
	}
}
