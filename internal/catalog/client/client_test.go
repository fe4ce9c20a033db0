package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cuihairu/tabletop/internal/ports"
	svc "github.com/cuihairu/tabletop/internal/service/catalog"
)

type captured struct {
	method string
	path   string
	query  string
	body   map[string]any
}

func newTestServer(t *testing.T, status int, reply any) (*httptest.Server, *captured) {
	t.Helper()
	c := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.method, c.path, c.query = r.Method, r.URL.Path, r.URL.RawQuery
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			_ = json.Unmarshal(b, &c.body)
		}
		if reply == nil {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(reply)
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func TestClientCreateSendsEnvelope(t *testing.T) {
	srv, c := newTestServer(t, http.StatusCreated, map[string]any{"id": "new-id"})
	id, err := New(srv.URL).Create(context.Background(), &ports.BoardGame{Name: "Azul", Kind: ports.KindBaseGame})
	if err != nil {
		t.Fatal(err)
	}
	if id != "new-id" {
		t.Fatalf("id = %q", id)
	}
	if c.method != http.MethodPost || c.path != "/api/board-games" {
		t.Fatalf("request = %s %s", c.method, c.path)
	}
	data, _ := c.body["data"].(map[string]any)
	bg, _ := data["board_game"].(map[string]any)
	if bg["name"] != "Azul" || bg["type"] != "BaseGame" {
		t.Fatalf("unexpected body %v", c.body)
	}
}

func TestClientGetUsesPath(t *testing.T) {
	srv, c := newTestServer(t, http.StatusOK, map[string]any{"id": "g1", "name": "Root", "type": "BaseGame"})
	g, err := New(srv.URL).Get(context.Background(), "g1")
	if err != nil {
		t.Fatal(err)
	}
	if c.path != "/api/board-games/g1" || g.Name != "Root" {
		t.Fatalf("path = %s, record = %+v", c.path, g)
	}
}

func TestClientDeleteAndList(t *testing.T) {
	srv, c := newTestServer(t, http.StatusNoContent, nil)
	if err := New(srv.URL).Delete(context.Background(), "g1"); err != nil {
		t.Fatal(err)
	}
	if c.method != http.MethodDelete || c.body["id"] != "g1" {
		t.Fatalf("request = %s %v", c.method, c.body)
	}

	srv, _ = newTestServer(t, http.StatusOK, map[string]any{"board_games": []map[string]any{{"id": "a", "name": "A"}, {"id": "b", "name": "B"}}})
	list, err := New(srv.URL).List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[1].ID != "b" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestClientSearchQuery(t *testing.T) {
	srv, c := newTestServer(t, http.StatusOK, map[string]any{"board_games": []any{}})
	if _, err := New(srv.URL).Search(context.Background(), "cat", "name", "desc"); err != nil {
		t.Fatal(err)
	}
	if c.path != "/api/board-games/search" {
		t.Fatalf("path = %s", c.path)
	}
	for _, part := range []string{"q=cat", "field=name", "direction=desc"} {
		if !strings.Contains(c.query, part) {
			t.Fatalf("query %q missing %q", c.query, part)
		}
	}
}

func TestClientErrorMapping(t *testing.T) {
	cases := []struct {
		status int
		reply  map[string]any
		want   error
	}{
		{http.StatusBadRequest, map[string]any{"message": "invalid board game"}, svc.ErrValidation},
		{http.StatusNotFound, map[string]any{"message": "board game not found"}, svc.ErrNotFound},
		{http.StatusServiceUnavailable, map[string]any{"message": "document store unavailable"}, svc.ErrUpstreamUnavailable},
		{http.StatusInternalServerError, map[string]any{
			"message": "partial failure",
			"repairs": []map[string]any{{"pass": "base_game", "record_id": "e1", "error": "boom"}},
		}, svc.ErrPartialFailure},
	}
	for _, tc := range cases {
		srv, _ := newTestServer(t, tc.status, tc.reply)
		err := New(srv.URL).Delete(context.Background(), "x")
		if !errors.Is(err, tc.want) {
			t.Errorf("status %d: expected %v, got %v", tc.status, tc.want, err)
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Status != tc.status {
			t.Errorf("status %d: expected *APIError, got %v", tc.status, err)
		}
	}
}
