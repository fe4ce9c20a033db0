package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cuihairu/tabletop/services/catalog/internal/types"
	"github.com/zeromicro/go-zero/core/service"
	"github.com/zeromicro/go-zero/rest"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	server := rest.MustNewServer(rest.RestConf{
		ServiceConf: service.ServiceConf{Name: "catalog-test"},
		Host:        "127.0.0.1",
	})
	RegisterHandlers(server, newTestContext(t))
	return server
}

func serve(t *testing.T, h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestRoutesStaticPathsBeforeID(t *testing.T) {
	h := newTestRouter(t)

	w := serve(t, h, http.MethodPost, "/api/board-games",
		[]byte(`{"data":{"board_game":{"name":"Game 1","type":"BaseGame"}}}`))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d body %s", w.Code, w.Body.String())
	}
	var created types.BoardGameCreateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		target string
		want   int
	}{
		{"/api/board-games", http.StatusOK},
		{"/api/board-games/search?q=game", http.StatusOK},
		{"/api/board-games/audit", http.StatusOK},
		{"/api/board-games/" + created.Id, http.StatusOK},
		{"/api/board-games/nope", http.StatusNotFound},
		{"/healthz", http.StatusOK},
	}
	for _, tc := range cases {
		if w := serve(t, h, http.MethodGet, tc.target, nil); w.Code != tc.want {
			t.Errorf("GET %s: status %d, want %d (body %s)", tc.target, w.Code, tc.want, w.Body.String())
		}
	}

	w = serve(t, h, http.MethodGet, "/api/board-games/search?q=game", nil)
	var found types.BoardGameListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &found); err != nil || len(found.BoardGames) != 1 {
		t.Fatalf("search through router: %s (%v)", w.Body.String(), err)
	}
}

func TestRoutesApplySchemaCheck(t *testing.T) {
	h := newTestRouter(t)
	w := serve(t, h, http.MethodPost, "/api/board-games",
		[]byte(`{"data":{"board_game":{"name":"Promo","type":"Promo"}}}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	var resp types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Message == "" {
		t.Fatalf("expected error body, got %s (%v)", w.Body.String(), err)
	}
}
