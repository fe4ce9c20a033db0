// Package client talks to the catalog HTTP API and keeps a view.State in
// sync with it.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cuihairu/tabletop/internal/ports"
	svc "github.com/cuihairu/tabletop/internal/service/catalog"
	"github.com/zeromicro/go-zero/rest/httpc"
)

const basePath = "/api/board-games"

// APIError is a non-2xx answer from the catalog API. It unwraps to the
// catalog error kind matching its status code.
type APIError struct {
	Status  int
	Message string
	Detail  string
	Repairs []RepairReport
}

// RepairReport is one repair outcome attached to a partial failure.
type RepairReport struct {
	Pass     string `json:"pass"`
	RecordID string `json:"record_id"`
	Error    string `json:"error,omitempty"`
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("catalog api: %d %s", e.Status, e.Message)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusBadRequest:
		return svc.ErrValidation
	case e.Status == http.StatusNotFound:
		return svc.ErrNotFound
	case e.Status == http.StatusServiceUnavailable:
		return svc.ErrUpstreamUnavailable
	case e.Status == http.StatusInternalServerError && len(e.Repairs) > 0:
		return svc.ErrPartialFailure
	}
	return nil
}

// Client is a typed wrapper over the catalog REST routes.
type Client struct {
	base string
	http httpc.Service
}

// New returns a client for the API rooted at baseURL (scheme://host[:port]).
func New(baseURL string, opts ...httpc.Option) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: httpc.NewService("tabletop-catalog", opts...),
	}
}

type (
	idPath struct {
		ID string `path:"id"`
	}
	searchForm struct {
		Query     string `form:"q,optional"`
		Field     string `form:"field,optional"`
		Direction string `form:"direction,optional"`
	}
	boardGameData struct {
		BoardGame *ports.BoardGame `json:"board_game"`
	}
	writeBody struct {
		Data boardGameData `json:"data"`
	}
	deleteBody struct {
		ID string `json:"id"`
	}
	listReply struct {
		BoardGames []*ports.BoardGame `json:"board_games"`
	}
	createReply struct {
		ID string `json:"id"`
	}
	auditReply struct {
		Violations []svc.Violation `json:"violations"`
	}
	errorReply struct {
		Message string         `json:"message"`
		Error   string         `json:"error"`
		Repairs []RepairReport `json:"repairs"`
	}
)

func (c *Client) List(ctx context.Context) ([]*ports.BoardGame, error) {
	var out listReply
	if err := c.call(ctx, http.MethodGet, basePath, nil, &out); err != nil {
		return nil, err
	}
	return out.BoardGames, nil
}

func (c *Client) Get(ctx context.Context, id string) (*ports.BoardGame, error) {
	var out ports.BoardGame
	if err := c.call(ctx, http.MethodGet, basePath+"/:id", idPath{ID: id}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search runs the server-side search; field and direction may be empty.
func (c *Client) Search(ctx context.Context, query, field, direction string) ([]*ports.BoardGame, error) {
	var out listReply
	req := searchForm{Query: query, Field: field, Direction: direction}
	if err := c.call(ctx, http.MethodGet, basePath+"/search", req, &out); err != nil {
		return nil, err
	}
	return out.BoardGames, nil
}

func (c *Client) Create(ctx context.Context, g *ports.BoardGame) (string, error) {
	var out createReply
	if err := c.call(ctx, http.MethodPost, basePath, envelope(g), &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) Update(ctx context.Context, g *ports.BoardGame) error {
	return c.call(ctx, http.MethodPut, basePath, envelope(g), nil)
}

// envelope wraps g for the write routes; the server expects a list, never null.
func envelope(g *ports.BoardGame) writeBody {
	if g.Expansions == nil {
		g = g.Clone()
		g.Expansions = []ports.ExpansionRef{}
	}
	return writeBody{Data: boardGameData{BoardGame: g}}
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, basePath, deleteBody{ID: id}, nil)
}

// Audit returns the link inconsistencies the server currently sees.
func (c *Client) Audit(ctx context.Context) ([]svc.Violation, error) {
	var out auditReply
	if err := c.call(ctx, http.MethodGet, basePath+"/audit", nil, &out); err != nil {
		return nil, err
	}
	return out.Violations, nil
}

func (c *Client) call(ctx context.Context, method, path string, req, out any) error {
	resp, err := c.http.Do(ctx, method, c.base+path, req)
	if err != nil {
		return fmt.Errorf("%w: %w", svc.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var body errorReply
		if b, _ := io.ReadAll(resp.Body); len(b) > 0 && json.Unmarshal(b, &body) == nil {
			if body.Message != "" {
				apiErr.Message = body.Message
			}
			apiErr.Detail = body.Error
			apiErr.Repairs = body.Repairs
		}
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
