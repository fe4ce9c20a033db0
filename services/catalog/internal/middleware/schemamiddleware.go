package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/cuihairu/tabletop/internal/validation"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpx"
)

const maxBodyBytes = 1 << 20

// SchemaMiddleware checks the data.board_game document of write requests
// against the board game JSON schema before the handler parses it.
type SchemaMiddleware struct {
	enabled bool
}

func NewSchemaMiddleware(enabled bool) *SchemaMiddleware {
	return &SchemaMiddleware{enabled: enabled}
}

type envelope struct {
	Data struct {
		BoardGame json.RawMessage `json:"board_game"`
	} `json:"data"`
}

func (m *SchemaMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !m.enabled || (r.Method != http.MethodPost && r.Method != http.MethodPut) {
			next(w, r)
			return
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		_ = r.Body.Close()
		if err != nil {
			reject(w, r, "unreadable body", err)
			return
		}
		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			reject(w, r, "malformed body", err)
			return
		}
		if len(env.Data.BoardGame) == 0 {
			httpx.WriteJsonCtx(r.Context(), w, http.StatusBadRequest, map[string]any{
				"message": "invalid board game",
				"error":   "data.board_game is required",
			})
			return
		}
		if err := validation.ValidateBoardGame(env.Data.BoardGame); err != nil {
			reject(w, r, "invalid board game", err)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		r.ContentLength = int64(len(body))
		next(w, r)
	}
}

func reject(w http.ResponseWriter, r *http.Request, message string, err error) {
	logx.WithContext(r.Context()).Infof("rejected %s %s: %v", r.Method, r.URL.Path, err)
	httpx.WriteJsonCtx(r.Context(), w, http.StatusBadRequest, map[string]any{
		"message": message,
		"error":   err.Error(),
	})
}
