package validation

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidDocument is wrapped by every schema violation.
var ErrInvalidDocument = errors.New("document does not match schema")

//go:embed schemas/board_game.schema.json
var boardGameSchema []byte

const maxReported = 5

var boardGame = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(boardGameSchema))
})

// BoardGameSchema returns the raw JSON schema for one board game record.
func BoardGameSchema() []byte { return boardGameSchema }

// ValidateBoardGame checks one board game JSON object against the record schema.
func ValidateBoardGame(doc []byte) error {
	schema, err := boardGame()
	if err != nil {
		return fmt.Errorf("board game schema: %w", err)
	}
	return validate(schema, doc)
}

// ValidateJSON validates doc against an arbitrary JSON schema.
func ValidateJSON(schema, doc []byte) error {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schema))
	if err != nil {
		return fmt.Errorf("invalid schema: %w", err)
	}
	return validate(s, doc)
}

func validate(schema *gojsonschema.Schema, doc []byte) error {
	if len(doc) == 0 {
		doc = []byte("{}")
	}
	res, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if res.Valid() {
		return nil
	}
	var msgs []string
	for i, e := range res.Errors() {
		if i >= maxReported {
			break
		}
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(msgs, "; "))
}
