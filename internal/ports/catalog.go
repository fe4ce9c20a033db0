package ports

import (
	"context"
	"errors"
	"time"
)

// Kind discriminates base games from expansions.
type Kind string

const (
	KindBaseGame  Kind = "BaseGame"
	KindExpansion Kind = "Expansion"
)

// Valid reports whether k is one of the two known kinds.
func (k Kind) Valid() bool { return k == KindBaseGame || k == KindExpansion }

// NoBaseGame is the reserved baseGameId meaning "not linked to a base game".
const NoBaseGame = "-1"

// ExpansionRef is one entry of a base game's expansions list.
type ExpansionRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// BoardGame is the domain DTO used by services/handlers. Adapters map it to their own models.
type BoardGame struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name"`
	ReleaseYear int            `json:"releaseYear"`
	Publisher   string         `json:"publisher"`
	MinPlayers  int            `json:"min_players"`
	MaxPlayers  int            `json:"max_players"`
	Kind        Kind           `json:"type"`
	BaseGameID  string         `json:"baseGame,omitempty"`
	Standalone  bool           `json:"standalone"`
	Expansions  []ExpansionRef `json:"expansions"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// Linked reports whether the record is an expansion pointing at a base game.
func (g *BoardGame) Linked() bool {
	return g != nil && g.Kind == KindExpansion && g.BaseGameID != "" && g.BaseGameID != NoBaseGame
}

// HasExpansion reports whether id is listed in the expansions cache.
func (g *BoardGame) HasExpansion(id string) bool {
	if g == nil {
		return false
	}
	for _, e := range g.Expansions {
		if e.ID == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (g *BoardGame) Clone() *BoardGame {
	if g == nil {
		return nil
	}
	cp := *g
	if g.Expansions != nil {
		cp.Expansions = append([]ExpansionRef{}, g.Expansions...)
	}
	return &cp
}

// Query fields and operators understood by every store.
const (
	FieldBaseGame   = "baseGame"
	FieldExpansions = "expansions"

	OpEqual         = "=="
	OpArrayContains = "array-contains"
)

// Filter is a single-field document query.
type Filter struct {
	Field string
	Op    string
	Value string
}

// BaseGameIs selects records whose baseGameId equals id.
func BaseGameIs(id string) Filter { return Filter{Field: FieldBaseGame, Op: OpEqual, Value: id} }

// ListsExpansion selects records whose expansions list contains an entry for id.
func ListsExpansion(id string) Filter {
	return Filter{Field: FieldExpansions, Op: OpArrayContains, Value: id}
}

var (
	// ErrNotFound is returned by stores when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrUnsupportedQuery is returned for filters a store cannot evaluate.
	ErrUnsupportedQuery = errors.New("unsupported query")
)

// BoardGameStore is the document-store port the catalog runs on.
type BoardGameStore interface {
	Get(ctx context.Context, id string) (*BoardGame, error)
	List(ctx context.Context) ([]*BoardGame, error)
	Query(ctx context.Context, f Filter) ([]*BoardGame, error)

	// Add stores g under a fresh id and returns it. g.ID is ignored.
	Add(ctx context.Context, g *BoardGame) (string, error)
	// Put replaces the document g.ID wholesale, expansions included.
	Put(ctx context.Context, g *BoardGame) error
	// PutFields replaces every field of the existing document g.ID except
	// its expansions, which are left as stored. ErrNotFound when absent.
	PutFields(ctx context.Context, g *BoardGame) error
	Delete(ctx context.Context, id string) error

	// AddExpansion appends ref to the expansions of id unless an entry with
	// ref.ID is already present. Must be safe under concurrent writers.
	AddExpansion(ctx context.Context, id string, ref ExpansionRef) error
	// RemoveExpansion drops the entry for expansionID from the expansions of id.
	RemoveExpansion(ctx context.Context, id, expansionID string) error
	// SetBaseGame updates only the baseGameId field of id.
	SetBaseGame(ctx context.Context, id, baseGameID string) error

	Close() error
}
