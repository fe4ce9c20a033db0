// Package view holds the client-side projection of the catalog: name search,
// natural-order sorting and the reducer that drives the list screen.
package view

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/cuihairu/tabletop/internal/ports"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortDirection orders a sorted list.
type SortDirection int

const (
	Ascending SortDirection = iota
	Descending
)

func (d SortDirection) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Toggle flips the direction.
func (d SortDirection) Toggle() SortDirection {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

// ParseDirection accepts asc/ascending/desc/descending; empty means ascending.
func ParseDirection(s string) (SortDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	default:
		return Ascending, fmt.Errorf("unknown sort direction %q", s)
	}
}

// Sortable record fields, named as on the wire.
const (
	FieldNone        = "none"
	FieldID          = "id"
	FieldName        = "name"
	FieldReleaseYear = "releaseYear"
	FieldPublisher   = "publisher"
	FieldMinPlayers  = "min_players"
	FieldMaxPlayers  = "max_players"
	FieldType        = "type"
	FieldBaseGame    = "baseGame"
	FieldStandalone  = "standalone"
	FieldExpansions  = "expansions"
)

// emptyValue stands in for zero values when sorting.
const emptyValue = "-"

// Search keeps the records whose name contains query (case-insensitive) and
// sorts them by field. The input slice is not modified.
func Search(records []*ports.BoardGame, query, field string, dir SortDirection) []*ports.BoardGame {
	return Sort(Filter(records, query), field, dir)
}

// Filter keeps the records whose name contains query, ignoring case.
func Filter(records []*ports.BoardGame, query string) []*ports.BoardGame {
	q := strings.ToLower(query)
	out := make([]*ports.BoardGame, 0, len(records))
	for _, g := range records {
		if g != nil && strings.Contains(strings.ToLower(g.Name), q) {
			out = append(out, g)
		}
	}
	return out
}

// Sort returns a stably sorted copy using numeric-aware, case-insensitive
// collation so "Game 2" sorts before "Game 10". FieldNone, FieldExpansions
// and unknown fields leave the order unchanged.
func Sort(records []*ports.BoardGame, field string, dir SortDirection) []*ports.BoardGame {
	out := slices.Clone(records)
	if !sortable(field) {
		return out
	}
	type keyed struct {
		g   *ports.BoardGame
		key string
	}
	ks := make([]keyed, len(out))
	for i, g := range out {
		ks[i] = keyed{g, FieldValue(g, field)}
	}
	// collators are not safe for concurrent use
	col := collate.New(language.Und, collate.Numeric, collate.Loose)
	slices.SortStableFunc(ks, func(a, b keyed) int {
		if dir == Descending {
			return col.CompareString(b.key, a.key)
		}
		return col.CompareString(a.key, b.key)
	})
	for i := range ks {
		out[i] = ks[i].g
	}
	return out
}

func sortable(field string) bool {
	switch field {
	case FieldID, FieldName, FieldReleaseYear, FieldPublisher, FieldMinPlayers,
		FieldMaxPlayers, FieldType, FieldBaseGame, FieldStandalone:
		return true
	}
	return false
}

// FieldValue renders one field as the string the sorter compares. Zero values
// render as "-".
func FieldValue(g *ports.BoardGame, field string) string {
	if g == nil {
		return emptyValue
	}
	var v string
	switch field {
	case FieldID:
		v = g.ID
	case FieldName:
		v = g.Name
	case FieldReleaseYear:
		v = itoa(g.ReleaseYear)
	case FieldPublisher:
		v = g.Publisher
	case FieldMinPlayers:
		v = itoa(g.MinPlayers)
	case FieldMaxPlayers:
		v = itoa(g.MaxPlayers)
	case FieldType:
		v = string(g.Kind)
	case FieldBaseGame:
		v = g.BaseGameID
	case FieldStandalone:
		if g.Standalone {
			v = "true"
		}
	}
	if v == "" {
		return emptyValue
	}
	return v
}

func itoa(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
