package view

import (
	"slices"

	"github.com/cuihairu/tabletop/internal/ports"
)

// Status of the last fetch or mutation.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Modal is the dialog currently open on the list screen.
type Modal int

const (
	ModalNone Modal = iota
	ModalAdd
	ModalEdit
	ModalDelete
)

// Mutation names the server effect a MutationFulfilled follows.
type Mutation int

const (
	MutationCreate Mutation = iota
	MutationUpdate
	MutationDelete
)

// State is everything the list screen renders. Records are shared between
// states and must be treated as read-only; Reduce never mutates its input.
type State struct {
	SortField     string
	SortDirection SortDirection
	Records       []*ports.BoardGame
	Filtered      []*ports.BoardGame
	Status        Status
	Err           error
	Current       ports.BoardGame
	Modal         Modal
	SearchQuery   string
	// Year seeds releaseYear of a blank form.
	Year int
}

// NewState returns the initial screen state for the given current year.
func NewState(year int) State {
	return State{
		SortField:     FieldNone,
		SortDirection: Ascending,
		Records:       []*ports.BoardGame{},
		Filtered:      []*ports.BoardGame{},
		Current:       Blank(year),
		Year:          year,
	}
}

// Blank is the empty add form.
func Blank(year int) ports.BoardGame {
	return ports.BoardGame{
		ReleaseYear: year,
		MinPlayers:  1,
		MaxPlayers:  20,
		Kind:        ports.KindBaseGame,
		BaseGameID:  ports.NoBaseGame,
		Standalone:  true,
	}
}

// Action is one of the reducer inputs declared in this file.
type Action interface{ action() }

type (
	// ResetFilters clears search and sort and shows every record.
	ResetFilters struct{}
	// UpdateSearchQuery stores the query without filtering.
	UpdateSearchQuery struct{ Query string }
	// UpdateModal opens or closes a dialog; ID selects the record to edit.
	UpdateModal struct {
		Modal Modal
		ID    string
	}
	// UpdateCurrent sets one field of the record being edited.
	UpdateCurrent struct {
		Field string
		Value any
	}
	// SortBy sorts by Field, toggling direction when it is already the sort field.
	SortBy struct{ Field string }
	// FilterBy stores the query, filters the records and re-applies the sort.
	FilterBy       struct{ Query string }
	FetchPending   struct{}
	FetchFulfilled struct{ Records []*ports.BoardGame }
	FetchRejected  struct{ Err error }
	// MutationFulfilled carries the list re-fetched after a mutation.
	MutationFulfilled struct {
		Op      Mutation
		Records []*ports.BoardGame
	}
)

func (ResetFilters) action()      {}
func (UpdateSearchQuery) action() {}
func (UpdateModal) action()       {}
func (UpdateCurrent) action()     {}
func (SortBy) action()            {}
func (FilterBy) action()          {}
func (FetchPending) action()      {}
func (FetchFulfilled) action()    {}
func (FetchRejected) action()     {}
func (MutationFulfilled) action() {}

// Reduce returns the state that follows s after a.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case ResetFilters:
		s.SortDirection = Ascending
		s.SortField = FieldNone
		s.SearchQuery = ""
		s.Filtered = slices.Clone(s.Records)
	case UpdateSearchQuery:
		s.SearchQuery = a.Query
	case UpdateModal:
		s.Modal = a.Modal
		if a.ID != "" {
			s.Current = Blank(s.Year)
			if i := slices.IndexFunc(s.Filtered, func(g *ports.BoardGame) bool { return g.ID == a.ID }); i >= 0 {
				s.Current = *s.Filtered[i].Clone()
			}
		}
		if a.Modal == ModalNone {
			s.Current = Blank(s.Year)
		}
	case UpdateCurrent:
		s.Current = withField(s.Current, a.Field, a.Value)
	case SortBy:
		if a.Field == FieldExpansions {
			return s
		}
		if a.Field != s.SortField {
			s.SortField = a.Field
			s.SortDirection = Ascending
		} else {
			s.SortDirection = s.SortDirection.Toggle()
		}
		s.Filtered = Sort(s.Filtered, s.SortField, s.SortDirection)
	case FilterBy:
		s.SearchQuery = a.Query
		s.Filtered = Search(s.Records, a.Query, s.SortField, s.SortDirection)
	case FetchPending:
		s.Status = StatusLoading
	case FetchFulfilled:
		s.Status = StatusIdle
		s.Err = nil
		s.Records = slices.Clone(a.Records)
		s.Filtered = slices.Clone(a.Records)
	case FetchRejected:
		s.Status = StatusFailed
		s.Err = a.Err
	case MutationFulfilled:
		s.Status = StatusIdle
		s.Err = nil
		if a.Op != MutationDelete {
			s.Modal = ModalNone
			s.Current = Blank(s.Year)
		}
		s.Records = slices.Clone(a.Records)
		s.Filtered = Search(s.Records, s.SearchQuery, s.SortField, s.SortDirection)
	}
	return s
}

// BaseGamesOnly selects the filtered records of kind BaseGame.
func BaseGamesOnly(s State) []*ports.BoardGame {
	out := make([]*ports.BoardGame, 0, len(s.Filtered))
	for _, g := range s.Filtered {
		if g.Kind == ports.KindBaseGame {
			out = append(out, g)
		}
	}
	return out
}

// withField returns g with one wire-named field replaced. Values of the
// wrong type leave g unchanged.
func withField(g ports.BoardGame, field string, value any) ports.BoardGame {
	switch field {
	case FieldName:
		if v, ok := value.(string); ok {
			g.Name = v
		}
	case FieldPublisher:
		if v, ok := value.(string); ok {
			g.Publisher = v
		}
	case FieldReleaseYear:
		if v, ok := value.(int); ok {
			g.ReleaseYear = v
		}
	case FieldMinPlayers:
		if v, ok := value.(int); ok {
			g.MinPlayers = v
		}
	case FieldMaxPlayers:
		if v, ok := value.(int); ok {
			g.MaxPlayers = v
		}
	case FieldType:
		switch v := value.(type) {
		case ports.Kind:
			g.Kind = v
		case string:
			g.Kind = ports.Kind(v)
		}
	case FieldBaseGame:
		if v, ok := value.(string); ok {
			g.BaseGameID = v
		}
	case FieldStandalone:
		if v, ok := value.(bool); ok {
			g.Standalone = v
		}
	}
	return g
}
