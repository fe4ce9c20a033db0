package logic

import (
	"errors"
	"strings"
	"time"

	"github.com/cuihairu/tabletop/internal/ports"
	"github.com/cuihairu/tabletop/internal/service/catalog"
	"github.com/cuihairu/tabletop/services/catalog/internal/types"
)

// ErrInvalidRequest marks requests the handlers could not decode.
var ErrInvalidRequest = errors.New("invalid request")

func toDomain(in types.BoardGame) *ports.BoardGame {
	g := &ports.BoardGame{
		ID:          strings.TrimSpace(in.Id),
		Name:        in.Name,
		ReleaseYear: in.ReleaseYear,
		Publisher:   in.Publisher,
		MinPlayers:  in.MinPlayers,
		MaxPlayers:  in.MaxPlayers,
		Kind:        ports.Kind(in.Type),
		BaseGameID:  in.BaseGame,
		Standalone:  in.Standalone,
		Expansions:  make([]ports.ExpansionRef, 0, len(in.Expansions)),
	}
	for _, e := range in.Expansions {
		g.Expansions = append(g.Expansions, ports.ExpansionRef{ID: e.Id, Name: e.Name})
	}
	return g
}

func fromDomain(g *ports.BoardGame) types.BoardGame {
	out := types.BoardGame{
		Id:          g.ID,
		Name:        g.Name,
		ReleaseYear: g.ReleaseYear,
		Publisher:   g.Publisher,
		MinPlayers:  g.MinPlayers,
		MaxPlayers:  g.MaxPlayers,
		Type:        string(g.Kind),
		BaseGame:    g.BaseGameID,
		Standalone:  g.Standalone,
		Expansions:  make([]types.ExpansionRef, 0, len(g.Expansions)),
		CreatedAt:   g.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   g.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	for _, e := range g.Expansions {
		out.Expansions = append(out.Expansions, types.ExpansionRef{Id: e.ID, Name: e.Name})
	}
	return out
}

func fromDomainList(gs []*ports.BoardGame) []types.BoardGame {
	out := make([]types.BoardGame, 0, len(gs))
	for _, g := range gs {
		out = append(out, fromDomain(g))
	}
	return out
}

func fromViolations(vs []catalog.Violation) []types.Violation {
	out := make([]types.Violation, 0, len(vs))
	for _, v := range vs {
		out = append(out, types.Violation{
			Kind:      string(v.Kind),
			RecordId:  v.RecordID,
			RelatedId: v.RelatedID,
			Detail:    v.Detail,
		})
	}
	return out
}
