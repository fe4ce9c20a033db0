package catalog

import (
	"context"
	"errors"
	"fmt"

	dom "github.com/cuihairu/tabletop/internal/ports"
	"gorm.io/gorm"
)

// PortRepo adapts *Repo to the ports.BoardGameStore interface.
type PortRepo struct{ r *Repo }

func NewPortRepo(r *Repo) *PortRepo { return &PortRepo{r: r} }

var _ dom.BoardGameStore = (*PortRepo)(nil)

func (p *PortRepo) Get(ctx context.Context, id string) (*dom.BoardGame, error) {
	g, links, err := p.r.Get(ctx, id)
	if err != nil {
		return nil, mapErr(err)
	}
	return toDomain(g, links), nil
}

func (p *PortRepo) List(ctx context.Context) ([]*dom.BoardGame, error) {
	arr, links, err := p.r.List(ctx)
	if err != nil {
		return nil, err
	}
	return toDomainList(arr, links), nil
}

func (p *PortRepo) Query(ctx context.Context, f dom.Filter) ([]*dom.BoardGame, error) {
	var (
		arr   []*BoardGame
		links map[string][]ExpansionLink
		err   error
	)
	switch {
	case f.Field == dom.FieldBaseGame && f.Op == dom.OpEqual:
		arr, links, err = p.r.ListByBaseGame(ctx, f.Value)
	case f.Field == dom.FieldExpansions && f.Op == dom.OpArrayContains:
		arr, links, err = p.r.ListByExpansion(ctx, f.Value)
	default:
		return nil, fmt.Errorf("%w: %s %s", dom.ErrUnsupportedQuery, f.Field, f.Op)
	}
	if err != nil {
		return nil, err
	}
	return toDomainList(arr, links), nil
}

func (p *PortRepo) Add(ctx context.Context, g *dom.BoardGame) (string, error) {
	m, links := fromDomain(g)
	m.ID = ""
	if err := p.r.Create(ctx, m, links); err != nil {
		return "", err
	}
	return m.ID, nil
}

func (p *PortRepo) Put(ctx context.Context, g *dom.BoardGame) error {
	if g == nil || g.ID == "" {
		return errors.New("put: missing id")
	}
	m, links := fromDomain(g)
	return p.r.Replace(ctx, m, links)
}

func (p *PortRepo) PutFields(ctx context.Context, g *dom.BoardGame) error {
	if g == nil || g.ID == "" {
		return errors.New("put: missing id")
	}
	m, _ := fromDomain(g)
	return mapErr(p.r.UpdateFields(ctx, m))
}

func (p *PortRepo) Delete(ctx context.Context, id string) error { return mapErr(p.r.Delete(ctx, id)) }

func (p *PortRepo) AddExpansion(ctx context.Context, id string, ref dom.ExpansionRef) error {
	return mapErr(p.r.AddLink(ctx, id, ref.ID, ref.Name))
}

func (p *PortRepo) RemoveExpansion(ctx context.Context, id, expansionID string) error {
	return mapErr(p.r.RemoveLink(ctx, id, expansionID))
}

func (p *PortRepo) SetBaseGame(ctx context.Context, id, baseGameID string) error {
	return mapErr(p.r.SetBaseGame(ctx, id, baseGameID))
}

func (p *PortRepo) Close() error {
	sqlDB, err := p.r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Helpers
func mapErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dom.ErrNotFound
	}
	return err
}

func fromDomain(g *dom.BoardGame) (*BoardGame, []ExpansionLink) {
	m := &BoardGame{
		ID:          g.ID,
		Name:        g.Name,
		ReleaseYear: g.ReleaseYear,
		Publisher:   g.Publisher,
		MinPlayers:  g.MinPlayers,
		MaxPlayers:  g.MaxPlayers,
		Kind:        string(g.Kind),
		BaseGameID:  g.BaseGameID,
		Standalone:  g.Standalone,
	}
	links := make([]ExpansionLink, 0, len(g.Expansions))
	for _, e := range g.Expansions {
		links = append(links, ExpansionLink{ExpansionID: e.ID, Name: e.Name})
	}
	return m, links
}

func toDomain(g *BoardGame, links []ExpansionLink) *dom.BoardGame {
	if g == nil {
		return nil
	}
	exps := make([]dom.ExpansionRef, 0, len(links))
	for _, l := range links {
		exps = append(exps, dom.ExpansionRef{ID: l.ExpansionID, Name: l.Name})
	}
	return &dom.BoardGame{
		ID:          g.ID,
		Name:        g.Name,
		ReleaseYear: g.ReleaseYear,
		Publisher:   g.Publisher,
		MinPlayers:  g.MinPlayers,
		MaxPlayers:  g.MaxPlayers,
		Kind:        dom.Kind(g.Kind),
		BaseGameID:  g.BaseGameID,
		Standalone:  g.Standalone,
		Expansions:  exps,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

func toDomainList(arr []*BoardGame, links map[string][]ExpansionLink) []*dom.BoardGame {
	out := make([]*dom.BoardGame, 0, len(arr))
	for _, g := range arr {
		out = append(out, toDomain(g, links[g.ID]))
	}
	return out
}
