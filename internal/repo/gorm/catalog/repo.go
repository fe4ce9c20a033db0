package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repo provides GORM-based persistence for board games and their expansion links.
type Repo struct{ db *gorm.DB }

func AutoMigrate(db *gorm.DB) error { return db.AutoMigrate(&BoardGame{}, &ExpansionLink{}) }
func NewRepo(db *gorm.DB) *Repo     { return &Repo{db: db} }

// Games CRUD
func (r *Repo) Create(ctx context.Context, g *BoardGame, links []ExpansionLink) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(g).Error; err != nil {
			return err
		}
		return insertLinks(tx, g.ID, links)
	})
}

// Replace saves g (insert or update) and rewrites its expansion list.
func (r *Repo) Replace(ctx context.Context, g *BoardGame, links []ExpansionLink) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing BoardGame
		err := tx.Select("created_at").First(&existing, "id = ?", g.ID).Error
		switch {
		case err == nil:
			g.CreatedAt = existing.CreatedAt
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		if err := tx.Save(g).Error; err != nil {
			return err
		}
		if err := tx.Where("game_id = ?", g.ID).Delete(&ExpansionLink{}).Error; err != nil {
			return err
		}
		return insertLinks(tx, g.ID, links)
	})
}

// UpdateFields saves the columns of an existing game and leaves its
// expansion links alone.
func (r *Repo) UpdateFields(ctx context.Context, g *BoardGame) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing BoardGame
		if err := tx.Select("created_at").First(&existing, "id = ?", g.ID).Error; err != nil {
			return err
		}
		g.CreatedAt = existing.CreatedAt
		return tx.Save(g).Error
	})
}

// Delete removes the game and the links it owns. Links naming it as an
// expansion of other games are left for the caller to repair.
func (r *Repo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&BoardGame{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("game_id = ?", id).Delete(&ExpansionLink{}).Error
	})
}

func (r *Repo) Get(ctx context.Context, id string) (*BoardGame, []ExpansionLink, error) {
	var g BoardGame
	if err := r.db.WithContext(ctx).First(&g, "id = ?", id).Error; err != nil {
		return nil, nil, err
	}
	links, err := r.linksFor(ctx, []string{id})
	if err != nil {
		return nil, nil, err
	}
	return &g, links[id], nil
}

func (r *Repo) List(ctx context.Context) ([]*BoardGame, map[string][]ExpansionLink, error) {
	return r.find(ctx, r.db.WithContext(ctx))
}

// ListByBaseGame returns games whose base_game_id equals id.
func (r *Repo) ListByBaseGame(ctx context.Context, id string) ([]*BoardGame, map[string][]ExpansionLink, error) {
	return r.find(ctx, r.db.WithContext(ctx).Where("base_game_id = ?", id))
}

// ListByExpansion returns games whose expansion list names expansionID.
func (r *Repo) ListByExpansion(ctx context.Context, expansionID string) ([]*BoardGame, map[string][]ExpansionLink, error) {
	sub := r.db.Model(&ExpansionLink{}).Select("game_id").Where("expansion_id = ?", expansionID)
	return r.find(ctx, r.db.WithContext(ctx).Where("id IN (?)", sub))
}

func (r *Repo) find(ctx context.Context, q *gorm.DB) ([]*BoardGame, map[string][]ExpansionLink, error) {
	var arr []*BoardGame
	if err := q.Order("created_at ASC").Order("id ASC").Find(&arr).Error; err != nil {
		return nil, nil, err
	}
	ids := make([]string, 0, len(arr))
	for _, g := range arr {
		ids = append(ids, g.ID)
	}
	links, err := r.linksFor(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	return arr, links, nil
}

func (r *Repo) linksFor(ctx context.Context, gameIDs []string) (map[string][]ExpansionLink, error) {
	out := make(map[string][]ExpansionLink, len(gameIDs))
	if len(gameIDs) == 0 {
		return out, nil
	}
	var arr []ExpansionLink
	if err := r.db.WithContext(ctx).Where("game_id IN ?", gameIDs).Order("id ASC").Find(&arr).Error; err != nil {
		return nil, err
	}
	for _, l := range arr {
		out[l.GameID] = append(out[l.GameID], l)
	}
	return out, nil
}

func (r *Repo) exists(tx *gorm.DB, id string) error {
	var n int64
	if err := tx.Model(&BoardGame{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Expansion links

// AddLink inserts the link unless (game_id, expansion_id) already exists.
func (r *Repo) AddLink(ctx context.Context, gameID, expansionID, name string) error {
	db := r.db.WithContext(ctx)
	if err := r.exists(db, gameID); err != nil {
		return err
	}
	l := ExpansionLink{GameID: gameID, ExpansionID: expansionID, Name: name}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "game_id"}, {Name: "expansion_id"}},
		DoNothing: true,
	}).Create(&l).Error
}

func (r *Repo) RemoveLink(ctx context.Context, gameID, expansionID string) error {
	db := r.db.WithContext(ctx)
	if err := r.exists(db, gameID); err != nil {
		return err
	}
	return db.Where("game_id = ? AND expansion_id = ?", gameID, expansionID).Delete(&ExpansionLink{}).Error
}

func (r *Repo) SetBaseGame(ctx context.Context, id, baseGameID string) error {
	res := r.db.WithContext(ctx).Model(&BoardGame{}).Where("id = ?", id).Update("base_game_id", baseGameID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func insertLinks(tx *gorm.DB, gameID string, links []ExpansionLink) error {
	if len(links) == 0 {
		return nil
	}
	rows := make([]ExpansionLink, 0, len(links))
	seen := map[string]struct{}{}
	for _, l := range links {
		if _, ok := seen[l.ExpansionID]; ok {
			continue
		}
		seen[l.ExpansionID] = struct{}{}
		rows = append(rows, ExpansionLink{GameID: gameID, ExpansionID: l.ExpansionID, Name: l.Name})
	}
	return tx.Create(&rows).Error
}
