package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cuihairu/tabletop/internal/ports"
	"github.com/cuihairu/tabletop/internal/repo/storetest"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// newTestDB returns a file-backed sqlite DB under t.TempDir().
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + filepath.ToSlash(filepath.Join(t.TempDir(), "catalog.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// sqlite allows one writer; serialize through a single connection
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestGormStoreConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) ports.BoardGameStore {
		return NewPortRepo(NewRepo(newTestDB(t)))
	})
}

func TestReplaceKeepsCreatedAt(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()
	g := &BoardGame{Name: "Brass", Kind: string(ports.KindBaseGame), BaseGameID: ports.NoBaseGame}
	if err := repo.Create(ctx, g, nil); err != nil {
		t.Fatal(err)
	}
	created := g.CreatedAt
	next := &BoardGame{ID: g.ID, Name: "Brass: Birmingham", Kind: g.Kind, BaseGameID: g.BaseGameID}
	if err := repo.Replace(ctx, next, []ExpansionLink{{ExpansionID: "a", Name: "A"}, {ExpansionID: "a", Name: "A"}}); err != nil {
		t.Fatal(err)
	}
	got, links, err := repo.Get(ctx, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("created_at changed: %v -> %v", created, got.CreatedAt)
	}
	if len(links) != 1 {
		t.Fatalf("expected duplicate links collapsed, got %d", len(links))
	}
}
