package db

import (
	"path/filepath"
	"testing"
)

func TestOpenPureSQLite(t *testing.T) {
	path := filepath.ToSlash(filepath.Join(t.TempDir(), "t.db"))
	gdb, err := Open("sqlite-pure:///" + path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatal(err)
	}
	defer sqlDB.Close()
	if err := sqlDB.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if got := sqlDB.Stats().MaxOpenConnections; got != 1 {
		t.Fatalf("expected single connection pool, got %d", got)
	}
}

func TestIsPostgres(t *testing.T) {
	cases := map[string]bool{
		"postgres://u:p@h/db":   true,
		"postgresql://h/db":     true,
		"pgx://h/db":            true,
		"file:data/tabletop.db": false,
		":memory:":              false,
		"":                      false,
	}
	for dsn, want := range cases {
		if got := IsPostgres(dsn); got != want {
			t.Errorf("IsPostgres(%q) = %v, want %v", dsn, got, want)
		}
	}
}
