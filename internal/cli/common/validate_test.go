package common

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/cuihairu/tabletop/internal/validation"
	"github.com/spf13/viper"
)

func catalogViper(settings map[string]any) *viper.Viper {
	v := viper.New()
	base := map[string]any{"name": "catalog", "host": "127.0.0.1", "port": 8888}
	for k, val := range settings {
		base[k] = val
	}
	_ = v.MergeConfigMap(base)
	return v
}

func TestValidateCatalogConfig(t *testing.T) {
	ok := []map[string]any{
		{},
		{"store": map[string]any{"driver": "gorm", "datasource": "sqlite-pure:///data/t.db"}},
		{"store": map[string]any{"driver": "gorm", "datasource": "postgres://u:p@db:5432/t"}},
		{"store": map[string]any{"driver": "redis", "redisurl": "redis://localhost:6379/2"}},
		{"events": map[string]any{"driver": "kafka", "kafkabrokers": []string{"k:9092"}}},
	}
	for i, s := range ok {
		if err := ValidateCatalogConfig(catalogViper(s), true); err != nil {
			t.Errorf("case %d: %v", i, err)
		}
	}
	bad := []map[string]any{
		{"port": 0},
		{"name": ""},
		{"store": map[string]any{"driver": "cassandra"}},
		{"store": map[string]any{"driver": "gorm"}},
		{"store": map[string]any{"driver": "gorm", "datasource": "mysql://u@db/t"}},
		{"store": map[string]any{"driver": "redis", "redisurl": "::bad::"}},
		{"events": map[string]any{"driver": "kafka"}},
		{"events": map[string]any{"driver": "nats"}},
		{"catalog": map[string]any{"repairconcurrency": -1}},
		{"certfile": "/does/not/exist.pem", "keyfile": "/does/not/exist.key"},
	}
	for i, s := range bad {
		if err := ValidateCatalogConfig(catalogViper(s), true); err == nil {
			t.Errorf("case %d: expected error for %v", i, s)
		}
	}
	if err := ValidateCatalogConfig(catalogViper(map[string]any{"store": map[string]any{"driver": "gorm"}}), false); err != nil {
		t.Fatalf("non-strict gorm without dsn: %v", err)
	}
}

func TestValidateBoardGameFile(t *testing.T) {
	dir := t.TempDir()
	single := writeFile(t, dir, "one.json", `{"name":"Azul","type":"BaseGame","min_players":2}`)
	list := writeFile(t, dir, "list.json", `{"board_games":[{"name":"A","type":"BaseGame"},{"name":"B","type":"Expansion","baseGame":"x"}]}`)
	arr := writeFile(t, dir, "arr.json", `[{"name":"A","type":"BaseGame"},{"name":"","type":"Promo"}]`)

	if n, err := ValidateBoardGameFile(single); err != nil || n != 1 {
		t.Fatalf("single: n=%d err=%v", n, err)
	}
	if n, err := ValidateBoardGameFile(list); err != nil || n != 2 {
		t.Fatalf("list: n=%d err=%v", n, err)
	}
	n, err := ValidateBoardGameFile(arr)
	if n != 2 || !errors.Is(err, validation.ErrInvalidDocument) {
		t.Fatalf("arr: n=%d err=%v", n, err)
	}
	if _, err := ValidateBoardGameFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("expected error for a missing file")
	}
}
