package config

import (
	"github.com/cuihairu/tabletop/internal/catalog/events"
	"github.com/cuihairu/tabletop/internal/telemetry"
	"github.com/zeromicro/go-zero/rest"
)

type Config struct {
	rest.RestConf

	Store         StoreConf        `json:",optional"`
	Catalog       CatalogConf      `json:",optional"`
	Events        events.Config    `json:",optional"`
	Observability telemetry.Config `json:",optional"`
	FileLog       FileLogConf      `json:",optional"`
}

// StoreConf selects the document store backing the catalog.
type StoreConf struct {
	Driver string `json:",default=memory,options=memory|gorm|redis"`
	// DataSource is the gorm DSN (postgres://, sqlite:///, sqlite-pure:///, file:).
	DataSource string `json:",optional"`
	RedisURL   string `json:",default=redis://localhost:6379/0"`
	KeyPrefix  string `json:",default=tabletop"`
}

type CatalogConf struct {
	RelinkOnUpdate    bool `json:",default=true"`
	RepairConcurrency int  `json:",default=8"`
	ValidateSchema    bool `json:",default=true"`
}

// FileLogConf configures the CLI process logger. An empty File logs to stderr.
type FileLogConf struct {
	Level      string `json:",default=info,options=debug|info|warn|error"`
	Format     string `json:",default=console,options=console|json"`
	File       string `json:",optional"`
	MaxSize    int    `json:",default=100"`
	MaxBackups int    `json:",default=7"`
	MaxAge     int    `json:",default=14"`
	Compress   bool   `json:",optional"`
}
