package svc

import (
	"context"
	"errors"
	"fmt"

	"github.com/cuihairu/tabletop/internal/catalog/events"
	"github.com/cuihairu/tabletop/internal/db"
	"github.com/cuihairu/tabletop/internal/ports"
	gormcatalog "github.com/cuihairu/tabletop/internal/repo/gorm/catalog"
	memcatalog "github.com/cuihairu/tabletop/internal/repo/memory/catalog"
	rediscatalog "github.com/cuihairu/tabletop/internal/repo/redis/catalog"
	"github.com/cuihairu/tabletop/internal/service/catalog"
	"github.com/cuihairu/tabletop/internal/telemetry"
	"github.com/cuihairu/tabletop/services/catalog/internal/config"
	"github.com/cuihairu/tabletop/services/catalog/internal/middleware"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest"
)

type ServiceContext struct {
	Config      config.Config
	Store       ports.BoardGameStore
	Catalog     *catalog.Service
	Publisher   events.Publisher
	Telemetry   *telemetry.Provider
	SchemaCheck rest.Middleware
}

func NewServiceContext(c config.Config) (*ServiceContext, error) {
	store, err := OpenStore(c.Store)
	if err != nil {
		return nil, err
	}
	tp, err := telemetry.NewProvider(context.Background(), c.Observability)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	pub := events.New(c.Events)
	return &ServiceContext{
		Config:    c,
		Store:     store,
		Publisher: pub,
		Telemetry: tp,
		Catalog: catalog.NewService(store, catalog.Options{
			RelinkOnUpdate:    c.Catalog.RelinkOnUpdate,
			RepairConcurrency: c.Catalog.RepairConcurrency,
			Publisher:         pub,
		}),
		SchemaCheck: middleware.NewSchemaMiddleware(c.Catalog.ValidateSchema).Handle,
	}, nil
}

// OpenStore builds the document store selected by c.Driver.
func OpenStore(c config.StoreConf) (ports.BoardGameStore, error) {
	switch c.Driver {
	case "", "memory":
		return memcatalog.NewStore(), nil
	case "gorm":
		gdb, err := db.Open(c.DataSource)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		if err := gormcatalog.AutoMigrate(gdb); err != nil {
			return nil, fmt.Errorf("migrate catalog tables: %w", err)
		}
		return gormcatalog.NewPortRepo(gormcatalog.NewRepo(gdb)), nil
	case "redis":
		store, err := rediscatalog.New(c.RedisURL, c.KeyPrefix)
		if err != nil {
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", c.Driver)
	}
}

// Close releases the store, the event publisher and the telemetry exporters.
func (s *ServiceContext) Close() error {
	var errs []error
	if s.Publisher != nil {
		errs = append(errs, s.Publisher.Close())
	}
	if s.Telemetry != nil {
		errs = append(errs, s.Telemetry.Shutdown(context.Background()))
	}
	if s.Store != nil {
		errs = append(errs, s.Store.Close())
	}
	err := errors.Join(errs...)
	if err != nil {
		logx.Errorf("close service context: %v", err)
	}
	return err
}
