// Package server assembles the catalog REST service so that both the
// standalone binary and the tabletop CLI can start it.
package server

import (
	"fmt"

	"github.com/cuihairu/tabletop/internal/service/catalog"
	"github.com/cuihairu/tabletop/services/catalog/internal/config"
	"github.com/cuihairu/tabletop/services/catalog/internal/handler"
	"github.com/cuihairu/tabletop/services/catalog/internal/svc"
	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest"
)

type (
	Config      = config.Config
	StoreConf   = config.StoreConf
	CatalogConf = config.CatalogConf
	FileLogConf = config.FileLogConf
)

// LoadConfig reads a YAML/JSON config file, expanding ${ENV} references.
func LoadConfig(path string) (Config, error) {
	var c Config
	if err := conf.Load(path, &c, conf.UseEnv()); err != nil {
		return Config{}, fmt.Errorf("load %s: %w", path, err)
	}
	return c, nil
}

// Server is a configured catalog REST server.
type Server struct {
	rest   *rest.Server
	svcCtx *svc.ServiceContext
}

func New(c Config) (*Server, error) {
	rs, err := rest.NewServer(c.RestConf)
	if err != nil {
		return nil, err
	}
	ctx, err := svc.NewServiceContext(c)
	if err != nil {
		rs.Stop()
		return nil, err
	}
	handler.RegisterHandlers(rs, ctx)
	return &Server{rest: rs, svcCtx: ctx}, nil
}

// Start serves until the process receives a shutdown signal.
func (s *Server) Start() {
	c := s.svcCtx.Config
	logx.Infof("Starting catalog server at %s:%d (store=%s, events=%s)", c.Host, c.Port, c.Store.Driver, c.Events.Driver)
	s.rest.Start()
}

func (s *Server) Stop() {
	s.rest.Stop()
	_ = s.svcCtx.Close()
}

// Run starts a server for c and blocks.
func Run(c Config) error {
	s, err := New(c)
	if err != nil {
		return err
	}
	defer s.Stop()
	s.Start()
	return nil
}

// OpenCatalog builds the catalog service over the configured store without
// starting the HTTP server. The returned func releases the store.
func OpenCatalog(c Config) (*catalog.Service, func() error, error) {
	store, err := svc.OpenStore(c.Store)
	if err != nil {
		return nil, nil, err
	}
	s := catalog.NewService(store, catalog.Options{
		RelinkOnUpdate:    c.Catalog.RelinkOnUpdate,
		RepairConcurrency: c.Catalog.RepairConcurrency,
	})
	return s, store.Close, nil
}
