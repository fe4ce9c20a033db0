package main

import (
	"flag"
	"fmt"

	"github.com/cuihairu/tabletop/services/catalog/internal/config"
	"github.com/cuihairu/tabletop/services/catalog/internal/handler"
	"github.com/cuihairu/tabletop/services/catalog/internal/svc"
	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest"
)

var configFile = flag.String("f", "etc/catalog.yaml", "the config file")

func main() {
	flag.Parse()

	var c config.Config
	conf.MustLoad(*configFile, &c, conf.UseEnv())

	server := rest.MustNewServer(c.RestConf)
	defer server.Stop()

	ctx, err := svc.NewServiceContext(c)
	logx.Must(err)
	defer ctx.Close()
	handler.RegisterHandlers(server, ctx)

	fmt.Printf("Starting catalog server at %s:%d...\n", c.Host, c.Port)
	server.Start()
}
