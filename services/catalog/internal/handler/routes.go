package handler

import (
	"net/http"

	"github.com/cuihairu/tabletop/services/catalog/internal/svc"
	"github.com/zeromicro/go-zero/rest"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes(
		rest.WithMiddlewares(
			[]rest.Middleware{serverCtx.SchemaCheck},
			[]rest.Route{
				{
					Method:  http.MethodGet,
					Path:    "/api/board-games",
					Handler: BoardGameListHandler(serverCtx),
				},
				{
					Method:  http.MethodPost,
					Path:    "/api/board-games",
					Handler: BoardGameCreateHandler(serverCtx),
				},
				{
					Method:  http.MethodPut,
					Path:    "/api/board-games",
					Handler: BoardGameUpdateHandler(serverCtx),
				},
				{
					Method:  http.MethodDelete,
					Path:    "/api/board-games",
					Handler: BoardGameDeleteHandler(serverCtx),
				},
				{
					Method:  http.MethodGet,
					Path:    "/api/board-games/search",
					Handler: BoardGameSearchHandler(serverCtx),
				},
				{
					Method:  http.MethodGet,
					Path:    "/api/board-games/audit",
					Handler: BoardGameAuditHandler(serverCtx),
				},
				{
					Method:  http.MethodGet,
					Path:    "/api/board-games/:id",
					Handler: BoardGameGetHandler(serverCtx),
				},
			}...,
		),
	)

	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodGet,
				Path:    "/healthz",
				Handler: HealthzHandler(serverCtx),
			},
		},
	)
}
