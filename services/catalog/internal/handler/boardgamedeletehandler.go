package handler

import (
	"net/http"

	"github.com/cuihairu/tabletop/services/catalog/internal/logic"
	"github.com/cuihairu/tabletop/services/catalog/internal/svc"
	"github.com/cuihairu/tabletop/services/catalog/internal/types"
	"github.com/zeromicro/go-zero/rest/httpx"
)

func BoardGameDeleteHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.BoardGameDeleteRequest
		if err := httpx.Parse(r, &req); err != nil {
			writeCatalogError(r.Context(), w, badRequest(err))
			return
		}

		l := logic.NewBoardGameDeleteLogic(r.Context(), svcCtx)
		if err := l.BoardGameDelete(&req); err != nil {
			writeCatalogError(r.Context(), w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
