package handler

import (
	"net/http"

	"github.com/cuihairu/tabletop/services/catalog/internal/logic"
	"github.com/cuihairu/tabletop/services/catalog/internal/svc"
	"github.com/cuihairu/tabletop/services/catalog/internal/types"
	"github.com/zeromicro/go-zero/rest/httpx"
)

func BoardGameSearchHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.BoardGameSearchRequest
		if err := httpx.ParseForm(r, &req); err != nil {
			writeCatalogError(r.Context(), w, badRequest(err))
			return
		}

		l := logic.NewBoardGameSearchLogic(r.Context(), svcCtx)
		resp, err := l.BoardGameSearch(&req)
		if err != nil {
			writeCatalogError(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
