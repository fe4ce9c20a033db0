package handler

import (
	"net/http"

	"github.com/cuihairu/tabletop/services/catalog/internal/logic"
	"github.com/cuihairu/tabletop/services/catalog/internal/svc"
	"github.com/zeromicro/go-zero/rest/httpx"
)

func BoardGameAuditHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := logic.NewBoardGameAuditLogic(r.Context(), svcCtx)
		resp, err := l.BoardGameAudit()
		if err != nil {
			writeCatalogError(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
