package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/cuihairu/tabletop/internal/service/catalog"
	"github.com/cuihairu/tabletop/services/catalog/internal/logic"
	"github.com/cuihairu/tabletop/services/catalog/internal/types"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpx"
)

func writeCatalogError(ctx context.Context, w http.ResponseWriter, err error) {
	var pf *catalog.PartialFailureError
	switch {
	case errors.As(err, &pf):
		logx.WithContext(ctx).Errorf("%s %s left %d failed repairs: %v", pf.Op, pf.ID, len(pf.Failed()), err)
		httpx.WriteJsonCtx(ctx, w, http.StatusInternalServerError, types.ErrorResponse{
			Message: "partial failure",
			Error:   err.Error(),
			Id:      pf.ID,
			Repairs: repairReports(pf.Repairs),
		})
	case errors.Is(err, catalog.ErrValidation), errors.Is(err, logic.ErrInvalidRequest):
		httpx.WriteJsonCtx(ctx, w, http.StatusBadRequest, types.ErrorResponse{Message: "invalid board game", Error: err.Error()})
	case errors.Is(err, catalog.ErrNotFound):
		httpx.WriteJsonCtx(ctx, w, http.StatusNotFound, types.ErrorResponse{Message: "board game not found", Error: err.Error()})
	case errors.Is(err, catalog.ErrUpstreamUnavailable):
		logx.WithContext(ctx).Errorf("document store unavailable: %v", err)
		httpx.WriteJsonCtx(ctx, w, http.StatusServiceUnavailable, types.ErrorResponse{Message: "document store unavailable", Error: err.Error()})
	default:
		logx.WithContext(ctx).Errorf("unexpected catalog error: %v", err)
		httpx.WriteJsonCtx(ctx, w, http.StatusInternalServerError, types.ErrorResponse{Message: "internal error", Error: err.Error()})
	}
}

func repairReports(repairs []catalog.Repair) []types.RepairReport {
	out := make([]types.RepairReport, 0, len(repairs))
	for _, r := range repairs {
		rep := types.RepairReport{Pass: r.Pass, RecordId: r.RecordID}
		if r.Err != nil {
			rep.Error = r.Err.Error()
		}
		out = append(out, rep)
	}
	return out
}

func badRequest(err error) error {
	return errors.Join(logic.ErrInvalidRequest, err)
}
