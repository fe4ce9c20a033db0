package logic

import (
	"context"
	"fmt"
	"strings"

	"github.com/cuihairu/tabletop/internal/service/catalog"
	"github.com/cuihairu/tabletop/services/catalog/internal/svc"
	"github.com/cuihairu/tabletop/services/catalog/internal/types"
	"github.com/zeromicro/go-zero/core/logx"
)

type BoardGameDeleteLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewBoardGameDeleteLogic(ctx context.Context, svcCtx *svc.ServiceContext) *BoardGameDeleteLogic {
	return &BoardGameDeleteLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *BoardGameDeleteLogic) BoardGameDelete(req *types.BoardGameDeleteRequest) error {
	id := strings.TrimSpace(req.Id)
	if id == "" {
		return fmt.Errorf("%w: id is required", catalog.ErrValidation)
	}
	return l.svcCtx.Catalog.Delete(l.ctx, id)
}
