package logic

import (
	"context"
	"fmt"

	"github.com/cuihairu/tabletop/internal/service/catalog"
	"github.com/cuihairu/tabletop/services/catalog/internal/svc"
	"github.com/cuihairu/tabletop/services/catalog/internal/types"
	"github.com/zeromicro/go-zero/core/logx"
)

type BoardGameUpdateLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewBoardGameUpdateLogic(ctx context.Context, svcCtx *svc.ServiceContext) *BoardGameUpdateLogic {
	return &BoardGameUpdateLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *BoardGameUpdateLogic) BoardGameUpdate(req *types.BoardGameWriteRequest) error {
	g := toDomain(req.Data.BoardGame)
	if g.ID == "" {
		return fmt.Errorf("%w: id is required", catalog.ErrValidation)
	}
	return l.svcCtx.Catalog.Update(l.ctx, g)
}
