package logic

import (
	"context"

	"github.com/cuihairu/tabletop/services/catalog/internal/svc"
	"github.com/cuihairu/tabletop/services/catalog/internal/types"
	"github.com/zeromicro/go-zero/core/logx"
)

type BoardGameGetLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewBoardGameGetLogic(ctx context.Context, svcCtx *svc.ServiceContext) *BoardGameGetLogic {
	return &BoardGameGetLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *BoardGameGetLogic) BoardGameGet(req *types.BoardGameIdRequest) (resp *types.BoardGame, err error) {
	g, err := l.svcCtx.Catalog.Get(l.ctx, req.Id)
	if err != nil {
		return nil, err
	}
	out := fromDomain(g)
	return &out, nil
}
