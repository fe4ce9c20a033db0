package logic

import (
	"context"

	"github.com/cuihairu/tabletop/services/catalog/internal/svc"
	"github.com/cuihairu/tabletop/services/catalog/internal/types"
	"github.com/zeromicro/go-zero/core/logx"
)

type BoardGameListLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewBoardGameListLogic(ctx context.Context, svcCtx *svc.ServiceContext) *BoardGameListLogic {
	return &BoardGameListLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *BoardGameListLogic) BoardGameList() (resp *types.BoardGameListResponse, err error) {
	games, err := l.svcCtx.Catalog.List(l.ctx)
	if err != nil {
		return nil, err
	}
	return &types.BoardGameListResponse{BoardGames: fromDomainList(games)}, nil
}
