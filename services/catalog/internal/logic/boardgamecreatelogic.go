package logic

import (
	"context"

	"github.com/cuihairu/tabletop/services/catalog/internal/svc"
	"github.com/cuihairu/tabletop/services/catalog/internal/types"
	"github.com/zeromicro/go-zero/core/logx"
)

type BoardGameCreateLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewBoardGameCreateLogic(ctx context.Context, svcCtx *svc.ServiceContext) *BoardGameCreateLogic {
	return &BoardGameCreateLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// BoardGameCreate stores a new record. Ids supplied by the caller are ignored.
func (l *BoardGameCreateLogic) BoardGameCreate(req *types.BoardGameWriteRequest) (resp *types.BoardGameCreateResponse, err error) {
	g := toDomain(req.Data.BoardGame)
	g.ID = ""
	id, err := l.svcCtx.Catalog.Create(l.ctx, g)
	if err != nil {
		return nil, err
	}
	return &types.BoardGameCreateResponse{Id: id}, nil
}
