package logic

import (
	"context"
	"fmt"

	"github.com/cuihairu/tabletop/internal/catalog/view"
	"github.com/cuihairu/tabletop/internal/service/catalog"
	"github.com/cuihairu/tabletop/services/catalog/internal/svc"
	"github.com/cuihairu/tabletop/services/catalog/internal/types"
	"github.com/zeromicro/go-zero/core/logx"
)

type BoardGameSearchLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewBoardGameSearchLogic(ctx context.Context, svcCtx *svc.ServiceContext) *BoardGameSearchLogic {
	return &BoardGameSearchLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// BoardGameSearch filters the catalog by a case-insensitive name substring and
// orders the matches by field using natural ordering.
func (l *BoardGameSearchLogic) BoardGameSearch(req *types.BoardGameSearchRequest) (resp *types.BoardGameListResponse, err error) {
	dir, err := view.ParseDirection(req.Direction)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", catalog.ErrValidation, err)
	}
	field := req.Field
	if field == "" {
		field = view.FieldNone
	}
	games, err := l.svcCtx.Catalog.List(l.ctx)
	if err != nil {
		return nil, err
	}
	matched := view.Search(games, req.Q, field, dir)
	l.Debugf("search q=%q field=%s direction=%s matched=%d of %d", req.Q, field, dir, len(matched), len(games))
	return &types.BoardGameListResponse{BoardGames: fromDomainList(matched)}, nil
}
