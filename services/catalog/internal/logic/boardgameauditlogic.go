package logic

import (
	"context"

	"github.com/cuihairu/tabletop/services/catalog/internal/svc"
	"github.com/cuihairu/tabletop/services/catalog/internal/types"
	"github.com/zeromicro/go-zero/core/logx"
)

type BoardGameAuditLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewBoardGameAuditLogic(ctx context.Context, svcCtx *svc.ServiceContext) *BoardGameAuditLogic {
	return &BoardGameAuditLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *BoardGameAuditLogic) BoardGameAudit() (resp *types.AuditResponse, err error) {
	violations, err := l.svcCtx.Catalog.Audit(l.ctx)
	if err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		l.Infof("audit found %d link violations", len(violations))
	}
	return &types.AuditResponse{Violations: fromViolations(violations)}, nil
}
