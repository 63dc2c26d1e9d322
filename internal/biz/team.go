package biz

import (
	"context"
	"time"
)

// Team 团队（订阅的归属主体，所有权校验的依据）
// 团队的注册与管理由上游服务负责，本服务只读
type Team struct {
	ID         uint64
	Name       string
	IsPersonal bool
	UID        uint64 // 团队所有者的用户ID
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TeamRepo 团队仓库接口（只读协作方）
type TeamRepo interface {
	GetTeam(ctx context.Context, id uint64) (*Team, error)
}
