package data

import (
	"context"
	"errors"

	"xinyuan_tech/billing-service/internal/biz"
	"xinyuan_tech/billing-service/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

// teamRepo Team 仓库实现（只读）
type teamRepo struct {
	data *Data
	log  *log.Helper
}

// NewTeamRepo 创建 Team 仓库
func NewTeamRepo(data *Data, logger log.Logger) biz.TeamRepo {
	return &teamRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// GetTeam 根据ID获取团队
func (r *teamRepo) GetTeam(ctx context.Context, id uint64) (*biz.Team, error) {
	var m model.Team
	err := r.data.DB(ctx).First(&m, "team_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.log.Errorf("Failed to get team %d: %v", id, err)
		return nil, err
	}
	return toBizTeam(&m), nil
}

func toBizTeam(m *model.Team) *biz.Team {
	return &biz.Team{
		ID:         m.TeamID,
		Name:       m.Name,
		IsPersonal: m.IsPersonal,
		UID:        m.UID,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
