package data

import (
	"context"
	"errors"

	"xinyuan_tech/billing-service/internal/biz"
	"xinyuan_tech/billing-service/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

// activationRepo Activation 仓库实现
type activationRepo struct {
	data *Data
	log  *log.Helper
}

// NewActivationRepo 创建 Activation 仓库
func NewActivationRepo(data *Data, logger log.Logger) biz.ActivationRepo {
	return &activationRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// GetActivation 获取激活周期及其订阅关联（订阅含 plan/team 展开）
func (r *activationRepo) GetActivation(ctx context.Context, id uint64) (*biz.Activation, error) {
	var m model.Activation
	err := r.data.DB(ctx).First(&m, "activation_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.log.Errorf("Failed to get activation %d: %v", id, err)
		return nil, err
	}

	act := toBizActivation(&m)

	var sm model.Subscription
	err = r.data.DB(ctx).First(&sm, "subscription_id = ?", m.SubscriptionID).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err == nil {
		sub := toBizSubscription(&sm)
		var plan model.Plan
		if err := r.data.DB(ctx).First(&plan, "plan_id = ?", sm.PlanID).Error; err == nil {
			sub.Plan = toBizPlan(&plan)
		}
		var team model.Team
		if err := r.data.DB(ctx).First(&team, "team_id = ?", sm.TeamID).Error; err == nil {
			sub.Team = toBizTeam(&team)
		}
		act.Subscription = sub
	}
	return act, nil
}

// CreateActivation 创建激活周期
func (r *activationRepo) CreateActivation(ctx context.Context, act *biz.Activation) error {
	m := &model.Activation{
		SubscriptionID: act.SubscriptionID,
		StartDate:      act.StartDate,
		EndDate:        act.EndDate,
	}
	if err := r.data.DB(ctx).Create(m).Error; err != nil {
		r.log.Errorf("Failed to create activation: %v", err)
		return err
	}
	act.ID = m.ActivationID
	act.CreatedAt = m.CreatedAt
	act.UpdatedAt = m.UpdatedAt
	return nil
}

// UpdateActivation 更新激活周期
func (r *activationRepo) UpdateActivation(ctx context.Context, act *biz.Activation) error {
	if err := r.data.DB(ctx).Model(&model.Activation{}).
		Where("activation_id = ?", act.ID).
		Updates(map[string]interface{}{
			"subscription_id": act.SubscriptionID,
			"start_date":      act.StartDate,
			"end_date":        act.EndDate,
		}).Error; err != nil {
		r.log.Errorf("Failed to update activation %d: %v", act.ID, err)
		return err
	}
	return nil
}

func toBizActivation(m *model.Activation) *biz.Activation {
	return &biz.Activation{
		ID:             m.ActivationID,
		SubscriptionID: m.SubscriptionID,
		StartDate:      m.StartDate,
		EndDate:        m.EndDate,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
