package data

import (
	"context"
	"errors"
	"time"

	"xinyuan_tech/billing-service/internal/biz"
	"xinyuan_tech/billing-service/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

// subscriptionRepo Subscription 仓库实现
type subscriptionRepo struct {
	data *Data
	log  *log.Helper
}

// NewSubscriptionRepo 创建 Subscription 仓库
func NewSubscriptionRepo(data *Data, logger log.Logger) biz.SubscriptionRepo {
	return &subscriptionRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// GetSubscription 获取订阅及其关联（plan/team/activation）
func (r *subscriptionRepo) GetSubscription(ctx context.Context, id uint64) (*biz.Subscription, error) {
	var m model.Subscription
	err := r.data.DB(ctx).First(&m, "subscription_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.log.Errorf("Failed to get subscription %d: %v", id, err)
		return nil, err
	}

	sub := toBizSubscription(&m)
	if err := r.expandSubscription(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// expandSubscription 加载订阅的关联对象
func (r *subscriptionRepo) expandSubscription(ctx context.Context, sub *biz.Subscription) error {
	var plan model.Plan
	if err := r.data.DB(ctx).First(&plan, "plan_id = ?", sub.PlanID).Error; err == nil {
		sub.Plan = toBizPlan(&plan)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	var team model.Team
	if err := r.data.DB(ctx).First(&team, "team_id = ?", sub.TeamID).Error; err == nil {
		sub.Team = toBizTeam(&team)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if sub.ActivationID != nil {
		var act model.Activation
		if err := r.data.DB(ctx).First(&act, "activation_id = ?", *sub.ActivationID).Error; err == nil {
			sub.Activation = toBizActivation(&act)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}
	return nil
}

// ListSubscriptions 获取所有订阅列表（含关联展开）
func (r *subscriptionRepo) ListSubscriptions(ctx context.Context) ([]*biz.Subscription, error) {
	var models []model.Subscription
	if err := r.data.DB(ctx).Find(&models).Error; err != nil {
		r.log.Errorf("Failed to list subscriptions: %v", err)
		return nil, err
	}

	subs := make([]*biz.Subscription, len(models))
	for i, m := range models {
		subs[i] = toBizSubscription(&m)
		if err := r.expandSubscription(ctx, subs[i]); err != nil {
			return nil, err
		}
	}
	return subs, nil
}

// CreateSubscription 创建订阅
func (r *subscriptionRepo) CreateSubscription(ctx context.Context, sub *biz.Subscription) error {
	m := &model.Subscription{
		PlanID:       sub.PlanID,
		TeamID:       sub.TeamID,
		Type:         sub.Type,
		IsActive:     sub.IsActive,
		ActivationID: sub.ActivationID,
	}
	if err := r.data.DB(ctx).Create(m).Error; err != nil {
		r.log.Errorf("Failed to create subscription: %v", err)
		return err
	}
	sub.ID = m.SubscriptionID
	sub.CreatedAt = m.CreatedAt
	sub.UpdatedAt = m.UpdatedAt
	return nil
}

// SaveSubscription 全量保存订阅
// 用 map 而不是结构体更新，否则 gorm 会跳过零值字段，
// 无法把 activation_id 清成 NULL、is_active 翻成 false
func (r *subscriptionRepo) SaveSubscription(ctx context.Context, sub *biz.Subscription) error {
	updates := map[string]interface{}{
		"plan_id":       sub.PlanID,
		"team_id":       sub.TeamID,
		"type":          sub.Type,
		"is_active":     sub.IsActive,
		"activation_id": sub.ActivationID,
	}
	if err := r.data.DB(ctx).Model(&model.Subscription{}).
		Where("subscription_id = ?", sub.ID).
		Updates(updates).Error; err != nil {
		r.log.Errorf("Failed to save subscription %d: %v", sub.ID, err)
		return err
	}
	return nil
}

// ListExpiringSubscriptions 查询激活周期在 N 天内到期的活跃订阅（含套餐展开）
func (r *subscriptionRepo) ListExpiringSubscriptions(ctx context.Context, daysBeforeExpiry int) ([]*biz.Subscription, error) {
	now := time.Now().UTC()
	until := now.AddDate(0, 0, daysBeforeExpiry)

	var models []model.Subscription
	err := r.data.DB(ctx).Model(&model.Subscription{}).
		Joins("JOIN activation ON activation.activation_id = subscription.activation_id").
		Where("subscription.is_active = ? AND activation.end_date BETWEEN ? AND ?", true, now, until).
		Find(&models).Error
	if err != nil {
		r.log.Errorf("Failed to list expiring subscriptions: %v", err)
		return nil, err
	}

	subs := make([]*biz.Subscription, len(models))
	for i, m := range models {
		subs[i] = toBizSubscription(&m)
		var plan model.Plan
		if err := r.data.DB(ctx).First(&plan, "plan_id = ?", m.PlanID).Error; err == nil {
			subs[i].Plan = toBizPlan(&plan)
		}
	}
	return subs, nil
}

// DeactivateExpiredSubscriptions 批量下线激活周期已结束的订阅
// 保留 activation_id 指针，过期状态由 is_active=false 表达
func (r *subscriptionRepo) DeactivateExpiredSubscriptions(ctx context.Context) (int, []uint64, error) {
	now := time.Now().UTC()

	var ids []uint64
	var count int64
	err := r.data.Exec(ctx, func(ctx context.Context) error {
		if err := r.data.DB(ctx).Model(&model.Subscription{}).
			Joins("JOIN activation ON activation.activation_id = subscription.activation_id").
			Where("subscription.is_active = ? AND activation.end_date < ?", true, now).
			Pluck("subscription.subscription_id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		res := r.data.DB(ctx).Model(&model.Subscription{}).
			Where("subscription_id IN ?", ids).
			Update("is_active", false)
		if res.Error != nil {
			return res.Error
		}
		count = res.RowsAffected
		return nil
	})
	if err != nil {
		r.log.Errorf("Failed to deactivate expired subscriptions: %v", err)
		return 0, nil, err
	}
	return int(count), ids, nil
}

func toBizSubscription(m *model.Subscription) *biz.Subscription {
	return &biz.Subscription{
		ID:           m.SubscriptionID,
		PlanID:       m.PlanID,
		TeamID:       m.TeamID,
		Type:         m.Type,
		IsActive:     m.IsActive,
		ActivationID: m.ActivationID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
