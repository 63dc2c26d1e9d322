package biz

import (
	"context"
	"time"

	"xinyuan_tech/billing-service/internal/auth"
	"xinyuan_tech/billing-service/internal/errors"

	"github.com/shopspring/decimal"
)

// Plan 订阅套餐
type Plan struct {
	ID        uint64
	Name      string
	Price     decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PlanRepo 套餐仓库接口
type PlanRepo interface {
	ListPlans(ctx context.Context) ([]*Plan, error)
	GetPlan(ctx context.Context, id uint64) (*Plan, error)
	CreatePlan(ctx context.Context, plan *Plan) error
	UpdatePlan(ctx context.Context, plan *Plan) error
}

// ListPlans 获取所有订阅套餐列表
func (uc *BillingUsecase) ListPlans(ctx context.Context) ([]*Plan, error) {
	return uc.planRepo.ListPlans(ctx)
}

// GetPlan 获取套餐信息
func (uc *BillingUsecase) GetPlan(ctx context.Context, planID uint64) (*Plan, error) {
	plan, err := uc.planRepo.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, errors.ErrPlanNotFound()
	}
	return plan, nil
}

// CreatePlan 创建套餐（仅管理员）
func (uc *BillingUsecase) CreatePlan(ctx context.Context, name string, price decimal.Decimal) (*Plan, error) {
	uc.log.Infof("CreatePlan: name=%s, price=%s", name, price)

	if err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, errors.ErrInvalidPrice()
	}

	plan := &Plan{
		Name:  name,
		Price: price,
	}
	if err := uc.planRepo.CreatePlan(ctx, plan); err != nil {
		uc.log.Errorf("Failed to create plan: %v", err)
		return nil, errors.ErrStorage(err)
	}

	uc.log.Infof("Created plan %d (%s)", plan.ID, plan.Name)
	return plan, nil
}

// UpdatePlan 更新套餐（仅管理员）
// 注意：更新会直接改变后续报价，已支付订单不受影响（无历史价格锁定）
func (uc *BillingUsecase) UpdatePlan(ctx context.Context, planID uint64, name string, price decimal.Decimal) (*Plan, error) {
	uc.log.Infof("UpdatePlan: planID=%d, name=%s, price=%s", planID, name, price)

	if err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, errors.ErrInvalidPrice()
	}

	plan, err := uc.planRepo.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, errors.ErrPlanNotFound()
	}

	plan.Name = name
	plan.Price = price
	if err := uc.planRepo.UpdatePlan(ctx, plan); err != nil {
		uc.log.Errorf("Failed to update plan %d: %v", planID, err)
		return nil, errors.ErrStorage(err)
	}
	return plan, nil
}
