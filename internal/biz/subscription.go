package biz

import (
	"context"
	"time"

	"xinyuan_tech/billing-service/internal/auth"
	"xinyuan_tech/billing-service/internal/conf"
	"xinyuan_tech/billing-service/internal/constants"
	"xinyuan_tech/billing-service/internal/errors"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-redsync/redsync/v4"
)

// Subscription 团队订阅记录
// ActivationID 指向当前激活周期；为 nil 表示未开通（Unprovisioned）
// 历史激活周期以 activation 行的形式保留，指针重指即视为被取代
type Subscription struct {
	ID           uint64
	PlanID       uint64
	TeamID       uint64
	Type         string // MONTH, YEAR
	IsActive     bool
	ActivationID *uint64
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// 关联展开（按需加载）
	Plan       *Plan
	Team       *Team
	Activation *Activation
}

// SubscriptionRepo 订阅仓库接口
type SubscriptionRepo interface {
	// GetSubscription 返回订阅及其关联（plan/team/activation），不存在时返回 (nil, nil)
	GetSubscription(ctx context.Context, id uint64) (*Subscription, error)
	ListSubscriptions(ctx context.Context) ([]*Subscription, error)
	CreateSubscription(ctx context.Context, sub *Subscription) error
	// SaveSubscription 全量保存，ActivationID 为 nil 时写 NULL（清除当前指针）
	SaveSubscription(ctx context.Context, sub *Subscription) error
	// 批量操作（用于定时任务）
	ListExpiringSubscriptions(ctx context.Context, daysBeforeExpiry int) ([]*Subscription, error)
	DeactivateExpiredSubscriptions(ctx context.Context) (int, []uint64, error)
}

// BillingUsecase 订阅计费业务逻辑
type BillingUsecase struct {
	planRepo  PlanRepo
	teamRepo  TeamRepo
	subRepo   SubscriptionRepo
	actRepo   ActivationRepo
	orderRepo OrderRepo
	tm        Transaction
	rs        *redsync.Redsync
	config    *conf.Bootstrap
	log       *log.Helper

	now func() time.Time
}

// NewBillingUsecase 创建订阅计费业务用例
func NewBillingUsecase(
	planRepo PlanRepo,
	teamRepo TeamRepo,
	subRepo SubscriptionRepo,
	actRepo ActivationRepo,
	orderRepo OrderRepo,
	tm Transaction,
	rs *redsync.Redsync,
	config *conf.Bootstrap,
	logger log.Logger,
) *BillingUsecase {
	return &BillingUsecase{
		planRepo:  planRepo,
		teamRepo:  teamRepo,
		subRepo:   subRepo,
		actRepo:   actRepo,
		orderRepo: orderRepo,
		tm:        tm,
		rs:        rs,
		config:    config,
		log:       log.NewHelper(logger),
		now:       time.Now,
	}
}

// GetSubscription 获取订阅及其关联信息
func (uc *BillingUsecase) GetSubscription(ctx context.Context, id uint64) (*Subscription, error) {
	sub, err := uc.subRepo.GetSubscription(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, errors.ErrSubscriptionNotFound()
	}
	return sub, nil
}

// ListSubscriptions 获取所有订阅列表
func (uc *BillingUsecase) ListSubscriptions(ctx context.Context) ([]*Subscription, error) {
	return uc.subRepo.ListSubscriptions(ctx)
}

// CreateSubscription 创建订阅
// 新订阅绑定套餐与团队，无激活周期，需调用方为团队所有者
func (uc *BillingUsecase) CreateSubscription(ctx context.Context, planID, teamID uint64, billingType string) (*Subscription, error) {
	uc.log.Infof("CreateSubscription: planID=%d, teamID=%d, type=%s", planID, teamID, billingType)

	if billingType != constants.BillingTypeMonth && billingType != constants.BillingTypeYear {
		return nil, errors.ErrInvalidBillingType()
	}

	team, err := uc.teamRepo.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, errors.ErrTeamNotFound()
	}

	plan, err := uc.planRepo.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, errors.ErrPlanNotFound()
	}

	if err := auth.CheckOwnership(ctx, team.UID); err != nil {
		return nil, err
	}

	sub := &Subscription{
		PlanID:   plan.ID,
		TeamID:   team.ID,
		Type:     billingType,
		IsActive: false,
	}
	if err := uc.subRepo.CreateSubscription(ctx, sub); err != nil {
		uc.log.Errorf("Failed to create subscription: %v", err)
		return nil, errors.ErrStorage(err)
	}

	uc.log.Infof("Created subscription %d for team %d on plan %d", sub.ID, team.ID, plan.ID)
	return sub, nil
}

// UpdateSubscription 更新订阅的激活指针与激活状态（所有者）
// 重新指向的激活周期必须属于该订阅
func (uc *BillingUsecase) UpdateSubscription(ctx context.Context, id uint64, activationID *uint64, isActive bool) error {
	uc.log.Infof("UpdateSubscription: id=%d, isActive=%v", id, isActive)

	sub, err := uc.subRepo.GetSubscription(ctx, id)
	if err != nil {
		return err
	}
	if sub == nil {
		return errors.ErrSubscriptionNotFound()
	}
	if err := uc.checkTeamOwnership(ctx, sub); err != nil {
		return err
	}

	if activationID != nil {
		act, err := uc.actRepo.GetActivation(ctx, *activationID)
		if err != nil {
			return err
		}
		if act == nil {
			return errors.ErrActivationNotFound()
		}
		if act.SubscriptionID != sub.ID {
			return errors.ErrActivationMismatch()
		}
	}

	sub.ActivationID = activationID
	sub.IsActive = isActive
	if err := uc.subRepo.SaveSubscription(ctx, sub); err != nil {
		uc.log.Errorf("Failed to save subscription %d: %v", id, err)
		return errors.ErrStorage(err)
	}
	return nil
}

// checkTeamOwnership 校验调用方是否为订阅所属团队的所有者
func (uc *BillingUsecase) checkTeamOwnership(ctx context.Context, sub *Subscription) error {
	team := sub.Team
	if team == nil {
		var err error
		team, err = uc.teamRepo.GetTeam(ctx, sub.TeamID)
		if err != nil {
			return err
		}
		if team == nil {
			return errors.ErrTeamNotFound()
		}
	}
	return auth.CheckOwnership(ctx, team.UID)
}
