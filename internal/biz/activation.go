package biz

import (
	"context"
	"time"

	"xinyuan_tech/billing-service/internal/constants"
	"xinyuan_tech/billing-service/internal/errors"
)

// Activation 激活周期
// 一条记录对应一个已支付的计费周期，按追加方式保留历史
type Activation struct {
	ID             uint64
	SubscriptionID uint64
	StartDate      time.Time
	EndDate        time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// 关联展开（按需加载，含 Subscription.Plan / Subscription.Team）
	Subscription *Subscription
}

// ActivationRepo 激活周期仓库接口
type ActivationRepo interface {
	// GetActivation 返回激活周期及其订阅关联，不存在时返回 (nil, nil)
	GetActivation(ctx context.Context, id uint64) (*Activation, error)
	CreateActivation(ctx context.Context, act *Activation) error
	UpdateActivation(ctx context.Context, act *Activation) error
}

// ActivationPeriod 根据计费周期类型计算激活周期
// MONTH: 今天起 31 个自然日；YEAR: 今天起 1 个自然年
// 起止均为零点日历日期（按日历字段运算，跨夏令时安全）
func ActivationPeriod(billingType string, now time.Time) (startDate, endDate time.Time, err error) {
	startDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch billingType {
	case constants.BillingTypeMonth:
		endDate = startDate.AddDate(0, 0, constants.MonthActivationDays)
	case constants.BillingTypeYear:
		endDate = startDate.AddDate(1, 0, 0)
	default:
		return time.Time{}, time.Time{}, errors.ErrInvalidBillingType()
	}
	return startDate, endDate, nil
}

// CreateActivation 直接创建激活周期（管理操作，需订阅所属团队的所有者）
func (uc *BillingUsecase) CreateActivation(ctx context.Context, subscriptionID uint64, startDate, endDate time.Time) (*Activation, error) {
	uc.log.Infof("CreateActivation: subscriptionID=%d, start=%s, end=%s",
		subscriptionID, startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))

	if !endDate.After(startDate) {
		return nil, errors.ErrInvalidPeriod()
	}

	sub, err := uc.subRepo.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, errors.ErrSubscriptionNotFound()
	}
	if err := uc.checkTeamOwnership(ctx, sub); err != nil {
		return nil, err
	}

	act := &Activation{
		SubscriptionID: sub.ID,
		StartDate:      startDate,
		EndDate:        endDate,
	}
	if err := uc.actRepo.CreateActivation(ctx, act); err != nil {
		uc.log.Errorf("Failed to create activation: %v", err)
		return nil, errors.ErrStorage(err)
	}
	return act, nil
}

// UpdateActivation 修改激活周期（需订阅所属团队的所有者）
// 换绑订阅时目标订阅必须存在且同样归调用方所有；
// 正在作为某订阅当前指针的周期不能换绑，否则指针会悬空
func (uc *BillingUsecase) UpdateActivation(ctx context.Context, id, subscriptionID uint64, startDate, endDate time.Time) error {
	uc.log.Infof("UpdateActivation: id=%d, subscriptionID=%d", id, subscriptionID)

	if !endDate.After(startDate) {
		return errors.ErrInvalidPeriod()
	}

	act, err := uc.actRepo.GetActivation(ctx, id)
	if err != nil {
		return err
	}
	if act == nil {
		return errors.ErrActivationNotFound()
	}
	if act.Subscription == nil {
		return errors.ErrSubscriptionNotFound()
	}
	if err := uc.checkTeamOwnership(ctx, act.Subscription); err != nil {
		return err
	}

	if subscriptionID != act.SubscriptionID {
		if act.Subscription.ActivationID != nil && *act.Subscription.ActivationID == act.ID {
			return errors.ErrActivationInUse()
		}
		target, err := uc.subRepo.GetSubscription(ctx, subscriptionID)
		if err != nil {
			return err
		}
		if target == nil {
			return errors.ErrSubscriptionNotFound()
		}
		if err := uc.checkTeamOwnership(ctx, target); err != nil {
			return err
		}
	}

	act.StartDate = startDate
	act.EndDate = endDate
	act.SubscriptionID = subscriptionID
	if err := uc.actRepo.UpdateActivation(ctx, act); err != nil {
		uc.log.Errorf("Failed to update activation %d: %v", id, err)
		return errors.ErrStorage(err)
	}
	return nil
}
