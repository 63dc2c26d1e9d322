package biz

import (
	"context"
	"math"
	"time"

	"xinyuan_tech/billing-service/internal/constants"
	"xinyuan_tech/billing-service/internal/errors"

	"github.com/shopspring/decimal"
)

// UpgradeQuote 升级报价
type UpgradeQuote struct {
	// UpgradeCost 升级应付金额（2 位小数）
	UpgradeCost decimal.Decimal
	// PricePerDay 当前套餐按 30 天折算的日单价
	PricePerDay decimal.Decimal
	// Deduction 剩余天数抵扣金额
	Deduction decimal.Decimal
	// RemainingDays 当前激活周期剩余天数
	RemainingDays int
}

// RemainingDays 计算当前激活周期的剩余天数（四舍五入到整天）
// 周期未结束时为正数，已过期为负数
func RemainingDays(endDate, now time.Time) int {
	return int(math.Round(endDate.Sub(now).Hours() / 24))
}

// ProrateUpgrade 纯计算：从当前套餐升级到新套餐的按比例折价
//   - 不允许升级到更低价套餐
//   - 日单价 = 当前价格 / 30（价格为 0 时为 0）
//   - 剩余不足 1 天时不抵扣，按新套餐全价收取
func ProrateUpgrade(currentPrice, newPrice decimal.Decimal, remainingDays int) (*UpgradeQuote, error) {
	if currentPrice.GreaterThan(newPrice) {
		return nil, errors.ErrDowngradeNotAllowed()
	}

	pricePerDay := decimal.Zero
	if currentPrice.IsPositive() {
		pricePerDay = currentPrice.Div(decimal.NewFromInt(constants.ProrationBaseDays)).Round(2)
	}

	quote := &UpgradeQuote{
		PricePerDay:   pricePerDay,
		RemainingDays: remainingDays,
	}
	if remainingDays < 1 {
		quote.Deduction = decimal.Zero
		quote.UpgradeCost = newPrice
		return quote, nil
	}

	quote.Deduction = pricePerDay.Mul(decimal.NewFromInt(int64(remainingDays))).Round(2)
	quote.UpgradeCost = newPrice.Sub(quote.Deduction).Round(2)
	return quote, nil
}

// CalculateUpgradeCost 计算从当前激活周期对应套餐升级到新套餐的费用
// 只读不落库
func (uc *BillingUsecase) CalculateUpgradeCost(ctx context.Context, newPlanID, activationID uint64) (*UpgradeQuote, error) {
	act, err := uc.actRepo.GetActivation(ctx, activationID)
	if err != nil {
		return nil, err
	}
	if act == nil || act.Subscription == nil {
		return nil, errors.ErrActivationNotFound()
	}

	currentPlan := act.Subscription.Plan
	if currentPlan == nil {
		currentPlan, err = uc.planRepo.GetPlan(ctx, act.Subscription.PlanID)
		if err != nil {
			return nil, err
		}
		if currentPlan == nil {
			return nil, errors.ErrPlanNotFound()
		}
	}

	newPlan, err := uc.planRepo.GetPlan(ctx, newPlanID)
	if err != nil {
		return nil, err
	}
	if newPlan == nil {
		return nil, errors.ErrPlanNotFound()
	}

	remaining := RemainingDays(act.EndDate, uc.now())
	quote, err := ProrateUpgrade(currentPlan.Price, newPlan.Price, remaining)
	if err != nil {
		return nil, err
	}

	uc.log.Infof("Upgrade quote: plan %d -> %d, remainingDays=%d, deduction=%s, cost=%s",
		currentPlan.ID, newPlan.ID, quote.RemainingDays, quote.Deduction, quote.UpgradeCost)
	return quote, nil
}

// UpgradePlan 升级订阅套餐（需团队所有者，订阅必须处于激活状态）
// 成功后：订阅换绑新套餐、当前激活指针清空、生成待支付差价订单
// 新周期要等该订单支付后才会生成
func (uc *BillingUsecase) UpgradePlan(ctx context.Context, subscriptionID, newPlanID uint64) (*Order, error) {
	uc.log.Infof("UpgradePlan: subscriptionID=%d, newPlanID=%d", subscriptionID, newPlanID)

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
	if sub.ActivationID == nil {
		return nil, errors.ErrSubscriptionNotActive()
	}

	quote, err := uc.CalculateUpgradeCost(ctx, newPlanID, *sub.ActivationID)
	if err != nil {
		return nil, err
	}

	var order *Order
	err = uc.tm.Exec(ctx, func(ctx context.Context) error {
		sub.PlanID = newPlanID
		sub.ActivationID = nil
		sub.IsActive = false
		if err := uc.subRepo.SaveSubscription(ctx, sub); err != nil {
			uc.log.Errorf("Failed to save subscription %d: %v", sub.ID, err)
			return errors.ErrStorage(err)
		}

		order = &Order{
			OrderNo:        newOrderNo(),
			SubscriptionID: sub.ID,
			DuePayment:     quote.UpgradeCost,
			Status:         constants.OrderStatusPending,
		}
		if err := uc.orderRepo.CreateOrder(ctx, order); err != nil {
			uc.log.Errorf("Failed to create upgrade order: %v", err)
			return errors.ErrStorage(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Infof("Subscription %d upgraded to plan %d, pending order %d for %s",
		sub.ID, newPlanID, order.ID, order.DuePayment)
	return order, nil
}
