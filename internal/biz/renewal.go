package biz

import (
	"context"
	"fmt"

	"xinyuan_tech/billing-service/internal/constants"

	"github.com/go-redsync/redsync/v4"
)

// RenewalResult 单个订阅的续费建单结果
type RenewalResult struct {
	SubscriptionID uint64
	TeamID         uint64
	OrderID        uint64
	Success        bool
	ErrorMessage   string
}

// CreateRenewalOrders 为即将到期的订阅批量生成续费订单（定时任务）
// 订单金额为当前套餐全价；已有待支付订单的订阅跳过
// 每个订阅用分布式锁防止多实例重复建单
func (uc *BillingUsecase) CreateRenewalOrders(ctx context.Context) (int, []*RenewalResult, error) {
	daysBefore := constants.DefaultRenewalDaysBefore
	if uc.config != nil && uc.config.Billing != nil && uc.config.Billing.RenewalDaysBefore > 0 {
		daysBefore = uc.config.Billing.RenewalDaysBefore
	}
	uc.log.Infof("CreateRenewalOrders: daysBefore=%d", daysBefore)

	subs, err := uc.subRepo.ListExpiringSubscriptions(ctx, daysBefore)
	if err != nil {
		uc.log.Errorf("Failed to list expiring subscriptions: %v", err)
		return 0, nil, err
	}

	created := 0
	results := make([]*RenewalResult, 0, len(subs))
	for _, sub := range subs {
		result := &RenewalResult{
			SubscriptionID: sub.ID,
			TeamID:         sub.TeamID,
		}

		lockKey := fmt.Sprintf("renewal_lock:subscription:%d", sub.ID)
		mutex := uc.rs.NewMutex(
			lockKey,
			redsync.WithExpiry(constants.RenewalLockExpiration),
			redsync.WithTries(constants.RenewalLockRetries),
		)
		if err := mutex.LockContext(ctx); err != nil {
			result.ErrorMessage = "failed to acquire lock or already processing"
			uc.log.Infof("Skipping renewal for subscription %d: lock busy", sub.ID)
			results = append(results, result)
			continue
		}

		result.Success, result.OrderID, result.ErrorMessage = uc.createRenewalOrder(ctx, sub)
		if result.Success && result.OrderID > 0 {
			created++
		}
		results = append(results, result)

		if _, err := mutex.UnlockContext(ctx); err != nil {
			uc.log.Warnf("Failed to unlock renewal lock for subscription %d: %v", sub.ID, err)
		}
	}

	uc.log.Infof("Renewal sweep completed: expiring=%d, orders created=%d", len(subs), created)
	return created, results, nil
}

// createRenewalOrder 为单个订阅建续费订单（调用方已持有锁）
func (uc *BillingUsecase) createRenewalOrder(ctx context.Context, sub *Subscription) (ok bool, orderID uint64, errMsg string) {
	pending, err := uc.orderRepo.HasPendingOrder(ctx, sub.ID)
	if err != nil {
		return false, 0, "failed to check pending orders: " + err.Error()
	}
	if pending {
		uc.log.Infof("Subscription %d already has a pending order, skipping", sub.ID)
		return true, 0, "pending order exists"
	}

	plan := sub.Plan
	if plan == nil {
		plan, err = uc.planRepo.GetPlan(ctx, sub.PlanID)
		if err != nil || plan == nil {
			return false, 0, "failed to resolve plan"
		}
	}

	order := &Order{
		OrderNo:        newOrderNo(),
		SubscriptionID: sub.ID,
		DuePayment:     plan.Price,
		Status:         constants.OrderStatusPending,
	}
	if err := uc.orderRepo.CreateOrder(ctx, order); err != nil {
		uc.log.Errorf("Failed to create renewal order for subscription %d: %v", sub.ID, err)
		return false, 0, err.Error()
	}

	uc.log.Infof("Created renewal order %d for subscription %d, amount %s", order.ID, sub.ID, order.DuePayment)
	return true, order.ID, ""
}

// DeactivateExpiredSubscriptions 批量下线已过期的订阅（定时任务）
// 只翻转 is_active，保留 activation 指针以表达 Expired 状态，
// 指针在升级或下一次支付时被替换
func (uc *BillingUsecase) DeactivateExpiredSubscriptions(ctx context.Context) (int, []uint64, error) {
	uc.log.Infof("Starting expired subscription sweep")

	count, ids, err := uc.subRepo.DeactivateExpiredSubscriptions(ctx)
	if err != nil {
		uc.log.Errorf("Failed to deactivate expired subscriptions: %v", err)
		return 0, nil, err
	}

	uc.log.Infof("Deactivated %d expired subscriptions", count)
	return count, ids, nil
}
