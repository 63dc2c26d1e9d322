package biz

import (
	"context"
	"time"

	"xinyuan_tech/billing-service/internal/constants"
	"xinyuan_tech/billing-service/internal/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order 订单记录
// 对应一次应付款项：新计费周期或套餐升级差价
// 状态只允许单向流转 PENDING -> PAID
type Order struct {
	ID             uint64
	OrderNo        string
	SubscriptionID uint64
	DuePayment     decimal.Decimal
	Status         string // PENDING, PAID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// newOrderNo 生成对外订单号
func newOrderNo() string {
	return uuid.NewString()
}

// OrderRepo 订单仓库接口
type OrderRepo interface {
	// GetOrder 不存在时返回 (nil, nil)
	GetOrder(ctx context.Context, id uint64) (*Order, error)
	CreateOrder(ctx context.Context, order *Order) error
	UpdateOrder(ctx context.Context, order *Order) error
	// HasPendingOrder 订阅是否存在未支付订单（续费任务防重）
	HasPendingOrder(ctx context.Context, subscriptionID uint64) (bool, error)
}

// CreateOrder 创建订单（续费定时任务或外部计费方调用）
func (uc *BillingUsecase) CreateOrder(ctx context.Context, subscriptionID uint64, duePayment decimal.Decimal) (*Order, error) {
	uc.log.Infof("CreateOrder: subscriptionID=%d, duePayment=%s", subscriptionID, duePayment)

	if duePayment.IsNegative() {
		return nil, errors.ErrInvalidPrice()
	}

	sub, err := uc.subRepo.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, errors.ErrSubscriptionNotFound()
	}

	order := &Order{
		OrderNo:        newOrderNo(),
		SubscriptionID: sub.ID,
		DuePayment:     duePayment,
		Status:         constants.OrderStatusPending,
	}
	if err := uc.orderRepo.CreateOrder(ctx, order); err != nil {
		uc.log.Errorf("Failed to create order: %v", err)
		return nil, errors.ErrStorage(err)
	}

	uc.log.Infof("Created order %d (%s) for subscription %d", order.ID, order.OrderNo, sub.ID)
	return order, nil
}

// UpdateOrder 更新订单（需订阅所属团队的所有者）
// 仅在 PENDING -> PAID 流转时自动生成新的激活周期，并将订阅的
// 当前激活指针指向新周期；订单已是 PAID 时重复标记不会再建周期（幂等）
// 全部写操作在一个事务内完成
func (uc *BillingUsecase) UpdateOrder(ctx context.Context, orderID uint64, status string, duePayment decimal.Decimal) error {
	uc.log.Infof("UpdateOrder: orderID=%d, status=%s", orderID, status)

	if status != constants.OrderStatusPending && status != constants.OrderStatusPaid {
		return errors.ErrInvalidOrderStatus()
	}
	if duePayment.IsNegative() {
		return errors.ErrInvalidPrice()
	}

	order, err := uc.orderRepo.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return errors.ErrOrderNotFound()
	}

	sub, err := uc.subRepo.GetSubscription(ctx, order.SubscriptionID)
	if err != nil {
		return err
	}
	if sub == nil {
		return errors.ErrSubscriptionNotFound()
	}
	if err := uc.checkTeamOwnership(ctx, sub); err != nil {
		return err
	}

	// PAID 是终态，不允许回退
	if order.Status == constants.OrderStatusPaid && status == constants.OrderStatusPending {
		return errors.ErrOrderAlreadyPaid()
	}

	becomesPaid := order.Status == constants.OrderStatusPending && status == constants.OrderStatusPaid

	return uc.tm.Exec(ctx, func(ctx context.Context) error {
		order.Status = status
		order.DuePayment = duePayment
		if err := uc.orderRepo.UpdateOrder(ctx, order); err != nil {
			uc.log.Errorf("Failed to update order %d: %v", orderID, err)
			return errors.ErrStorage(err)
		}

		if !becomesPaid {
			return nil
		}

		// 支付完成，按订阅的计费周期类型生成新的激活周期
		startDate, endDate, err := ActivationPeriod(sub.Type, uc.now())
		if err != nil {
			return err
		}
		act := &Activation{
			SubscriptionID: sub.ID,
			StartDate:      startDate,
			EndDate:        endDate,
		}
		if err := uc.actRepo.CreateActivation(ctx, act); err != nil {
			uc.log.Errorf("Failed to create activation for subscription %d: %v", sub.ID, err)
			return errors.ErrStorage(err)
		}

		// 回写当前激活指针并置为激活状态
		sub.ActivationID = &act.ID
		sub.IsActive = true
		if err := uc.subRepo.SaveSubscription(ctx, sub); err != nil {
			uc.log.Errorf("Failed to relink activation for subscription %d: %v", sub.ID, err)
			return errors.ErrStorage(err)
		}

		uc.log.Infof("Order %d paid, activation %d created for subscription %d (%s ~ %s)",
			order.ID, act.ID, sub.ID, startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
		return nil
	})
}
