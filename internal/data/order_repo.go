package data

import (
	"context"
	"errors"

	"xinyuan_tech/billing-service/internal/biz"
	"xinyuan_tech/billing-service/internal/constants"
	"xinyuan_tech/billing-service/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

// orderRepo Order 仓库实现
type orderRepo struct {
	data *Data
	log  *log.Helper
}

// NewOrderRepo 创建 Order 仓库
func NewOrderRepo(data *Data, logger log.Logger) biz.OrderRepo {
	return &orderRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// GetOrder 根据ID获取订单
func (r *orderRepo) GetOrder(ctx context.Context, id uint64) (*biz.Order, error) {
	var m model.Order
	err := r.data.DB(ctx).First(&m, "order_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.log.Errorf("Failed to get order %d: %v", id, err)
		return nil, err
	}
	return toBizOrder(&m), nil
}

// CreateOrder 创建订单
func (r *orderRepo) CreateOrder(ctx context.Context, order *biz.Order) error {
	m := &model.Order{
		OrderNo:        order.OrderNo,
		SubscriptionID: order.SubscriptionID,
		DuePayment:     order.DuePayment,
		Status:         order.Status,
	}
	if err := r.data.DB(ctx).Create(m).Error; err != nil {
		r.log.Errorf("Failed to create order: %v", err)
		return err
	}
	order.ID = m.OrderID
	order.CreatedAt = m.CreatedAt
	order.UpdatedAt = m.UpdatedAt
	return nil
}

// UpdateOrder 更新订单
func (r *orderRepo) UpdateOrder(ctx context.Context, order *biz.Order) error {
	if err := r.data.DB(ctx).Model(&model.Order{}).
		Where("order_id = ?", order.ID).
		Updates(map[string]interface{}{
			"due_payment": order.DuePayment,
			"status":      order.Status,
		}).Error; err != nil {
		r.log.Errorf("Failed to update order %d: %v", order.ID, err)
		return err
	}
	return nil
}

// HasPendingOrder 订阅是否存在未支付订单
func (r *orderRepo) HasPendingOrder(ctx context.Context, subscriptionID uint64) (bool, error) {
	var count int64
	if err := r.data.DB(ctx).Model(&model.Order{}).
		Where("subscription_id = ? AND status = ?", subscriptionID, constants.OrderStatusPending).
		Count(&count).Error; err != nil {
		r.log.Errorf("Failed to count pending orders for subscription %d: %v", subscriptionID, err)
		return false, err
	}
	return count > 0, nil
}

func toBizOrder(m *model.Order) *biz.Order {
	return &biz.Order{
		ID:             m.OrderID,
		OrderNo:        m.OrderNo,
		SubscriptionID: m.SubscriptionID,
		DuePayment:     m.DuePayment,
		Status:         m.Status,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
