package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order 订单模型
type Order struct {
	OrderID        uint64          `gorm:"primaryKey;column:order_id;autoIncrement"`
	OrderNo        string          `gorm:"column:order_no;type:varchar(36);not null;uniqueIndex:uk_order_no"`
	SubscriptionID uint64          `gorm:"column:subscription_id;not null;index:idx_subscription_id"`
	DuePayment     decimal.Decimal `gorm:"column:due_payment;type:decimal(10,2);not null;default:0"`
	Status         string          `gorm:"column:status;type:enum('PENDING','PAID');default:'PENDING'"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName 避开 MySQL 保留字 order
func (Order) TableName() string { return "subscription_order" }
