package model

import "time"

// Activation 激活周期模型（按追加保留历史，不做物理删除）
type Activation struct {
	ActivationID   uint64    `gorm:"primaryKey;column:activation_id;autoIncrement"`
	SubscriptionID uint64    `gorm:"column:subscription_id;not null;index:idx_subscription_id"`
	StartDate      time.Time `gorm:"column:start_date;not null"`
	EndDate        time.Time `gorm:"column:end_date;not null;index:idx_end_date"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Activation) TableName() string { return "activation" }
