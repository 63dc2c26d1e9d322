package model

import "time"

// Subscription 订阅模型
// activation_id 为当前激活周期指针，NULL 表示未开通
type Subscription struct {
	SubscriptionID uint64    `gorm:"primaryKey;column:subscription_id;autoIncrement"`
	PlanID         uint64    `gorm:"column:plan_id;not null;index:idx_plan_id"`
	TeamID         uint64    `gorm:"column:team_id;not null;index:idx_team_id"`
	Type           string    `gorm:"column:type;type:enum('MONTH','YEAR');default:'MONTH'"`
	IsActive       bool      `gorm:"column:is_active;default:false"`
	ActivationID   *uint64   `gorm:"column:activation_id"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Subscription) TableName() string { return "subscription" }
