package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Plan 套餐模型
type Plan struct {
	PlanID    uint64          `gorm:"primaryKey;column:plan_id;autoIncrement"`
	Name      string          `gorm:"column:name;type:varchar(100);not null"`
	Price     decimal.Decimal `gorm:"column:price;type:decimal(10,2);not null;default:0"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Plan) TableName() string { return "plan" }
