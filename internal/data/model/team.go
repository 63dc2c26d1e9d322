package model

import "time"

// Team 团队模型（本服务只读，写入方为用户中心）
type Team struct {
	TeamID     uint64    `gorm:"primaryKey;column:team_id;autoIncrement"`
	Name       string    `gorm:"column:name;type:varchar(100);not null"`
	IsPersonal bool      `gorm:"column:is_personal;default:false"`
	UID        uint64    `gorm:"column:uid;not null;index:idx_uid"` // 团队所有者的用户ID
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Team) TableName() string { return "team" }
