package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SystemLog 操作审计日志，对应 system_logs，只追加
type SystemLog struct {
	ID        string            `gorm:"type:varchar(36);primaryKey"     json:"id"`
	UserID    *string           `gorm:"type:varchar(36);index"          json:"user_id,omitempty"`
	Action    string            `gorm:"type:varchar(50);not null;index" json:"action"`
	Resource  string            `gorm:"type:varchar(50);not null;default:''" json:"resource"`
	Metadata  datatypes.JSONMap `json:"metadata"`
	IPAddress string            `gorm:"type:varchar(64);not null;default:''" json:"ip_address"`
	CreatedAt time.Time         `gorm:"not null;autoCreateTime;index"   json:"created_at"`
}

// TableName 指定表名
func (SystemLog) TableName() string { return "system_logs" }

func (l *SystemLog) BeforeCreate(*gorm.DB) error {
	assignID(&l.ID)
	return nil
}
