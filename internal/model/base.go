package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NewID 生成 36 位字符串主键
func NewID() string { return uuid.NewString() }

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	CreatedBy *string   `gorm:"type:varchar(36)"        json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
	UpdatedBy *string   `gorm:"type:varchar(36)"        json:"updated_by,omitempty"`
}

// SoftDeleteModel 支持软删除的审计字段
type SoftDeleteModel struct {
	BaseModel
	DeletedAt gorm.DeletedAt `gorm:"index"           json:"deleted_at,omitempty"`
	DeletedBy *string        `gorm:"type:varchar(36)" json:"deleted_by,omitempty"`
}

// VersionedModel 支持乐观锁的软删除模型
type VersionedModel struct {
	SoftDeleteModel
	Version int `gorm:"not null;default:1" json:"version"`
}

// assignID 主键为空时补一个 uuid；三种驱动下行为一致
func assignID(id *string) {
	if *id == "" {
		*id = NewID()
	}
}

// All 返回需要建表的全部模型（非 postgres 驱动走 AutoMigrate）
func All() []any {
	return []any{
		&User{},
		&Evaluation{},
		&Vote{},
		&VoteRecord{},
		&LeaveRequest{},
		&ScoreDeduction{},
		&WorkTeam{},
		&TeamEvaluationActivity{},
		&WorkTeamEvaluation{},
		&SystemLog{},
	}
}
