package model

import "gorm.io/gorm"

// DefaultTotalScore 考勤基础分
const DefaultTotalScore = 100

// User 用户表，对应 users
type User struct {
	ID           string  `gorm:"type:varchar(36);primaryKey"                json:"id"`
	Phone        string  `gorm:"type:varchar(20);not null;uniqueIndex"      json:"phone"`
	PasswordHash string  `gorm:"type:varchar(255);not null"                 json:"-"`
	Name         string  `gorm:"type:varchar(100);not null"                 json:"name"`
	Department   string  `gorm:"type:varchar(100);not null;default:'';index" json:"department"`
	Position     string  `gorm:"type:varchar(100);not null;default:''"      json:"position"`
	Role         Role    `gorm:"type:varchar(20);not null;index"            json:"role"`
	TotalScore   float64 `gorm:"not null;default:100"                       json:"total_score"`
	IsActive     bool    `gorm:"not null;default:true"                      json:"is_active"`
	VersionedModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(*gorm.DB) error {
	assignID(&u.ID)
	return nil
}
