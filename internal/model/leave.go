package model

import (
	"time"

	"gorm.io/gorm"
)

// LeaveType 请假类型
type LeaveType string

const (
	LeaveTypePersonal LeaveType = "personal"
	LeaveTypeSick     LeaveType = "sick"
	LeaveTypeAnnual   LeaveType = "annual"
	LeaveTypeOther    LeaveType = "other"
)

// Valid 是否为已知请假类型
func (t LeaveType) Valid() bool {
	switch t {
	case LeaveTypePersonal, LeaveTypeSick, LeaveTypeAnnual, LeaveTypeOther:
		return true
	}
	return false
}

// Label 中文名称
func (t LeaveType) Label() string {
	switch t {
	case LeaveTypePersonal:
		return "事假"
	case LeaveTypeSick:
		return "病假"
	case LeaveTypeAnnual:
		return "年假"
	default:
		return "其他"
	}
}

// LeaveStatus 请假审批状态：pending → approved | rejected
type LeaveStatus string

const (
	LeaveStatusPending  LeaveStatus = "pending"
	LeaveStatusApproved LeaveStatus = "approved"
	LeaveStatusRejected LeaveStatus = "rejected"
)

// LeaveRequest 请假申请，对应 leave_requests
type LeaveRequest struct {
	ID              string      `gorm:"type:varchar(36);primaryKey"                        json:"id"`
	UserID          string      `gorm:"type:varchar(36);not null;index"                    json:"user_id"`
	LeaveType       LeaveType   `gorm:"type:varchar(20);not null"                          json:"leave_type"`
	StartDate       time.Time   `gorm:"type:date;not null"                                 json:"start_date"`
	EndDate         time.Time   `gorm:"type:date;not null"                                 json:"end_date"`
	DaysCount       float64     `gorm:"not null"                                           json:"days_count"`
	Reason          string      `gorm:"type:text;not null;default:''"                      json:"reason"`
	Status          LeaveStatus `gorm:"type:varchar(20);not null;default:'pending';index"  json:"status"`
	ApproverID      *string     `gorm:"type:varchar(36)"                                   json:"approver_id,omitempty"`
	ApproverComment string      `gorm:"type:text;not null;default:''"                      json:"approver_comment"`
	ApprovedAt      *time.Time  `json:"approved_at,omitempty"`
	ScoreDeduction  *float64    `json:"score_deduction,omitempty"`
	BaseModel

	User *User `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
}

// TableName 指定表名
func (LeaveRequest) TableName() string { return "leave_requests" }

func (l *LeaveRequest) BeforeCreate(*gorm.DB) error {
	assignID(&l.ID)
	return nil
}

// Deducts 是否计入考勤扣分（已批准的事假）
func (l *LeaveRequest) Deducts() bool {
	return l.LeaveType == LeaveTypePersonal && l.Status == LeaveStatusApproved
}

// ScoreDeduction 扣分流水，对应 score_deductions
// idempotency_key 唯一，同一幂等键只会落账一次
type ScoreDeduction struct {
	ID             string    `gorm:"type:varchar(36);primaryKey"               json:"id"`
	UserID         string    `gorm:"type:varchar(36);not null;index"           json:"user_id"`
	Amount         float64   `gorm:"not null"                                  json:"amount"`
	ScoreBefore    float64   `gorm:"not null"                                  json:"score_before"`
	ScoreAfter     float64   `gorm:"not null"                                  json:"score_after"`
	Reason         string    `gorm:"type:varchar(255);not null;default:''"     json:"reason"`
	IdempotencyKey string    `gorm:"type:varchar(128);not null;uniqueIndex"    json:"idempotency_key"`
	LeaveRequestID *string   `gorm:"type:varchar(36);index"                    json:"leave_request_id,omitempty"`
	OperatorID     *string   `gorm:"type:varchar(36)"                          json:"operator_id,omitempty"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime"                   json:"created_at"`
}

// TableName 指定表名
func (ScoreDeduction) TableName() string { return "score_deductions" }

func (d *ScoreDeduction) BeforeCreate(*gorm.DB) error {
	assignID(&d.ID)
	return nil
}
