package dto

// ── 请假 DTO ──

// CreateLeaveRequest 提交请假
type CreateLeaveRequest struct {
	LeaveType string  `json:"leave_type" binding:"required,oneof=personal sick annual other"`
	StartDate string  `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string  `json:"end_date"   binding:"required,datetime=2006-01-02"`
	DaysCount float64 `json:"days_count" binding:"omitempty,gt=0"` // 为空时按日期计算
	Reason    string  `json:"reason"     binding:"required,max=500"`
}

// ReviewLeaveRequest 审批请假
type ReviewLeaveRequest struct {
	Status  string `json:"status"  binding:"required,oneof=approved rejected"`
	Comment string `json:"comment" binding:"omitempty,max=500"`
}

// LeaveListRequest 请假列表
type LeaveListRequest struct {
	PaginationRequest
	UserID    string `form:"user_id"`
	Status    string `form:"status"     binding:"omitempty,oneof=pending approved rejected"`
	LeaveType string `form:"leave_type" binding:"omitempty,oneof=personal sick annual other"`
}

// LeaveResponse 请假记录
type LeaveResponse struct {
	ID              string   `json:"id"`
	UserID          string   `json:"user_id"`
	UserName        string   `json:"user_name,omitempty"`
	Department      string   `json:"department,omitempty"`
	LeaveType       string   `json:"leave_type"`
	LeaveTypeLabel  string   `json:"leave_type_label"`
	StartDate       string   `json:"start_date"`
	EndDate         string   `json:"end_date"`
	DaysCount       float64  `json:"days_count"`
	Reason          string   `json:"reason"`
	Status          string   `json:"status"`
	ApproverID      string   `json:"approver_id,omitempty"`
	ApproverComment string   `json:"approver_comment,omitempty"`
	ApprovedAt      string   `json:"approved_at,omitempty"`
	ScoreDeduction  *float64 `json:"score_deduction,omitempty"`
	CreatedAt       string   `json:"created_at"`
}

// ReviewLeaveResponse 审批结果
type ReviewLeaveResponse struct {
	Leave     LeaveResponse      `json:"leave"`
	Deduction *DeductionResponse `json:"deduction,omitempty"`
}
