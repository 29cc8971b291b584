package dto

// SystemLogListRequest 审计日志查询
type SystemLogListRequest struct {
	PaginationRequest
	UserID   string `form:"user_id"`
	Action   string `form:"action"   binding:"omitempty,max=50"`
	Resource string `form:"resource" binding:"omitempty,max=50"`
}
