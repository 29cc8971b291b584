package dto

// ── 考勤扣分 DTO ──

// DeductionRequest 管理员手工扣分
type DeductionRequest struct {
	UserID         string  `json:"user_id"         binding:"required"`
	Amount         float64 `json:"amount"          binding:"required,gt=0,lte=100"`
	Reason         string  `json:"reason"          binding:"required,max=255"`
	IdempotencyKey string  `json:"idempotency_key" binding:"omitempty,max=128"`
}

// DeductionResponse 扣分结果
type DeductionResponse struct {
	ID             string  `json:"id"`
	UserID         string  `json:"user_id"`
	Amount         float64 `json:"amount"`
	ScoreBefore    float64 `json:"score_before"`
	ScoreAfter     float64 `json:"score_after"`
	Reason         string  `json:"reason"`
	IdempotencyKey string  `json:"idempotency_key"`
	Duplicate      bool    `json:"duplicate"` // 幂等键已处理过，返回的是首次结果
	CreatedAt      string  `json:"created_at"`
}
