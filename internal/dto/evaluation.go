package dto

import "ruralwork/internal/stats"

// ── 年度互评 DTO ──

// SaveEvaluationRequest 保存草稿 / 提交评分
type SaveEvaluationRequest struct {
	EvaluateeID    string  `json:"evaluatee_id"    binding:"required"`
	EvaluationYear string  `json:"evaluation_year" binding:"required,len=4,numeric"`
	ScoreDe        float64 `json:"score_de"`
	ScoreNeng      float64 `json:"score_neng"`
	ScoreQin       float64 `json:"score_qin"`
	ScoreJi        float64 `json:"score_ji"`
	ScoreLian      float64 `json:"score_lian"`
	Comment        string  `json:"comment" binding:"omitempty,max=1000"`
}

// EvaluationListRequest 管理端评分列表
type EvaluationListRequest struct {
	PaginationRequest
	EvaluationYear string `form:"evaluation_year" binding:"omitempty,len=4,numeric"`
	EvaluatorID    string `form:"evaluator_id"`
	EvaluateeID    string `form:"evaluatee_id"`
	IsCompleted    *bool  `form:"is_completed"`
}

// EvaluationResponse 单条评分
type EvaluationResponse struct {
	ID             string  `json:"id"`
	EvaluatorID    string  `json:"evaluator_id"`
	EvaluatorName  string  `json:"evaluator_name,omitempty"`
	EvaluateeID    string  `json:"evaluatee_id"`
	EvaluateeName  string  `json:"evaluatee_name,omitempty"`
	EvaluationYear string  `json:"evaluation_year"`
	ScoreDe        float64 `json:"score_de"`
	ScoreNeng      float64 `json:"score_neng"`
	ScoreQin       float64 `json:"score_qin"`
	ScoreJi        float64 `json:"score_ji"`
	ScoreLian      float64 `json:"score_lian"`
	TotalScore     float64 `json:"total_score"`
	Comment        string  `json:"comment"`
	IsCompleted    bool    `json:"is_completed"`
	CompletedAt    string  `json:"completed_at,omitempty"`
	UpdatedAt      string  `json:"updated_at"`
}

// ColleagueEvaluation 待评同事及当前评分状态
type ColleagueEvaluation struct {
	User       UserResponse        `json:"user"`
	Evaluation *EvaluationResponse `json:"evaluation,omitempty"`
}

// MyEvaluationsResponse 我的互评（某年度）
type MyEvaluationsResponse struct {
	EvaluationYear string                `json:"evaluation_year"`
	Progress       stats.Progress        `json:"progress"`
	Colleagues     []ColleagueEvaluation `json:"colleagues"`
}

// EvaluationReport 年度互评汇总
type EvaluationReport struct {
	EvaluationYear    string                 `json:"evaluation_year"`
	Summaries         []stats.Summary        `json:"summaries"`
	Departments       []stats.DepartmentStat `json:"departments"`
	Distribution      []stats.Bucket         `json:"distribution"`
	DimensionAverages stats.DimensionScores  `json:"dimension_averages"`
	Completion        stats.Completion       `json:"completion"`
}
