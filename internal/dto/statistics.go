package dto

import "ruralwork/internal/stats"

// ── 统计看板 DTO ──

// UserStats 用户统计
type UserStats struct {
	Total     int                 `json:"total"`
	Active    int                 `json:"active"`
	RecentNew int                 `json:"recent_new"` // 近 7 天新增
	ByRole    []RoleCountResponse `json:"by_role"`
}

// VoteStats 投票统计
type VoteStats struct {
	Total             int     `json:"total"`
	Active            int     `json:"active"`
	Closed            int     `json:"closed"`
	RecordCount       int     `json:"record_count"`
	ParticipationRate float64 `json:"participation_rate"`
}

// EvaluationStats 互评统计
type EvaluationStats struct {
	CompletedCount    int                    `json:"completed_count"`
	DimensionAverages stats.DimensionScores  `json:"dimension_averages"`
	TopPerformers     []stats.Summary        `json:"top_performers"`
	Rankings          []stats.Summary        `json:"rankings"`
	Departments       []stats.DepartmentStat `json:"departments"`
	Distribution      []stats.Bucket         `json:"distribution"`
}

// StatisticsResponse 管理看板（同一快照计算）
type StatisticsResponse struct {
	Users       UserStats                `json:"users"`
	Votes       VoteStats                `json:"votes"`
	Evaluations EvaluationStats          `json:"evaluations"`
	Leaves      stats.LeaveOverview      `json:"leaves"`
	Attendance  stats.AttendanceOverview `json:"attendance"`
	Board       []stats.AttendanceScore  `json:"attendance_board"`
	GeneratedAt string                   `json:"generated_at"`
}

// StatisticsRequest 看板查询参数
type StatisticsRequest struct {
	EvaluationYear string `form:"evaluation_year" binding:"omitempty,len=4,numeric"`
}
