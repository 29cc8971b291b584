package dto

import (
	"time"

	"ruralwork/internal/stats"
)

// ── 工作队评分 DTO ──

// WorkTeamRequest 新建 / 修改工作队
type WorkTeamRequest struct {
	TeamName        string `json:"team_name"        binding:"required,max=100"`
	TeamLeader      string `json:"team_leader"      binding:"omitempty,max=100"`
	AssignedVillage string `json:"assigned_village" binding:"omitempty,max=100"`
	Members         string `json:"members"          binding:"omitempty,max=2000"`
	IsActive        *bool  `json:"is_active"`
}

// ActivityRequest 新建 / 修改评分活动
type ActivityRequest struct {
	Title       string    `json:"title"       binding:"required,max=200"`
	Description string    `json:"description" binding:"omitempty,max=2000"`
	StartTime   time.Time `json:"start_time"  binding:"required"`
	EndTime     time.Time `json:"end_time"    binding:"required"`
	Status      string    `json:"status"      binding:"omitempty,oneof=draft active completed"`
}

// ActivityListRequest 活动列表
type ActivityListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=draft active completed"`
}

// TeamEvaluationRequest 对工作队评分
type TeamEvaluationRequest struct {
	TeamID               string  `json:"team_id" binding:"required"`
	WorkQualityScore     float64 `json:"work_quality_score"`
	CooperationScore     float64 `json:"cooperation_score"`
	EfficiencyScore      float64 `json:"efficiency_score"`
	InnovationScore      float64 `json:"innovation_score"`
	ServiceAttitudeScore float64 `json:"service_attitude_score"`
	Comment              string  `json:"comment" binding:"omitempty,max=1000"`
}

// ActivityResultResponse 活动评分结果
type ActivityResultResponse struct {
	ActivityID      string              `json:"activity_id"`
	Title           string              `json:"title"`
	Status          string              `json:"status"`
	EvaluationCount int                 `json:"evaluation_count"`
	AverageScore    float64             `json:"average_score"`
	Ranking         []stats.TeamSummary `json:"ranking"`
}
