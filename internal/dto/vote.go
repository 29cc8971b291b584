package dto

import (
	"time"

	"ruralwork/internal/stats"
)

// ── 投票 DTO ──

// CandidateRequest 候选人
type CandidateRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"        binding:"required,max=50"`
	Description string `json:"description" binding:"omitempty,max=500"`
	Department  string `json:"department"  binding:"omitempty,max=100"`
	Phone       string `json:"phone"`
}

// CreateVoteRequest 创建投票活动
type CreateVoteRequest struct {
	Title           string             `json:"title"              binding:"required,max=200"`
	Description     string             `json:"description"        binding:"omitempty,max=2000"`
	StartTime       time.Time          `json:"start_time"         binding:"required"`
	EndTime         time.Time          `json:"end_time"           binding:"required"`
	MaxVotesPerUser int                `json:"max_votes_per_user" binding:"required,min=1"`
	ShowResults     bool               `json:"show_results"`
	Status          string             `json:"status"             binding:"omitempty,oneof=draft active"`
	Candidates      []CandidateRequest `json:"candidates"         binding:"required,min=1,dive"`
}

// UpdateVoteRequest 修改投票活动（仅 draft 状态）
type UpdateVoteRequest = CreateVoteRequest

// UpdateVoteStatusRequest 变更投票状态
type UpdateVoteStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=draft active closed"`
}

// VoteListRequest 投票列表
type VoteListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=draft active closed"`
}

// CastVoteRequest 投票
type CastVoteRequest struct {
	Candidates []string `json:"candidates" binding:"required,min=1"`
}

// VoteResponse 投票活动
type VoteResponse struct {
	ID              string             `json:"id"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	StartTime       time.Time          `json:"start_time"`
	EndTime         time.Time          `json:"end_time"`
	MaxVotesPerUser int                `json:"max_votes_per_user"`
	ShowResults     bool               `json:"show_results"`
	Status          string             `json:"status"`
	Candidates      []CandidateRequest `json:"candidates"`
	HasVoted        bool               `json:"has_voted"`
	CreatedAt       time.Time          `json:"created_at"`
}

// VoteResultResponse 投票结果
type VoteResultResponse struct {
	Vote              VoteResponse      `json:"vote"`
	Tally             stats.TallyResult `json:"tally"`
	ParticipationRate float64           `json:"participation_rate"` // 投票人数 / 可投票人数
}
