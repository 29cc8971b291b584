package model

import (
	"time"

	"gorm.io/gorm"
)

// WorkTeam 驻村工作队，对应 work_teams
type WorkTeam struct {
	ID              string `gorm:"type:varchar(36);primaryKey"       json:"id"`
	TeamName        string `gorm:"type:varchar(100);not null"        json:"team_name"`
	TeamLeader      string `gorm:"type:varchar(100);not null;default:''" json:"team_leader"`
	AssignedVillage string `gorm:"type:varchar(100);not null;default:''" json:"assigned_village"`
	Members         string `gorm:"type:text;not null;default:''"     json:"members"`
	IsActive        bool   `gorm:"not null;default:true"             json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (WorkTeam) TableName() string { return "work_teams" }

func (t *WorkTeam) BeforeCreate(*gorm.DB) error {
	assignID(&t.ID)
	return nil
}

// ActivityStatus 工作队评分活动状态
type ActivityStatus string

const (
	ActivityStatusDraft     ActivityStatus = "draft"
	ActivityStatusActive    ActivityStatus = "active"
	ActivityStatusCompleted ActivityStatus = "completed"
)

// TeamEvaluationActivity 工作队评分活动，对应 team_evaluation_activities
type TeamEvaluationActivity struct {
	ID          string         `gorm:"type:varchar(36);primaryKey"                      json:"id"`
	Title       string         `gorm:"type:varchar(200);not null"                       json:"title"`
	Description string         `gorm:"type:text;not null;default:''"                    json:"description"`
	StartTime   time.Time      `gorm:"not null"                                         json:"start_time"`
	EndTime     time.Time      `gorm:"not null"                                         json:"end_time"`
	Status      ActivityStatus `gorm:"type:varchar(20);not null;default:'draft';index"  json:"status"`
	BaseModel
}

// TableName 指定表名
func (TeamEvaluationActivity) TableName() string { return "team_evaluation_activities" }

func (a *TeamEvaluationActivity) BeforeCreate(*gorm.DB) error {
	assignID(&a.ID)
	return nil
}

// WorkTeamEvaluation 工作队评分，对应 work_team_evaluations
// 每个评分人在同一活动中对同一工作队只评一次
type WorkTeamEvaluation struct {
	ID                   string  `gorm:"type:varchar(36);primaryKey"                                        json:"id"`
	ActivityID           string  `gorm:"type:varchar(36);not null;uniqueIndex:uk_team_eval,priority:1"      json:"activity_id"`
	TeamID               string  `gorm:"type:varchar(36);not null;uniqueIndex:uk_team_eval,priority:2;index" json:"team_id"`
	EvaluatorID          string  `gorm:"type:varchar(36);not null;uniqueIndex:uk_team_eval,priority:3"      json:"evaluator_id"`
	WorkQualityScore     float64 `gorm:"not null;default:0" json:"work_quality_score"`
	CooperationScore     float64 `gorm:"not null;default:0" json:"cooperation_score"`
	EfficiencyScore      float64 `gorm:"not null;default:0" json:"efficiency_score"`
	InnovationScore      float64 `gorm:"not null;default:0" json:"innovation_score"`
	ServiceAttitudeScore float64 `gorm:"not null;default:0" json:"service_attitude_score"`
	TotalScore           float64 `gorm:"not null;default:0" json:"total_score"`
	Comment              string  `gorm:"type:text;not null;default:''" json:"comment"`
	BaseModel
}

// TableName 指定表名
func (WorkTeamEvaluation) TableName() string { return "work_team_evaluations" }

func (e *WorkTeamEvaluation) BeforeCreate(*gorm.DB) error {
	assignID(&e.ID)
	return nil
}

// Scores 五个维度原始分，顺序：质量 协作 效率 创新 服务
func (e *WorkTeamEvaluation) Scores() [5]float64 {
	return [5]float64{e.WorkQualityScore, e.CooperationScore, e.EfficiencyScore, e.InnovationScore, e.ServiceAttitudeScore}
}
