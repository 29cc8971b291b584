package model

import (
	"time"

	"gorm.io/gorm"
)

// MaxDimensionScore 单个维度满分
const MaxDimensionScore = 20

// Evaluation 年度互评记录，对应 evaluations
// (evaluator_id, evaluatee_id, evaluation_year) 唯一，草稿与提交共用同一行
type Evaluation struct {
	ID             string     `gorm:"type:varchar(36);primaryKey"                                   json:"id"`
	EvaluatorID    string     `gorm:"type:varchar(36);not null;uniqueIndex:uk_evaluation_key,priority:1" json:"evaluator_id"`
	EvaluateeID    string     `gorm:"type:varchar(36);not null;uniqueIndex:uk_evaluation_key,priority:2;index" json:"evaluatee_id"`
	EvaluationYear string     `gorm:"type:varchar(4);not null;uniqueIndex:uk_evaluation_key,priority:3;index" json:"evaluation_year"`
	ScoreDe        float64    `gorm:"not null;default:0"                                            json:"score_de"`
	ScoreNeng      float64    `gorm:"not null;default:0"                                            json:"score_neng"`
	ScoreQin       float64    `gorm:"not null;default:0"                                            json:"score_qin"`
	ScoreJi        float64    `gorm:"not null;default:0"                                            json:"score_ji"`
	ScoreLian      float64    `gorm:"not null;default:0"                                            json:"score_lian"`
	TotalScore     float64    `gorm:"not null;default:0"                                            json:"total_score"`
	Comment        string     `gorm:"type:text;not null;default:''"                                 json:"comment"`
	IsCompleted    bool       `gorm:"not null;default:false;index"                                  json:"is_completed"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	BaseModel

	Evaluator *User `gorm:"foreignKey:EvaluatorID;references:ID" json:"evaluator,omitempty"`
	Evaluatee *User `gorm:"foreignKey:EvaluateeID;references:ID" json:"evaluatee,omitempty"`
}

// TableName 指定表名
func (Evaluation) TableName() string { return "evaluations" }

func (e *Evaluation) BeforeCreate(*gorm.DB) error {
	assignID(&e.ID)
	return nil
}

// Scores 五个维度原始分，顺序：德 能 勤 绩 廉
func (e *Evaluation) Scores() [5]float64 {
	return [5]float64{e.ScoreDe, e.ScoreNeng, e.ScoreQin, e.ScoreJi, e.ScoreLian}
}

// SumScores 五维原始分之和
func (e *Evaluation) SumScores() float64 {
	return e.ScoreDe + e.ScoreNeng + e.ScoreQin + e.ScoreJi + e.ScoreLian
}
