package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// VoteStatus 投票活动状态
type VoteStatus string

const (
	VoteStatusDraft  VoteStatus = "draft"
	VoteStatusActive VoteStatus = "active"
	VoteStatusClosed VoteStatus = "closed"
)

// Candidate 候选人（以 JSON 存于 votes.candidates）
type Candidate struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Department  string `json:"department,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// Vote 投票活动，对应 votes
type Vote struct {
	ID              string                       `gorm:"type:varchar(36);primaryKey"          json:"id"`
	Title           string                       `gorm:"type:varchar(200);not null"           json:"title"`
	Description     string                       `gorm:"type:text;not null;default:''"        json:"description"`
	StartTime       time.Time                    `gorm:"not null"                             json:"start_time"`
	EndTime         time.Time                    `gorm:"not null;index"                       json:"end_time"`
	MaxVotesPerUser int                          `gorm:"not null;default:1"                   json:"max_votes_per_user"`
	ShowResults     bool                         `gorm:"not null;default:false"               json:"show_results"`
	Status          VoteStatus                   `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	Candidates      datatypes.JSONSlice[Candidate] `json:"candidates"`
	BaseModel
}

// TableName 指定表名
func (Vote) TableName() string { return "votes" }

func (v *Vote) BeforeCreate(*gorm.DB) error {
	assignID(&v.ID)
	return nil
}

// HasCandidate 候选人是否在名单内
func (v *Vote) HasCandidate(id string) bool {
	for _, c := range v.Candidates {
		if c.ID == id {
			return true
		}
	}
	return false
}

// OpenAt 指定时刻是否处于可投票状态
func (v *Vote) OpenAt(t time.Time) bool {
	return v.Status == VoteStatusActive && !t.Before(v.StartTime) && t.Before(v.EndTime)
}

// VoteRecord 投票记录，对应 vote_records，(vote_id, voter_id) 唯一
type VoteRecord struct {
	ID         string                    `gorm:"type:varchar(36);primaryKey"                            json:"id"`
	VoteID     string                    `gorm:"type:varchar(36);not null;uniqueIndex:uk_vote_voter,priority:1" json:"vote_id"`
	VoterID    string                    `gorm:"type:varchar(36);not null;uniqueIndex:uk_vote_voter,priority:2" json:"voter_id"`
	Candidates datatypes.JSONSlice[string] `json:"candidates"`
	VoteTime   time.Time                 `gorm:"not null"                                               json:"vote_time"`
}

// TableName 指定表名
func (VoteRecord) TableName() string { return "vote_records" }

func (r *VoteRecord) BeforeCreate(*gorm.DB) error {
	assignID(&r.ID)
	return nil
}
