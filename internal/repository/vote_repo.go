package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"ruralwork/internal/model"
)

// VoteRepository 投票活动数据访问接口
type VoteRepository interface {
	Create(ctx context.Context, v *model.Vote) error
	GetByID(ctx context.Context, id string) (*model.Vote, error)
	Update(ctx context.Context, v *model.Vote) error
	UpdateStatus(ctx context.Context, id string, status model.VoteStatus) error
	Delete(ctx context.Context, id string) error
	Find(ctx context.Context, q Query) ([]model.Vote, int64, error)
	ListAll(ctx context.Context) ([]model.Vote, error)
	// ListExpiredActive 已过截止时间但仍为 active 的活动
	ListExpiredActive(ctx context.Context, now time.Time) ([]model.Vote, error)
}

var voteColumns = newColumnSet("created_at DESC",
	"id", "status", "show_results", "created_by", "created_at", "start_time", "end_time")

type voteRepo struct {
	db *gorm.DB
}

// NewVoteRepo 创建 VoteRepository 实例
func NewVoteRepo(db *gorm.DB) VoteRepository {
	return &voteRepo{db: db}
}

func (r *voteRepo) Create(ctx context.Context, v *model.Vote) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *voteRepo) GetByID(ctx context.Context, id string) (*model.Vote, error) {
	var v model.Vote
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *voteRepo) Update(ctx context.Context, v *model.Vote) error {
	result := r.db.WithContext(ctx).
		Model(&model.Vote{}).
		Where("id = ?", v.ID).
		Updates(map[string]any{
			"title":              v.Title,
			"description":        v.Description,
			"start_time":         v.StartTime,
			"end_time":           v.EndTime,
			"max_votes_per_user": v.MaxVotesPerUser,
			"show_results":       v.ShowResults,
			"status":             v.Status,
			"candidates":         v.Candidates,
			"updated_by":         v.UpdatedBy,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *voteRepo) UpdateStatus(ctx context.Context, id string, status model.VoteStatus) error {
	result := r.db.WithContext(ctx).
		Model(&model.Vote{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete 删除活动及其投票记录
func (r *voteRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("vote_id = ?", id).Delete(&model.VoteRecord{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&model.Vote{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *voteRepo) Find(ctx context.Context, q Query) ([]model.Vote, int64, error) {
	return find[model.Vote](ctx, r.db, q, voteColumns)
}

func (r *voteRepo) ListAll(ctx context.Context) ([]model.Vote, error) {
	var list []model.Vote
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *voteRepo) ListExpiredActive(ctx context.Context, now time.Time) ([]model.Vote, error) {
	var list []model.Vote
	err := r.db.WithContext(ctx).
		Where("status = ? AND end_time <= ?", model.VoteStatusActive, now).
		Find(&list).Error
	return list, err
}

// ────────── VoteRecord ──────────

// VoteRecordRepository 投票记录数据访问接口
type VoteRecordRepository interface {
	Create(ctx context.Context, rec *model.VoteRecord) error
	GetByVoter(ctx context.Context, voteID, voterID string) (*model.VoteRecord, error)
	ListByVote(ctx context.Context, voteID string) ([]model.VoteRecord, error)
	ListByVoter(ctx context.Context, voterID string) ([]model.VoteRecord, error)
	Count(ctx context.Context) (int64, error)
}

type voteRecordRepo struct {
	db *gorm.DB
}

// NewVoteRecordRepo 创建 VoteRecordRepository 实例
func NewVoteRecordRepo(db *gorm.DB) VoteRecordRepository {
	return &voteRecordRepo{db: db}
}

func (r *voteRecordRepo) Create(ctx context.Context, rec *model.VoteRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *voteRecordRepo) GetByVoter(ctx context.Context, voteID, voterID string) (*model.VoteRecord, error) {
	var rec model.VoteRecord
	err := r.db.WithContext(ctx).
		Where("vote_id = ? AND voter_id = ?", voteID, voterID).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *voteRecordRepo) ListByVote(ctx context.Context, voteID string) ([]model.VoteRecord, error) {
	var list []model.VoteRecord
	err := r.db.WithContext(ctx).
		Where("vote_id = ?", voteID).
		Order("vote_time ASC").
		Find(&list).Error
	return list, err
}

func (r *voteRecordRepo) ListByVoter(ctx context.Context, voterID string) ([]model.VoteRecord, error) {
	var list []model.VoteRecord
	err := r.db.WithContext(ctx).
		Where("voter_id = ?", voterID).
		Find(&list).Error
	return list, err
}

func (r *voteRecordRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.VoteRecord{}).Count(&n).Error
	return n, err
}
