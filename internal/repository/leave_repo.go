package repository

import (
	"context"

	"gorm.io/gorm"

	"ruralwork/internal/model"
	pkgerrors "ruralwork/pkg/errors"
)

// LeaveRepository 请假申请数据访问接口
type LeaveRepository interface {
	Create(ctx context.Context, l *model.LeaveRequest) error
	GetByID(ctx context.Context, id string) (*model.LeaveRequest, error)
	// Review 仅当记录仍为 pending 时写入审批结果，否则返回 ErrOptimisticLock
	Review(ctx context.Context, l *model.LeaveRequest) error
	Find(ctx context.Context, q Query) ([]model.LeaveRequest, int64, error)
	ListAll(ctx context.Context) ([]model.LeaveRequest, error)
}

var leaveColumns = newColumnSet("created_at DESC",
	"id", "user_id", "leave_type", "status", "approver_id", "created_at", "start_date")

type leaveRepo struct {
	db *gorm.DB
}

// NewLeaveRepo 创建 LeaveRepository 实例
func NewLeaveRepo(db *gorm.DB) LeaveRepository {
	return &leaveRepo{db: db}
}

func (r *leaveRepo) Create(ctx context.Context, l *model.LeaveRequest) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *leaveRepo) GetByID(ctx context.Context, id string) (*model.LeaveRequest, error) {
	var l model.LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ?", id).
		First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *leaveRepo) Review(ctx context.Context, l *model.LeaveRequest) error {
	result := r.db.WithContext(ctx).
		Model(&model.LeaveRequest{}).
		Where("id = ? AND status = ?", l.ID, model.LeaveStatusPending).
		Updates(map[string]any{
			"status":           l.Status,
			"approver_id":      l.ApproverID,
			"approver_comment": l.ApproverComment,
			"approved_at":      l.ApprovedAt,
			"score_deduction":  l.ScoreDeduction,
			"updated_by":       l.UpdatedBy,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

func (r *leaveRepo) Find(ctx context.Context, q Query) ([]model.LeaveRequest, int64, error) {
	return find[model.LeaveRequest](ctx, r.db, q, leaveColumns)
}

func (r *leaveRepo) ListAll(ctx context.Context) ([]model.LeaveRequest, error) {
	var list []model.LeaveRequest
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&list).Error
	return list, err
}
