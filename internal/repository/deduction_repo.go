package repository

import (
	"context"

	"gorm.io/gorm"

	"ruralwork/internal/model"
)

// DeductionRepository 扣分流水数据访问接口
type DeductionRepository interface {
	Create(ctx context.Context, d *model.ScoreDeduction) error
	GetByIdempotencyKey(ctx context.Context, key string) (*model.ScoreDeduction, error)
	ListByUser(ctx context.Context, userID string) ([]model.ScoreDeduction, error)
}

type deductionRepo struct {
	db *gorm.DB
}

// NewDeductionRepo 创建 DeductionRepository 实例
func NewDeductionRepo(db *gorm.DB) DeductionRepository {
	return &deductionRepo{db: db}
}

func (r *deductionRepo) Create(ctx context.Context, d *model.ScoreDeduction) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *deductionRepo) GetByIdempotencyKey(ctx context.Context, key string) (*model.ScoreDeduction, error) {
	var d model.ScoreDeduction
	if err := r.db.WithContext(ctx).Where("idempotency_key = ?", key).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *deductionRepo) ListByUser(ctx context.Context, userID string) ([]model.ScoreDeduction, error) {
	var list []model.ScoreDeduction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}
