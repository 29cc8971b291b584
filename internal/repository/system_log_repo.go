package repository

import (
	"context"

	"gorm.io/gorm"

	"ruralwork/internal/model"
)

// SystemLogRepository 审计日志数据访问接口（只追加）
type SystemLogRepository interface {
	Create(ctx context.Context, l *model.SystemLog) error
	Find(ctx context.Context, q Query) ([]model.SystemLog, int64, error)
}

var systemLogColumns = newColumnSet("created_at DESC", "user_id", "action", "resource", "created_at")

type systemLogRepo struct {
	db *gorm.DB
}

// NewSystemLogRepo 创建 SystemLogRepository 实例
func NewSystemLogRepo(db *gorm.DB) SystemLogRepository {
	return &systemLogRepo{db: db}
}

func (r *systemLogRepo) Create(ctx context.Context, l *model.SystemLog) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *systemLogRepo) Find(ctx context.Context, q Query) ([]model.SystemLog, int64, error) {
	return find[model.SystemLog](ctx, r.db, q, systemLogColumns)
}
