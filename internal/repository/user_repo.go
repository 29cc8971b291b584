package repository

import (
	"context"

	"gorm.io/gorm"

	"ruralwork/internal/model"
	pkgerrors "ruralwork/pkg/errors"
)

// RoleCount 按角色统计的人数
type RoleCount struct {
	Role  model.Role `json:"role"`
	Count int64      `json:"count"`
}

// UserRepository 用户数据访问接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByPhone(ctx context.Context, phone string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, id, hash string) error
	Delete(ctx context.Context, id, operatorID string) error
	Find(ctx context.Context, q Query) ([]model.User, int64, error)
	ListAll(ctx context.Context) ([]model.User, error)
	CountByRole(ctx context.Context) ([]RoleCount, error)
	// DeductScore 原子扣减考勤分（下限 0），返回扣减后的分数
	DeductScore(ctx context.Context, id string, amount float64) (float64, error)
}

var userColumns = newColumnSet("created_at DESC",
	"id", "phone", "name", "department", "position", "role", "is_active", "total_score", "created_at")

// userRepo UserRepository 的 GORM 实现
type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByPhone(ctx context.Context, phone string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("phone = ?", phone).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update 更新资料字段（乐观锁），不触碰 total_score
func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	oldVersion := user.Version
	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ? AND version = ?", user.ID, oldVersion).
		Updates(map[string]any{
			"phone":      user.Phone,
			"name":       user.Name,
			"department": user.Department,
			"position":   user.Position,
			"role":       user.Role,
			"is_active":  user.IsActive,
			"updated_by": user.UpdatedBy,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	user.Version = oldVersion + 1
	return nil
}

func (r *userRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("password_hash", hash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id, operatorID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.User{}).
			Where("id = ?", id).
			Update("deleted_by", operatorID).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&model.User{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *userRepo) Find(ctx context.Context, q Query) ([]model.User, int64, error) {
	return find[model.User](ctx, r.db, q, userColumns)
}

func (r *userRepo) ListAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&users).Error
	return users, err
}

func (r *userRepo) CountByRole(ctx context.Context) ([]RoleCount, error) {
	var counts []RoleCount
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Order("role").
		Scan(&counts).Error
	return counts, err
}

func (r *userRepo) DeductScore(ctx context.Context, id string, amount float64) (float64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("total_score", gorm.Expr(
			"CASE WHEN total_score - ? < 0 THEN 0 ELSE total_score - ? END", amount, amount,
		))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	var score float64
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Select("total_score").
		Where("id = ?", id).
		Row().Scan(&score)
	return score, err
}
