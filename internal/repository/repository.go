package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User           UserRepository
	Evaluation     EvaluationRepository
	Vote           VoteRepository
	VoteRecord     VoteRecordRepository
	Leave          LeaveRepository
	Deduction      DeductionRepository
	WorkTeam       WorkTeamRepository
	TeamActivity   TeamActivityRepository
	TeamEvaluation TeamEvaluationRepository
	SystemLog      SystemLogRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:             db,
		User:           NewUserRepo(db),
		Evaluation:     NewEvaluationRepo(db),
		Vote:           NewVoteRepo(db),
		VoteRecord:     NewVoteRecordRepo(db),
		Leave:          NewLeaveRepo(db),
		Deduction:      NewDeductionRepo(db),
		WorkTeam:       NewWorkTeamRepo(db),
		TeamActivity:   NewTeamActivityRepo(db),
		TeamEvaluation: NewTeamEvaluationRepo(db),
		SystemLog:      NewSystemLogRepo(db),
	}
}

// BeginTx 开启事务
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到事务的 Repository
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// Transaction 在事务中执行 fn，fn 返回错误时回滚
// 未绑定数据库（单元测试注入 mock）时直接调用 fn
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

// Snapshot 在只读事务中执行一组读取，保证多个集合来自同一一致性快照
func (r *Repository) Snapshot(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	var opts *sql.TxOptions
	// sqlite 单连接串行，本身即快照
	if r.db.Dialector.Name() != "sqlite" {
		opts = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	}, opts)
}
