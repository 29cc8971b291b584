package repository

import (
	"context"

	"gorm.io/gorm"

	"ruralwork/internal/model"
	pkgerrors "ruralwork/pkg/errors"
)

// EvaluationRepository 年度互评数据访问接口
type EvaluationRepository interface {
	Create(ctx context.Context, e *model.Evaluation) error
	// Update 覆盖评分；写草稿时仅当记录仍未提交才生效，否则返回 ErrOptimisticLock
	Update(ctx context.Context, e *model.Evaluation) error
	GetByID(ctx context.Context, id string) (*model.Evaluation, error)
	// GetByKey 按 (评分人, 被评人, 年度) 查询
	GetByKey(ctx context.Context, evaluatorID, evaluateeID, year string) (*model.Evaluation, error)
	ListByEvaluator(ctx context.Context, evaluatorID, year string) ([]model.Evaluation, error)
	// ListCompleted 某年度全部已提交记录；year 为空时不限年度
	ListCompleted(ctx context.Context, year string) ([]model.Evaluation, error)
	Find(ctx context.Context, q Query) ([]model.Evaluation, int64, error)
}

var evaluationColumns = newColumnSet("updated_at DESC",
	"id", "evaluator_id", "evaluatee_id", "evaluation_year", "is_completed", "total_score", "created_at", "updated_at")

type evaluationRepo struct {
	db *gorm.DB
}

// NewEvaluationRepo 创建 EvaluationRepository 实例
func NewEvaluationRepo(db *gorm.DB) EvaluationRepository {
	return &evaluationRepo{db: db}
}

func (r *evaluationRepo) Create(ctx context.Context, e *model.Evaluation) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *evaluationRepo) Update(ctx context.Context, e *model.Evaluation) error {
	db := r.db.WithContext(ctx).
		Model(&model.Evaluation{}).
		Where("id = ?", e.ID)
	if !e.IsCompleted {
		// 已提交为终态，草稿不得覆盖
		db = db.Where("is_completed = ?", false)
	}
	result := db.Updates(map[string]any{
		"score_de":     e.ScoreDe,
		"score_neng":   e.ScoreNeng,
		"score_qin":    e.ScoreQin,
		"score_ji":     e.ScoreJi,
		"score_lian":   e.ScoreLian,
		"total_score":  e.TotalScore,
		"comment":      e.Comment,
		"is_completed": e.IsCompleted,
		"completed_at": e.CompletedAt,
		"updated_by":   e.UpdatedBy,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if !e.IsCompleted {
			return pkgerrors.ErrOptimisticLock
		}
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *evaluationRepo) GetByID(ctx context.Context, id string) (*model.Evaluation, error) {
	var e model.Evaluation
	err := r.db.WithContext(ctx).
		Preload("Evaluator").
		Preload("Evaluatee").
		Where("id = ?", id).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *evaluationRepo) GetByKey(ctx context.Context, evaluatorID, evaluateeID, year string) (*model.Evaluation, error) {
	var e model.Evaluation
	err := r.db.WithContext(ctx).
		Where("evaluator_id = ? AND evaluatee_id = ? AND evaluation_year = ?", evaluatorID, evaluateeID, year).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *evaluationRepo) ListByEvaluator(ctx context.Context, evaluatorID, year string) ([]model.Evaluation, error) {
	var list []model.Evaluation
	err := r.db.WithContext(ctx).
		Preload("Evaluatee").
		Where("evaluator_id = ? AND evaluation_year = ?", evaluatorID, year).
		Order("updated_at DESC").
		Find(&list).Error
	return list, err
}

func (r *evaluationRepo) ListCompleted(ctx context.Context, year string) ([]model.Evaluation, error) {
	db := r.db.WithContext(ctx).Where("is_completed = ?", true)
	if year != "" {
		db = db.Where("evaluation_year = ?", year)
	}
	var list []model.Evaluation
	err := db.Order("created_at ASC").Find(&list).Error
	return list, err
}

func (r *evaluationRepo) Find(ctx context.Context, q Query) ([]model.Evaluation, int64, error) {
	return find[model.Evaluation](ctx, r.db, q, evaluationColumns)
}
