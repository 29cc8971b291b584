package repository

import (
	"context"

	"gorm.io/gorm"

	"ruralwork/internal/model"
)

// WorkTeamRepository 工作队数据访问接口
type WorkTeamRepository interface {
	Create(ctx context.Context, t *model.WorkTeam) error
	GetByID(ctx context.Context, id string) (*model.WorkTeam, error)
	Update(ctx context.Context, t *model.WorkTeam) error
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context, activeOnly bool) ([]model.WorkTeam, error)
}

type workTeamRepo struct {
	db *gorm.DB
}

// NewWorkTeamRepo 创建 WorkTeamRepository 实例
func NewWorkTeamRepo(db *gorm.DB) WorkTeamRepository {
	return &workTeamRepo{db: db}
}

func (r *workTeamRepo) Create(ctx context.Context, t *model.WorkTeam) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *workTeamRepo) GetByID(ctx context.Context, id string) (*model.WorkTeam, error) {
	var t model.WorkTeam
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *workTeamRepo) Update(ctx context.Context, t *model.WorkTeam) error {
	result := r.db.WithContext(ctx).
		Model(&model.WorkTeam{}).
		Where("id = ?", t.ID).
		Updates(map[string]any{
			"team_name":        t.TeamName,
			"team_leader":      t.TeamLeader,
			"assigned_village": t.AssignedVillage,
			"members":          t.Members,
			"is_active":        t.IsActive,
			"updated_by":       t.UpdatedBy,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *workTeamRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.WorkTeam{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *workTeamRepo) ListAll(ctx context.Context, activeOnly bool) ([]model.WorkTeam, error) {
	db := r.db.WithContext(ctx)
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}
	var list []model.WorkTeam
	err := db.Order("created_at ASC").Find(&list).Error
	return list, err
}

// ────────── TeamEvaluationActivity ──────────

// TeamActivityRepository 工作队评分活动数据访问接口
type TeamActivityRepository interface {
	Create(ctx context.Context, a *model.TeamEvaluationActivity) error
	GetByID(ctx context.Context, id string) (*model.TeamEvaluationActivity, error)
	Update(ctx context.Context, a *model.TeamEvaluationActivity) error
	Delete(ctx context.Context, id string) error
	Find(ctx context.Context, q Query) ([]model.TeamEvaluationActivity, int64, error)
}

var activityColumns = newColumnSet("created_at DESC", "id", "status", "created_by", "created_at", "start_time")

type teamActivityRepo struct {
	db *gorm.DB
}

// NewTeamActivityRepo 创建 TeamActivityRepository 实例
func NewTeamActivityRepo(db *gorm.DB) TeamActivityRepository {
	return &teamActivityRepo{db: db}
}

func (r *teamActivityRepo) Create(ctx context.Context, a *model.TeamEvaluationActivity) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *teamActivityRepo) GetByID(ctx context.Context, id string) (*model.TeamEvaluationActivity, error) {
	var a model.TeamEvaluationActivity
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *teamActivityRepo) Update(ctx context.Context, a *model.TeamEvaluationActivity) error {
	result := r.db.WithContext(ctx).
		Model(&model.TeamEvaluationActivity{}).
		Where("id = ?", a.ID).
		Updates(map[string]any{
			"title":       a.Title,
			"description": a.Description,
			"start_time":  a.StartTime,
			"end_time":    a.EndTime,
			"status":      a.Status,
			"updated_by":  a.UpdatedBy,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete 删除活动及其评分
func (r *teamActivityRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("activity_id = ?", id).Delete(&model.WorkTeamEvaluation{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&model.TeamEvaluationActivity{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *teamActivityRepo) Find(ctx context.Context, q Query) ([]model.TeamEvaluationActivity, int64, error) {
	return find[model.TeamEvaluationActivity](ctx, r.db, q, activityColumns)
}

// ────────── WorkTeamEvaluation ──────────

// TeamEvaluationRepository 工作队评分数据访问接口
type TeamEvaluationRepository interface {
	Create(ctx context.Context, e *model.WorkTeamEvaluation) error
	Update(ctx context.Context, e *model.WorkTeamEvaluation) error
	GetByKey(ctx context.Context, activityID, teamID, evaluatorID string) (*model.WorkTeamEvaluation, error)
	ListByActivity(ctx context.Context, activityID string) ([]model.WorkTeamEvaluation, error)
	ListByEvaluator(ctx context.Context, activityID, evaluatorID string) ([]model.WorkTeamEvaluation, error)
}

type teamEvaluationRepo struct {
	db *gorm.DB
}

// NewTeamEvaluationRepo 创建 TeamEvaluationRepository 实例
func NewTeamEvaluationRepo(db *gorm.DB) TeamEvaluationRepository {
	return &teamEvaluationRepo{db: db}
}

func (r *teamEvaluationRepo) Create(ctx context.Context, e *model.WorkTeamEvaluation) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *teamEvaluationRepo) Update(ctx context.Context, e *model.WorkTeamEvaluation) error {
	result := r.db.WithContext(ctx).
		Model(&model.WorkTeamEvaluation{}).
		Where("id = ?", e.ID).
		Updates(map[string]any{
			"work_quality_score":     e.WorkQualityScore,
			"cooperation_score":      e.CooperationScore,
			"efficiency_score":       e.EfficiencyScore,
			"innovation_score":       e.InnovationScore,
			"service_attitude_score": e.ServiceAttitudeScore,
			"total_score":            e.TotalScore,
			"comment":                e.Comment,
			"updated_by":             e.UpdatedBy,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *teamEvaluationRepo) GetByKey(ctx context.Context, activityID, teamID, evaluatorID string) (*model.WorkTeamEvaluation, error) {
	var e model.WorkTeamEvaluation
	err := r.db.WithContext(ctx).
		Where("activity_id = ? AND team_id = ? AND evaluator_id = ?", activityID, teamID, evaluatorID).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *teamEvaluationRepo) ListByActivity(ctx context.Context, activityID string) ([]model.WorkTeamEvaluation, error) {
	var list []model.WorkTeamEvaluation
	err := r.db.WithContext(ctx).
		Where("activity_id = ?", activityID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *teamEvaluationRepo) ListByEvaluator(ctx context.Context, activityID, evaluatorID string) ([]model.WorkTeamEvaluation, error) {
	var list []model.WorkTeamEvaluation
	err := r.db.WithContext(ctx).
		Where("activity_id = ? AND evaluator_id = ?", activityID, evaluatorID).
		Find(&list).Error
	return list, err
}
