package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ruralwork/internal/dto"
	"ruralwork/internal/model"
	"ruralwork/internal/repository"
	"ruralwork/internal/stats"
)

// ── 工作队评分业务错误 ──

var (
	ErrTeamNotFound          = errors.New("工作队不存在")
	ErrTeamInactive          = errors.New("工作队已停用")
	ErrActivityNotFound      = errors.New("评分活动不存在")
	ErrActivityNotActive     = errors.New("评分活动未开放")
	ErrInvalidActivityWindow = errors.New("活动结束时间必须晚于开始时间")
)

// TeamEvaluationService 工作队评分业务接口
type TeamEvaluationService interface {
	CreateTeam(ctx context.Context, req *dto.WorkTeamRequest, callerID string) (*model.WorkTeam, error)
	UpdateTeam(ctx context.Context, id string, req *dto.WorkTeamRequest, callerID string) (*model.WorkTeam, error)
	DeleteTeam(ctx context.Context, id string) error
	ListTeams(ctx context.Context, activeOnly bool) ([]model.WorkTeam, error)

	CreateActivity(ctx context.Context, req *dto.ActivityRequest, callerID string) (*model.TeamEvaluationActivity, error)
	UpdateActivity(ctx context.Context, id string, req *dto.ActivityRequest, callerID string) (*model.TeamEvaluationActivity, error)
	DeleteActivity(ctx context.Context, id string) error
	ListActivities(ctx context.Context, req *dto.ActivityListRequest) ([]model.TeamEvaluationActivity, int64, error)

	// Evaluate 同一评分人对同一工作队再次评分时覆盖原记录
	Evaluate(ctx context.Context, activityID, evaluatorID string, req *dto.TeamEvaluationRequest) (*model.WorkTeamEvaluation, error)
	MyEvaluations(ctx context.Context, activityID, evaluatorID string) ([]model.WorkTeamEvaluation, error)
	Results(ctx context.Context, activityID string) (*dto.ActivityResultResponse, error)
}

type teamEvaluationService struct {
	repo   *repository.Repository
	logs   SystemLogService
	logger *zap.Logger
}

// NewTeamEvaluationService 创建 TeamEvaluationService 实例
func NewTeamEvaluationService(repo *repository.Repository, logs SystemLogService, logger *zap.Logger) TeamEvaluationService {
	return &teamEvaluationService{repo: repo, logs: logs, logger: logger}
}

// ────────────────────── 工作队 ──────────────────────

func (s *teamEvaluationService) CreateTeam(ctx context.Context, req *dto.WorkTeamRequest, callerID string) (*model.WorkTeam, error) {
	t := &model.WorkTeam{IsActive: true}
	applyTeamRequest(t, req)
	t.CreatedBy = strPtr(callerID)

	if err := s.repo.WorkTeam.Create(ctx, t); err != nil {
		s.logger.Error("创建工作队失败", zap.Error(err))
		return nil, err
	}
	return t, nil
}

func (s *teamEvaluationService) UpdateTeam(ctx context.Context, id string, req *dto.WorkTeamRequest, callerID string) (*model.WorkTeam, error) {
	t, err := s.repo.WorkTeam.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	applyTeamRequest(t, req)
	t.UpdatedBy = strPtr(callerID)

	if err := s.repo.WorkTeam.Update(ctx, t); err != nil {
		s.logger.Error("更新工作队失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return t, nil
}

func applyTeamRequest(t *model.WorkTeam, req *dto.WorkTeamRequest) {
	t.TeamName = req.TeamName
	t.TeamLeader = req.TeamLeader
	t.AssignedVillage = req.AssignedVillage
	t.Members = req.Members
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}
}

func (s *teamEvaluationService) DeleteTeam(ctx context.Context, id string) error {
	if err := s.repo.WorkTeam.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamNotFound
		}
		return err
	}
	return nil
}

func (s *teamEvaluationService) ListTeams(ctx context.Context, activeOnly bool) ([]model.WorkTeam, error) {
	return s.repo.WorkTeam.ListAll(ctx, activeOnly)
}

// ────────────────────── 评分活动 ──────────────────────

func (s *teamEvaluationService) CreateActivity(ctx context.Context, req *dto.ActivityRequest, callerID string) (*model.TeamEvaluationActivity, error) {
	a := &model.TeamEvaluationActivity{}
	if err := applyActivityRequest(a, req); err != nil {
		return nil, err
	}
	a.CreatedBy = strPtr(callerID)

	if err := s.repo.TeamActivity.Create(ctx, a); err != nil {
		s.logger.Error("创建评分活动失败", zap.Error(err))
		return nil, err
	}
	return a, nil
}

func (s *teamEvaluationService) UpdateActivity(ctx context.Context, id string, req *dto.ActivityRequest, callerID string) (*model.TeamEvaluationActivity, error) {
	a, err := s.getActivity(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyActivityRequest(a, req); err != nil {
		return nil, err
	}
	a.UpdatedBy = strPtr(callerID)

	if err := s.repo.TeamActivity.Update(ctx, a); err != nil {
		s.logger.Error("更新评分活动失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return a, nil
}

func applyActivityRequest(a *model.TeamEvaluationActivity, req *dto.ActivityRequest) error {
	if !req.EndTime.After(req.StartTime) {
		return ErrInvalidActivityWindow
	}
	a.Title = req.Title
	a.Description = req.Description
	a.StartTime = req.StartTime
	a.EndTime = req.EndTime
	if req.Status != "" {
		a.Status = model.ActivityStatus(req.Status)
	} else if a.Status == "" {
		a.Status = model.ActivityStatusDraft
	}
	return nil
}

func (s *teamEvaluationService) DeleteActivity(ctx context.Context, id string) error {
	if err := s.repo.TeamActivity.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrActivityNotFound
		}
		return err
	}
	return nil
}

func (s *teamEvaluationService) ListActivities(ctx context.Context, req *dto.ActivityListRequest) ([]model.TeamEvaluationActivity, int64, error) {
	q := repository.Query{Offset: req.GetOffset(), Limit: req.GetPageSize()}
	if req.Status != "" {
		q = q.Where("status", req.Status)
	}
	return s.repo.TeamActivity.Find(ctx, q)
}

// ────────────────────── 评分 ──────────────────────

func (s *teamEvaluationService) Evaluate(ctx context.Context, activityID, evaluatorID string, req *dto.TeamEvaluationRequest) (*model.WorkTeamEvaluation, error) {
	e := &model.WorkTeamEvaluation{
		ActivityID:           activityID,
		TeamID:               req.TeamID,
		EvaluatorID:          evaluatorID,
		WorkQualityScore:     req.WorkQualityScore,
		CooperationScore:     req.CooperationScore,
		EfficiencyScore:      req.EfficiencyScore,
		InnovationScore:      req.InnovationScore,
		ServiceAttitudeScore: req.ServiceAttitudeScore,
		Comment:              req.Comment,
	}
	if err := validateScores(e.Scores(), false); err != nil {
		return nil, err
	}

	a, err := s.getActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if a.Status != model.ActivityStatusActive {
		return nil, ErrActivityNotActive
	}

	team, err := s.repo.WorkTeam.GetByID(ctx, req.TeamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	if !team.IsActive {
		return nil, ErrTeamInactive
	}

	for _, v := range e.Scores() {
		e.TotalScore += v
	}
	e.UpdatedBy = strPtr(evaluatorID)

	existing, err := s.repo.TeamEvaluation.GetByKey(ctx, activityID, req.TeamID, evaluatorID)
	switch {
	case err == nil:
		e.ID = existing.ID
		e.CreatedAt = existing.CreatedAt
		e.CreatedBy = existing.CreatedBy
		err = s.repo.TeamEvaluation.Update(ctx, e)
	case errors.Is(err, gorm.ErrRecordNotFound):
		e.CreatedBy = strPtr(evaluatorID)
		err = s.repo.TeamEvaluation.Create(ctx, e)
	}
	if err != nil {
		s.logger.Error("保存工作队评分失败", zap.String("activity_id", activityID), zap.Error(err))
		return nil, err
	}

	s.logs.Record(ctx, LogEntry{
		UserID:   evaluatorID,
		Action:   ActionTeamEvaluate,
		Resource: "team_evaluation",
		Metadata: map[string]any{"activity_id": activityID, "team_id": req.TeamID, "total_score": e.TotalScore},
	})
	return e, nil
}

func (s *teamEvaluationService) MyEvaluations(ctx context.Context, activityID, evaluatorID string) ([]model.WorkTeamEvaluation, error) {
	return s.repo.TeamEvaluation.ListByEvaluator(ctx, activityID, evaluatorID)
}

func (s *teamEvaluationService) Results(ctx context.Context, activityID string) (*dto.ActivityResultResponse, error) {
	var (
		a     *model.TeamEvaluationActivity
		evals []model.WorkTeamEvaluation
		teams []model.WorkTeam
	)
	err := s.repo.Snapshot(ctx, func(tx *repository.Repository) error {
		var err error
		if a, err = tx.TeamActivity.GetByID(ctx, activityID); err != nil {
			return err
		}
		if evals, err = tx.TeamEvaluation.ListByActivity(ctx, activityID); err != nil {
			return err
		}
		teams, err = tx.WorkTeam.ListAll(ctx, false)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		s.logger.Error("查询活动结果失败", zap.String("activity_id", activityID), zap.Error(err))
		return nil, err
	}

	return &dto.ActivityResultResponse{
		ActivityID:      a.ID,
		Title:           a.Title,
		Status:          string(a.Status),
		EvaluationCount: len(evals),
		AverageScore:    stats.ActivityAverage(evals),
		Ranking:         stats.TeamRanking(evals, teams),
	}, nil
}

func (s *teamEvaluationService) getActivity(ctx context.Context, id string) (*model.TeamEvaluationActivity, error) {
	a, err := s.repo.TeamActivity.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, err
	}
	return a, nil
}
