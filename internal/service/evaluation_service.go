package service

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ruralwork/internal/dto"
	"ruralwork/internal/model"
	"ruralwork/internal/repository"
	"ruralwork/internal/stats"
	pkgerrors "ruralwork/pkg/errors"
)

// ── 年度互评业务错误 ──

var (
	ErrInvalidScoreRange   = errors.New("各维度评分必须在 0-20 之间")
	ErrIncompleteScores    = errors.New("提交前请完成全部五个维度的评分")
	ErrSelfEvaluation      = errors.New("不能给自己评分")
	ErrEvaluateeNotFound   = errors.New("被评人不存在")
	ErrEvaluateeIsAdmin    = errors.New("系统管理员不参与互评")
	ErrEvaluationCompleted = errors.New("该评分已提交，不能再保存为草稿")
	ErrEvaluationNotFound  = errors.New("评分记录不存在")
)

// EvaluationService 年度互评业务接口
type EvaluationService interface {
	SaveDraft(ctx context.Context, evaluatorID string, req *dto.SaveEvaluationRequest) (*dto.EvaluationResponse, error)
	Submit(ctx context.Context, evaluatorID string, req *dto.SaveEvaluationRequest) (*dto.EvaluationResponse, error)
	MyEvaluations(ctx context.Context, evaluatorID, year string) (*dto.MyEvaluationsResponse, error)
	List(ctx context.Context, req *dto.EvaluationListRequest) ([]dto.EvaluationResponse, int64, error)
	GetByID(ctx context.Context, id string) (*dto.EvaluationResponse, error)
	Report(ctx context.Context, year string) (*dto.EvaluationReport, error)
}

type evaluationService struct {
	repo   *repository.Repository
	logs   SystemLogService
	logger *zap.Logger
	now    func() time.Time
}

// NewEvaluationService 创建 EvaluationService 实例
func NewEvaluationService(repo *repository.Repository, logs SystemLogService, logger *zap.Logger) EvaluationService {
	return &evaluationService{repo: repo, logs: logs, logger: logger, now: time.Now}
}

// ────────────────────── SaveDraft / Submit ──────────────────────

func (s *evaluationService) SaveDraft(ctx context.Context, evaluatorID string, req *dto.SaveEvaluationRequest) (*dto.EvaluationResponse, error) {
	return s.save(ctx, evaluatorID, req, false)
}

func (s *evaluationService) Submit(ctx context.Context, evaluatorID string, req *dto.SaveEvaluationRequest) (*dto.EvaluationResponse, error) {
	resp, err := s.save(ctx, evaluatorID, req, true)
	if err != nil {
		return nil, err
	}
	s.logs.Record(ctx, LogEntry{
		UserID:   evaluatorID,
		Action:   ActionEvaluationSubmit,
		Resource: "evaluation",
		Metadata: map[string]any{
			"evaluation_id":   resp.ID,
			"evaluatee_id":    resp.EvaluateeID,
			"evaluation_year": resp.EvaluationYear,
			"total_score":     resp.TotalScore,
		},
	})
	return resp, nil
}

// validateScores 每个维度须在 [0,20]；提交时五项都必须大于 0
func validateScores(scores [5]float64, submit bool) error {
	for _, v := range scores {
		if math.IsNaN(v) || v < 0 || v > model.MaxDimensionScore {
			return ErrInvalidScoreRange
		}
	}
	if submit {
		for _, v := range scores {
			if v <= 0 {
				return ErrIncompleteScores
			}
		}
	}
	return nil
}

func (s *evaluationService) save(ctx context.Context, evaluatorID string, req *dto.SaveEvaluationRequest, submit bool) (*dto.EvaluationResponse, error) {
	incoming := model.Evaluation{
		EvaluatorID:    evaluatorID,
		EvaluateeID:    req.EvaluateeID,
		EvaluationYear: req.EvaluationYear,
		ScoreDe:        req.ScoreDe,
		ScoreNeng:      req.ScoreNeng,
		ScoreQin:       req.ScoreQin,
		ScoreJi:        req.ScoreJi,
		ScoreLian:      req.ScoreLian,
		Comment:        req.Comment,
	}
	if err := validateScores(incoming.Scores(), submit); err != nil {
		return nil, err
	}
	if evaluatorID == req.EvaluateeID {
		return nil, ErrSelfEvaluation
	}

	evaluatee, err := s.repo.User.GetByID(ctx, req.EvaluateeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEvaluateeNotFound
		}
		s.logger.Error("查询被评人失败", zap.String("id", req.EvaluateeID), zap.Error(err))
		return nil, err
	}
	if evaluatee.Role.IsAdmin() {
		return nil, ErrEvaluateeIsAdmin
	}

	incoming.TotalScore = stats.RecordTotal(&incoming)
	incoming.UpdatedBy = strPtr(evaluatorID)
	if submit {
		now := s.now()
		incoming.IsCompleted = true
		incoming.CompletedAt = &now
	}

	existing, err := s.repo.Evaluation.GetByKey(ctx, evaluatorID, req.EvaluateeID, req.EvaluationYear)
	switch {
	case err == nil:
		if err := s.overwrite(ctx, existing, &incoming, submit); err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		incoming.CreatedBy = strPtr(evaluatorID)
		if err := s.repo.Evaluation.Create(ctx, &incoming); err != nil {
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				s.logger.Error("保存评分失败", zap.Error(err))
				return nil, err
			}
			// 并发首存：另一请求已建行，改为更新
			existing, err := s.repo.Evaluation.GetByKey(ctx, evaluatorID, req.EvaluateeID, req.EvaluationYear)
			if err != nil {
				return nil, err
			}
			incoming.ID = ""
			incoming.CreatedBy = nil
			if err := s.overwrite(ctx, existing, &incoming, submit); err != nil {
				return nil, err
			}
		}
	default:
		s.logger.Error("查询评分记录失败", zap.Error(err))
		return nil, err
	}

	return toEvaluationResponse(&incoming, nil, evaluatee), nil
}

// overwrite 在已有行上写入；已提交的记录只允许再次提交覆盖
func (s *evaluationService) overwrite(ctx context.Context, existing, incoming *model.Evaluation, submit bool) error {
	if existing.IsCompleted && !submit {
		return ErrEvaluationCompleted
	}
	incoming.ID = existing.ID
	incoming.CreatedAt = existing.CreatedAt
	incoming.CreatedBy = existing.CreatedBy
	if err := s.repo.Evaluation.Update(ctx, incoming); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			// 读取后被并发提交
			return ErrEvaluationCompleted
		}
		s.logger.Error("更新评分失败", zap.String("id", existing.ID), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── MyEvaluations ──────────────────────

// MyEvaluations 列出某年度待评同事（在职、非管理员、非本人）及已有评分
func (s *evaluationService) MyEvaluations(ctx context.Context, evaluatorID, year string) (*dto.MyEvaluationsResponse, error) {
	var (
		users []model.User
		mine  []model.Evaluation
	)
	err := s.repo.Snapshot(ctx, func(tx *repository.Repository) error {
		var err error
		if users, err = tx.User.ListAll(ctx); err != nil {
			return err
		}
		mine, err = tx.Evaluation.ListByEvaluator(ctx, evaluatorID, year)
		return err
	})
	if err != nil {
		s.logger.Error("查询我的互评失败", zap.String("evaluator", evaluatorID), zap.Error(err))
		return nil, err
	}

	byEvaluatee := make(map[string]*model.Evaluation, len(mine))
	for i := range mine {
		byEvaluatee[mine[i].EvaluateeID] = &mine[i]
	}

	colleagues := make([]dto.ColleagueEvaluation, 0, len(users))
	counted := make([]model.Evaluation, 0, len(mine))
	for i := range users {
		u := &users[i]
		if u.ID == evaluatorID || u.Role.IsAdmin() || !u.IsActive {
			continue
		}
		item := dto.ColleagueEvaluation{User: *toUserResponse(u)}
		if e, ok := byEvaluatee[u.ID]; ok {
			item.Evaluation = toEvaluationResponse(e, nil, u)
			counted = append(counted, *e)
		}
		colleagues = append(colleagues, item)
	}

	return &dto.MyEvaluationsResponse{
		EvaluationYear: year,
		Progress:       stats.EvaluatorProgress(counted, len(colleagues)),
		Colleagues:     colleagues,
	}, nil
}

// ────────────────────── List / GetByID ──────────────────────

func (s *evaluationService) List(ctx context.Context, req *dto.EvaluationListRequest) ([]dto.EvaluationResponse, int64, error) {
	q := repository.Query{Offset: req.GetOffset(), Limit: req.GetPageSize()}
	if req.EvaluationYear != "" {
		q = q.Where("evaluation_year", req.EvaluationYear)
	}
	if req.EvaluatorID != "" {
		q = q.Where("evaluator_id", req.EvaluatorID)
	}
	if req.EvaluateeID != "" {
		q = q.Where("evaluatee_id", req.EvaluateeID)
	}
	if req.IsCompleted != nil {
		q = q.Where("is_completed", *req.IsCompleted)
	}

	list, total, err := s.repo.Evaluation.Find(ctx, q)
	if err != nil {
		s.logger.Error("查询评分列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.EvaluationResponse, 0, len(list))
	for i := range list {
		result = append(result, *toEvaluationResponse(&list[i], list[i].Evaluator, list[i].Evaluatee))
	}
	return result, total, nil
}

func (s *evaluationService) GetByID(ctx context.Context, id string) (*dto.EvaluationResponse, error) {
	e, err := s.repo.Evaluation.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEvaluationNotFound
		}
		return nil, err
	}
	return toEvaluationResponse(e, e.Evaluator, e.Evaluatee), nil
}

// ────────────────────── Report ──────────────────────

// Report 某年度互评汇总；用户与评分在同一快照内读取
func (s *evaluationService) Report(ctx context.Context, year string) (*dto.EvaluationReport, error) {
	var (
		users   []model.User
		records []model.Evaluation
	)
	err := s.repo.Snapshot(ctx, func(tx *repository.Repository) error {
		var err error
		if users, err = tx.User.ListAll(ctx); err != nil {
			return err
		}
		records, err = tx.Evaluation.ListCompleted(ctx, year)
		return err
	})
	if err != nil {
		s.logger.Error("生成互评汇总失败", zap.String("year", year), zap.Error(err))
		return nil, err
	}

	return &dto.EvaluationReport{
		EvaluationYear:    year,
		Summaries:         stats.Leaderboard(records, users),
		Departments:       stats.DepartmentRollup(records, users),
		Distribution:      stats.ScoreDistribution(records),
		DimensionAverages: stats.DimensionAverages(records),
		Completion:        stats.CompletionOf(records, users),
	}, nil
}

// countParticipants 参评人数：在职非管理员
func countParticipants(users []model.User) int {
	n := 0
	for i := range users {
		if users[i].IsActive && !users[i].Role.IsAdmin() {
			n++
		}
	}
	return n
}

// ── 内部辅助方法 ──

func toEvaluationResponse(e *model.Evaluation, evaluator, evaluatee *model.User) *dto.EvaluationResponse {
	resp := &dto.EvaluationResponse{
		ID:             e.ID,
		EvaluatorID:    e.EvaluatorID,
		EvaluateeID:    e.EvaluateeID,
		EvaluationYear: e.EvaluationYear,
		ScoreDe:        e.ScoreDe,
		ScoreNeng:      e.ScoreNeng,
		ScoreQin:       e.ScoreQin,
		ScoreJi:        e.ScoreJi,
		ScoreLian:      e.ScoreLian,
		TotalScore:     e.TotalScore,
		Comment:        e.Comment,
		IsCompleted:    e.IsCompleted,
		CompletedAt:    formatTimePtr(e.CompletedAt),
		UpdatedAt:      formatTime(e.UpdatedAt),
	}
	if evaluator != nil {
		resp.EvaluatorName = evaluator.Name
	}
	if evaluatee != nil {
		resp.EvaluateeName = evaluatee.Name
	}
	return resp
}
