package service

import (
	"context"

	"go.uber.org/zap"

	"ruralwork/internal/dto"
	"ruralwork/internal/model"
	"ruralwork/internal/repository"
)

// 审计动作
const (
	ActionLogin            = "login"
	ActionLogout           = "logout"
	ActionChangePassword   = "change_password"
	ActionUserCreate       = "user.create"
	ActionUserUpdate       = "user.update"
	ActionUserDelete       = "user.delete"
	ActionUserImport       = "user.import"
	ActionUserResetPwd     = "user.reset_password"
	ActionEvaluationSubmit = "evaluation.submit"
	ActionVoteCreate       = "vote.create"
	ActionVoteStatus       = "vote.status"
	ActionVoteCast         = "vote.cast"
	ActionLeaveSubmit      = "leave.submit"
	ActionLeaveReview      = "leave.review"
	ActionScoreDeduct      = "score.deduct"
	ActionTeamEvaluate     = "team_evaluation.submit"
)

// LogEntry 一条审计记录
type LogEntry struct {
	UserID   string
	Action   string
	Resource string
	Metadata map[string]any
	IP       string
}

// SystemLogService 审计日志业务接口
type SystemLogService interface {
	// Record 写入审计日志；失败只记录错误，不向调用方返回
	Record(ctx context.Context, entry LogEntry)
	List(ctx context.Context, req *dto.SystemLogListRequest) ([]model.SystemLog, int64, error)
}

type systemLogService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSystemLogService 创建 SystemLogService 实例
func NewSystemLogService(repo *repository.Repository, logger *zap.Logger) SystemLogService {
	return &systemLogService{repo: repo, logger: logger}
}

func (s *systemLogService) Record(ctx context.Context, entry LogEntry) {
	l := &model.SystemLog{
		Action:    entry.Action,
		Resource:  entry.Resource,
		Metadata:  entry.Metadata,
		IPAddress: entry.IP,
	}
	if entry.UserID != "" {
		l.UserID = strPtr(entry.UserID)
	}
	if err := s.repo.SystemLog.Create(ctx, l); err != nil {
		s.logger.Warn("写入审计日志失败",
			zap.String("action", entry.Action),
			zap.String("user_id", entry.UserID),
			zap.Error(err),
		)
	}
}

func (s *systemLogService) List(ctx context.Context, req *dto.SystemLogListRequest) ([]model.SystemLog, int64, error) {
	q := repository.Query{Offset: req.GetOffset(), Limit: req.GetPageSize()}
	if req.UserID != "" {
		q = q.Where("user_id", req.UserID)
	}
	if req.Action != "" {
		q = q.Where("action", req.Action)
	}
	if req.Resource != "" {
		q = q.Where("resource", req.Resource)
	}
	logs, total, err := s.repo.SystemLog.Find(ctx, q)
	if err != nil {
		s.logger.Error("查询审计日志失败", zap.Error(err))
		return nil, 0, err
	}
	return logs, total, nil
}
