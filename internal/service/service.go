package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"ruralwork/config"
	"ruralwork/internal/repository"
	"ruralwork/pkg/jwt"
	"ruralwork/pkg/mq"
	"ruralwork/pkg/redis"
)

// TokenStore Token 黑名单存储（Redis 未配置时为 nil，登出降级为仅客户端丢弃）
type TokenStore interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// Service 所有 Service 的聚合入口
type Service struct {
	Auth           AuthService
	User           UserService
	Evaluation     EvaluationService
	Vote           VoteService
	Leave          LeaveService
	Attendance     AttendanceService
	TeamEvaluation TeamEvaluationService
	Statistics     StatisticsService
	Export         ExportService
	SystemLog      SystemLogService
}

// NewService 创建 Service 聚合；rdb 可为 nil
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	publisher mq.Publisher,
	logger *zap.Logger,
) *Service {
	var tokens TokenStore
	if rdb != nil {
		tokens = rdb
	}

	logs := NewSystemLogService(repo, logger)
	attendance := NewAttendanceService(repo, NewUserLocker(rdb, &cfg.Attendance), publisher, logs, logger)

	return &Service{
		Auth:           NewAuthService(cfg, repo, jwtMgr, tokens, logs, logger),
		User:           NewUserService(cfg, repo, logs, logger),
		Evaluation:     NewEvaluationService(repo, logs, logger),
		Vote:           NewVoteService(repo, publisher, logs, logger),
		Leave:          NewLeaveService(repo, attendance, publisher, logs, logger),
		Attendance:     attendance,
		TeamEvaluation: NewTeamEvaluationService(repo, logs, logger),
		Statistics:     NewStatisticsService(&cfg.Attendance, repo, logger),
		Export:         NewExportService(&cfg.Attendance, repo, logger),
		SystemLog:      logs,
	}
}

// publish 发布领域事件；失败只记日志，不影响业务结果
func publish(ctx context.Context, p mq.Publisher, logger *zap.Logger, eventType string, payload any) {
	if p == nil {
		return
	}
	evt := mq.NewEvent(eventType, payload)
	if err := p.Publish(ctx, evt); err != nil {
		logger.Warn("发布事件失败", zap.String("type", eventType), zap.String("id", evt.ID), zap.Error(err))
	}
}

// formatTime 统一时间输出格式
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func strPtr(s string) *string { return &s }
