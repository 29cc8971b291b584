package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"ruralwork/config"
)

// VoteScheduler 定时关闭已到截止时间的投票
type VoteScheduler struct {
	cron   *cron.Cron
	votes  VoteService
	logger *zap.Logger
}

// NewVoteScheduler 按 cfg.VoteCloseSpec 注册关闭任务；尚未启动
func NewVoteScheduler(cfg *config.SchedulerConfig, votes VoteService, logger *zap.Logger) (*VoteScheduler, error) {
	s := &VoteScheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		votes:  votes,
		logger: logger,
	}
	if _, err := s.cron.AddFunc(cfg.VoteCloseSpec, s.closeExpired); err != nil {
		return nil, fmt.Errorf("注册投票关闭任务失败: %w", err)
	}
	return s, nil
}

// Start 启动后台调度
func (s *VoteScheduler) Start() {
	s.cron.Start()
	s.logger.Info("投票自动关闭任务已启动")
}

// Stop 停止调度并等待运行中的任务结束
func (s *VoteScheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("投票自动关闭任务已停止")
}

func (s *VoteScheduler) closeExpired() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := s.votes.CloseExpired(ctx, time.Now()); err != nil {
		s.logger.Error("自动关闭投票失败", zap.Error(err))
	}
}
