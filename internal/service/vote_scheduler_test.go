package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"ruralwork/config"
	"ruralwork/internal/model"
)

func TestNewVoteScheduler_InvalidSpec(t *testing.T) {
	svc, _, _ := setupTestVoteService()

	if _, err := NewVoteScheduler(&config.SchedulerConfig{VoteCloseSpec: "every minute"}, svc, zap.NewNop()); err == nil {
		t.Error("非法的 cron 表达式应返回错误")
	}
}

func TestVoteScheduler_CloseExpired(t *testing.T) {
	svc, m, _ := setupTestVoteService()
	past := time.Now().Add(-2 * time.Hour)
	_ = m.vote.Create(context.Background(), &model.Vote{
		Title: "到期投票", Status: model.VoteStatusActive, StartTime: past, EndTime: past.Add(time.Hour),
	})

	s, err := NewVoteScheduler(&config.SchedulerConfig{VoteCloseSpec: "@every 1h"}, svc, zap.NewNop())
	if err != nil {
		t.Fatalf("NewVoteScheduler 应成功: %v", err)
	}
	s.Start()
	defer s.Stop()

	s.closeExpired()

	v, _ := m.vote.GetByID(context.Background(), "v-1")
	if v.Status != model.VoteStatusClosed {
		t.Errorf("到期投票应被关闭，实际=%s", v.Status)
	}
}
