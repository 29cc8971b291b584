package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"ruralwork/internal/dto"
)

func TestSystemLogService_RecordSwallowsError(t *testing.T) {
	repo, m := newTestRepo()
	svc := NewSystemLogService(repo, zap.NewNop())
	m.systemLog.err = errors.New("disk full")

	// 不应 panic，也不向调用方返回错误
	svc.Record(context.Background(), LogEntry{UserID: "u1", Action: ActionLogin})
	if len(m.systemLog.actions()) != 0 {
		t.Error("写入失败时不应有记录")
	}

	m.systemLog.err = nil
	svc.Record(context.Background(), LogEntry{Action: ActionLogin, Metadata: map[string]any{"ip": "127.0.0.1"}})
	logs, total, err := svc.List(context.Background(), &dto.SystemLogListRequest{Action: ActionLogin})
	if err != nil || total != 1 {
		t.Fatalf("期望 1 条日志，实际 total=%d err=%v", total, err)
	}
	if logs[0].UserID != nil {
		t.Error("未登录动作不应记录用户 ID")
	}
}
