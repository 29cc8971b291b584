package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"ruralwork/internal/dto"
	"ruralwork/internal/model"
	"ruralwork/pkg/mq"
)

var voteNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.Local)

func setupTestVoteService() (VoteService, *mocks, *mockPublisher) {
	repo, m := newTestRepo()
	pub := &mockPublisher{}
	logger := zap.NewNop()
	svc := NewVoteService(repo, pub, NewSystemLogService(repo, logger), logger)
	svc.(*voteService).now = func() time.Time { return voteNow }
	return svc, m, pub
}

func voteRequest(maxVotes int, ids ...string) *dto.CreateVoteRequest {
	req := &dto.CreateVoteRequest{
		Title:           "优秀干部评选",
		StartTime:       voteNow.Add(-time.Hour),
		EndTime:         voteNow.Add(time.Hour),
		MaxVotesPerUser: maxVotes,
		Status:          string(model.VoteStatusActive),
	}
	for _, id := range ids {
		req.Candidates = append(req.Candidates, dto.CandidateRequest{ID: id, Name: "候选人" + id})
	}
	return req
}

func createActiveVote(t *testing.T, svc VoteService, maxVotes int, ids ...string) string {
	t.Helper()
	resp, err := svc.Create(context.Background(), voteRequest(maxVotes, ids...), "admin-1")
	if err != nil {
		t.Fatalf("创建投票失败: %v", err)
	}
	return resp.ID
}

func TestVoteService_Create_Validation(t *testing.T) {
	svc, _, _ := setupTestVoteService()

	badWindow := voteRequest(1, "c1")
	badWindow.EndTime = badWindow.StartTime
	if _, err := svc.Create(context.Background(), badWindow, "admin-1"); !errors.Is(err, ErrInvalidVoteWindow) {
		t.Errorf("期望 ErrInvalidVoteWindow，实际: %v", err)
	}

	if _, err := svc.Create(context.Background(), voteRequest(3, "c1", "c2"), "admin-1"); !errors.Is(err, ErrInvalidMaxVotes) {
		t.Errorf("期望 ErrInvalidMaxVotes，实际: %v", err)
	}

	if _, err := svc.Create(context.Background(), voteRequest(1, "c1", "c1"), "admin-1"); !errors.Is(err, ErrDuplicateCandidate) {
		t.Errorf("期望 ErrDuplicateCandidate，实际: %v", err)
	}
}

func TestVoteService_Create_GeneratesCandidateIDs(t *testing.T) {
	svc, _, _ := setupTestVoteService()
	req := voteRequest(1)
	req.Candidates = []dto.CandidateRequest{{Name: "张三"}, {Name: "李四"}}

	resp, err := svc.Create(context.Background(), req, "admin-1")
	if err != nil {
		t.Fatalf("Create 应成功，但返回错误: %v", err)
	}
	if resp.Candidates[0].ID == "" || resp.Candidates[0].ID == resp.Candidates[1].ID {
		t.Errorf("候选人 ID 应自动生成且唯一: %+v", resp.Candidates)
	}
}

func TestVoteService_UpdateStatus_Transitions(t *testing.T) {
	svc, _, pub := setupTestVoteService()
	req := voteRequest(1, "c1")
	req.Status = ""
	resp, _ := svc.Create(context.Background(), req, "admin-1")
	ctx := context.Background()

	if err := svc.UpdateStatus(ctx, resp.ID, model.VoteStatusClosed, "admin-1"); !errors.Is(err, ErrInvalidVoteTransition) {
		t.Errorf("草稿不能直接关闭，实际: %v", err)
	}
	if err := svc.UpdateStatus(ctx, resp.ID, model.VoteStatusActive, "admin-1"); err != nil {
		t.Fatalf("draft → active 应成功: %v", err)
	}
	if _, err := svc.Update(ctx, resp.ID, voteRequest(1, "c2"), "admin-1"); !errors.Is(err, ErrVoteNotEditable) {
		t.Errorf("进行中的投票不可修改，实际: %v", err)
	}
	if err := svc.UpdateStatus(ctx, resp.ID, model.VoteStatusClosed, "admin-1"); err != nil {
		t.Fatalf("active → closed 应成功: %v", err)
	}
	if err := svc.UpdateStatus(ctx, resp.ID, model.VoteStatusActive, "admin-1"); !errors.Is(err, ErrInvalidVoteTransition) {
		t.Errorf("closed 为终态，实际: %v", err)
	}

	if got := pub.types(); len(got) != 1 || got[0] != mq.EventVoteClosed {
		t.Errorf("关闭投票应发布 vote.closed，实际: %v", got)
	}
}

func TestVoteService_Cast(t *testing.T) {
	svc, m, _ := setupTestVoteService()
	id := createActiveVote(t, svc, 2, "c1", "c2", "c3")
	ctx := context.Background()

	tests := []struct {
		name       string
		candidates []string
		wantErr    error
	}{
		{"名单外候选人", []string{"c9"}, ErrUnknownCandidate},
		{"超过上限", []string{"c1", "c2", "c3"}, ErrTooManyCandidates},
		{"重复选择只计一次", []string{"c1", "c1", "c2"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Cast(ctx, id, "u1", &dto.CastVoteRequest{Candidates: tt.candidates})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("期望 %v，实际: %v", tt.wantErr, err)
			}
		})
	}

	if err := svc.Cast(ctx, id, "u1", &dto.CastVoteRequest{Candidates: []string{"c3"}}); !errors.Is(err, ErrAlreadyVoted) {
		t.Errorf("期望 ErrAlreadyVoted，实际: %v", err)
	}

	rec, err := m.voteRecord.GetByVoter(ctx, id, "u1")
	if err != nil {
		t.Fatalf("应已保存投票记录: %v", err)
	}
	if len(rec.Candidates) != 2 {
		t.Errorf("期望去重后 2 名候选人，实际: %v", rec.Candidates)
	}
}

func TestVoteService_Cast_OutsideWindow(t *testing.T) {
	svc, _, _ := setupTestVoteService()
	req := voteRequest(1, "c1")
	req.StartTime = voteNow.Add(time.Hour)
	req.EndTime = voteNow.Add(2 * time.Hour)
	resp, _ := svc.Create(context.Background(), req, "admin-1")

	err := svc.Cast(context.Background(), resp.ID, "u1", &dto.CastVoteRequest{Candidates: []string{"c1"}})
	if !errors.Is(err, ErrVoteNotOpen) {
		t.Errorf("期望 ErrVoteNotOpen，实际: %v", err)
	}
}

func TestVoteService_Results_Visibility(t *testing.T) {
	svc, m, _ := setupTestVoteService()
	m.seedUser("u1", "13800000001", "", model.RoleTownStaff, 100)
	m.seedUser("u2", "13800000002", "", model.RoleTownStaff, 100)
	m.seedUser("u3", "13800000003", "", model.RoleTownStaff, 100)
	m.seedUser("u4", "13800000004", "", model.RoleTownStaff, 100)
	id := createActiveVote(t, svc, 2, "c1", "c2")
	ctx := context.Background()

	_ = svc.Cast(ctx, id, "u1", &dto.CastVoteRequest{Candidates: []string{"c1", "c2"}})
	_ = svc.Cast(ctx, id, "u2", &dto.CastVoteRequest{Candidates: []string{"c2"}})

	if _, err := svc.Results(ctx, id, "u3", model.RoleTownStaff); !errors.Is(err, ErrResultsHidden) {
		t.Errorf("未投票且未公开时期望 ErrResultsHidden，实际: %v", err)
	}

	res, err := svc.Results(ctx, id, "u1", model.RoleTownStaff)
	if err != nil {
		t.Fatalf("已投票者应可查看结果: %v", err)
	}
	if res.Tally.TotalVotesCast != 2 {
		t.Errorf("期望投票人数=2，实际=%d", res.Tally.TotalVotesCast)
	}
	first := res.Tally.Results[0]
	if first.CandidateID != "c2" || first.Votes != 2 || first.Percentage != 100 {
		t.Errorf("第一名计票错误: %+v", first)
	}
	if res.ParticipationRate != 50 {
		t.Errorf("期望参与率=50，实际=%v", res.ParticipationRate)
	}

	if _, err := svc.Results(ctx, id, "admin-1", model.RoleAdmin); err != nil {
		t.Errorf("管理员始终可查看结果: %v", err)
	}
}

func TestVoteService_List_HidesDraftsFromStaff(t *testing.T) {
	svc, _, _ := setupTestVoteService()
	draft := voteRequest(1, "c1")
	draft.Status = ""
	_, _ = svc.Create(context.Background(), draft, "admin-1")
	createActiveVote(t, svc, 1, "c1")

	list, total, err := svc.List(context.Background(), &dto.VoteListRequest{}, "u1", model.RoleTownStaff)
	if err != nil {
		t.Fatalf("List 应成功，但返回错误: %v", err)
	}
	if total != 1 || list[0].Status != string(model.VoteStatusActive) {
		t.Errorf("普通用户默认只看进行中的投票，实际 total=%d", total)
	}

	_, total, _ = svc.List(context.Background(), &dto.VoteListRequest{Status: "draft"}, "u1", model.RoleTownStaff)
	if total != 0 {
		t.Errorf("普通用户不可见草稿，实际=%d", total)
	}

	_, total, _ = svc.List(context.Background(), &dto.VoteListRequest{}, "admin-1", model.RoleAdmin)
	if total != 2 {
		t.Errorf("管理员应看到全部投票，实际=%d", total)
	}
}

func TestVoteService_CloseExpired(t *testing.T) {
	svc, m, pub := setupTestVoteService()
	expired := voteRequest(1, "c1")
	expired.EndTime = voteNow.Add(-time.Minute)
	expired.StartTime = voteNow.Add(-time.Hour)
	old, _ := svc.Create(context.Background(), expired, "admin-1")
	open := createActiveVote(t, svc, 1, "c1")

	n, err := svc.CloseExpired(context.Background(), voteNow)
	if err != nil {
		t.Fatalf("CloseExpired 应成功，但返回错误: %v", err)
	}
	if n != 1 {
		t.Errorf("期望关闭 1 个投票，实际=%d", n)
	}

	v, _ := m.vote.GetByID(context.Background(), old.ID)
	if v.Status != model.VoteStatusClosed {
		t.Errorf("到期投票应已关闭，实际=%s", v.Status)
	}
	v, _ = m.vote.GetByID(context.Background(), open)
	if v.Status != model.VoteStatusActive {
		t.Errorf("未到期投票应保持进行中，实际=%s", v.Status)
	}
	if got := pub.types(); len(got) != 1 || got[0] != mq.EventVoteClosed {
		t.Errorf("期望发布一次 vote.closed，实际: %v", got)
	}
}
