package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"ruralwork/internal/dto"
	"ruralwork/internal/model"
	"ruralwork/internal/repository"
	"ruralwork/internal/stats"
	"ruralwork/pkg/mq"
)

// ── 投票业务错误 ──

var (
	ErrVoteNotFound          = errors.New("投票活动不存在")
	ErrInvalidVoteWindow     = errors.New("结束时间必须晚于开始时间")
	ErrInvalidMaxVotes       = errors.New("每人可投票数须在 1 到候选人数之间")
	ErrDuplicateCandidate    = errors.New("候选人重复")
	ErrVoteNotEditable       = errors.New("仅草稿状态的投票可以修改")
	ErrInvalidVoteTransition = errors.New("投票状态不允许该变更")
	ErrVoteNotOpen           = errors.New("投票未开始或已结束")
	ErrTooManyCandidates     = errors.New("选择的候选人超过上限")
	ErrUnknownCandidate      = errors.New("候选人不在名单内")
	ErrAlreadyVoted          = errors.New("您已参与过本次投票")
	ErrResultsHidden         = errors.New("投票结果暂不公开")
)

// VoteClosedPayload vote.closed 事件内容
type VoteClosedPayload struct {
	VoteID string `json:"vote_id"`
	Title  string `json:"title"`
	Auto   bool   `json:"auto"` // 到期自动关闭
}

// VoteService 投票业务接口
type VoteService interface {
	Create(ctx context.Context, req *dto.CreateVoteRequest, callerID string) (*dto.VoteResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateVoteRequest, callerID string) (*dto.VoteResponse, error)
	UpdateStatus(ctx context.Context, id string, status model.VoteStatus, callerID string) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id, callerID string) (*dto.VoteResponse, error)
	List(ctx context.Context, req *dto.VoteListRequest, callerID string, callerRole model.Role) ([]dto.VoteResponse, int64, error)
	Cast(ctx context.Context, id, voterID string, req *dto.CastVoteRequest) error
	Results(ctx context.Context, id, callerID string, callerRole model.Role) (*dto.VoteResultResponse, error)
	// CloseExpired 关闭已过截止时间的进行中投票，返回关闭数量
	CloseExpired(ctx context.Context, now time.Time) (int, error)
}

type voteService struct {
	repo      *repository.Repository
	publisher mq.Publisher
	logs      SystemLogService
	logger    *zap.Logger
	now       func() time.Time
}

// NewVoteService 创建 VoteService 实例
func NewVoteService(repo *repository.Repository, publisher mq.Publisher, logs SystemLogService, logger *zap.Logger) VoteService {
	return &voteService{repo: repo, publisher: publisher, logs: logs, logger: logger, now: time.Now}
}

// ────────────────────── Create / Update ──────────────────────

// buildCandidates 校验候选人名单，缺失的 ID 自动生成
func buildCandidates(reqs []dto.CandidateRequest) ([]model.Candidate, error) {
	list := make([]model.Candidate, 0, len(reqs))
	seen := make(map[string]struct{}, len(reqs))
	for _, c := range reqs {
		id := c.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, dup := seen[id]; dup {
			return nil, ErrDuplicateCandidate
		}
		seen[id] = struct{}{}
		list = append(list, model.Candidate{
			ID:          id,
			Name:        c.Name,
			Description: c.Description,
			Department:  c.Department,
			Phone:       c.Phone,
		})
	}
	return list, nil
}

func (s *voteService) applyRequest(v *model.Vote, req *dto.CreateVoteRequest) error {
	if !req.EndTime.After(req.StartTime) {
		return ErrInvalidVoteWindow
	}
	candidates, err := buildCandidates(req.Candidates)
	if err != nil {
		return err
	}
	if req.MaxVotesPerUser < 1 || req.MaxVotesPerUser > len(candidates) {
		return ErrInvalidMaxVotes
	}

	v.Title = req.Title
	v.Description = req.Description
	v.StartTime = req.StartTime
	v.EndTime = req.EndTime
	v.MaxVotesPerUser = req.MaxVotesPerUser
	v.ShowResults = req.ShowResults
	v.Candidates = candidates
	v.Status = model.VoteStatusDraft
	if req.Status == string(model.VoteStatusActive) {
		v.Status = model.VoteStatusActive
	}
	return nil
}

func (s *voteService) Create(ctx context.Context, req *dto.CreateVoteRequest, callerID string) (*dto.VoteResponse, error) {
	v := &model.Vote{}
	if err := s.applyRequest(v, req); err != nil {
		return nil, err
	}
	v.CreatedBy = strPtr(callerID)

	if err := s.repo.Vote.Create(ctx, v); err != nil {
		s.logger.Error("创建投票失败", zap.Error(err))
		return nil, err
	}

	s.logs.Record(ctx, LogEntry{
		UserID:   callerID,
		Action:   ActionVoteCreate,
		Resource: "vote",
		Metadata: map[string]any{"vote_id": v.ID, "title": v.Title, "status": string(v.Status)},
	})
	return toVoteResponse(v, false), nil
}

func (s *voteService) Update(ctx context.Context, id string, req *dto.UpdateVoteRequest, callerID string) (*dto.VoteResponse, error) {
	v, err := s.getVote(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Status != model.VoteStatusDraft {
		return nil, ErrVoteNotEditable
	}
	if err := s.applyRequest(v, req); err != nil {
		return nil, err
	}
	v.UpdatedBy = strPtr(callerID)

	if err := s.repo.Vote.Update(ctx, v); err != nil {
		s.logger.Error("更新投票失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toVoteResponse(v, false), nil
}

// ────────────────────── UpdateStatus / Delete ──────────────────────

// 允许的状态流转：draft → active → closed
var voteTransitions = map[model.VoteStatus]model.VoteStatus{
	model.VoteStatusDraft:  model.VoteStatusActive,
	model.VoteStatusActive: model.VoteStatusClosed,
}

func (s *voteService) UpdateStatus(ctx context.Context, id string, status model.VoteStatus, callerID string) error {
	v, err := s.getVote(ctx, id)
	if err != nil {
		return err
	}
	if next, ok := voteTransitions[v.Status]; !ok || next != status {
		return ErrInvalidVoteTransition
	}

	if err := s.repo.Vote.UpdateStatus(ctx, id, status); err != nil {
		s.logger.Error("更新投票状态失败", zap.String("id", id), zap.Error(err))
		return err
	}

	s.logs.Record(ctx, LogEntry{
		UserID:   callerID,
		Action:   ActionVoteStatus,
		Resource: "vote",
		Metadata: map[string]any{"vote_id": id, "from": string(v.Status), "to": string(status)},
	})
	if status == model.VoteStatusClosed {
		publish(ctx, s.publisher, s.logger, mq.EventVoteClosed, VoteClosedPayload{VoteID: id, Title: v.Title})
	}
	return nil
}

func (s *voteService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Vote.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVoteNotFound
		}
		s.logger.Error("删除投票失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Get / List ──────────────────────

func (s *voteService) Get(ctx context.Context, id, callerID string) (*dto.VoteResponse, error) {
	v, err := s.getVote(ctx, id)
	if err != nil {
		return nil, err
	}
	voted, err := s.hasVoted(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	return toVoteResponse(v, voted), nil
}

// List 非管理员看不到草稿；未指定状态时只列出进行中的投票
func (s *voteService) List(ctx context.Context, req *dto.VoteListRequest, callerID string, callerRole model.Role) ([]dto.VoteResponse, int64, error) {
	status := req.Status
	if !callerRole.IsAdmin() {
		switch model.VoteStatus(status) {
		case model.VoteStatusDraft:
			return []dto.VoteResponse{}, 0, nil
		case "":
			status = string(model.VoteStatusActive)
		}
	}

	q := repository.Query{Offset: req.GetOffset(), Limit: req.GetPageSize()}
	if status != "" {
		q = q.Where("status", status)
	}

	votes, total, err := s.repo.Vote.Find(ctx, q)
	if err != nil {
		s.logger.Error("查询投票列表失败", zap.Error(err))
		return nil, 0, err
	}

	mine, err := s.repo.VoteRecord.ListByVoter(ctx, callerID)
	if err != nil {
		return nil, 0, err
	}
	voted := make(map[string]bool, len(mine))
	for _, r := range mine {
		voted[r.VoteID] = true
	}

	result := make([]dto.VoteResponse, 0, len(votes))
	for i := range votes {
		result = append(result, *toVoteResponse(&votes[i], voted[votes[i].ID]))
	}
	return result, total, nil
}

// ────────────────────── Cast ──────────────────────

func (s *voteService) Cast(ctx context.Context, id, voterID string, req *dto.CastVoteRequest) error {
	v, err := s.getVote(ctx, id)
	if err != nil {
		return err
	}
	now := s.now()
	if !v.OpenAt(now) {
		return ErrVoteNotOpen
	}

	// 同一候选人重复选择只算一次
	chosen := make([]string, 0, len(req.Candidates))
	seen := make(map[string]struct{}, len(req.Candidates))
	for _, cid := range req.Candidates {
		if _, dup := seen[cid]; dup {
			continue
		}
		seen[cid] = struct{}{}
		if !v.HasCandidate(cid) {
			return ErrUnknownCandidate
		}
		chosen = append(chosen, cid)
	}
	if len(chosen) == 0 {
		return ErrUnknownCandidate
	}
	if len(chosen) > v.MaxVotesPerUser {
		return ErrTooManyCandidates
	}

	voted, err := s.hasVoted(ctx, id, voterID)
	if err != nil {
		return err
	}
	if voted {
		return ErrAlreadyVoted
	}

	rec := &model.VoteRecord{
		VoteID:     id,
		VoterID:    voterID,
		Candidates: chosen,
		VoteTime:   now,
	}
	if err := s.repo.VoteRecord.Create(ctx, rec); err != nil {
		// 并发重复提交由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyVoted
		}
		s.logger.Error("保存投票记录失败", zap.String("vote_id", id), zap.Error(err))
		return err
	}

	s.logs.Record(ctx, LogEntry{
		UserID:   voterID,
		Action:   ActionVoteCast,
		Resource: "vote",
		Metadata: map[string]any{"vote_id": id, "candidates": chosen},
	})
	return nil
}

// ────────────────────── Results ──────────────────────

// Results 管理员始终可见；其他人在公开结果、已关闭或本人已投票时可见
func (s *voteService) Results(ctx context.Context, id, callerID string, callerRole model.Role) (*dto.VoteResultResponse, error) {
	var (
		v       *model.Vote
		records []model.VoteRecord
		users   []model.User
	)
	err := s.repo.Snapshot(ctx, func(tx *repository.Repository) error {
		var err error
		if v, err = tx.Vote.GetByID(ctx, id); err != nil {
			return err
		}
		if records, err = tx.VoteRecord.ListByVote(ctx, id); err != nil {
			return err
		}
		users, err = tx.User.ListAll(ctx)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVoteNotFound
		}
		s.logger.Error("查询投票结果失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	voted := false
	for i := range records {
		if records[i].VoterID == callerID {
			voted = true
			break
		}
	}
	if !callerRole.IsAdmin() && !v.ShowResults && v.Status != model.VoteStatusClosed && !voted {
		return nil, ErrResultsHidden
	}

	return &dto.VoteResultResponse{
		Vote:              *toVoteResponse(v, voted),
		Tally:             stats.Tally(records, v.Candidates),
		ParticipationRate: stats.ParticipationRate(len(records), 1, countParticipants(users)),
	}, nil
}

// ────────────────────── CloseExpired ──────────────────────

func (s *voteService) CloseExpired(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.repo.Vote.ListExpiredActive(ctx, now)
	if err != nil {
		return 0, err
	}

	closed := 0
	for i := range expired {
		v := &expired[i]
		if err := s.repo.Vote.UpdateStatus(ctx, v.ID, model.VoteStatusClosed); err != nil {
			s.logger.Warn("自动关闭投票失败", zap.String("id", v.ID), zap.Error(err))
			continue
		}
		closed++
		publish(ctx, s.publisher, s.logger, mq.EventVoteClosed, VoteClosedPayload{VoteID: v.ID, Title: v.Title, Auto: true})
	}
	if closed > 0 {
		s.logger.Info("已自动关闭到期投票", zap.Int("count", closed))
	}
	return closed, nil
}

// ── 内部辅助方法 ──

func (s *voteService) getVote(ctx context.Context, id string) (*model.Vote, error) {
	v, err := s.repo.Vote.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVoteNotFound
		}
		s.logger.Error("查询投票失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return v, nil
}

func (s *voteService) hasVoted(ctx context.Context, voteID, voterID string) (bool, error) {
	_, err := s.repo.VoteRecord.GetByVoter(ctx, voteID, voterID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

func toVoteResponse(v *model.Vote, hasVoted bool) *dto.VoteResponse {
	candidates := make([]dto.CandidateRequest, 0, len(v.Candidates))
	for _, c := range v.Candidates {
		candidates = append(candidates, dto.CandidateRequest{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Department:  c.Department,
			Phone:       c.Phone,
		})
	}
	return &dto.VoteResponse{
		ID:              v.ID,
		Title:           v.Title,
		Description:     v.Description,
		StartTime:       v.StartTime,
		EndTime:         v.EndTime,
		MaxVotesPerUser: v.MaxVotesPerUser,
		ShowResults:     v.ShowResults,
		Status:          string(v.Status),
		Candidates:      candidates,
		HasVoted:        hasVoted,
		CreatedAt:       v.CreatedAt,
	}
}
