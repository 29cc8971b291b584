package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"ruralwork/config"
	"ruralwork/internal/dto"
	"ruralwork/internal/model"
	"ruralwork/internal/repository"
	"ruralwork/internal/stats"
)

const (
	recentUserWindow = 7 * 24 * time.Hour
	topPerformerN    = 10
)

// StatisticsService 管理看板业务接口
type StatisticsService interface {
	// Dashboard year 为空时统计全部年度的互评
	Dashboard(ctx context.Context, year string) (*dto.StatisticsResponse, error)
}

type statisticsService struct {
	cfg    *config.AttendanceConfig
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewStatisticsService 创建 StatisticsService 实例
func NewStatisticsService(cfg *config.AttendanceConfig, repo *repository.Repository, logger *zap.Logger) StatisticsService {
	return &statisticsService{cfg: cfg, repo: repo, logger: logger, now: time.Now}
}

// dataset 一次快照读取的全部数据
type dataset struct {
	users       []model.User
	votes       []model.Vote
	recordCount int64
	evaluations []model.Evaluation
	leaves      []model.LeaveRequest
}

// load 在只读事务内读取看板所需数据，任一失败整体返回错误
func load(ctx context.Context, repo *repository.Repository, year string) (*dataset, error) {
	ds := &dataset{}
	err := repo.Snapshot(ctx, func(tx *repository.Repository) error {
		var err error
		if ds.users, err = tx.User.ListAll(ctx); err != nil {
			return err
		}
		if ds.votes, err = tx.Vote.ListAll(ctx); err != nil {
			return err
		}
		if ds.recordCount, err = tx.VoteRecord.Count(ctx); err != nil {
			return err
		}
		if ds.evaluations, err = tx.Evaluation.ListCompleted(ctx, year); err != nil {
			return err
		}
		ds.leaves, err = tx.Leave.ListAll(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ds, nil
}

func (s *statisticsService) Dashboard(ctx context.Context, year string) (*dto.StatisticsResponse, error) {
	ds, err := load(ctx, s.repo, year)
	if err != nil {
		s.logger.Error("读取统计数据失败", zap.String("year", year), zap.Error(err))
		return nil, err
	}

	now := s.now()
	ranked := stats.Leaderboard(ds.evaluations, ds.users)
	board := stats.AttendanceBoard(ds.users, ds.leaves)

	return &dto.StatisticsResponse{
		Users: userStats(ds.users, now),
		Votes: voteStats(ds.votes, int(ds.recordCount), countParticipants(ds.users)),
		Evaluations: dto.EvaluationStats{
			CompletedCount:    len(ds.evaluations),
			DimensionAverages: stats.DimensionAverages(ds.evaluations),
			TopPerformers:     stats.Top(ranked, topPerformerN),
			Rankings:          ranked,
			Departments:       stats.DepartmentRollup(ds.evaluations, ds.users),
			Distribution:      stats.ScoreDistribution(ds.evaluations),
		},
		Leaves:      stats.LeaveStats(ds.leaves),
		Attendance:  stats.AttendanceSummary(board, s.cfg.BaseScore),
		Board:       board,
		GeneratedAt: formatTime(now),
	}, nil
}

func userStats(users []model.User, now time.Time) dto.UserStats {
	us := dto.UserStats{Total: len(users)}
	byRole := make(map[model.Role]int64, len(model.Roles))
	since := now.Add(-recentUserWindow)
	for i := range users {
		u := &users[i]
		byRole[u.Role]++
		if u.IsActive {
			us.Active++
		}
		if u.CreatedAt.After(since) {
			us.RecentNew++
		}
	}
	for _, r := range model.Roles {
		us.ByRole = append(us.ByRole, dto.RoleCountResponse{
			Role:      string(r),
			RoleLabel: r.Label(),
			Count:     byRole[r],
		})
	}
	return us
}

func voteStats(votes []model.Vote, recordCount, participants int) dto.VoteStats {
	vs := dto.VoteStats{Total: len(votes), RecordCount: recordCount}
	for i := range votes {
		switch votes[i].Status {
		case model.VoteStatusActive:
			vs.Active++
		case model.VoteStatusClosed:
			vs.Closed++
		}
	}
	vs.ParticipationRate = stats.ParticipationRate(recordCount, len(votes), participants)
	return vs
}
