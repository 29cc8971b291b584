package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ruralwork/internal/dto"
	"ruralwork/internal/model"
	"ruralwork/internal/repository"
	"ruralwork/internal/stats"
	pkgerrors "ruralwork/pkg/errors"
	"ruralwork/pkg/mq"
)

// ── 请假业务错误 ──

var (
	ErrLeaveNotFound        = errors.New("请假申请不存在")
	ErrInvalidLeaveType     = errors.New("请假类型不正确")
	ErrInvalidLeaveDates    = errors.New("结束日期不能早于开始日期")
	ErrLeaveAlreadyReviewed = errors.New("该申请已审批")
	ErrInvalidReviewStatus  = errors.New("审批结果只能是通过或驳回")
)

const dateLayout = "2006-01-02"

// LeaveReviewedPayload leave.reviewed 事件内容
type LeaveReviewedPayload struct {
	LeaveID        string   `json:"leave_id"`
	UserID         string   `json:"user_id"`
	LeaveType      string   `json:"leave_type"`
	Status         string   `json:"status"`
	ReviewerID     string   `json:"reviewer_id"`
	ScoreDeduction *float64 `json:"score_deduction,omitempty"`
}

// LeaveService 请假业务接口
type LeaveService interface {
	Submit(ctx context.Context, userID string, req *dto.CreateLeaveRequest) (*dto.LeaveResponse, error)
	Get(ctx context.Context, id string) (*dto.LeaveResponse, error)
	// List userID 非空时只列出该用户的申请
	List(ctx context.Context, req *dto.LeaveListRequest) ([]dto.LeaveResponse, int64, error)
	Review(ctx context.Context, id, reviewerID string, req *dto.ReviewLeaveRequest) (*dto.ReviewLeaveResponse, error)
	Stats(ctx context.Context) (*stats.LeaveOverview, error)
}

type leaveService struct {
	repo       *repository.Repository
	attendance AttendanceService
	publisher  mq.Publisher
	logs       SystemLogService
	logger     *zap.Logger
	now        func() time.Time
}

// NewLeaveService 创建 LeaveService 实例
func NewLeaveService(
	repo *repository.Repository,
	attendance AttendanceService,
	publisher mq.Publisher,
	logs SystemLogService,
	logger *zap.Logger,
) LeaveService {
	return &leaveService{
		repo:       repo,
		attendance: attendance,
		publisher:  publisher,
		logs:       logs,
		logger:     logger,
		now:        time.Now,
	}
}

// ────────────────────── Submit ──────────────────────

// leaveDays 起止日期含首尾的天数，至少 1 天
func leaveDays(start, end time.Time) float64 {
	days := int(end.Sub(start).Hours()/24) + 1
	return float64(max(days, 1))
}

func (s *leaveService) Submit(ctx context.Context, userID string, req *dto.CreateLeaveRequest) (*dto.LeaveResponse, error) {
	lt := model.LeaveType(req.LeaveType)
	if !lt.Valid() {
		return nil, ErrInvalidLeaveType
	}
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, ErrInvalidLeaveDates
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return nil, ErrInvalidLeaveDates
	}
	if end.Before(start) {
		return nil, ErrInvalidLeaveDates
	}

	days := req.DaysCount
	if days <= 0 {
		days = leaveDays(start, end)
	}

	l := &model.LeaveRequest{
		UserID:    userID,
		LeaveType: lt,
		StartDate: start,
		EndDate:   end,
		DaysCount: days,
		Reason:    req.Reason,
		Status:    model.LeaveStatusPending,
	}
	l.CreatedBy = strPtr(userID)

	if err := s.repo.Leave.Create(ctx, l); err != nil {
		s.logger.Error("提交请假失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.logs.Record(ctx, LogEntry{
		UserID:   userID,
		Action:   ActionLeaveSubmit,
		Resource: "leave",
		Metadata: map[string]any{"leave_id": l.ID, "leave_type": string(lt), "days": days},
	})
	return toLeaveResponse(l), nil
}

// ────────────────────── Get / List ──────────────────────

func (s *leaveService) Get(ctx context.Context, id string) (*dto.LeaveResponse, error) {
	l, err := s.repo.Leave.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeaveNotFound
		}
		return nil, err
	}
	return toLeaveResponse(l), nil
}

func (s *leaveService) List(ctx context.Context, req *dto.LeaveListRequest) ([]dto.LeaveResponse, int64, error) {
	q := repository.Query{Offset: req.GetOffset(), Limit: req.GetPageSize()}
	if req.UserID != "" {
		q = q.Where("user_id", req.UserID)
	}
	if req.Status != "" {
		q = q.Where("status", req.Status)
	}
	if req.LeaveType != "" {
		q = q.Where("leave_type", req.LeaveType)
	}

	list, total, err := s.repo.Leave.Find(ctx, q)
	if err != nil {
		s.logger.Error("查询请假列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.LeaveResponse, 0, len(list))
	for i := range list {
		result = append(result, *toLeaveResponse(&list[i]))
	}
	return result, total, nil
}

// ────────────────────── Review ──────────────────────

// Review 审批请假；批准事假时在同一事务内扣减考勤分
func (s *leaveService) Review(ctx context.Context, id, reviewerID string, req *dto.ReviewLeaveRequest) (*dto.ReviewLeaveResponse, error) {
	status := model.LeaveStatus(req.Status)
	if status != model.LeaveStatusApproved && status != model.LeaveStatusRejected {
		return nil, ErrInvalidReviewStatus
	}

	l, err := s.repo.Leave.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeaveNotFound
		}
		s.logger.Error("查询请假申请失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if l.Status != model.LeaveStatusPending {
		return nil, ErrLeaveAlreadyReviewed
	}

	now := s.now()
	l.Status = status
	l.ApproverID = strPtr(reviewerID)
	l.ApproverComment = req.Comment
	l.ApprovedAt = &now
	l.UpdatedBy = strPtr(reviewerID)

	deducts := l.Deducts()
	if deducts {
		days := l.DaysCount
		l.ScoreDeduction = &days

		unlock, err := s.attendance.LockUser(ctx, l.UserID)
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	var res *DeductionResult
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		// WHERE status = 'pending' 保证同一申请只被审批一次
		if err := tx.Leave.Review(ctx, l); err != nil {
			return err
		}
		if !deducts {
			return nil
		}
		var err error
		res, err = s.attendance.DeductInTx(ctx, tx, DeductionCommand{
			UserID:         l.UserID,
			Amount:         l.DaysCount,
			Reason:         "事假扣分",
			IdempotencyKey: "leave:" + l.ID,
			LeaveRequestID: l.ID,
			OperatorID:     reviewerID,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) || errors.Is(err, pkgerrors.ErrDuplicateOperation) {
			return nil, ErrLeaveAlreadyReviewed
		}
		s.logger.Error("审批请假失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.attendance.Announce(ctx, res)
	publish(ctx, s.publisher, s.logger, mq.EventLeaveReviewed, LeaveReviewedPayload{
		LeaveID:        l.ID,
		UserID:         l.UserID,
		LeaveType:      string(l.LeaveType),
		Status:         string(l.Status),
		ReviewerID:     reviewerID,
		ScoreDeduction: l.ScoreDeduction,
	})
	s.logs.Record(ctx, LogEntry{
		UserID:   reviewerID,
		Action:   ActionLeaveReview,
		Resource: "leave",
		Metadata: map[string]any{"leave_id": l.ID, "status": string(l.Status)},
	})

	resp := &dto.ReviewLeaveResponse{Leave: *toLeaveResponse(l)}
	if res != nil {
		resp.Deduction = toDeductionResponse(res)
	}
	return resp, nil
}

// ────────────────────── Stats ──────────────────────

func (s *leaveService) Stats(ctx context.Context) (*stats.LeaveOverview, error) {
	leaves, err := s.repo.Leave.ListAll(ctx)
	if err != nil {
		s.logger.Error("统计请假失败", zap.Error(err))
		return nil, err
	}
	o := stats.LeaveStats(leaves)
	return &o, nil
}

// ── 内部辅助方法 ──

func toLeaveResponse(l *model.LeaveRequest) *dto.LeaveResponse {
	resp := &dto.LeaveResponse{
		ID:              l.ID,
		UserID:          l.UserID,
		LeaveType:       string(l.LeaveType),
		LeaveTypeLabel:  l.LeaveType.Label(),
		StartDate:       l.StartDate.Format(dateLayout),
		EndDate:         l.EndDate.Format(dateLayout),
		DaysCount:       l.DaysCount,
		Reason:          l.Reason,
		Status:          string(l.Status),
		ApproverComment: l.ApproverComment,
		ApprovedAt:      formatTimePtr(l.ApprovedAt),
		ScoreDeduction:  l.ScoreDeduction,
		CreatedAt:       formatTime(l.CreatedAt),
	}
	if l.ApproverID != nil {
		resp.ApproverID = *l.ApproverID
	}
	if l.User != nil {
		resp.UserName = l.User.Name
		resp.Department = l.User.Department
	}
	return resp
}
