package service

import (
	"context"
	"errors"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"ruralwork/internal/dto"
	"ruralwork/internal/model"
	"ruralwork/internal/repository"
	pkgerrors "ruralwork/pkg/errors"
	"ruralwork/pkg/mq"
)

var ErrInvalidDeductionAmount = errors.New("扣分值必须大于 0")

// DeductionCommand 一次考勤扣分
type DeductionCommand struct {
	UserID string
	Amount float64
	Reason string
	// IdempotencyKey 同一键只生效一次；为空时自动生成
	IdempotencyKey string
	LeaveRequestID string
	OperatorID     string
}

// DeductionResult 扣分结果；Duplicate 表示幂等键已处理过，Deduction 为首次落账记录
type DeductionResult struct {
	Deduction model.ScoreDeduction
	Duplicate bool
}

// ScoreDeductedPayload score.deducted 事件内容
type ScoreDeductedPayload struct {
	DeductionID    string  `json:"deduction_id"`
	UserID         string  `json:"user_id"`
	Amount         float64 `json:"amount"`
	ScoreBefore    float64 `json:"score_before"`
	ScoreAfter     float64 `json:"score_after"`
	Reason         string  `json:"reason"`
	LeaveRequestID string  `json:"leave_request_id,omitempty"`
}

// AttendanceService 考勤分业务接口
//
// 同一用户的扣分按用户串行：先取用户锁，再在事务内执行原子扣减并写入流水。
type AttendanceService interface {
	ApplyDeduction(ctx context.Context, cmd DeductionCommand) (*DeductionResult, error)
	// LockUser 获取用户考勤分锁；与 DeductInTx 配合用于调用方自己的事务
	LockUser(ctx context.Context, userID string) (unlock func(), err error)
	// DeductInTx 在调用方事务内扣分，调用方须已持有用户锁
	DeductInTx(ctx context.Context, tx *repository.Repository, cmd DeductionCommand) (*DeductionResult, error)
	// Announce 事务提交后发布事件并写审计日志；重复结果不发布
	Announce(ctx context.Context, res *DeductionResult)
	ListByUser(ctx context.Context, userID string) ([]dto.DeductionResponse, error)
}

type attendanceService struct {
	repo      *repository.Repository
	locker    UserLocker
	publisher mq.Publisher
	logs      SystemLogService
	logger    *zap.Logger
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(
	repo *repository.Repository,
	locker UserLocker,
	publisher mq.Publisher,
	logs SystemLogService,
	logger *zap.Logger,
) AttendanceService {
	return &attendanceService{
		repo:      repo,
		locker:    locker,
		publisher: publisher,
		logs:      logs,
		logger:    logger,
	}
}

func (s *attendanceService) LockUser(ctx context.Context, userID string) (func(), error) {
	return s.locker.Lock(ctx, userID)
}

func (s *attendanceService) ApplyDeduction(ctx context.Context, cmd DeductionCommand) (*DeductionResult, error) {
	if math.IsNaN(cmd.Amount) || cmd.Amount <= 0 {
		return nil, ErrInvalidDeductionAmount
	}
	if cmd.IdempotencyKey == "" {
		cmd.IdempotencyKey = "manual:" + uuid.NewString()
	}

	unlock, err := s.locker.Lock(ctx, cmd.UserID)
	if err != nil {
		s.logger.Warn("获取考勤分锁失败", zap.String("user_id", cmd.UserID), zap.Error(err))
		return nil, err
	}
	defer unlock()

	var res *DeductionResult
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		res, err = s.DeductInTx(ctx, tx, cmd)
		return err
	})
	if errors.Is(err, pkgerrors.ErrDuplicateOperation) {
		// 另一实例抢先落账，事务已回滚，返回首次结果
		return s.recorded(ctx, cmd.IdempotencyKey)
	}
	if err != nil {
		return nil, err
	}

	s.Announce(ctx, res)
	return res, nil
}

func (s *attendanceService) DeductInTx(ctx context.Context, tx *repository.Repository, cmd DeductionCommand) (*DeductionResult, error) {
	if math.IsNaN(cmd.Amount) || cmd.Amount <= 0 {
		return nil, ErrInvalidDeductionAmount
	}

	if prev, err := tx.Deduction.GetByIdempotencyKey(ctx, cmd.IdempotencyKey); err == nil {
		return &DeductionResult{Deduction: *prev, Duplicate: true}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user, err := tx.User.GetByID(ctx, cmd.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// 以数据库当前值为基准原子扣减，不回写读到的旧值
	after, err := tx.User.DeductScore(ctx, cmd.UserID, cmd.Amount)
	if err != nil {
		s.logger.Error("扣减考勤分失败", zap.String("user_id", cmd.UserID), zap.Error(err))
		return nil, err
	}

	d := model.ScoreDeduction{
		UserID:         cmd.UserID,
		Amount:         cmd.Amount,
		ScoreBefore:    user.TotalScore,
		ScoreAfter:     after,
		Reason:         cmd.Reason,
		IdempotencyKey: cmd.IdempotencyKey,
	}
	if cmd.LeaveRequestID != "" {
		d.LeaveRequestID = strPtr(cmd.LeaveRequestID)
	}
	if cmd.OperatorID != "" {
		d.OperatorID = strPtr(cmd.OperatorID)
	}
	if err := tx.Deduction.Create(ctx, &d); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, pkgerrors.ErrDuplicateOperation
		}
		return nil, err
	}

	s.logger.Info("考勤扣分",
		zap.String("user_id", cmd.UserID),
		zap.Float64("amount", cmd.Amount),
		zap.Float64("before", d.ScoreBefore),
		zap.Float64("after", d.ScoreAfter),
		zap.String("key", cmd.IdempotencyKey),
	)
	return &DeductionResult{Deduction: d}, nil
}

func (s *attendanceService) Announce(ctx context.Context, res *DeductionResult) {
	if res == nil || res.Duplicate {
		return
	}
	d := res.Deduction
	payload := ScoreDeductedPayload{
		DeductionID: d.ID,
		UserID:      d.UserID,
		Amount:      d.Amount,
		ScoreBefore: d.ScoreBefore,
		ScoreAfter:  d.ScoreAfter,
		Reason:      d.Reason,
	}
	if d.LeaveRequestID != nil {
		payload.LeaveRequestID = *d.LeaveRequestID
	}
	publish(ctx, s.publisher, s.logger, mq.EventScoreDeducted, payload)

	entry := LogEntry{
		Action:   ActionScoreDeduct,
		Resource: "attendance",
		Metadata: map[string]any{
			"target_id":       d.UserID,
			"amount":          d.Amount,
			"score_after":     d.ScoreAfter,
			"idempotency_key": d.IdempotencyKey,
		},
	}
	if d.OperatorID != nil {
		entry.UserID = *d.OperatorID
	}
	s.logs.Record(ctx, entry)
}

func (s *attendanceService) ListByUser(ctx context.Context, userID string) ([]dto.DeductionResponse, error) {
	list, err := s.repo.Deduction.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询扣分流水失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.DeductionResponse, 0, len(list))
	for i := range list {
		result = append(result, *toDeductionResponse(&DeductionResult{Deduction: list[i]}))
	}
	return result, nil
}

func (s *attendanceService) recorded(ctx context.Context, key string) (*DeductionResult, error) {
	prev, err := s.repo.Deduction.GetByIdempotencyKey(ctx, key)
	if err != nil {
		return nil, err
	}
	return &DeductionResult{Deduction: *prev, Duplicate: true}, nil
}

// Response 转换为接口响应
func (res *DeductionResult) Response() *dto.DeductionResponse {
	return toDeductionResponse(res)
}

func toDeductionResponse(res *DeductionResult) *dto.DeductionResponse {
	d := res.Deduction
	return &dto.DeductionResponse{
		ID:             d.ID,
		UserID:         d.UserID,
		Amount:         d.Amount,
		ScoreBefore:    d.ScoreBefore,
		ScoreAfter:     d.ScoreAfter,
		Reason:         d.Reason,
		IdempotencyKey: d.IdempotencyKey,
		Duplicate:      res.Duplicate,
		CreatedAt:      formatTime(d.CreatedAt),
	}
}
