package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ruralwork/internal/dto"
	"ruralwork/internal/model"
	"ruralwork/internal/service"
	pkgerrors "ruralwork/pkg/errors"
	"ruralwork/pkg/response"
)

// AttendanceHandler 考勤分 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// Deduct 手工扣分（管理员），同一 idempotency_key 只生效一次
// POST /api/v1/attendance/deductions
func (h *AttendanceHandler) Deduct(c *gin.Context) {
	operatorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.DeductionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	res, err := h.attendanceSvc.ApplyDeduction(c.Request.Context(), service.DeductionCommand{
		UserID:         req.UserID,
		Amount:         req.Amount,
		Reason:         req.Reason,
		IdempotencyKey: req.IdempotencyKey,
		OperatorID:     operatorID,
	})
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	if res.Duplicate {
		response.OK(c, res.Response())
		return
	}
	response.Created(c, res.Response())
}

// ListDeductions 扣分流水；非管理员只能查看本人
// GET /api/v1/attendance/deductions?user_id=xxx
func (h *AttendanceHandler) ListDeductions(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	target := userID
	if q := c.Query("user_id"); q != "" && q != userID {
		if !role.Can(model.CapAdmin) {
			response.Forbidden(c, 10003, "权限不足")
			return
		}
		target = q
	}

	list, err := h.attendanceSvc.ListByUser(c.Request.Context(), target)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, list)
}

func (h *AttendanceHandler) handleAttendanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDeductionAmount):
		response.BadRequest(c, 17001, "扣分值必须大于 0")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 17002, "用户不存在")
	case errors.Is(err, pkgerrors.ErrLockTimeout):
		response.Error(c, http.StatusTooManyRequests, 17003, "资源繁忙，请稍后重试")
	default:
		response.InternalError(c)
	}
}
