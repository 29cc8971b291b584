package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"ruralwork/internal/dto"
	"ruralwork/internal/model"
	"ruralwork/internal/service"
	"ruralwork/pkg/response"
)

// LeaveHandler 请假模块 HTTP 处理器
type LeaveHandler struct {
	leaveSvc service.LeaveService
}

// NewLeaveHandler 创建 LeaveHandler
func NewLeaveHandler(leaveSvc service.LeaveService) *LeaveHandler {
	return &LeaveHandler{leaveSvc: leaveSvc}
}

// SubmitLeave 提交请假申请
// POST /api/v1/leaves
func (h *LeaveHandler) SubmitLeave(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	leave, err := h.leaveSvc.Submit(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleLeaveError(c, err)
		return
	}

	response.Created(c, leave)
}

// GetLeave 请假详情；非管理员只能查看本人申请
// GET /api/v1/leaves/:id
func (h *LeaveHandler) GetLeave(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	leave, err := h.leaveSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleLeaveError(c, err)
		return
	}
	if !role.Can(model.CapAdmin) && leave.UserID != userID {
		response.Forbidden(c, 10003, "权限不足")
		return
	}

	response.OK(c, leave)
}

// ListLeaves 请假列表；非管理员固定为本人
// GET /api/v1/leaves
func (h *LeaveHandler) ListLeaves(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.LeaveListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	if !role.Can(model.CapAdmin) {
		req.UserID = userID
	}

	list, total, err := h.leaveSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// ReviewLeave 审批请假（管理员）；事假通过时扣减考勤分
// PUT /api/v1/leaves/:id/review
func (h *LeaveHandler) ReviewLeave(c *gin.Context) {
	reviewerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ReviewLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.leaveSvc.Review(c.Request.Context(), c.Param("id"), reviewerID, &req)
	if err != nil {
		h.handleLeaveError(c, err)
		return
	}

	response.OK(c, result)
}

// LeaveStats 请假统计（管理员）
// GET /api/v1/leaves/stats
func (h *LeaveHandler) LeaveStats(c *gin.Context) {
	overview, err := h.leaveSvc.Stats(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, overview)
}

func (h *LeaveHandler) handleLeaveError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLeaveNotFound):
		response.NotFound(c, 15001, "请假申请不存在")
	case errors.Is(err, service.ErrInvalidLeaveType):
		response.BadRequest(c, 15002, "请假类型不正确")
	case errors.Is(err, service.ErrInvalidLeaveDates):
		response.BadRequest(c, 15003, "结束日期不能早于开始日期")
	case errors.Is(err, service.ErrLeaveAlreadyReviewed):
		response.Conflict(c, 15004, "该申请已审批")
	case errors.Is(err, service.ErrInvalidReviewStatus):
		response.BadRequest(c, 15005, "审批结果只能是通过或驳回")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 15006, "申请人不存在")
	default:
		response.InternalError(c)
	}
}
