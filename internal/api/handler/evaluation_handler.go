package handler

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ruralwork/internal/dto"
	"ruralwork/internal/service"
	"ruralwork/pkg/response"
)

// EvaluationHandler 年度互评 HTTP 处理器
type EvaluationHandler struct {
	evalSvc service.EvaluationService
}

// NewEvaluationHandler 创建 EvaluationHandler
func NewEvaluationHandler(evalSvc service.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{evalSvc: evalSvc}
}

// SaveDraft 保存评分草稿
// POST /api/v1/evaluations/draft
func (h *EvaluationHandler) SaveDraft(c *gin.Context) {
	h.save(c, h.evalSvc.SaveDraft)
}

// Submit 提交评分
// POST /api/v1/evaluations
func (h *EvaluationHandler) Submit(c *gin.Context) {
	h.save(c, h.evalSvc.Submit)
}

func (h *EvaluationHandler) save(c *gin.Context, fn func(context.Context, string, *dto.SaveEvaluationRequest) (*dto.EvaluationResponse, error)) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SaveEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := fn(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleEvaluationError(c, err)
		return
	}

	response.OK(c, result)
}

// MyEvaluations 我的互评及进度，默认当前年度
// GET /api/v1/evaluations/mine?evaluation_year=2025
func (h *EvaluationHandler) MyEvaluations(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	year, ok := bindYear(c)
	if !ok {
		return
	}

	result, err := h.evalSvc.MyEvaluations(c.Request.Context(), userID, year)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// ListEvaluations 评分记录列表（管理员）
// GET /api/v1/evaluations
func (h *EvaluationHandler) ListEvaluations(c *gin.Context) {
	var req dto.EvaluationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.evalSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetEvaluation 评分详情（管理员）
// GET /api/v1/evaluations/:id
func (h *EvaluationHandler) GetEvaluation(c *gin.Context) {
	result, err := h.evalSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleEvaluationError(c, err)
		return
	}
	response.OK(c, result)
}

// Report 年度汇总排名（管理员），默认当前年度
// GET /api/v1/evaluations/report?evaluation_year=2025
func (h *EvaluationHandler) Report(c *gin.Context) {
	year, ok := bindYear(c)
	if !ok {
		return
	}

	report, err := h.evalSvc.Report(c.Request.Context(), year)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, report)
}

// bindYear 读取 evaluation_year，缺省为当前年度
func bindYear(c *gin.Context) (string, bool) {
	var q dto.StatisticsRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return "", false
	}
	if q.EvaluationYear == "" {
		return strconv.Itoa(time.Now().Year()), true
	}
	return q.EvaluationYear, true
}

func (h *EvaluationHandler) handleEvaluationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidScoreRange):
		response.BadRequest(c, 13001, "各维度评分必须在 0-20 之间")
	case errors.Is(err, service.ErrIncompleteScores):
		response.BadRequest(c, 13002, "提交前请完成全部五个维度的评分")
	case errors.Is(err, service.ErrSelfEvaluation):
		response.BadRequest(c, 13003, "不能给自己评分")
	case errors.Is(err, service.ErrEvaluateeNotFound):
		response.NotFound(c, 13004, "被评人不存在")
	case errors.Is(err, service.ErrEvaluateeIsAdmin):
		response.BadRequest(c, 13005, "系统管理员不参与互评")
	case errors.Is(err, service.ErrEvaluationCompleted):
		response.Conflict(c, 13006, "该评分已提交，不能再保存为草稿")
	case errors.Is(err, service.ErrEvaluationNotFound):
		response.NotFound(c, 13007, "评分记录不存在")
	default:
		response.InternalError(c)
	}
}
