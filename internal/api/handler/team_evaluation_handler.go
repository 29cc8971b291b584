package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"ruralwork/internal/dto"
	"ruralwork/internal/service"
	"ruralwork/pkg/response"
)

// TeamEvaluationHandler 工作队评分 HTTP 处理器
type TeamEvaluationHandler struct {
	teamSvc service.TeamEvaluationService
}

// NewTeamEvaluationHandler 创建 TeamEvaluationHandler
func NewTeamEvaluationHandler(teamSvc service.TeamEvaluationService) *TeamEvaluationHandler {
	return &TeamEvaluationHandler{teamSvc: teamSvc}
}

// ────────────────────── 工作队 ──────────────────────

// ListTeams 工作队列表；active=true 时只返回启用的
// GET /api/v1/work-teams
func (h *TeamEvaluationHandler) ListTeams(c *gin.Context) {
	teams, err := h.teamSvc.ListTeams(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, teams)
}

// CreateTeam 新建工作队（管理员）
// POST /api/v1/work-teams
func (h *TeamEvaluationHandler) CreateTeam(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.WorkTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	team, err := h.teamSvc.CreateTeam(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.Created(c, team)
}

// UpdateTeam 修改工作队（管理员）
// PUT /api/v1/work-teams/:id
func (h *TeamEvaluationHandler) UpdateTeam(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.WorkTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	team, err := h.teamSvc.UpdateTeam(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.OK(c, team)
}

// DeleteTeam 删除工作队（管理员）
// DELETE /api/v1/work-teams/:id
func (h *TeamEvaluationHandler) DeleteTeam(c *gin.Context) {
	if err := h.teamSvc.DeleteTeam(c.Request.Context(), c.Param("id")); err != nil {
		h.handleTeamError(c, err)
		return
	}
	response.OK(c, nil)
}

// ────────────────────── 评分活动 ──────────────────────

// ListActivities 评分活动列表
// GET /api/v1/team-activities
func (h *TeamEvaluationHandler) ListActivities(c *gin.Context) {
	var req dto.ActivityListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.teamSvc.ListActivities(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// CreateActivity 新建评分活动（管理员）
// POST /api/v1/team-activities
func (h *TeamEvaluationHandler) CreateActivity(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	a, err := h.teamSvc.CreateActivity(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.Created(c, a)
}

// UpdateActivity 修改评分活动（管理员）
// PUT /api/v1/team-activities/:id
func (h *TeamEvaluationHandler) UpdateActivity(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	a, err := h.teamSvc.UpdateActivity(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.OK(c, a)
}

// DeleteActivity 删除评分活动及其评分（管理员）
// DELETE /api/v1/team-activities/:id
func (h *TeamEvaluationHandler) DeleteActivity(c *gin.Context) {
	if err := h.teamSvc.DeleteActivity(c.Request.Context(), c.Param("id")); err != nil {
		h.handleTeamError(c, err)
		return
	}
	response.OK(c, nil)
}

// ────────────────────── 评分 ──────────────────────

// Evaluate 对工作队评分，重复评分覆盖
// POST /api/v1/team-activities/:id/evaluations
func (h *TeamEvaluationHandler) Evaluate(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.TeamEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	e, err := h.teamSvc.Evaluate(c.Request.Context(), c.Param("id"), callerID, &req)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.OK(c, e)
}

// MyEvaluations 本人在该活动中的评分
// GET /api/v1/team-activities/:id/evaluations/mine
func (h *TeamEvaluationHandler) MyEvaluations(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.teamSvc.MyEvaluations(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.OK(c, list)
}

// Results 活动评分排名
// GET /api/v1/team-activities/:id/results
func (h *TeamEvaluationHandler) Results(c *gin.Context) {
	result, err := h.teamSvc.Results(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleTeamError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *TeamEvaluationHandler) handleTeamError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTeamNotFound):
		response.NotFound(c, 18001, "工作队不存在")
	case errors.Is(err, service.ErrTeamInactive):
		response.BadRequest(c, 18002, "工作队已停用")
	case errors.Is(err, service.ErrActivityNotFound):
		response.NotFound(c, 18003, "评分活动不存在")
	case errors.Is(err, service.ErrActivityNotActive):
		response.BadRequest(c, 18004, "评分活动未开放")
	case errors.Is(err, service.ErrInvalidActivityWindow):
		response.BadRequest(c, 18005, "活动结束时间必须晚于开始时间")
	case errors.Is(err, service.ErrInvalidScoreRange):
		response.BadRequest(c, 18006, "各维度评分必须在 0-20 之间")
	default:
		response.InternalError(c)
	}
}
