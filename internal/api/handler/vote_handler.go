package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"ruralwork/internal/dto"
	"ruralwork/internal/model"
	"ruralwork/internal/service"
	"ruralwork/pkg/response"
)

// VoteHandler 投票模块 HTTP 处理器
type VoteHandler struct {
	voteSvc service.VoteService
}

// NewVoteHandler 创建 VoteHandler
func NewVoteHandler(voteSvc service.VoteService) *VoteHandler {
	return &VoteHandler{voteSvc: voteSvc}
}

// ────────────────────── 管理端 ──────────────────────

// CreateVote 新建投票活动
// POST /api/v1/votes
func (h *VoteHandler) CreateVote(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	vote, err := h.voteSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleVoteError(c, err)
		return
	}

	response.Created(c, vote)
}

// UpdateVote 修改草稿投票
// PUT /api/v1/votes/:id
func (h *VoteHandler) UpdateVote(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	vote, err := h.voteSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleVoteError(c, err)
		return
	}

	response.OK(c, vote)
}

// UpdateVoteStatus 发布 / 结束投票
// PUT /api/v1/votes/:id/status
func (h *VoteHandler) UpdateVoteStatus(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateVoteStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.voteSvc.UpdateStatus(c.Request.Context(), c.Param("id"), model.VoteStatus(req.Status), callerID); err != nil {
		h.handleVoteError(c, err)
		return
	}

	response.OK(c, nil)
}

// DeleteVote 删除投票及其投票记录
// DELETE /api/v1/votes/:id
func (h *VoteHandler) DeleteVote(c *gin.Context) {
	if err := h.voteSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleVoteError(c, err)
		return
	}
	response.OK(c, nil)
}

// ────────────────────── 用户端 ──────────────────────

// ListVotes 投票列表；非管理员只能看到进行中与已结束的投票
// GET /api/v1/votes
func (h *VoteHandler) ListVotes(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.VoteListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.voteSvc.List(c.Request.Context(), &req, callerID, role)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetVote 投票详情（含本人是否已投）
// GET /api/v1/votes/:id
func (h *VoteHandler) GetVote(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	vote, err := h.voteSvc.Get(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		h.handleVoteError(c, err)
		return
	}

	response.OK(c, vote)
}

// CastVote 投票
// POST /api/v1/votes/:id/cast
func (h *VoteHandler) CastVote(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.voteSvc.Cast(c.Request.Context(), c.Param("id"), callerID, &req); err != nil {
		h.handleVoteError(c, err)
		return
	}

	response.OK(c, nil)
}

// VoteResults 投票结果
// GET /api/v1/votes/:id/results
func (h *VoteHandler) VoteResults(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	result, err := h.voteSvc.Results(c.Request.Context(), c.Param("id"), callerID, role)
	if err != nil {
		h.handleVoteError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *VoteHandler) handleVoteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrVoteNotFound):
		response.NotFound(c, 14001, "投票活动不存在")
	case errors.Is(err, service.ErrInvalidVoteWindow):
		response.BadRequest(c, 14002, "结束时间必须晚于开始时间")
	case errors.Is(err, service.ErrInvalidMaxVotes):
		response.BadRequest(c, 14003, "每人可投票数须在 1 到候选人数之间")
	case errors.Is(err, service.ErrDuplicateCandidate):
		response.BadRequest(c, 14004, "候选人重复")
	case errors.Is(err, service.ErrVoteNotEditable):
		response.Conflict(c, 14005, "仅草稿状态的投票可以修改")
	case errors.Is(err, service.ErrInvalidVoteTransition):
		response.Conflict(c, 14006, "投票状态不允许该变更")
	case errors.Is(err, service.ErrVoteNotOpen):
		response.BadRequest(c, 14007, "投票未开始或已结束")
	case errors.Is(err, service.ErrTooManyCandidates):
		response.BadRequest(c, 14008, "选择的候选人超过上限")
	case errors.Is(err, service.ErrUnknownCandidate):
		response.BadRequest(c, 14009, "候选人不在名单内")
	case errors.Is(err, service.ErrAlreadyVoted):
		response.Conflict(c, 14010, "您已参与过本次投票")
	case errors.Is(err, service.ErrResultsHidden):
		response.Forbidden(c, 14011, "投票结果暂不公开")
	default:
		response.InternalError(c)
	}
}
