package handler

import (
	"github.com/gin-gonic/gin"

	"ruralwork/internal/dto"
	"ruralwork/internal/service"
	"ruralwork/pkg/response"
)

// StatisticsHandler 统计看板 HTTP 处理器
type StatisticsHandler struct {
	statsSvc service.StatisticsService
}

// NewStatisticsHandler 创建 StatisticsHandler
func NewStatisticsHandler(statsSvc service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statsSvc: statsSvc}
}

// Dashboard 管理员看板；evaluation_year 为空时统计全部年度
// GET /api/v1/statistics
func (h *StatisticsHandler) Dashboard(c *gin.Context) {
	var req dto.StatisticsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.statsSvc.Dashboard(c.Request.Context(), req.EvaluationYear)
	if err != nil {
		response.ServiceUnavailable(c, 19001, "统计数据加载失败")
		return
	}

	response.OK(c, result)
}
