package handler

import (
	"github.com/gin-gonic/gin"

	"ruralwork/internal/dto"
	"ruralwork/internal/service"
	"ruralwork/pkg/response"
)

// SystemLogHandler 审计日志 HTTP 处理器
type SystemLogHandler struct {
	logSvc service.SystemLogService
}

// NewSystemLogHandler 创建 SystemLogHandler
func NewSystemLogHandler(logSvc service.SystemLogService) *SystemLogHandler {
	return &SystemLogHandler{logSvc: logSvc}
}

// ListLogs 审计日志列表（管理员）
// GET /api/v1/system-logs
func (h *SystemLogHandler) ListLogs(c *gin.Context) {
	var req dto.SystemLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	logs, total, err := h.logSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, logs, total, req.GetPage(), req.GetPageSize())
}
