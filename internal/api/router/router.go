package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ruralwork/config"
	"ruralwork/internal/api/handler"
	"ruralwork/internal/api/middleware"
	"ruralwork/internal/model"
	"ruralwork/pkg/jwt"
	"ruralwork/pkg/redis"
)

// 登录限流：每个 IP 每分钟 10 次
const (
	loginRateLimit  = 10
	loginRateWindow = time.Minute
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时不启用 Token 黑名单与登录限流
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	var (
		blacklist middleware.TokenBlacklist
		limiter   middleware.RateLimiter
	)
	if rdb != nil {
		blacklist = rdb
		limiter = rdb
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	admin := middleware.RequireCapability(model.CapAdmin)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(limiter, loginRateLimit, loginRateWindow), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, blacklist))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 用户管理
			users := authorized.Group("/users", admin)
			{
				users.GET("", h.User.ListUsers)
				users.GET("/role-counts", h.User.RoleCounts)
				users.POST("", h.User.CreateUser)
				users.POST("/import", h.User.ImportUsers)
				users.GET("/:id", h.User.GetUser)
				users.PUT("/:id", h.User.UpdateUser)
				users.DELETE("/:id", h.User.DeleteUser)
				users.POST("/:id/reset-password", h.User.ResetPassword)
			}

			// 年度互评
			evaluations := authorized.Group("/evaluations")
			{
				evaluate := middleware.RequireCapability(model.CapEvaluate)
				evaluations.GET("/mine", evaluate, h.Evaluation.MyEvaluations)
				evaluations.POST("/draft", evaluate, h.Evaluation.SaveDraft)
				evaluations.POST("", evaluate, h.Evaluation.Submit)
				evaluations.GET("/report", admin, h.Evaluation.Report)
				evaluations.GET("", admin, h.Evaluation.ListEvaluations)
				evaluations.GET("/:id", admin, h.Evaluation.GetEvaluation)
			}

			// 民主投票
			votes := authorized.Group("/votes", middleware.RequireCapability(model.CapVote))
			{
				votes.GET("", h.Vote.ListVotes)
				votes.GET("/:id", h.Vote.GetVote)
				votes.POST("/:id/cast", h.Vote.CastVote)
				votes.GET("/:id/results", h.Vote.VoteResults)
				votes.POST("", admin, h.Vote.CreateVote)
				votes.PUT("/:id", admin, h.Vote.UpdateVote)
				votes.PUT("/:id/status", admin, h.Vote.UpdateVoteStatus)
				votes.DELETE("/:id", admin, h.Vote.DeleteVote)
			}

			// 请假
			leaves := authorized.Group("/leaves", middleware.RequireCapability(model.CapLeave))
			{
				leaves.POST("", h.Leave.SubmitLeave)
				leaves.GET("", h.Leave.ListLeaves)
				leaves.GET("/stats", admin, h.Leave.LeaveStats)
				leaves.GET("/:id", h.Leave.GetLeave)
				leaves.PUT("/:id/review", admin, h.Leave.ReviewLeave)
			}

			// 考勤分
			attendance := authorized.Group("/attendance")
			{
				attendance.GET("/deductions", h.Attendance.ListDeductions)
				attendance.POST("/deductions", admin, h.Attendance.Deduct)
			}

			// 工作队评分
			teamEvaluate := middleware.RequireCapability(model.CapTeamEvaluate)
			teams := authorized.Group("/work-teams")
			{
				teams.GET("", teamEvaluate, h.TeamEvaluation.ListTeams)
				teams.POST("", admin, h.TeamEvaluation.CreateTeam)
				teams.PUT("/:id", admin, h.TeamEvaluation.UpdateTeam)
				teams.DELETE("/:id", admin, h.TeamEvaluation.DeleteTeam)
			}
			activities := authorized.Group("/team-activities", teamEvaluate)
			{
				activities.GET("", h.TeamEvaluation.ListActivities)
				activities.POST("/:id/evaluations", h.TeamEvaluation.Evaluate)
				activities.GET("/:id/evaluations/mine", h.TeamEvaluation.MyEvaluations)
				activities.GET("/:id/results", h.TeamEvaluation.Results)
				activities.POST("", admin, h.TeamEvaluation.CreateActivity)
				activities.PUT("/:id", admin, h.TeamEvaluation.UpdateActivity)
				activities.DELETE("/:id", admin, h.TeamEvaluation.DeleteActivity)
			}

			// 统计 / 导出 / 审计
			authorized.GET("/statistics", admin, h.Statistics.Dashboard)
			export := authorized.Group("/export", admin)
			{
				export.GET("/evaluations", h.Export.ExportEvaluations)
				export.GET("/attendance", h.Export.ExportAttendance)
			}
			authorized.GET("/system-logs", admin, h.SystemLog.ListLogs)
		}
	}

	return r
}
