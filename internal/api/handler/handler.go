package handler

import "ruralwork/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth           *AuthHandler
	User           *UserHandler
	Evaluation     *EvaluationHandler
	Vote           *VoteHandler
	Leave          *LeaveHandler
	Attendance     *AttendanceHandler
	TeamEvaluation *TeamEvaluationHandler
	Statistics     *StatisticsHandler
	Export         *ExportHandler
	SystemLog      *SystemLogHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, secureCookie bool) *Handler {
	return &Handler{
		Auth:           NewAuthHandler(svc.Auth, secureCookie),
		User:           NewUserHandler(svc.User),
		Evaluation:     NewEvaluationHandler(svc.Evaluation),
		Vote:           NewVoteHandler(svc.Vote),
		Leave:          NewLeaveHandler(svc.Leave),
		Attendance:     NewAttendanceHandler(svc.Attendance),
		TeamEvaluation: NewTeamEvaluationHandler(svc.TeamEvaluation),
		Statistics:     NewStatisticsHandler(svc.Statistics),
		Export:         NewExportHandler(svc.Export),
		SystemLog:      NewSystemLogHandler(svc.SystemLog),
	}
}
