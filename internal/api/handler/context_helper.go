package handler

import (
	"github.com/gin-gonic/gin"

	"ruralwork/internal/model"
	"ruralwork/pkg/jwt"
	"ruralwork/pkg/response"
)

// 中间件写入 gin.Context 的键
const (
	CtxUserID     = "user_id"
	CtxRole       = "role"
	CtxDepartment = "department"
	CtxClaims     = "claims"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	s := c.GetString(CtxUserID)
	if s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetRole 从 Gin 上下文中安全提取角色。
func MustGetRole(c *gin.Context) (model.Role, bool) {
	role, err := model.ParseRole(c.GetString(CtxRole))
	if err != nil {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return role, true
}

// MustGetClaims 提取当前 Access Token 的声明，登出时用于加入黑名单。
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(CtxClaims)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return claims, true
}
