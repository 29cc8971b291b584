package dto

// ── 用户模块 DTO ──

// CreateUserRequest 新建用户请求（初始密码为系统默认密码）
type CreateUserRequest struct {
	Name       string `json:"name"       binding:"required,min=2,max=20"`
	Phone      string `json:"phone"      binding:"required"`
	Department string `json:"department" binding:"omitempty,max=100"`
	Position   string `json:"position"   binding:"omitempty,max=100"`
	Role       string `json:"role"       binding:"required,oneof=admin town_staff station_staff work_team"`
}

// CreateUserResponse 新建用户响应
type CreateUserResponse struct {
	User            UserResponse `json:"user"`
	InitialPassword string       `json:"initial_password"`
}

// UserListRequest 用户列表查询参数（等值过滤）
type UserListRequest struct {
	PaginationRequest
	Department string `form:"department" binding:"omitempty,max=100"`
	Role       string `form:"role"       binding:"omitempty,oneof=admin town_staff station_staff work_team"`
	IsActive   *bool  `form:"is_active"`
}

// UpdateUserRequest 更新用户信息请求（仅更新非 nil 字段）
type UpdateUserRequest struct {
	Name       *string `json:"name"       binding:"omitempty,min=2,max=20"`
	Phone      *string `json:"phone"`
	Department *string `json:"department" binding:"omitempty,max=100"`
	Position   *string `json:"position"   binding:"omitempty,max=100"`
	Role       *string `json:"role"       binding:"omitempty,oneof=admin town_staff station_staff work_team"`
	IsActive   *bool   `json:"is_active"`
}

// ResetPasswordResponse 重置密码响应
type ResetPasswordResponse struct {
	Password string `json:"password"`
}

// ImportUserResponse 批量导入用户响应
type ImportUserResponse struct {
	Total   int               `json:"total"`
	Success int               `json:"success"`
	Failed  int               `json:"failed"`
	Errors  []ImportUserError `json:"errors,omitempty"`
}

// ImportUserError 导入错误详情
type ImportUserError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// RoleCountResponse 各角色人数
type RoleCountResponse struct {
	Role      string `json:"role"`
	RoleLabel string `json:"role_label"`
	Count     int64  `json:"count"`
}
