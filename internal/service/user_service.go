package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"ruralwork/config"
	"ruralwork/internal/dto"
	"ruralwork/internal/model"
	"ruralwork/internal/repository"
)

// ── 用户模块业务错误 ──

var (
	ErrUserSelfRoleChange = errors.New("不能修改自己的角色")
	ErrUserSelfDeactivate = errors.New("不能停用自己的账号")
	ErrUserSelfDelete     = errors.New("不能删除自己")
	ErrInvalidPhone       = errors.New("手机号格式不正确")
	ErrPhoneExists        = errors.New("手机号已被使用")
	ErrInvalidRole        = errors.New("角色不存在")
)

var phonePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)

// ValidPhone 校验大陆手机号
func ValidPhone(phone string) bool { return phonePattern.MatchString(phone) }

// UserService 用户业务接口
type UserService interface {
	Create(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.CreateUserResponse, error)
	GetByID(ctx context.Context, id string) (*dto.UserResponse, error)
	List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateUserRequest, callerID string) (*dto.UserResponse, error)
	Delete(ctx context.Context, id, callerID string) error
	ResetPassword(ctx context.Context, id, callerID string) (*dto.ResetPasswordResponse, error)
	ParseImportFile(reader io.Reader) ([]ImportUserRow, error)
	ImportUsers(ctx context.Context, rows []ImportUserRow, callerID string) (*dto.ImportUserResponse, error)
	RoleCounts(ctx context.Context) ([]dto.RoleCountResponse, error)
}

// ImportUserRow Excel 导入解析后的单行数据
type ImportUserRow struct {
	Row        int
	Name       string
	Phone      string
	Department string
	Position   string
	Role       string
}

type userService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logs   SystemLogService
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(cfg *config.Config, repo *repository.Repository, logs SystemLogService, logger *zap.Logger) UserService {
	return &userService{cfg: cfg, repo: repo, logs: logs, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.CreateUserResponse, error) {
	if !ValidPhone(req.Phone) {
		return nil, ErrInvalidPhone
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return nil, ErrInvalidRole
	}

	if _, err := s.repo.User.GetByPhone(ctx, req.Phone); err == nil {
		return nil, ErrPhoneExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.Auth.DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Name:         req.Name,
		Department:   req.Department,
		Position:     req.Position,
		Role:         role,
		TotalScore:   s.cfg.Attendance.BaseScore,
		IsActive:     true,
	}
	user.CreatedBy = strPtr(callerID)

	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrPhoneExists
		}
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	s.logs.Record(ctx, LogEntry{
		UserID:   callerID,
		Action:   ActionUserCreate,
		Resource: "user",
		Metadata: map[string]any{"target_id": user.ID, "phone": user.Phone, "role": string(role)},
	})

	return &dto.CreateUserResponse{
		User:            *toUserResponse(user),
		InitialPassword: s.cfg.Auth.DefaultPassword,
	}, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *userService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toUserResponse(user), nil
}

// ────────────────────── List ──────────────────────

func (s *userService) List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	q := repository.Query{Offset: req.GetOffset(), Limit: req.GetPageSize()}
	if req.Department != "" {
		q = q.Where("department", req.Department)
	}
	if req.Role != "" {
		q = q.Where("role", req.Role)
	}
	if req.IsActive != nil {
		q = q.Where("is_active", *req.IsActive)
	}

	users, total, err := s.repo.User.Find(ctx, q)
	if err != nil {
		s.logger.Error("列出用户失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, *toUserResponse(&users[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *userService) Update(ctx context.Context, id string, req *dto.UpdateUserRequest, callerID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil && *req.Phone != user.Phone {
		if !ValidPhone(*req.Phone) {
			return nil, ErrInvalidPhone
		}
		existing, err := s.repo.User.GetByPhone(ctx, *req.Phone)
		if err == nil && existing.ID != id {
			return nil, ErrPhoneExists
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Phone = *req.Phone
	}
	if req.Department != nil {
		user.Department = *req.Department
	}
	if req.Position != nil {
		user.Position = *req.Position
	}
	if req.Role != nil {
		role, err := model.ParseRole(*req.Role)
		if err != nil {
			return nil, ErrInvalidRole
		}
		if role != user.Role && id == callerID {
			return nil, ErrUserSelfRoleChange
		}
		user.Role = role
	}
	if req.IsActive != nil {
		if !*req.IsActive && id == callerID {
			return nil, ErrUserSelfDeactivate
		}
		user.IsActive = *req.IsActive
	}

	user.UpdatedBy = strPtr(callerID)

	if err := s.repo.User.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrPhoneExists
		}
		s.logger.Error("更新用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.logs.Record(ctx, LogEntry{
		UserID:   callerID,
		Action:   ActionUserUpdate,
		Resource: "user",
		Metadata: map[string]any{"target_id": id},
	})

	return toUserResponse(user), nil
}

// ────────────────────── Delete ──────────────────────

func (s *userService) Delete(ctx context.Context, id, callerID string) error {
	if id == callerID {
		return ErrUserSelfDelete
	}

	if err := s.repo.User.Delete(ctx, id, callerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("删除用户失败", zap.String("id", id), zap.Error(err))
		return err
	}

	s.logs.Record(ctx, LogEntry{
		UserID:   callerID,
		Action:   ActionUserDelete,
		Resource: "user",
		Metadata: map[string]any{"target_id": id},
	})
	return nil
}

// ────────────────────── ResetPassword ──────────────────────

// ResetPassword 恢复为系统默认密码
func (s *userService) ResetPassword(ctx context.Context, id, callerID string) (*dto.ResetPasswordResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.Auth.DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	if err := s.repo.User.UpdatePassword(ctx, id, string(hash)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("重置密码失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.logs.Record(ctx, LogEntry{
		UserID:   callerID,
		Action:   ActionUserResetPwd,
		Resource: "user",
		Metadata: map[string]any{"target_id": id},
	})

	return &dto.ResetPasswordResponse{Password: s.cfg.Auth.DefaultPassword}, nil
}

// ────────────────────── ParseImportFile ──────────────────────

const maxImportRows = 1000

var (
	ErrImportNoData      = errors.New("Excel文件无数据行（第一行为表头）")
	ErrImportTooManyRows = fmt.Errorf("数据行数超过上限 %d 行", maxImportRows)
	ErrImportBadHeader   = errors.New("Excel表头缺少必要列（姓名/手机号）")
)

// ParseImportFile 解析导入 Excel 文件，返回解析后的行数据
func (s *userService) ParseImportFile(reader io.Reader) ([]ImportUserRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("无法解析Excel文件: %w", err)
	}
	defer f.Close()

	excelRows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}
	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	// 表头列序不固定
	colIndex := parseHeaderIndex(excelRows[0])
	if colIndex["name"] < 0 || colIndex["phone"] < 0 {
		return nil, ErrImportBadHeader
	}

	cell := func(row []string, key string) string {
		idx := colIndex[key]
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var rows []ImportUserRow
	for i := 1; i < len(excelRows); i++ {
		row := excelRows[i]
		item := ImportUserRow{
			Row:        i + 1,
			Name:       cell(row, "name"),
			Phone:      cell(row, "phone"),
			Department: cell(row, "department"),
			Position:   cell(row, "position"),
			Role:       cell(row, "role"),
		}

		// 跳过全空行
		if item.Name == "" && item.Phone == "" && item.Department == "" && item.Position == "" && item.Role == "" {
			continue
		}
		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}
	return rows, nil
}

// parseHeaderIndex 解析 Excel 表头，返回列名 -> 列索引映射
func parseHeaderIndex(header []string) map[string]int {
	idx := map[string]int{
		"name":       -1,
		"phone":      -1,
		"department": -1,
		"position":   -1,
		"role":       -1,
	}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "姓名", "name":
			idx["name"] = i
		case "手机号", "phone":
			idx["phone"] = i
		case "部门", "department":
			idx["department"] = i
		case "职位", "position":
			idx["position"] = i
		case "角色", "role":
			idx["role"] = i
		}
	}
	return idx
}

// parseImportRole 角色列支持编码或中文名称，空值视为镇干部
func parseImportRole(raw string) (model.Role, error) {
	if raw == "" {
		return model.RoleTownStaff, nil
	}
	for _, r := range model.Roles {
		if raw == r.Label() {
			return r, nil
		}
	}
	return model.ParseRole(raw)
}

// ────────────────────── ImportUsers ──────────────────────

func (s *userService) ImportUsers(ctx context.Context, rows []ImportUserRow, callerID string) (*dto.ImportUserResponse, error) {
	resp := &dto.ImportUserResponse{Total: len(rows)}
	fail := func(row int, reason string) {
		resp.Failed++
		resp.Errors = append(resp.Errors, dto.ImportUserError{Row: row, Reason: reason})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.Auth.DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	// 第一阶段：数据预校验（不接触数据库写操作）
	var valid []*model.User
	seen := make(map[string]int, len(rows))
	for _, row := range rows {
		if row.Name == "" || row.Phone == "" {
			fail(row.Row, "必填字段为空")
			continue
		}
		if !ValidPhone(row.Phone) {
			fail(row.Row, fmt.Sprintf("手机号格式不正确: %s", row.Phone))
			continue
		}
		if first, ok := seen[row.Phone]; ok {
			fail(row.Row, fmt.Sprintf("手机号与第 %d 行重复", first))
			continue
		}
		role, err := parseImportRole(row.Role)
		if err != nil {
			fail(row.Row, fmt.Sprintf("角色不存在: %s", row.Role))
			continue
		}
		if _, err := s.repo.User.GetByPhone(ctx, row.Phone); err == nil {
			fail(row.Row, fmt.Sprintf("手机号已存在: %s", row.Phone))
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		seen[row.Phone] = row.Row
		u := &model.User{
			Phone:        row.Phone,
			PasswordHash: string(hash),
			Name:         row.Name,
			Department:   row.Department,
			Position:     row.Position,
			Role:         role,
			TotalScore:   s.cfg.Attendance.BaseScore,
			IsActive:     true,
		}
		u.CreatedBy = strPtr(callerID)
		valid = append(valid, u)
	}

	// 第二阶段：事务内批量写入，任一失败全部回滚
	if len(valid) > 0 {
		err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
			for _, u := range valid {
				if err := tx.User.Create(ctx, u); err != nil {
					return fmt.Errorf("写入用户 %s 失败，已回滚全部导入: %w", u.Phone, err)
				}
			}
			return nil
		})
		if err != nil {
			s.logger.Error("导入用户失败", zap.Error(err))
			return nil, err
		}
		resp.Success = len(valid)
	}

	s.logs.Record(ctx, LogEntry{
		UserID:   callerID,
		Action:   ActionUserImport,
		Resource: "user",
		Metadata: map[string]any{"total": resp.Total, "success": resp.Success, "failed": resp.Failed},
	})

	return resp, nil
}

// ────────────────────── RoleCounts ──────────────────────

func (s *userService) RoleCounts(ctx context.Context) ([]dto.RoleCountResponse, error) {
	counts, err := s.repo.User.CountByRole(ctx)
	if err != nil {
		s.logger.Error("统计角色人数失败", zap.Error(err))
		return nil, err
	}

	byRole := make(map[model.Role]int64, len(counts))
	for _, c := range counts {
		byRole[c.Role] = c.Count
	}

	// 固定输出全部角色，缺失的计 0
	result := make([]dto.RoleCountResponse, 0, len(model.Roles))
	for _, r := range model.Roles {
		result = append(result, dto.RoleCountResponse{
			Role:      string(r),
			RoleLabel: r.Label(),
			Count:     byRole[r],
		})
	}
	return result, nil
}

// ── 内部辅助方法 ──

// toUserResponse 将 model.User 转换为 dto.UserResponse
func toUserResponse(user *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:         user.ID,
		Name:       user.Name,
		Phone:      user.Phone,
		Department: user.Department,
		Position:   user.Position,
		Role:       string(user.Role),
		RoleLabel:  user.Role.Label(),
		TotalScore: user.TotalScore,
		IsActive:   user.IsActive,
		CreatedAt:  formatTime(user.CreatedAt),
	}
}
