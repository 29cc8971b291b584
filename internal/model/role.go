package model

import "fmt"

// Role 系统角色（封闭枚举）
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleTownStaff    Role = "town_staff"
	RoleStationStaff Role = "station_staff"
	RoleWorkTeam     Role = "work_team"
)

// Roles 全部角色，按界面展示顺序
var Roles = []Role{RoleAdmin, RoleTownStaff, RoleStationStaff, RoleWorkTeam}

var roleLabels = map[Role]string{
	RoleAdmin:        "系统管理员",
	RoleTownStaff:    "镇干部",
	RoleStationStaff: "站所人员",
	RoleWorkTeam:     "工作队",
}

// ParseRole 解析角色字符串，未知值返回错误
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := roleLabels[r]; !ok {
		return "", fmt.Errorf("未知角色: %q", s)
	}
	return r, nil
}

// Valid 是否为已知角色
func (r Role) Valid() bool {
	_, ok := roleLabels[r]
	return ok
}

// Label 中文名称
func (r Role) Label() string {
	if l, ok := roleLabels[r]; ok {
		return l
	}
	return string(r)
}

// IsAdmin 是否管理员
func (r Role) IsAdmin() bool { return r == RoleAdmin }

// Capability 功能权限
type Capability string

const (
	CapVote         Capability = "vote"
	CapEvaluate     Capability = "evaluate"
	CapLeave        Capability = "leave"
	CapTeamEvaluate Capability = "team_evaluate"
	CapAdmin        Capability = "admin"
)

// capabilities 角色 → 权限集合
var capabilities = map[Role]map[Capability]bool{
	RoleAdmin: {
		CapVote: true, CapEvaluate: true, CapLeave: true, CapTeamEvaluate: true, CapAdmin: true,
	},
	RoleTownStaff: {
		CapVote: true, CapEvaluate: true, CapLeave: true,
	},
	RoleStationStaff: {
		CapVote: true, CapEvaluate: true, CapLeave: true, CapTeamEvaluate: true,
	},
	RoleWorkTeam: {
		CapVote: true, CapEvaluate: true, CapLeave: true,
	},
}

// Can 判断角色是否具备某项权限；未知角色一律拒绝
func (r Role) Can(c Capability) bool {
	return capabilities[r][c]
}

// Capabilities 返回角色拥有的权限列表（稳定顺序）
func (r Role) Capabilities() []Capability {
	all := []Capability{CapVote, CapEvaluate, CapLeave, CapTeamEvaluate, CapAdmin}
	out := make([]Capability, 0, len(all))
	for _, c := range all {
		if r.Can(c) {
			out = append(out, c)
		}
	}
	return out
}
