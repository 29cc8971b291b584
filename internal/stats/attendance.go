package stats

import (
	"math"
	"sort"

	"ruralwork/internal/model"
)

// ApplyLeaveDeduction 扣除请假天数后的考勤分，最低为 0
// 天数非正或非数值时不扣分
func ApplyLeaveDeduction(current, days float64) float64 {
	if math.IsNaN(days) || days <= 0 {
		return math.Max(0, current)
	}
	return math.Max(0, current-days)
}

// ApplyLeaves 依次应用多条请假，只计已批准的事假
func ApplyLeaves(current float64, leaves []model.LeaveRequest) float64 {
	score := current
	for i := range leaves {
		if leaves[i].Deducts() {
			score = ApplyLeaveDeduction(score, leaves[i].DaysCount)
		}
	}
	return score
}

// AttendanceScore 考勤得分榜条目
type AttendanceScore struct {
	Rank               int     `json:"rank"`
	UserID             string  `json:"user_id"`
	Name               string  `json:"name"`
	Department         string  `json:"department"`
	Position           string  `json:"position"`
	Phone              string  `json:"phone"`
	CurrentScore       float64 `json:"current_score"`
	TotalDeduction     float64 `json:"total_deduction"`
	PersonalLeaveCount int     `json:"personal_leave_count"`
	PersonalLeaveDays  float64 `json:"personal_leave_days"`
	ScorePercent       int     `json:"score_percent"`
}

// AttendanceBoard 非管理员用户的考勤得分榜，按当前分降序稳定排序
// 当前分取用户表中的 total_score，扣分明细来自已批准的事假
func AttendanceBoard(users []model.User, leaves []model.LeaveRequest) []AttendanceScore {
	type agg struct {
		deduction float64
		days      float64
		count     int
	}
	byUser := make(map[string]*agg)
	for i := range leaves {
		l := &leaves[i]
		if !l.Deducts() {
			continue
		}
		a, ok := byUser[l.UserID]
		if !ok {
			a = &agg{}
			byUser[l.UserID] = a
		}
		d := l.DaysCount
		if l.ScoreDeduction != nil {
			d = *l.ScoreDeduction
		}
		a.deduction += d
		a.days += l.DaysCount
		a.count++
	}

	out := make([]AttendanceScore, 0, len(users))
	for i := range users {
		u := &users[i]
		if u.Role.IsAdmin() {
			continue
		}
		s := AttendanceScore{
			UserID:       u.ID,
			Name:         u.Name,
			Department:   u.Department,
			Position:     u.Position,
			Phone:        u.Phone,
			CurrentScore: u.TotalScore,
			ScorePercent: int(math.Round(u.TotalScore)),
		}
		if a, ok := byUser[u.ID]; ok {
			s.TotalDeduction = a.deduction
			s.PersonalLeaveDays = a.days
			s.PersonalLeaveCount = a.count
		}
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CurrentScore > out[j].CurrentScore
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// LowScoreThreshold 低于该分数列入关注名单
const LowScoreThreshold = 95

// AttendanceOverview 考勤总览
type AttendanceOverview struct {
	UserCount      int               `json:"user_count"`
	AverageScore   float64           `json:"average_score"`
	FullScoreCount int               `json:"full_score_count"`
	DeductedCount  int               `json:"deducted_count"`
	TotalDeduction float64           `json:"total_deduction"`
	TopScorers     []AttendanceScore `json:"top_scorers"`
	LowScorers     []AttendanceScore `json:"low_scorers"`
}

// AttendanceSummary 基于已排序的得分榜生成总览；fullScore 为满分基准
func AttendanceSummary(board []AttendanceScore, fullScore float64) AttendanceOverview {
	o := AttendanceOverview{UserCount: len(board)}
	var sum float64
	var low []AttendanceScore
	for _, s := range board {
		sum += s.CurrentScore
		o.TotalDeduction += s.TotalDeduction
		if s.CurrentScore >= fullScore {
			o.FullScoreCount++
		} else {
			o.DeductedCount++
		}
		if s.CurrentScore < LowScoreThreshold {
			low = append(low, s)
		}
	}
	o.AverageScore = Round1(ratio(sum, float64(len(board))))
	o.TotalDeduction = Round1(o.TotalDeduction)

	o.TopScorers = board[:min(5, len(board))]
	if len(low) > 5 {
		low = low[len(low)-5:]
	}
	o.LowScorers = low
	return o
}

// LeaveOverview 请假统计
type LeaveOverview struct {
	Total        int                     `json:"total"`
	Pending      int                     `json:"pending"`
	Approved     int                     `json:"approved"`
	Rejected     int                     `json:"rejected"`
	ApprovedDays float64                 `json:"approved_days"`
	ByType       map[model.LeaveType]int `json:"by_type"`
}

// LeaveStats 汇总请假申请
func LeaveStats(leaves []model.LeaveRequest) LeaveOverview {
	o := LeaveOverview{Total: len(leaves), ByType: make(map[model.LeaveType]int)}
	for i := range leaves {
		l := &leaves[i]
		o.ByType[l.LeaveType]++
		switch l.Status {
		case model.LeaveStatusPending:
			o.Pending++
		case model.LeaveStatusApproved:
			o.Approved++
			o.ApprovedDays += l.DaysCount
		case model.LeaveStatusRejected:
			o.Rejected++
		}
	}
	return o
}
