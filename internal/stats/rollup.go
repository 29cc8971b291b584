package stats

import (
	"sort"

	"ruralwork/internal/model"
)

// DepartmentStat 部门汇总
type DepartmentStat struct {
	Rank             int             `json:"rank"`
	Department       string          `json:"department"`
	AverageScore     float64         `json:"average_score"`
	ParticipantCount int             `json:"participant_count"` // 获得过评分的不同被评人数
	EvaluationCount  int             `json:"evaluation_count"`
	MemberCount      int             `json:"member_count"` // 部门内非管理员总人数
	Averages         DimensionScores `json:"average_scores"`
}

type deptAccumulator struct {
	name      string
	evaluated map[string]struct{}
	sums      DimensionScores
	total     float64
	count     int
}

// DepartmentRollup 按被评人所在部门汇总已提交的互评记录
// 过滤规则与 Aggregate 相同；部门按平均分降序稳定排序，并列保持首次出现顺序
func DepartmentRollup(records []model.Evaluation, users []model.User) []DepartmentStat {
	dir := newDirectory(users)
	index := make(map[string]int)
	var accs []*deptAccumulator

	for i := range records {
		r := &records[i]
		u, ok := dir.subject(r)
		if !ok {
			continue
		}
		pos, seen := index[u.Department]
		if !seen {
			pos = len(accs)
			index[u.Department] = pos
			accs = append(accs, &deptAccumulator{name: u.Department, evaluated: make(map[string]struct{})})
		}
		a := accs[pos]
		s := ScoresOf(r)
		a.evaluated[u.ID] = struct{}{}
		a.sums.add(s)
		a.total += s.Sum()
		a.count++
	}

	members := make(map[string]int)
	for i := range users {
		if !users[i].Role.IsAdmin() {
			members[users[i].Department]++
		}
	}

	out := make([]DepartmentStat, len(accs))
	for i, a := range accs {
		out[i] = DepartmentStat{
			Department:       a.name,
			AverageScore:     Round1(ratio(a.total, float64(a.count))),
			ParticipantCount: len(a.evaluated),
			EvaluationCount:  a.count,
			MemberCount:      members[a.name],
			Averages:         a.sums.average(a.count),
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AverageScore > out[j].AverageScore
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// Bucket 分数段
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// 分数段下界，从高到低；低于最后一档的落入 "below 60"
var bucketFloors = [...]struct {
	label string
	min   float64
}{
	{"90-100", 90},
	{"80-89", 80},
	{"70-79", 70},
	{"60-69", 60},
}

const belowLabel = "below 60"

// BucketOf 返回分数所属分数段标签；区间左闭右开
func BucketOf(score float64) string {
	for _, b := range bucketFloors {
		if score >= b.min {
			return b.label
		}
	}
	return belowLabel
}

// ScoreDistribution 已提交记录按总分落入五个分数段，空段也保留
func ScoreDistribution(records []model.Evaluation) []Bucket {
	out := make([]Bucket, 0, len(bucketFloors)+1)
	pos := make(map[string]int, len(bucketFloors)+1)
	for _, b := range bucketFloors {
		pos[b.label] = len(out)
		out = append(out, Bucket{Label: b.label})
	}
	pos[belowLabel] = len(out)
	out = append(out, Bucket{Label: belowLabel})

	for i := range records {
		if !records[i].IsCompleted {
			continue
		}
		out[pos[BucketOf(RecordTotal(&records[i]))]].Count++
	}
	return out
}
