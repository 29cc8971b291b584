package stats

import (
	"math"
	"sort"

	"ruralwork/internal/model"
)

// DimensionScores 五个维度（德 能 勤 绩 廉）的分值
type DimensionScores struct {
	De   float64 `json:"de"`
	Neng float64 `json:"neng"`
	Qin  float64 `json:"qin"`
	Ji   float64 `json:"ji"`
	Lian float64 `json:"lian"`
}

// DimensionLabels 维度中文名，顺序与 Values 一致
var DimensionLabels = [5]string{"德", "能", "勤", "绩", "廉"}

// Sum 五维之和
func (d DimensionScores) Sum() float64 {
	return d.De + d.Neng + d.Qin + d.Ji + d.Lian
}

// Values 按 德 能 勤 绩 廉 顺序返回
func (d DimensionScores) Values() [5]float64 {
	return [5]float64{d.De, d.Neng, d.Qin, d.Ji, d.Lian}
}

func (d *DimensionScores) add(o DimensionScores) {
	d.De += o.De
	d.Neng += o.Neng
	d.Qin += o.Qin
	d.Ji += o.Ji
	d.Lian += o.Lian
}

// average 各维度均值（一位小数），count 为 0 时全为 0
func (d DimensionScores) average(count int) DimensionScores {
	n := float64(count)
	return DimensionScores{
		De:   Round1(ratio(d.De, n)),
		Neng: Round1(ratio(d.Neng, n)),
		Qin:  Round1(ratio(d.Qin, n)),
		Ji:   Round1(ratio(d.Ji, n)),
		Lian: Round1(ratio(d.Lian, n)),
	}
}

// sanitize 越界或非数值的维度分按 0 计
func sanitize(v float64) float64 {
	if math.IsNaN(v) || v < 0 || v > model.MaxDimensionScore {
		return 0
	}
	return v
}

// ScoresOf 取一条互评记录的五维分值（已清洗）
func ScoresOf(e *model.Evaluation) DimensionScores {
	return DimensionScores{
		De:   sanitize(e.ScoreDe),
		Neng: sanitize(e.ScoreNeng),
		Qin:  sanitize(e.ScoreQin),
		Ji:   sanitize(e.ScoreJi),
		Lian: sanitize(e.ScoreLian),
	}
}

// RecordTotal 由五维重新求和得到的记录总分，不采信存储的 total_score
func RecordTotal(e *model.Evaluation) float64 {
	return ScoresOf(e).Sum()
}

// Summary 单个被评人的年度汇总
type Summary struct {
	Rank            int             `json:"rank"`
	UserID          string          `json:"user_id"`
	Name            string          `json:"name"`
	Department      string          `json:"department"`
	Position        string          `json:"position"`
	Phone           string          `json:"phone"`
	Averages        DimensionScores `json:"average_scores"`
	TotalAverage    float64         `json:"total_average"`
	EvaluationCount int             `json:"evaluation_count"`
}

// directory 用户 ID → 用户
type directory map[string]*model.User

func newDirectory(users []model.User) directory {
	dir := make(directory, len(users))
	for i := range users {
		dir[users[i].ID] = &users[i]
	}
	return dir
}

// subject 返回可参与汇总的被评人；草稿、缺失用户、管理员均排除
func (d directory) subject(e *model.Evaluation) (*model.User, bool) {
	if !e.IsCompleted {
		return nil, false
	}
	u, ok := d[e.EvaluateeID]
	if !ok || u.Role.IsAdmin() {
		return nil, false
	}
	return u, true
}

type accumulator struct {
	user  *model.User
	sums  DimensionScores
	total float64
	count int
}

func (a *accumulator) summary() Summary {
	return Summary{
		UserID:          a.user.ID,
		Name:            a.user.Name,
		Department:      a.user.Department,
		Position:        a.user.Position,
		Phone:           a.user.Phone,
		Averages:        a.sums.average(a.count),
		TotalAverage:    Round1(ratio(a.total, float64(a.count))),
		EvaluationCount: a.count,
	}
}

// summarize 按被评人首次出现的顺序生成汇总
func summarize(records []model.Evaluation, users []model.User) []Summary {
	dir := newDirectory(users)
	index := make(map[string]int)
	var accs []*accumulator

	for i := range records {
		r := &records[i]
		u, ok := dir.subject(r)
		if !ok {
			continue
		}
		pos, seen := index[u.ID]
		if !seen {
			pos = len(accs)
			index[u.ID] = pos
			accs = append(accs, &accumulator{user: u})
		}
		a := accs[pos]
		s := ScoresOf(r)
		a.sums.add(s)
		a.total += s.Sum()
		a.count++
	}

	out := make([]Summary, len(accs))
	for i, a := range accs {
		out[i] = a.summary()
	}
	return out
}

// Aggregate 按被评人汇总已提交的互评记录
//
// 总均分 = 各记录五维重算总分之和 / 记录数，再保留一位小数；
// 不用已四舍五入的维度均值相加，避免误差累积。
func Aggregate(records []model.Evaluation, users []model.User) map[string]Summary {
	list := summarize(records, users)
	out := make(map[string]Summary, len(list))
	for _, s := range list {
		out[s.UserID] = s
	}
	return out
}

// Leaderboard 汇总并排名；并列者保持在记录中首次出现的先后
func Leaderboard(records []model.Evaluation, users []model.User) []Summary {
	return Rank(summarize(records, users))
}

// Rank 按总均分降序稳定排序并写入名次（从 1 开始），不修改入参
func Rank(summaries []Summary) []Summary {
	out := make([]Summary, len(summaries))
	copy(out, summaries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalAverage > out[j].TotalAverage
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// RankMap 对 Aggregate 的结果排名；map 无序，先按用户 ID 升序固定输入顺序
func RankMap(m map[string]Summary) []Summary {
	list := make([]Summary, 0, len(m))
	for _, s := range m {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].UserID < list[j].UserID })
	return Rank(list)
}

// Top 取前 n 名
func Top(ranked []Summary, n int) []Summary {
	if n < 0 {
		n = 0
	}
	if len(ranked) < n {
		n = len(ranked)
	}
	return ranked[:n]
}

// DimensionAverages 全部已提交记录的各维度均值
func DimensionAverages(records []model.Evaluation) DimensionScores {
	var sums DimensionScores
	count := 0
	for i := range records {
		if !records[i].IsCompleted {
			continue
		}
		sums.add(ScoresOf(&records[i]))
		count++
	}
	return sums.average(count)
}

// Progress 某评分人的互评完成进度
type Progress struct {
	Completed int     `json:"completed"`
	Drafts    int     `json:"drafts"`
	Total     int     `json:"total"`
	Rate      float64 `json:"rate"`
}

// EvaluatorProgress total 为应评人数（同事总数，不含自己）
func EvaluatorProgress(mine []model.Evaluation, total int) Progress {
	p := Progress{Total: total}
	for i := range mine {
		if mine[i].IsCompleted {
			p.Completed++
		} else {
			p.Drafts++
		}
	}
	p.Rate = Percentage(p.Completed, total)
	return p
}

// Completion 年度互评整体完成情况
type Completion struct {
	Participants int     `json:"participants"`
	Completed    int     `json:"completed"`
	Possible     int     `json:"possible"`
	Rate         float64 `json:"rate"`
}

// CompletionOf 参评人为在职非管理员，共 n 人时应完成数为 n(n-1)。
// 只统计评分人与被评人均在参评范围内的已提交记录，同一评分对只计一次。
func CompletionOf(records []model.Evaluation, users []model.User) Completion {
	participants := make(map[string]struct{}, len(users))
	for i := range users {
		if users[i].IsActive && !users[i].Role.IsAdmin() {
			participants[users[i].ID] = struct{}{}
		}
	}

	n := len(participants)
	c := Completion{Participants: n}
	if n > 1 {
		c.Possible = n * (n - 1)
	}

	type pair struct{ evaluator, evaluatee string }
	seen := make(map[pair]struct{}, len(records))
	for i := range records {
		e := &records[i]
		if !e.IsCompleted || e.EvaluatorID == e.EvaluateeID {
			continue
		}
		if _, ok := participants[e.EvaluatorID]; !ok {
			continue
		}
		if _, ok := participants[e.EvaluateeID]; !ok {
			continue
		}
		seen[pair{e.EvaluatorID, e.EvaluateeID}] = struct{}{}
	}
	c.Completed = len(seen)
	c.Rate = Percentage(c.Completed, c.Possible)
	return c
}
