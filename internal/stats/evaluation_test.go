package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ruralwork/internal/model"
)

func user(id, dept string, role model.Role) model.User {
	return model.User{ID: id, Name: "用户" + id, Department: dept, Role: role, TotalScore: 100}
}

// eval 构造一条记录；五维均为 per，总分为 5*per
func eval(evaluator, evaluatee string, per float64, completed bool) model.Evaluation {
	return model.Evaluation{
		EvaluatorID:    evaluator,
		EvaluateeID:    evaluatee,
		EvaluationYear: "2024",
		ScoreDe:        per,
		ScoreNeng:      per,
		ScoreQin:       per,
		ScoreJi:        per,
		ScoreLian:      per,
		TotalScore:     per * 5,
		IsCompleted:    completed,
	}
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 66.7, Round1(200.0/3))
	assert.Equal(t, 2.3, Round1(2.25))
	assert.Equal(t, 0.0, Round1(math.NaN()))
	assert.Equal(t, 0.0, Round1(math.Inf(1)))
}

func TestAggregate_DraftsExcludedFromCount(t *testing.T) {
	users := []model.User{user("x", "党政办", model.RoleTownStaff), user("a", "党政办", model.RoleTownStaff)}
	records := []model.Evaluation{
		eval("a", "x", 18, true),
		eval("b", "x", 18, true),
		eval("c", "x", 18, true),
		eval("d", "x", 2, false),
		eval("e", "x", 2, false),
	}

	got := Aggregate(records, users)
	require.Contains(t, got, "x")
	assert.Equal(t, 3, got["x"].EvaluationCount)
	assert.Equal(t, 90.0, got["x"].TotalAverage)
	assert.Equal(t, 18.0, got["x"].Averages.De)
}

func TestAggregate_AdminNeverEvaluated(t *testing.T) {
	users := []model.User{user("admin", "", model.RoleAdmin), user("x", "党政办", model.RoleTownStaff)}
	records := []model.Evaluation{
		eval("x", "admin", 20, true),
		eval("y", "admin", 20, true),
		eval("admin", "x", 16, true),
	}

	got := Aggregate(records, users)
	assert.NotContains(t, got, "admin")
	assert.Len(t, got, 1)
	assert.Equal(t, 1, got["x"].EvaluationCount)
}

func TestAggregate_MissingEvaluateeSkipped(t *testing.T) {
	users := []model.User{user("x", "党政办", model.RoleTownStaff)}
	records := []model.Evaluation{
		eval("a", "ghost", 20, true),
		eval("a", "x", 10, true),
	}

	got := Aggregate(records, users)
	assert.Len(t, got, 1)
	assert.Equal(t, 50.0, got["x"].TotalAverage)
}

func TestAggregate_RecomputesTotalAndSanitizes(t *testing.T) {
	users := []model.User{user("x", "党政办", model.RoleTownStaff)}
	bad := eval("a", "x", 10, true)
	bad.TotalScore = 999  // 存储值不可信
	bad.ScoreLian = 45    // 越界按 0 计
	bad.ScoreJi = math.NaN()

	got := Aggregate([]model.Evaluation{bad}, users)
	assert.Equal(t, 30.0, got["x"].TotalAverage)
	assert.Equal(t, 0.0, got["x"].Averages.Lian)
	assert.Equal(t, 0.0, got["x"].Averages.Ji)
	assert.False(t, math.IsNaN(got["x"].TotalAverage))
}

func TestAggregate_TotalFromRawSums(t *testing.T) {
	users := []model.User{user("x", "党政办", model.RoleTownStaff)}
	r1 := model.Evaluation{EvaluateeID: "x", IsCompleted: true, ScoreDe: 17, ScoreNeng: 17, ScoreQin: 17, ScoreJi: 17, ScoreLian: 17}
	r2 := model.Evaluation{EvaluateeID: "x", IsCompleted: true, ScoreDe: 18, ScoreNeng: 18, ScoreQin: 18, ScoreJi: 18, ScoreLian: 18}
	r3 := model.Evaluation{EvaluateeID: "x", IsCompleted: true, ScoreDe: 18, ScoreNeng: 18, ScoreQin: 18, ScoreJi: 18, ScoreLian: 18}

	s := Aggregate([]model.Evaluation{r1, r2, r3}, users)["x"]
	// 维度均值 17.666.. → 17.7，五维相加为 88.5；由原始总和计算为 265/3 = 88.3
	assert.Equal(t, 17.7, s.Averages.De)
	assert.Equal(t, 88.3, s.TotalAverage)
	assert.InDelta(t, s.Averages.Sum(), s.TotalAverage, 0.25)
}

func TestAggregate_Empty(t *testing.T) {
	assert.Empty(t, Aggregate(nil, nil))
	assert.Empty(t, Leaderboard(nil, nil))
	assert.Empty(t, RankMap(nil))
}

func TestRank_StableOnTies(t *testing.T) {
	in := []Summary{
		{UserID: "first", TotalAverage: 95},
		{UserID: "second", TotalAverage: 95},
		{UserID: "third", TotalAverage: 80},
	}
	out := Rank(in)

	require.Len(t, out, 3)
	assert.Equal(t, []string{"first", "second", "third"}, []string{out[0].UserID, out[1].UserID, out[2].UserID})
	assert.Equal(t, []int{1, 2, 3}, []int{out[0].Rank, out[1].Rank, out[2].Rank})
	assert.Zero(t, in[0].Rank, "Rank 不应修改入参")

	reordered := Rank([]Summary{in[2], in[1], in[0]})
	assert.Equal(t, "second", reordered[0].UserID)
	assert.Equal(t, "first", reordered[1].UserID)
}

func TestLeaderboard_TiesKeepFirstAppearance(t *testing.T) {
	users := []model.User{
		user("b", "党政办", model.RoleTownStaff),
		user("a", "党政办", model.RoleTownStaff),
		user("c", "党政办", model.RoleTownStaff),
	}
	records := []model.Evaluation{
		eval("z", "c", 16, true),
		eval("z", "b", 19, true),
		eval("z", "a", 19, true),
	}

	out := Leaderboard(records, users)
	require.Len(t, out, 3)
	assert.Equal(t, "b", out[0].UserID)
	assert.Equal(t, "a", out[1].UserID)
	assert.Equal(t, "c", out[2].UserID)
	assert.Equal(t, 3, out[2].Rank)
}

func TestRankMap_Deterministic(t *testing.T) {
	m := map[string]Summary{
		"u2": {UserID: "u2", TotalAverage: 90},
		"u1": {UserID: "u1", TotalAverage: 90},
		"u3": {UserID: "u3", TotalAverage: 99},
	}
	for i := 0; i < 5; i++ {
		out := RankMap(m)
		assert.Equal(t, []string{"u3", "u1", "u2"}, []string{out[0].UserID, out[1].UserID, out[2].UserID})
	}
}

func TestTop(t *testing.T) {
	ranked := []Summary{{UserID: "a"}, {UserID: "b"}}
	assert.Len(t, Top(ranked, 10), 2)
	assert.Len(t, Top(ranked, 1), 1)
	assert.Empty(t, Top(ranked, -1))
}

func TestDimensionAverages(t *testing.T) {
	records := []model.Evaluation{
		eval("a", "x", 20, true),
		eval("b", "x", 10, true),
		eval("c", "x", 0, false),
	}
	avg := DimensionAverages(records)
	assert.Equal(t, 15.0, avg.De)
	assert.Equal(t, 15.0, avg.Lian)

	assert.Equal(t, DimensionScores{}, DimensionAverages(nil))
}

func TestEvaluatorProgress(t *testing.T) {
	mine := []model.Evaluation{eval("me", "a", 18, true), eval("me", "b", 18, false)}
	p := EvaluatorProgress(mine, 4)
	assert.Equal(t, 1, p.Completed)
	assert.Equal(t, 1, p.Drafts)
	assert.Equal(t, 25.0, p.Rate)

	assert.Zero(t, EvaluatorProgress(nil, 0).Rate)
}

func TestCompletionOf(t *testing.T) {
	active := func(id string, role model.Role) model.User {
		u := user(id, "党政办", role)
		u.IsActive = true
		return u
	}
	users := []model.User{active("a", model.RoleTownStaff), active("b", model.RoleTownStaff), active("c", model.RoleTownStaff)}
	records := []model.Evaluation{eval("a", "b", 18, true), eval("b", "a", 18, true), eval("c", "a", 18, false)}
	c := CompletionOf(records, users)
	assert.Equal(t, 3, c.Participants)
	assert.Equal(t, 6, c.Possible)
	assert.Equal(t, 2, c.Completed)
	assert.Equal(t, 33.3, c.Rate)

	assert.Zero(t, CompletionOf(records, users[:1]).Rate)
}

func TestCompletionOf_OnlyParticipantPairs(t *testing.T) {
	left := user("d", "党政办", model.RoleTownStaff) // 已离职
	users := []model.User{
		{ID: "a", Role: model.RoleTownStaff, IsActive: true},
		{ID: "b", Role: model.RoleTownStaff, IsActive: true},
		{ID: "root", Role: model.RoleAdmin, IsActive: true},
		left,
	}
	records := []model.Evaluation{
		eval("a", "b", 18, true),
		eval("b", "a", 18, true),
		eval("a", "d", 18, true),    // 被评人已离职
		eval("d", "a", 18, true),    // 评分人已离职
		eval("a", "root", 18, true), // 被评人为管理员
		eval("x", "a", 18, true),    // 评分人不存在
	}
	// 跨年度的同一评分对只计一次
	again := eval("a", "b", 16, true)
	again.EvaluationYear = "2025"
	records = append(records, again)

	c := CompletionOf(records, users)
	assert.Equal(t, 2, c.Participants)
	assert.Equal(t, 2, c.Possible)
	assert.Equal(t, 2, c.Completed)
	assert.Equal(t, 100.0, c.Rate)
}
