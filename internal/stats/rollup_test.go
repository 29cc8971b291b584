package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ruralwork/internal/model"
)

func TestDepartmentRollup_DistinctParticipants(t *testing.T) {
	users := []model.User{
		user("d1", "农业站", model.RoleStationStaff),
		user("d2", "农业站", model.RoleStationStaff),
		user("d3", "农业站", model.RoleStationStaff),
		user("p1", "党政办", model.RoleTownStaff),
	}
	var records []model.Evaluation
	for _, evaluator := range []string{"e1", "e2", "e3"} {
		records = append(records, eval(evaluator, "d1", 18, true))
		records = append(records, eval(evaluator, "d2", 16, true))
	}
	records = append(records, eval("e1", "p1", 19, true))

	out := DepartmentRollup(records, users)
	require.Len(t, out, 2)

	assert.Equal(t, "党政办", out[0].Department)
	assert.Equal(t, 1, out[0].Rank)
	assert.Equal(t, 95.0, out[0].AverageScore)

	agri := out[1]
	assert.Equal(t, "农业站", agri.Department)
	assert.Equal(t, 2, agri.ParticipantCount)
	assert.Equal(t, 6, agri.EvaluationCount)
	assert.Equal(t, 3, agri.MemberCount)
	assert.Equal(t, 85.0, agri.AverageScore)
	assert.Equal(t, 17.0, agri.Averages.Qin)
}

func TestDepartmentRollup_FiltersLikeAggregate(t *testing.T) {
	users := []model.User{user("admin", "党政办", model.RoleAdmin), user("x", "党政办", model.RoleTownStaff)}
	records := []model.Evaluation{
		eval("a", "admin", 20, true),
		eval("a", "x", 10, false),
		eval("a", "ghost", 20, true),
	}
	assert.Empty(t, DepartmentRollup(records, users))
}

func TestDepartmentRollup_StableTies(t *testing.T) {
	users := []model.User{user("a", "甲", model.RoleTownStaff), user("b", "乙", model.RoleTownStaff)}
	records := []model.Evaluation{eval("z", "b", 15, true), eval("z", "a", 15, true)}

	out := DepartmentRollup(records, users)
	require.Len(t, out, 2)
	assert.Equal(t, "乙", out[0].Department)
	assert.Equal(t, "甲", out[1].Department)
}

func TestBucketOf_HalfOpenBoundaries(t *testing.T) {
	cases := map[float64]string{
		100:   "90-100",
		90:    "90-100",
		89.9:  "80-89",
		80:    "80-89",
		70:    "70-79",
		60:    "60-69",
		59.99: "below 60",
		0:     "below 60",
	}
	for score, want := range cases {
		assert.Equal(t, want, BucketOf(score), "score=%v", score)
	}
}

func TestScoreDistribution_ExhaustiveAndOrdered(t *testing.T) {
	records := []model.Evaluation{
		eval("a", "x", 18, true), // 90
		eval("b", "x", 16, true), // 80
		eval("c", "x", 12, true), // 60
		eval("d", "x", 0, true),  // 0
		eval("e", "x", 19, false),
	}

	out := ScoreDistribution(records)
	require.Len(t, out, 5)
	assert.Equal(t, []string{"90-100", "80-89", "70-79", "60-69", "below 60"},
		[]string{out[0].Label, out[1].Label, out[2].Label, out[3].Label, out[4].Label})
	assert.Equal(t, []int{1, 1, 0, 1, 1},
		[]int{out[0].Count, out[1].Count, out[2].Count, out[3].Count, out[4].Count})

	total := 0
	for _, b := range out {
		total += b.Count
	}
	assert.Equal(t, 4, total, "每条已提交记录恰好落入一个分数段")
}

func TestScoreDistribution_EmptyKeepsBuckets(t *testing.T) {
	out := ScoreDistribution(nil)
	require.Len(t, out, 5)
	for _, b := range out {
		assert.Zero(t, b.Count)
	}
}
