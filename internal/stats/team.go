package stats

import (
	"sort"

	"ruralwork/internal/model"
)

// TeamScores 工作队五个评分维度
type TeamScores struct {
	WorkQuality     float64 `json:"work_quality"`
	Cooperation     float64 `json:"cooperation"`
	Efficiency      float64 `json:"efficiency"`
	Innovation      float64 `json:"innovation"`
	ServiceAttitude float64 `json:"service_attitude"`
}

func teamScoresOf(e *model.WorkTeamEvaluation) TeamScores {
	return TeamScores{
		WorkQuality:     sanitize(e.WorkQualityScore),
		Cooperation:     sanitize(e.CooperationScore),
		Efficiency:      sanitize(e.EfficiencyScore),
		Innovation:      sanitize(e.InnovationScore),
		ServiceAttitude: sanitize(e.ServiceAttitudeScore),
	}
}

func (s TeamScores) sum() float64 {
	return s.WorkQuality + s.Cooperation + s.Efficiency + s.Innovation + s.ServiceAttitude
}

// TeamSummary 工作队在某次活动中的得分
type TeamSummary struct {
	Rank            int        `json:"rank"`
	TeamID          string     `json:"team_id"`
	TeamName        string     `json:"team_name"`
	AssignedVillage string     `json:"assigned_village"`
	Averages        TeamScores `json:"average_scores"`
	TotalAverage    float64    `json:"total_average"`
	EvaluationCount int        `json:"evaluation_count"`
}

// TeamRanking 工作队排名；未收到评分的工作队不出现，并列保持工作队列表顺序
func TeamRanking(evals []model.WorkTeamEvaluation, teams []model.WorkTeam) []TeamSummary {
	type acc struct {
		sums  TeamScores
		total float64
		count int
	}
	byTeam := make(map[string]*acc)
	for i := range evals {
		e := &evals[i]
		a, ok := byTeam[e.TeamID]
		if !ok {
			a = &acc{}
			byTeam[e.TeamID] = a
		}
		s := teamScoresOf(e)
		a.sums.WorkQuality += s.WorkQuality
		a.sums.Cooperation += s.Cooperation
		a.sums.Efficiency += s.Efficiency
		a.sums.Innovation += s.Innovation
		a.sums.ServiceAttitude += s.ServiceAttitude
		a.total += s.sum()
		a.count++
	}

	out := make([]TeamSummary, 0, len(byTeam))
	for i := range teams {
		t := &teams[i]
		a, ok := byTeam[t.ID]
		if !ok {
			continue
		}
		n := float64(a.count)
		out = append(out, TeamSummary{
			TeamID:          t.ID,
			TeamName:        t.TeamName,
			AssignedVillage: t.AssignedVillage,
			Averages: TeamScores{
				WorkQuality:     Round1(ratio(a.sums.WorkQuality, n)),
				Cooperation:     Round1(ratio(a.sums.Cooperation, n)),
				Efficiency:      Round1(ratio(a.sums.Efficiency, n)),
				Innovation:      Round1(ratio(a.sums.Innovation, n)),
				ServiceAttitude: Round1(ratio(a.sums.ServiceAttitude, n)),
			},
			TotalAverage:    Round1(ratio(a.total, n)),
			EvaluationCount: a.count,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalAverage > out[j].TotalAverage
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// ActivityAverage 活动全部评分的平均总分
func ActivityAverage(evals []model.WorkTeamEvaluation) float64 {
	var sum float64
	for i := range evals {
		sum += teamScoresOf(&evals[i]).sum()
	}
	return Round1(ratio(sum, float64(len(evals))))
}
