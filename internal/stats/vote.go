package stats

import (
	"sort"

	"ruralwork/internal/model"
)

// CandidateResult 单个候选人的计票结果
type CandidateResult struct {
	CandidateID string  `json:"candidate_id"`
	Name        string  `json:"name"`
	Department  string  `json:"department,omitempty"`
	Description string  `json:"description,omitempty"`
	Votes       int     `json:"votes"`
	Percentage  float64 `json:"percentage"`
}

// TallyResult 投票计票结果
type TallyResult struct {
	TotalVotesCast int               `json:"total_votes_cast"` // 投票人数，即记录数
	Results        []CandidateResult `json:"results"`
}

// Tally 多选（认可投票）计票
//
// 每条记录为其中每个不同的候选人各加一票；百分比分母是投票人数而非总选择数，
// 多选时各候选人百分比之和可超过 100。名单外的候选人 ID 忽略。
func Tally(records []model.VoteRecord, candidates []model.Candidate) TallyResult {
	pos := make(map[string]int, len(candidates))
	results := make([]CandidateResult, len(candidates))
	for i, c := range candidates {
		pos[c.ID] = i
		results[i] = CandidateResult{
			CandidateID: c.ID,
			Name:        c.Name,
			Department:  c.Department,
			Description: c.Description,
		}
	}

	for i := range records {
		seen := make(map[string]struct{}, len(records[i].Candidates))
		for _, id := range records[i].Candidates {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			if p, ok := pos[id]; ok {
				results[p].Votes++
			}
		}
	}

	total := len(records)
	for i := range results {
		results[i].Percentage = Percentage(results[i].Votes, total)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Votes > results[j].Votes
	})

	return TallyResult{TotalVotesCast: total, Results: results}
}

// ParticipationRate 整体投票参与率 = 投票记录数 / (活动数 × 用户数)
func ParticipationRate(recordCount, voteCount, userCount int) float64 {
	return Percentage(recordCount, voteCount*userCount)
}
