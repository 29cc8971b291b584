package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ruralwork/internal/model"
)

func ballot(voter string, ids ...string) model.VoteRecord {
	return model.VoteRecord{VoteID: "v", VoterID: voter, Candidates: ids}
}

func TestTally_ApprovalVoting(t *testing.T) {
	candidates := []model.Candidate{{ID: "X", Name: "张三"}, {ID: "Y", Name: "李四"}, {ID: "Z", Name: "王五"}}
	records := []model.VoteRecord{
		ballot("A", "X", "Y"),
		ballot("B", "X"),
		ballot("C", "Y"),
	}

	res := Tally(records, candidates)
	assert.Equal(t, 3, res.TotalVotesCast)
	require.Len(t, res.Results, 3)

	assert.Equal(t, "X", res.Results[0].CandidateID)
	assert.Equal(t, 2, res.Results[0].Votes)
	assert.Equal(t, 66.7, res.Results[0].Percentage)
	assert.Equal(t, "Y", res.Results[1].CandidateID)
	assert.Equal(t, 2, res.Results[1].Votes)
	assert.Equal(t, 66.7, res.Results[1].Percentage)
	assert.Equal(t, "Z", res.Results[2].CandidateID)
	assert.Zero(t, res.Results[2].Percentage)

	assert.Greater(t, res.Results[0].Percentage+res.Results[1].Percentage, 100.0)
}

func TestTally_IgnoresDuplicatesAndUnknown(t *testing.T) {
	candidates := []model.Candidate{{ID: "X", Name: "张三"}}
	records := []model.VoteRecord{ballot("A", "X", "X", "ghost")}

	res := Tally(records, candidates)
	require.Len(t, res.Results, 1)
	assert.Equal(t, 1, res.Results[0].Votes)
	assert.Equal(t, 100.0, res.Results[0].Percentage)
}

func TestTally_NoBallots(t *testing.T) {
	res := Tally(nil, []model.Candidate{{ID: "X"}})
	assert.Zero(t, res.TotalVotesCast)
	assert.Zero(t, res.Results[0].Percentage)

	assert.Empty(t, Tally(nil, nil).Results)
}

func TestParticipationRate(t *testing.T) {
	assert.Equal(t, 25.0, ParticipationRate(5, 2, 10))
	assert.Zero(t, ParticipationRate(5, 0, 10))
	assert.Zero(t, ParticipationRate(0, 2, 0))
}
