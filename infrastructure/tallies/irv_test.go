package tallies

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-tally/internal/domain"
)

func TestIRVTennessee(t *testing.T) {
	res, err := NewIRV().Tally(context.Background(), tennesseeRanked())
	require.NoError(t, err)

	irv, ok := res.(*IRVResult)
	require.True(t, ok)

	assert.Equal(t, []string{"Knox"}, irv.Winners)
	assert.True(t, irv.Majority)
	require.Len(t, irv.Rounds, 3)

	r1 := irv.Rounds[0]
	assert.Equal(t, map[string]float64{"Memph": 42, "Nash": 26, "Chat": 15, "Knox": 17}, r1.Totals)
	assert.Equal(t, []string{"Chat"}, r1.Eliminated)
	assert.Equal(t, 15.0, r1.Transfers["Chat"]["Knox"])

	r2 := irv.Rounds[1]
	assert.Equal(t, 32.0, r2.Totals["Knox"])
	assert.Equal(t, []string{"Nash"}, r2.Eliminated)
	assert.Equal(t, 26.0, r2.Transfers["Nash"]["Knox"])

	r3 := irv.Rounds[2]
	assert.Equal(t, 58.0, r3.Totals["Knox"])
	assert.Empty(t, r3.Eliminated)
}

func TestIRVFractionalSplitOnTiedTopPreference(t *testing.T) {
	e := &domain.Election{
		Candidates: map[string]string{"A": "A", "B": "B", "C": "C"},
		Order:      []string{"A", "B", "C"},
		Ballots: []domain.Ballot{
			rankedBallot(2, []string{"A", "B"}, []string{"C"}),
			rankedBallot(2, []string{"C"}, []string{"A"}),
			rankedBallot(1, []string{"A"}),
		},
	}

	res, err := NewIRV().Tally(context.Background(), e)
	require.NoError(t, err)
	irv := res.(*IRVResult)

	r1 := irv.Rounds[0]
	assert.Equal(t, 2.0, r1.Totals["A"], "tied top group splits the ballot weight evenly")
	assert.Equal(t, 1.0, r1.Totals["B"])
	assert.Equal(t, 2.0, r1.Totals["C"])
	assert.Equal(t, []string{"B"}, r1.Eliminated)
	assert.Equal(t, 1.0, r1.Transfers["B"]["A"])

	assert.Equal(t, []string{"A"}, irv.Winners)
	assert.True(t, irv.Majority)
	assert.True(t, hasNoticeKind(irv.Notices, domain.NoticeInfo),
		"fractional accounting must be flagged")
}

func TestIRVBatchEliminatesMinimumTie(t *testing.T) {
	e := &domain.Election{
		Candidates: map[string]string{"A": "A", "B": "B", "C": "C"},
		Order:      []string{"A", "B", "C"},
		Ballots: []domain.Ballot{
			rankedBallot(3, []string{"A"}),
			rankedBallot(2, []string{"B"}, []string{"A"}),
			rankedBallot(2, []string{"C"}, []string{"A"}),
		},
	}

	res, err := NewIRV().Tally(context.Background(), e)
	require.NoError(t, err)
	irv := res.(*IRVResult)

	require.Len(t, irv.Rounds, 2)
	assert.Equal(t, []string{"B", "C"}, irv.Rounds[0].Eliminated,
		"every candidate at the round minimum leaves together")
	assert.Equal(t, 7.0, irv.Rounds[1].Totals["A"])
	assert.Equal(t, []string{"A"}, irv.Winners)
	assert.True(t, irv.Majority)
}

func TestIRVExhaustionShrinksMajorityThreshold(t *testing.T) {
	e := &domain.Election{
		Candidates: map[string]string{"A": "A", "B": "B", "C": "C"},
		Order:      []string{"A", "B", "C"},
		Ballots: []domain.Ballot{
			rankedBallot(3, []string{"A"}),
			rankedBallot(2, []string{"B"}),
			rankedBallot(2, []string{"C"}),
		},
	}

	res, err := NewIRV().Tally(context.Background(), e)
	require.NoError(t, err)
	irv := res.(*IRVResult)

	require.Len(t, irv.Rounds, 2)
	assert.Equal(t, []string{"B", "C"}, irv.Rounds[0].Eliminated)
	assert.Equal(t, 4.0, irv.Rounds[1].Exhausted,
		"ballots with no active preference left exhaust")
	assert.Equal(t, []string{"A"}, irv.Winners)
	assert.True(t, irv.Majority, "3 of 3 counted votes is a majority once 4 exhausted")
	assert.Equal(t, 2.0, irv.Rounds[0].Transfers["B"]["exhausted"])
}

func TestIRVFullTieYieldsCoWinners(t *testing.T) {
	e := &domain.Election{
		Candidates: map[string]string{"A": "A", "B": "B"},
		Order:      []string{"A", "B"},
		Ballots: []domain.Ballot{
			rankedBallot(3, []string{"A"}),
			rankedBallot(3, []string{"B"}),
		},
	}

	res, err := NewIRV().Tally(context.Background(), e)
	require.NoError(t, err)
	irv := res.(*IRVResult)

	assert.Equal(t, []string{"A", "B"}, irv.Winners)
	assert.False(t, irv.Majority)
	assert.True(t, hasNoticeKind(irv.Notices, domain.NoticeWarning))
}

func TestIRVRejectsEmptyPool(t *testing.T) {
	_, err := NewIRV().Tally(context.Background(), &domain.Election{})

	var ce *domain.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.ErrorIs(t, err, ErrNoCandidates)
}
