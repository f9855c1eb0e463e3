package convert

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-tally/infrastructure/tallies"
	"github.com/ahrav/go-tally/internal/domain"
)

func rankedBallot(qty int, groups ...[]string) domain.Ballot {
	prefs := make(map[string]domain.Pref)
	for i, group := range groups {
		for _, tok := range group {
			prefs[tok] = domain.Pref{Rank: i + 1}
		}
	}
	return domain.Ballot{Qty: qty, Prefs: prefs}
}

func ratedBallot(qty int, ratings map[string]int) domain.Ballot {
	prefs := make(map[string]domain.Pref, len(ratings))
	for tok, r := range ratings {
		prefs[tok] = domain.Pref{Rating: domain.IntPtr(r)}
	}
	return domain.Ballot{Qty: qty, Prefs: prefs}
}

func tennesseeRanked() *domain.Election {
	return &domain.Election{
		Meta: domain.Metadata{Title: "Tennessee capitol"},
		Candidates: map[string]string{
			"Memph": "Memphis",
			"Nash":  "Nashville",
			"Chat":  "Chattanooga",
			"Knox":  "Knoxville",
		},
		Order: []string{"Memph", "Nash", "Chat", "Knox"},
		Ballots: []domain.Ballot{
			rankedBallot(42, []string{"Memph"}, []string{"Nash"}, []string{"Chat"}, []string{"Knox"}),
			rankedBallot(26, []string{"Nash"}, []string{"Chat"}, []string{"Knox"}, []string{"Memph"}),
			rankedBallot(15, []string{"Chat"}, []string{"Knox"}, []string{"Nash"}, []string{"Memph"}),
			rankedBallot(17, []string{"Knox"}, []string{"Chat"}, []string{"Nash"}, []string{"Memph"}),
		},
	}
}

func TestFavoriteViableHalf(t *testing.T) {
	src := tennesseeRanked()
	out, notes, err := NewFavoriteViableHalf().Convert(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, domain.TypeApproval, out.Meta.BallotType)
	require.NotNil(t, out.Meta.MaxRating)
	assert.Equal(t, 1, *out.Meta.MaxRating)

	// The 42-strong Memph bloc approves only its favorite; the Chat and
	// Knox blocs approve down to Nash, the second viable candidate.
	first := out.Ballots[0].Prefs
	assert.Equal(t, 1, *first["Memph"].Rating)
	assert.Equal(t, 0, *first["Nash"].Rating)
	third := out.Ballots[2].Prefs
	assert.Equal(t, 1, *third["Chat"].Rating)
	assert.Equal(t, 1, *third["Knox"].Rating)
	assert.Equal(t, 1, *third["Nash"].Rating)
	assert.Equal(t, 0, *third["Memph"].Rating)

	require.Len(t, notes, 1)
	assert.Equal(t, domain.NoticeDisclaimer, notes[0].Kind)

	// Counting the converted ballots natively must match the approval
	// tally's own simulation.
	ap, err := tallies.NewApproval(tallies.ApprovalConfig{Mode: tallies.ApprovalModeNative})
	require.NoError(t, err)
	res, err := ap.Tally(context.Background(), out)
	require.NoError(t, err)
	ar := res.(*tallies.ApprovalResult)
	assert.Equal(t, map[string]int{"Memph": 42, "Nash": 58, "Chat": 32, "Knox": 32}, ar.Counts)
}

func TestFavoriteViableHalfLeavesSourceUntouched(t *testing.T) {
	src := tennesseeRanked()
	_, _, err := NewFavoriteViableHalf().Convert(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, tennesseeRanked(), src)
}

func TestAllRankedApproved(t *testing.T) {
	e := &domain.Election{
		Candidates: map[string]string{"A": "A", "B": "B", "C": "C"},
		Order:      []string{"A", "B", "C"},
		Ballots: []domain.Ballot{
			rankedBallot(2, []string{"A"}, []string{"B"}),
			rankedBallot(1, []string{"C"}),
		},
	}

	out, notes, err := NewAllRankedApproved().Convert(context.Background(), e)
	require.NoError(t, err)

	assert.Equal(t, 1, *out.Ballots[0].Prefs["A"].Rating)
	assert.Equal(t, 1, *out.Ballots[0].Prefs["B"].Rating, "even the last rank counts as approval")
	assert.NotContains(t, out.Ballots[0].Prefs, "C")
	assert.Equal(t, 1, *out.Ballots[1].Prefs["C"].Rating)
	require.Len(t, notes, 1)
	assert.Equal(t, domain.NoticeDisclaimer, notes[0].Kind)
}

func TestLeastApprovalFirst(t *testing.T) {
	e := &domain.Election{
		Meta: domain.Metadata{
			BallotType: domain.TypeApproval,
			MinRating:  domain.IntPtr(0),
			MaxRating:  domain.IntPtr(1),
		},
		Candidates: map[string]string{"A": "A", "B": "B", "C": "C"},
		Order:      []string{"A", "B", "C"},
		Ballots: []domain.Ballot{
			ratedBallot(5, map[string]int{"A": 1, "B": 1}),
			ratedBallot(3, map[string]int{"B": 1}),
			ratedBallot(1, map[string]int{"C": 1}),
		},
	}

	out, notes, err := NewLeastApprovalFirst().Convert(context.Background(), e)
	require.NoError(t, err)

	assert.Equal(t, domain.TypeRanked, out.Meta.BallotType)
	assert.Nil(t, out.Meta.MaxRating)

	// Global totals are A=5, B=8, C=1, so the first ballot ranks its
	// less-approved pick A ahead of B.
	assert.Equal(t, 1, out.Ballots[0].Prefs["A"].Rank)
	assert.Equal(t, 2, out.Ballots[0].Prefs["B"].Rank)
	assert.Equal(t, 1, out.Ballots[1].Prefs["B"].Rank)
	assert.Equal(t, 1, out.Ballots[2].Prefs["C"].Rank)

	require.Len(t, notes, 1)
	assert.Equal(t, domain.NoticeDisclaimer, notes[0].Kind)
}

func TestRatingsFromRanks(t *testing.T) {
	e := &domain.Election{
		Candidates: map[string]string{"A": "A", "B": "B", "C": "C"},
		Order:      []string{"A", "B", "C"},
		Ballots: []domain.Ballot{
			rankedBallot(2, []string{"A"}, []string{"B"}, []string{"C"}),
		},
	}

	s, err := NewRatingsFromRanks(DefaultRatingsFromRanksConfig())
	require.NoError(t, err)
	out, notes, err := s.Convert(context.Background(), e)
	require.NoError(t, err)

	assert.Equal(t, domain.TypeRated, out.Meta.BallotType)
	assert.Equal(t, 5, *out.Meta.MaxRating)
	assert.Equal(t, 5, *out.Ballots[0].Prefs["A"].Rating)
	assert.Equal(t, 4, *out.Ballots[0].Prefs["B"].Rating)
	assert.Equal(t, 3, *out.Ballots[0].Prefs["C"].Rating)
	assert.Equal(t, 1, out.Ballots[0].Prefs["A"].Rank, "existing ranks survive the conversion")

	require.Len(t, notes, 1)
	assert.Equal(t, domain.NoticeDisclaimer, notes[0].Kind)
}

func TestNewRatingsFromRanksRejectsInvalidConfig(t *testing.T) {
	_, err := NewRatingsFromRanks(RatingsFromRanksConfig{MaxRating: 0})

	var ce *domain.ConfigError
	require.ErrorAs(t, err, &ce)
}

func TestRanksFromRatings(t *testing.T) {
	e := &domain.Election{
		Meta: domain.Metadata{
			MinRating: domain.IntPtr(0),
			MaxRating: domain.IntPtr(5),
		},
		Candidates: map[string]string{"A": "A", "B": "B", "C": "C", "D": "D"},
		Order:      []string{"A", "B", "C", "D"},
		Ballots: []domain.Ballot{
			ratedBallot(1, map[string]int{"A": 5, "B": 5, "C": 2}),
		},
	}

	out, notes, err := NewRanksFromRatings().Convert(context.Background(), e)
	require.NoError(t, err)

	prefs := out.Ballots[0].Prefs
	assert.Equal(t, 1, prefs["A"].Rank)
	assert.Equal(t, 1, prefs["B"].Rank, "equal ratings share a rank")
	assert.Equal(t, 2, prefs["C"].Rank, "ranks are dense after a tie")
	assert.NotContains(t, prefs, "D")

	require.Len(t, notes, 1)
	assert.Equal(t, domain.NoticeInfo, notes[0].Kind)
}

func TestStrategyNames(t *testing.T) {
	assert.Equal(t, "favorite_viable_half", NewFavoriteViableHalf().Name())
	assert.Equal(t, "all_ranked_approved", NewAllRankedApproved().Name())
	assert.Equal(t, "least_approval_first", NewLeastApprovalFirst().Name())
	assert.Equal(t, "ranks_from_ratings", NewRanksFromRatings().Name())
}
