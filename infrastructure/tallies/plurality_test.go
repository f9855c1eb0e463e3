package tallies

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-tally/internal/domain"
)

func TestPluralityTennessee(t *testing.T) {
	res, err := NewPlurality().Count(tennesseeRanked())
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"Memph": 42, "Nash": 26, "Chat": 15, "Knox": 17}, res.TopPicks)
	assert.Equal(t, []string{"Memph"}, res.Winners)
	assert.Equal(t, 100, res.TotalValid)
	assert.Zero(t, res.Overvotes)
	assert.Zero(t, res.Blanks)
	assert.Empty(t, res.Notices)
}

func TestPluralityOvervotesAndBlanks(t *testing.T) {
	e := &domain.Election{
		Candidates: map[string]string{"A": "A", "B": "B"},
		Order:      []string{"A", "B"},
		Ballots: []domain.Ballot{
			rankedBallot(5, []string{"A"}),
			rankedBallot(3, []string{"A", "B"}), // tied top rank
			{Qty: 2},                            // blank
		},
	}

	res, err := NewPlurality().Count(e)
	require.NoError(t, err)

	assert.Equal(t, 5, res.TopPicks["A"])
	assert.Zero(t, res.TopPicks["B"], "overvoted ballots must count for no candidate")
	assert.Equal(t, 3, res.Overvotes)
	assert.Equal(t, 2, res.Blanks)
	assert.Equal(t, 5, res.TotalValid)
	assert.True(t, hasNoticeKind(res.Notices, domain.NoticeWarning))
}

func TestPluralityTieBreaksByToken(t *testing.T) {
	e := &domain.Election{
		Candidates: map[string]string{"Zeta": "Z", "Alpha": "A"},
		Order:      []string{"Zeta", "Alpha"},
		Ballots: []domain.Ballot{
			rankedBallot(4, []string{"Zeta"}),
			rankedBallot(4, []string{"Alpha"}),
		},
	}

	res, err := NewPlurality().Count(e)
	require.NoError(t, err)

	assert.Equal(t, []string{"Alpha"}, res.Winners)
	require.Len(t, res.Notices, 1)
	assert.Equal(t, domain.NoticeInfo, res.Notices[0].Kind)
	assert.Contains(t, res.Notices[0].Long, "Alpha")
	assert.Contains(t, res.Notices[0].Long, "Zeta")
}

func TestPluralityRejectsEmptyPool(t *testing.T) {
	_, err := NewPlurality().Tally(context.Background(), &domain.Election{})

	var ce *domain.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestPluralityRejectsUndeclaredCandidate(t *testing.T) {
	e := &domain.Election{
		Candidates: map[string]string{"Memph": "Memphis"},
		Order:      []string{"Memph"},
		Ballots:    []domain.Ballot{rankedBallot(1, []string{"Memhp"})},
	}

	_, err := NewPlurality().Count(e)

	var de *domain.DataError
	require.ErrorAs(t, err, &de)
	assert.ErrorIs(t, err, domain.ErrUnknownCandidate)
	assert.Equal(t, "Memhp", de.Token)
	assert.Equal(t, "Memph", de.Suggestion)
}

func TestPluralityResultIDIsStable(t *testing.T) {
	a, err := NewPlurality().Count(tennesseeRanked())
	require.NoError(t, err)
	b, err := NewPlurality().Count(tennesseeRanked())
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
}
