package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleElection() *Election {
	return &Election{
		Meta: Metadata{Title: "Tennessee capitol", MinRating: IntPtr(0), MaxRating: IntPtr(5)},
		Candidates: map[string]string{
			"Memph": "Memphis",
			"Nash":  "Nashville",
			"Chat":  "Chattanooga",
			"Knox":  "Knoxville",
		},
		Order: []string{"Memph", "Nash", "Chat", "Knox"},
		Ballots: []Ballot{
			{Qty: 42, Prefs: map[string]Pref{
				"Memph": {Rank: 1, Rating: IntPtr(5)},
				"Nash":  {Rank: 2, Rating: IntPtr(2)},
				"Chat":  {Rank: 3, Rating: IntPtr(1)},
			}},
			{Qty: 26, Prefs: map[string]Pref{
				"Nash": {Rank: 1, Rating: IntPtr(5)},
				"Chat": {Rank: 2, Rating: IntPtr(4)},
			}},
		},
	}
}

func TestElection_TotalQty(t *testing.T) {
	e := sampleElection()
	assert.Equal(t, 68, e.TotalQty())
}

func TestElection_TokensPreservesDeclarationOrder(t *testing.T) {
	e := sampleElection()
	assert.Equal(t, []string{"Memph", "Nash", "Chat", "Knox"}, e.Tokens())

	// Candidates missing from Order still appear, lexicographically last.
	e.Order = []string{"Nash"}
	assert.Equal(t, []string{"Nash", "Chat", "Knox", "Memph"}, e.Tokens())
}

func TestElection_CloneIsDeep(t *testing.T) {
	e := sampleElection()
	c := e.Clone()

	c.Candidates["Memph"] = "Mutated"
	c.Ballots[0].Prefs["Memph"] = Pref{Rank: 9}
	*c.Meta.MaxRating = 99

	assert.Equal(t, "Memphis", e.Candidates["Memph"])
	assert.Equal(t, 1, e.Ballots[0].Prefs["Memph"].Rank)
	assert.Equal(t, 5, *e.Meta.MaxRating)
}

func TestElection_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Election)
		wantErr error
	}{
		{
			name:   "valid election passes",
			mutate: func(e *Election) {},
		},
		{
			name:    "empty candidate pool",
			mutate:  func(e *Election) { e.Candidates = nil },
			wantErr: ErrEmptyCandidatePool,
		},
		{
			name:    "non-positive quantity",
			mutate:  func(e *Election) { e.Ballots[0].Qty = 0 },
			wantErr: ErrInvalidQuantity,
		},
		{
			name: "undeclared candidate reference",
			mutate: func(e *Election) {
				e.Ballots[1].Prefs["Springf"] = Pref{Rank: 3}
			},
			wantErr: ErrUnknownCandidate,
		},
		{
			name: "rating above declared maximum",
			mutate: func(e *Election) {
				e.Ballots[0].Prefs["Memph"] = Pref{Rank: 1, Rating: IntPtr(6)}
			},
			wantErr: ErrRatingOutOfBounds,
		},
		{
			name: "rating below declared minimum",
			mutate: func(e *Election) {
				e.Ballots[0].Prefs["Memph"] = Pref{Rank: 1, Rating: IntPtr(-1)}
			},
			wantErr: ErrRatingOutOfBounds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := sampleElection()
			tt.mutate(e)
			err := e.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			var de *DataError
			assert.True(t, errors.As(err, &de))
		})
	}
}

func TestBallot_RankedTokens(t *testing.T) {
	b := Ballot{Qty: 1, Prefs: map[string]Pref{
		"C": {Rank: 2},
		"A": {Rank: 1},
		"B": {Rank: 2},
		"D": {Rating: IntPtr(3)}, // rated only, not ranked
	}}
	assert.Equal(t, []string{"A", "B", "C"}, b.RankedTokens())
}

func TestBallot_TopRanked(t *testing.T) {
	tests := []struct {
		name  string
		prefs map[string]Pref
		want  []string
	}{
		{
			name:  "single top choice",
			prefs: map[string]Pref{"A": {Rank: 1}, "B": {Rank: 2}},
			want:  []string{"A"},
		},
		{
			name:  "tied top choices sorted",
			prefs: map[string]Pref{"B": {Rank: 1}, "A": {Rank: 1}, "C": {Rank: 2}},
			want:  []string{"A", "B"},
		},
		{
			name:  "no rank data",
			prefs: map[string]Pref{"A": {Rating: IntPtr(1)}},
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Ballot{Qty: 1, Prefs: tt.prefs}
			assert.Equal(t, tt.want, b.TopRanked())
		})
	}
}

func TestNewNotice_TruncatesShort(t *testing.T) {
	long := make([]rune, 0, 200)
	for i := 0; i < 200; i++ {
		long = append(long, 'x')
	}
	n := NewNotice(NoticeWarning, string(long), "detail")
	assert.Len(t, []rune(n.Short), 120)
	assert.Equal(t, NoticeWarning, n.Kind)
}
