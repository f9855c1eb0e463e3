// Package testutils provides shared election fixtures for tests across
// the module.
package testutils

import (
	"github.com/ahrav/go-tally/internal/domain"
)

// RankedBallot builds a weighted ballot from rank groups: every token
// in groups[0] holds rank 1, groups[1] rank 2, and so on.
func RankedBallot(qty int, groups ...[]string) domain.Ballot {
	prefs := make(map[string]domain.Pref)
	for i, group := range groups {
		for _, tok := range group {
			prefs[tok] = domain.Pref{Rank: i + 1}
		}
	}
	return domain.Ballot{Qty: qty, Prefs: prefs}
}

// RatedBallot builds a weighted ballot from token-to-rating pairs.
func RatedBallot(qty int, ratings map[string]int) domain.Ballot {
	prefs := make(map[string]domain.Pref, len(ratings))
	for tok, r := range ratings {
		prefs[tok] = domain.Pref{Rating: domain.IntPtr(r)}
	}
	return domain.Ballot{Qty: qty, Prefs: prefs}
}

// TennesseeRanked is the classic four-city ranked election: 100 ballots
// where plurality, elimination, and pairwise each crown a different
// candidate (Memph, Knox, and Nash respectively).
func TennesseeRanked() *domain.Election {
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
			RankedBallot(42, []string{"Memph"}, []string{"Nash"}, []string{"Chat"}, []string{"Knox"}),
			RankedBallot(26, []string{"Nash"}, []string{"Chat"}, []string{"Knox"}, []string{"Memph"}),
			RankedBallot(15, []string{"Chat"}, []string{"Knox"}, []string{"Nash"}, []string{"Memph"}),
			RankedBallot(17, []string{"Knox"}, []string{"Chat"}, []string{"Nash"}, []string{"Memph"}),
		},
	}
}

// ApprovalGroups is an approval-style election with the ballot type
// declared, expressed as rank-1 groups.
func ApprovalGroups() *domain.Election {
	return &domain.Election{
		Meta: domain.Metadata{BallotType: domain.TypeApproval},
		Candidates: map[string]string{
			"Memph": "Memphis",
			"Nash":  "Nashville",
			"Chat":  "Chattanooga",
			"Knox":  "Knoxville",
		},
		Order: []string{"Memph", "Nash", "Chat", "Knox"},
		Ballots: []domain.Ballot{
			RankedBallot(21, []string{"Memph"}),
			RankedBallot(21, []string{"Memph", "Nash"}),
			RankedBallot(13, []string{"Nash"}),
			RankedBallot(13, []string{"Nash", "Chat"}),
			RankedBallot(8, []string{"Chat"}),
			RankedBallot(4, []string{"Chat", "Knox"}),
			RankedBallot(3, []string{"Chat", "Nash"}),
			RankedBallot(9, []string{"Knox"}),
			RankedBallot(8, []string{"Knox", "Chat"}),
		},
	}
}
