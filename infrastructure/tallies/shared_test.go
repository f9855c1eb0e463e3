package tallies

import (
	"github.com/ahrav/go-tally/internal/domain"
)

// rankedBallot builds a weighted ballot from rank groups: every token
// in groups[0] holds rank 1, groups[1] rank 2, and so on. A group with
// several tokens expresses a tie.
func rankedBallot(qty int, groups ...[]string) domain.Ballot {
	prefs := make(map[string]domain.Pref)
	for i, group := range groups {
		for _, tok := range group {
			prefs[tok] = domain.Pref{Rank: i + 1}
		}
	}
	return domain.Ballot{Qty: qty, Prefs: prefs}
}

// ratedBallot builds a weighted ballot from token-to-rating pairs.
func ratedBallot(qty int, ratings map[string]int) domain.Ballot {
	prefs := make(map[string]domain.Pref, len(ratings))
	for tok, r := range ratings {
		prefs[tok] = domain.Pref{Rating: domain.IntPtr(r)}
	}
	return domain.Ballot{Qty: qty, Prefs: prefs}
}

// tennesseeRanked is the classic four-city ranked election: 100 ballots
// where the plurality, elimination, and pairwise methods each crown a
// different candidate.
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

// hasNoticeKind reports whether any notice of the given kind is present.
func hasNoticeKind(notes []domain.Notice, kind domain.NoticeKind) bool {
	for _, n := range notes {
		if n.Kind == kind {
			return true
		}
	}
	return false
}
