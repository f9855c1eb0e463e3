// Package convert provides the conversion strategies that transform
// ballots between expressive forms: ranked to approval, ranked to rated,
// rated to ranked, and approval to ranked. Every strategy produces a new
// election and a set of notices documenting the assumptions it made; the
// source election is never mutated.
package convert

import (
	"github.com/go-playground/validator/v10"

	"github.com/ahrav/go-tally/infrastructure/tallies"
	"github.com/ahrav/go-tally/internal/domain"
)

// Strategy names under which the conversions register. The two
// ranked-to-approval names are shared with the approval tally's
// simulation modes.
const (
	StrategyFavoriteViableHalf = tallies.StrategyFavoriteViableHalf
	StrategyAllRankedApproved  = tallies.StrategyAllRankedApproved
	StrategyLeastApprovalFirst = "least_approval_first"
	StrategyRatingsFromRanks   = "ratings_from_ranks"
	StrategyRanksFromRatings   = "ranks_from_ratings"
)

// Package-level validator instance for configuration validation.
var validate = validator.New()

// approves reports whether a single preference expresses approval in
// the source ballot: an explicit rating of one, or membership in the
// ballot's top rank group when no rating is present.
func approves(p domain.Pref) bool {
	if p.HasRating() {
		return *p.Rating == 1
	}
	return p.Rank == 1
}

// approvalShell clears the cloned election's ballots and stamps the
// approval ballot-type metadata. Strategies that emit approval ballots
// start from it.
func approvalShell(e *domain.Election) *domain.Election {
	out := e.Clone()
	out.Meta.BallotType = domain.TypeApproval
	out.Meta.MinRating = domain.IntPtr(0)
	out.Meta.MaxRating = domain.IntPtr(1)
	for i := range out.Ballots {
		out.Ballots[i].Prefs = make(map[string]domain.Pref)
	}
	return out
}
