package convert

import (
	"context"
	"fmt"
	"sort"

	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

var _ ports.ConversionStrategy = (*LeastApprovalFirst)(nil)

// LeastApprovalFirst converts approval ballots into ranked ballots.
// An approval ballot carries no ordering among its approved candidates,
// so the strategy imposes one: each ballot ranks its approved
// candidates by ascending global approval total, least-approved first.
// The idea is that approving a candidate few others approve of is a
// stronger individual signal than approving a consensus pick.
// Candidates the ballot did not approve stay unranked.
type LeastApprovalFirst struct{}

// NewLeastApprovalFirst creates the approval-to-ranked conversion. It
// carries no configuration.
func NewLeastApprovalFirst() *LeastApprovalFirst { return &LeastApprovalFirst{} }

// Name returns the registry identifier for the strategy.
func (s *LeastApprovalFirst) Name() string { return StrategyLeastApprovalFirst }

// Validate implements ports.ConversionStrategy; the strategy has
// nothing to configure.
func (s *LeastApprovalFirst) Validate() error { return nil }

// Convert implements ports.ConversionStrategy.
func (s *LeastApprovalFirst) Convert(ctx context.Context, e *domain.Election) (*domain.Election, []domain.Notice, error) {
	// Global approval totals drive the per-ballot ordering.
	totals := make(map[string]int, len(e.Candidates))
	for _, b := range e.Ballots {
		for tok, p := range b.Prefs {
			if approves(p) {
				totals[tok] += b.Qty
			}
		}
	}

	// Declaration order breaks total ties deterministically.
	pos := make(map[string]int, len(e.Candidates))
	for i, tok := range e.Tokens() {
		pos[tok] = i
	}

	out := e.Clone()
	out.Meta.BallotType = domain.TypeRanked
	out.Meta.MinRating = nil
	out.Meta.MaxRating = nil
	for i, b := range e.Ballots {
		var approved []string
		for tok, p := range b.Prefs {
			if approves(p) {
				approved = append(approved, tok)
			}
		}
		sort.Slice(approved, func(x, y int) bool {
			if totals[approved[x]] != totals[approved[y]] {
				return totals[approved[x]] < totals[approved[y]]
			}
			return pos[approved[x]] < pos[approved[y]]
		})

		prefs := make(map[string]domain.Pref, len(approved))
		for rank, tok := range approved {
			prefs[tok] = domain.Pref{Rank: rank + 1}
		}
		out.Ballots[i].Prefs = prefs
	}

	notice := domain.NewNotice(domain.NoticeDisclaimer,
		"Rankings synthesized from approvals by ascending global approval total",
		fmt.Sprintf("Approval ballots express no order among approved candidates, so each "+
			"converted ballot ranks its approvals least-approved first, using the global "+
			"approval totals %v with declaration order breaking ties. Voters never expressed "+
			"these orderings; results computed from them are estimates.", totals))
	return out, []domain.Notice{notice}, nil
}
