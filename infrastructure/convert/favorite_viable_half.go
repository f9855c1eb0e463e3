package convert

import (
	"context"

	"github.com/ahrav/go-tally/infrastructure/tallies"
	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

var _ ports.ConversionStrategy = (*FavoriteViableHalf)(nil)

// FavoriteViableHalf converts ranked ballots into approval ballots with
// a strategic voter model: each voter is assumed to know the
// first-preference standings, estimate the viable candidates with a
// Droop quota, and approve down their ranking until half of the viable
// set (rounded up) is covered. The result approximates how informed
// voters would fill in approval ballots given the same preferences.
type FavoriteViableHalf struct{}

// NewFavoriteViableHalf creates the strategic ranked-to-approval
// conversion. It carries no configuration.
func NewFavoriteViableHalf() *FavoriteViableHalf { return &FavoriteViableHalf{} }

// Name returns the registry identifier for the strategy.
func (s *FavoriteViableHalf) Name() string { return StrategyFavoriteViableHalf }

// Validate implements ports.ConversionStrategy; the strategy has
// nothing to configure.
func (s *FavoriteViableHalf) Validate() error { return nil }

// Convert implements ports.ConversionStrategy. Approved candidates
// receive rating 1; every other candidate the ballot ranked receives
// rating 0, preserving the distinction between disapproval and silence.
func (s *FavoriteViableHalf) Convert(ctx context.Context, e *domain.Election) (*domain.Election, []domain.Notice, error) {
	plan, err := tallies.NewViablePlan(e)
	if err != nil {
		return nil, nil, err
	}

	out := approvalShell(e)
	for i, b := range e.Ballots {
		approved := make(map[string]bool)
		for _, tok := range plan.ApprovedTokens(b) {
			approved[tok] = true
		}
		for tok, p := range b.Prefs {
			if !p.HasRank() {
				continue
			}
			rating := 0
			if approved[tok] {
				rating = 1
			}
			out.Ballots[i].Prefs[tok] = domain.Pref{Rating: domain.IntPtr(rating)}
		}
	}
	return out, []domain.Notice{plan.Disclaimer()}, nil
}
