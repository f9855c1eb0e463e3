package convert

import (
	"context"

	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

var _ ports.ConversionStrategy = (*AllRankedApproved)(nil)

// AllRankedApproved converts ranked ballots into approval ballots by
// treating the act of ranking as approval: every candidate a ballot
// ranks, at any position, receives an approval. It is the most
// generous interpretation of a ranked ballot and overstates support for
// bottom-ranked candidates.
type AllRankedApproved struct{}

// NewAllRankedApproved creates the rank-as-approval conversion. It
// carries no configuration.
func NewAllRankedApproved() *AllRankedApproved { return &AllRankedApproved{} }

// Name returns the registry identifier for the strategy.
func (s *AllRankedApproved) Name() string { return StrategyAllRankedApproved }

// Validate implements ports.ConversionStrategy; the strategy has
// nothing to configure.
func (s *AllRankedApproved) Validate() error { return nil }

// Convert implements ports.ConversionStrategy.
func (s *AllRankedApproved) Convert(ctx context.Context, e *domain.Election) (*domain.Election, []domain.Notice, error) {
	out := approvalShell(e)
	for i, b := range e.Ballots {
		for tok, p := range b.Prefs {
			if p.HasRank() {
				out.Ballots[i].Prefs[tok] = domain.Pref{Rating: domain.IntPtr(1)}
			}
		}
	}
	notice := domain.NewNotice(domain.NoticeDisclaimer,
		"Approvals derived from rankings; every ranked candidate counted as approved",
		"Each ballot was converted by approving every candidate it ranked, regardless of "+
			"position. A voter who ranked a candidate last is counted as approving them, so "+
			"totals overstate support for low-ranked candidates. Actual approval ballots "+
			"could differ.")
	return out, []domain.Notice{notice}, nil
}
