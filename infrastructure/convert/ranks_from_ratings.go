package convert

import (
	"context"
	"sort"

	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

var _ ports.ConversionStrategy = (*RanksFromRatings)(nil)

// RanksFromRatings converts rated ballots into ranked ballots by
// ordering each ballot's rated candidates by descending rating.
// Candidates sharing a rating share a rank; ranks are dense, so a
// two-way tie at rank 1 is followed by rank 2, not rank 3. Unrated
// candidates stay unranked.
//
// Unlike the rank-to-rating direction this conversion invents nothing:
// ratings fully determine the ordering. It only discards the rating
// magnitudes, which ranked methods cannot use anyway.
type RanksFromRatings struct{}

// NewRanksFromRatings creates the rating-to-rank conversion. It carries
// no configuration.
func NewRanksFromRatings() *RanksFromRatings { return &RanksFromRatings{} }

// Name returns the registry identifier for the strategy.
func (s *RanksFromRatings) Name() string { return StrategyRanksFromRatings }

// Validate implements ports.ConversionStrategy; the strategy has
// nothing to configure.
func (s *RanksFromRatings) Validate() error { return nil }

// Convert implements ports.ConversionStrategy.
func (s *RanksFromRatings) Convert(ctx context.Context, e *domain.Election) (*domain.Election, []domain.Notice, error) {
	out := e.Clone()
	out.Meta.BallotType = domain.TypeRanked
	for i, b := range e.Ballots {
		var rated []string
		for tok, p := range b.Prefs {
			if p.HasRating() {
				rated = append(rated, tok)
			}
		}
		sort.Slice(rated, func(x, y int) bool {
			rx, ry := *b.Prefs[rated[x]].Rating, *b.Prefs[rated[y]].Rating
			if rx != ry {
				return rx > ry
			}
			return rated[x] < rated[y]
		})

		prefs := make(map[string]domain.Pref, len(rated))
		rank := 0
		prev := 0
		for j, tok := range rated {
			r := *b.Prefs[tok].Rating
			if j == 0 || r != prev {
				rank++
				prev = r
			}
			p := b.Prefs[tok]
			p.Rank = rank
			prefs[tok] = p
		}
		out.Ballots[i].Prefs = prefs
	}

	notice := domain.NewNotice(domain.NoticeInfo,
		"Rankings derived from ratings by descending score",
		"Each ballot's rated candidates were ordered by descending rating, with equal "+
			"ratings sharing a dense rank. The ordering is fully determined by the ratings; "+
			"only the score magnitudes are discarded.")
	return out, []domain.Notice{notice}, nil
}
