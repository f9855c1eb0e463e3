package convert

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

var _ ports.ConversionStrategy = (*RatingsFromRanks)(nil)

// RatingsFromRanks converts ranked ballots into rated ballots with the
// Borda-like linear mapping: rank 1 receives the maximum rating, each
// subsequent rank one less, floored at the minimum. Unranked candidates
// stay absent rather than receiving the minimum, preserving the
// distinction between lowest preference and no preference.
type RatingsFromRanks struct {
	config RatingsFromRanksConfig
}

// RatingsFromRanksConfig holds the synthesis parameters.
type RatingsFromRanksConfig struct {
	// MaxRating is the rating ceiling of the synthesized scale, used
	// when the election declares no max_rating of its own.
	MaxRating int `yaml:"max_rating" json:"max_rating" validate:"min=1,max=100"`
}

// DefaultRatingsFromRanksConfig returns the standard five-point scale.
func DefaultRatingsFromRanksConfig() RatingsFromRanksConfig {
	return RatingsFromRanksConfig{MaxRating: 5}
}

// NewRatingsFromRanks creates the rank-to-rating conversion with the
// given configuration.
func NewRatingsFromRanks(config RatingsFromRanksConfig) (*RatingsFromRanks, error) {
	if err := validate.Struct(config); err != nil {
		return nil, domain.NewConfigError(StrategyRatingsFromRanks, "configuration validation failed", err)
	}
	return &RatingsFromRanks{config: config}, nil
}

// Name returns the registry identifier for the strategy.
func (s *RatingsFromRanks) Name() string { return StrategyRatingsFromRanks }

// Validate implements ports.ConversionStrategy.
func (s *RatingsFromRanks) Validate() error {
	if err := validate.Struct(s.config); err != nil {
		return domain.NewConfigError(StrategyRatingsFromRanks, "configuration validation failed", err)
	}
	return nil
}

// UnmarshalParameters deserializes YAML parameters into the strategy's
// configuration with validation.
func (s *RatingsFromRanks) UnmarshalParameters(params yaml.Node) error {
	var config RatingsFromRanksConfig
	if err := params.Decode(&config); err != nil {
		return domain.NewConfigError(StrategyRatingsFromRanks, "failed to decode parameters", err)
	}
	if err := validate.Struct(config); err != nil {
		return domain.NewConfigError(StrategyRatingsFromRanks, "parameter validation failed", err)
	}
	s.config = config
	return nil
}

// Convert implements ports.ConversionStrategy.
func (s *RatingsFromRanks) Convert(ctx context.Context, e *domain.Election) (*domain.Election, []domain.Notice, error) {
	minR, maxR := 0, s.config.MaxRating
	if e.Meta.MinRating != nil {
		minR = *e.Meta.MinRating
	}
	if e.Meta.MaxRating != nil {
		maxR = *e.Meta.MaxRating
	}

	out := e.Clone()
	out.Meta.BallotType = domain.TypeRated
	out.Meta.MinRating = domain.IntPtr(minR)
	out.Meta.MaxRating = domain.IntPtr(maxR)
	for i, b := range e.Ballots {
		prefs := make(map[string]domain.Pref, len(b.Prefs))
		for tok, p := range b.Prefs {
			if !p.HasRank() {
				continue
			}
			prefs[tok] = domain.Pref{
				Rank:   p.Rank,
				Rating: domain.IntPtr(domain.SyntheticRating(p.Rank, minR, maxR)),
			}
		}
		out.Ballots[i].Prefs = prefs
	}

	notice := domain.NewNotice(domain.NoticeDisclaimer,
		"Ratings synthesized from rankings; voters never cast actual ratings",
		fmt.Sprintf("Each rank was mapped onto the [%d, %d] rating range with a Borda-like "+
			"linear scale: rank 1 receives %d and each subsequent rank one less, floored at %d. "+
			"Unranked candidates receive no rating. The mapping assumes evenly spaced "+
			"preferences, which ranked ballots do not actually express.", minR, maxR, maxR, minR))
	return out, []domain.Notice{notice}, nil
}
