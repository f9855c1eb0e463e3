package tallies

import (
	"context"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

var _ ports.Tally = (*STAR)(nil)

// STAR implements the score-then-automatic-runoff tally. Phase 1 sums
// quantity-weighted ratings per candidate and advances the top two;
// phase 2 awards each ballot's quantity to whichever finalist it rates
// higher. Ranked-only elections get ratings synthesized from ranks with
// a Borda-like linear mapping, flagged by a disclaimer notice.
type STAR struct {
	config STARConfig
}

// STARConfig holds the score-runoff parameters.
type STARConfig struct {
	// DefaultMaxRating is the rating ceiling assumed when the election
	// declares no max_rating, used both for validation context and for
	// rating synthesis on ranked-only ballots.
	DefaultMaxRating int `yaml:"default_max_rating" json:"default_max_rating" validate:"min=1,max=100"`
}

// DefaultSTARConfig returns the standard five-star configuration.
func DefaultSTARConfig() STARConfig { return STARConfig{DefaultMaxRating: 5} }

// NewSTAR creates a score-runoff tally with the given configuration.
func NewSTAR(config STARConfig) (*STAR, error) {
	if err := validate.Struct(config); err != nil {
		return nil, domain.NewConfigError(MethodSTAR, "configuration validation failed", err)
	}
	return &STAR{config: config}, nil
}

// Name returns the registry identifier for the score-runoff method.
func (t *STAR) Name() string { return MethodSTAR }

// Validate implements ports.Tally.
func (t *STAR) Validate() error {
	if err := validate.Struct(t.config); err != nil {
		return domain.NewConfigError(MethodSTAR, "configuration validation failed", err)
	}
	return nil
}

// STARResult carries the score table and runoff outcome.
type STARResult struct {
	// ID is the stable identifier of this result.
	ID string `json:"id"`

	// Scores maps each candidate to its phase-1 quantity-weighted
	// rating sum.
	Scores map[string]int `json:"scores"`

	// VoterCounts maps each candidate to the summed quantity of ballots
	// rating it above the minimum.
	VoterCounts map[string]int `json:"voter_counts"`

	// Finalists holds the two phase-1 leaders in score order. A
	// one-candidate election has a single finalist.
	Finalists []string `json:"finalists"`

	// RunoffVotes maps each finalist to its phase-2 weight. Weights are
	// fractional when ballots rating both finalists equally above the
	// minimum split their quantity.
	RunoffVotes map[string]float64 `json:"runoff_votes"`

	// Abstentions is the ballot weight rating both finalists at the
	// minimum, which expresses no runoff preference.
	Abstentions float64 `json:"abstentions"`

	// Winners holds the runoff winner.
	Winners []string `json:"winners"`

	// Notices carries annotations attached to the result.
	Notices []domain.Notice `json:"notices,omitempty"`
}

// Method implements domain.Result.
func (r *STARResult) Method() string { return MethodSTAR }

// WinnerTokens implements domain.Result.
func (r *STARResult) WinnerTokens() []string { return r.Winners }

// Notes implements domain.Result.
func (r *STARResult) Notes() []domain.Notice { return r.Notices }

// Tally implements ports.Tally.
func (t *STAR) Tally(ctx context.Context, e *domain.Election) (domain.Result, error) {
	if err := checkPool(MethodSTAR, e); err != nil {
		return nil, err
	}
	if err := checkBallots(e); err != nil {
		return nil, err
	}

	minR, maxR := t.ratingBounds(e)
	res := &STARResult{
		ID:          resultID(MethodSTAR, e),
		Scores:      make(map[string]int, len(e.Candidates)),
		VoterCounts: make(map[string]int, len(e.Candidates)),
		RunoffVotes: make(map[string]float64, 2),
	}
	for tok := range e.Candidates {
		res.Scores[tok] = 0
	}

	synthesized := !hasRatings(e)
	if synthesized {
		res.Notices = append(res.Notices, domain.NewNotice(domain.NoticeDisclaimer,
			"Scores synthesized from rankings; voters never cast actual ratings",
			fmt.Sprintf("The ballots carry rankings but no ratings, so each rank was mapped onto "+
				"the [%d, %d] rating range with a Borda-like linear scale: rank 1 receives %d, and "+
				"each subsequent rank one less, floored at %d. Candidates left unranked receive no "+
				"score. Actual score ballots could differ from this synthesis.", minR, maxR, maxR, minR)))
	}

	// Phase 1: quantity-weighted score sums.
	for _, b := range e.Ballots {
		for tok := range b.Prefs {
			r := ballotRating(b, tok, minR, maxR, synthesized)
			res.Scores[tok] += r * b.Qty
			if r > minR {
				res.VoterCounts[tok] += b.Qty
			}
		}
	}

	order := sortedTokens(res.Scores)
	sort.SliceStable(order, func(i, j int) bool {
		return res.Scores[order[i]] > res.Scores[order[j]]
	})
	if len(order) > 2 {
		res.Finalists = order[:2]
	} else {
		res.Finalists = order
	}

	if len(res.Finalists) < 2 {
		res.Winners = []string{res.Finalists[0]}
		return res, nil
	}

	// Phase 2: head-to-head runoff between the finalists.
	a, b := res.Finalists[0], res.Finalists[1]
	for _, ballot := range e.Ballots {
		ra := ballotRating(ballot, a, minR, maxR, synthesized)
		rb := ballotRating(ballot, b, minR, maxR, synthesized)
		switch {
		case ra > rb:
			res.RunoffVotes[a] += float64(ballot.Qty)
		case rb > ra:
			res.RunoffVotes[b] += float64(ballot.Qty)
		case ra == minR:
			res.Abstentions += float64(ballot.Qty)
		default:
			res.RunoffVotes[a] += float64(ballot.Qty) / 2
			res.RunoffVotes[b] += float64(ballot.Qty) / 2
		}
	}

	switch {
	case res.RunoffVotes[a] > res.RunoffVotes[b]:
		res.Winners = []string{a}
	case res.RunoffVotes[b] > res.RunoffVotes[a]:
		res.Winners = []string{b}
	case res.Scores[a] != res.Scores[b]:
		// Runoff tie breaks to the higher phase-1 score.
		if res.Scores[a] > res.Scores[b] {
			res.Winners = []string{a}
		} else {
			res.Winners = []string{b}
		}
	default:
		winner := a
		if b < a {
			winner = b
		}
		res.Winners = []string{winner}
		res.Notices = append(res.Notices, domain.NewNotice(domain.NoticeInfo,
			"Runoff and score tie broken by token order",
			fmt.Sprintf("Finalists %s and %s tie on both runoff votes (%.1f each) and phase-1 "+
				"score (%d each). The lexicographically first token is reported as the winner.",
				a, b, res.RunoffVotes[a], res.Scores[a])))
	}
	return res, nil
}

// UnmarshalParameters deserializes YAML parameters into the tally's
// configuration with validation, so configuration typos surface at load
// time instead of silently using defaults.
func (t *STAR) UnmarshalParameters(params yaml.Node) error {
	var config STARConfig
	if err := params.Decode(&config); err != nil {
		return domain.NewConfigError(MethodSTAR, "failed to decode parameters", err)
	}
	if err := validate.Struct(config); err != nil {
		return domain.NewConfigError(MethodSTAR, "parameter validation failed", err)
	}
	t.config = config
	return nil
}

// ratingBounds returns the election's declared rating range, falling
// back to [0, DefaultMaxRating].
func (t *STAR) ratingBounds(e *domain.Election) (int, int) {
	minR, maxR := 0, t.config.DefaultMaxRating
	if e.Meta.MinRating != nil {
		minR = *e.Meta.MinRating
	}
	if e.Meta.MaxRating != nil {
		maxR = *e.Meta.MaxRating
	}
	return minR, maxR
}

// hasRatings reports whether any preference in the election carries an
// explicit rating.
func hasRatings(e *domain.Election) bool {
	for _, b := range e.Ballots {
		for _, p := range b.Prefs {
			if p.HasRating() {
				return true
			}
		}
	}
	return false
}

// ballotRating resolves a ballot's effective rating for a candidate:
// the explicit rating when present, a rank-synthesized rating when the
// whole election is rank-only, and the minimum otherwise.
func ballotRating(b domain.Ballot, tok string, minR, maxR int, synthesized bool) int {
	p, ok := b.Prefs[tok]
	if !ok {
		return minR
	}
	if p.HasRating() {
		return *p.Rating
	}
	if synthesized && p.HasRank() {
		return domain.SyntheticRating(p.Rank, minR, maxR)
	}
	return minR
}
