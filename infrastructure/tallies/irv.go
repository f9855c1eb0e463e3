package tallies

import (
	"context"
	"fmt"
	"sort"

	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

var _ ports.Tally = (*IRV)(nil)

// IRV implements the ranked-elimination (instant-runoff) tally as a
// state machine over rounds. Each round counts every ballot for its
// highest-ranked still-active candidate, declares a winner on a majority
// of the non-exhausted weight, and otherwise batch-eliminates every
// candidate tied at the round minimum.
//
// A ballot whose top active preference is tied among several active
// candidates splits its quantity evenly across them, so round totals are
// fractional. The fractions exist only inside the engine: the ballot
// model itself always carries integral quantities, and a notice flags
// any round where splitting occurred.
type IRV struct{}

// NewIRV creates the ranked-elimination tally. It carries no
// configuration.
func NewIRV() *IRV { return &IRV{} }

// Name returns the registry identifier for the ranked-elimination method.
func (t *IRV) Name() string { return MethodIRV }

// Validate implements ports.Tally; the engine has nothing to configure.
func (t *IRV) Validate() error { return nil }

// IRVRound is the snapshot of one elimination round.
type IRVRound struct {
	// Number is the 1-based round index.
	Number int `json:"number"`

	// Active lists the candidates still in contention when the round
	// began, sorted by token.
	Active []string `json:"active"`

	// Totals maps each active candidate to its round total. Totals are
	// fractional when tied top preferences were split.
	Totals map[string]float64 `json:"totals"`

	// Exhausted is the ballot weight with no active preference left.
	Exhausted float64 `json:"exhausted"`

	// Eliminated lists the candidates removed at the end of the round,
	// sorted by token. Empty for the terminal round.
	Eliminated []string `json:"eliminated,omitempty"`

	// Transfers maps each eliminated candidate to where its weight went
	// in the next round, including the pseudo-destination "exhausted".
	Transfers map[string]map[string]float64 `json:"transfers,omitempty"`
}

// IRVResult carries the round-by-round elimination log.
type IRVResult struct {
	// ID is the stable identifier of this result.
	ID string `json:"id"`

	// Rounds is the complete per-round snapshot log.
	Rounds []IRVRound `json:"rounds"`

	// Winners holds the winning token, or several co-winners when the
	// active set could not be reduced further without a majority.
	Winners []string `json:"winners"`

	// Majority reports whether the winner crossed the majority
	// threshold, as opposed to surviving an unresolvable tie.
	Majority bool `json:"majority"`

	// Notices carries annotations attached to the result.
	Notices []domain.Notice `json:"notices,omitempty"`
}

// Method implements domain.Result.
func (r *IRVResult) Method() string { return MethodIRV }

// WinnerTokens implements domain.Result.
func (r *IRVResult) WinnerTokens() []string { return r.Winners }

// Notes implements domain.Result.
func (r *IRVResult) Notes() []domain.Notice { return r.Notices }

// Tally implements ports.Tally. It fails with a *domain.ConfigError on
// an empty candidate pool before round 1 and a *domain.DataError if any
// ballot references an undeclared candidate.
func (t *IRV) Tally(ctx context.Context, e *domain.Election) (domain.Result, error) {
	if err := checkPool(MethodIRV, e); err != nil {
		return nil, err
	}
	if err := checkBallots(e); err != nil {
		return nil, err
	}

	res := &IRVResult{ID: resultID(MethodIRV, e)}
	active := make(map[string]bool, len(e.Candidates))
	for tok := range e.Candidates {
		active[tok] = true
	}

	split := false
	for round := 1; len(active) > 0; round++ {
		snap := IRVRound{
			Number: round,
			Active: sortedTokens(active),
			Totals: make(map[string]float64, len(active)),
		}
		for tok := range active {
			snap.Totals[tok] = 0
		}

		// Count every ballot for its top active preference, splitting
		// evenly across a tied top group.
		counted := 0.0
		for _, b := range e.Ballots {
			top := topActive(b, active)
			if len(top) == 0 {
				snap.Exhausted += float64(b.Qty)
				continue
			}
			share := float64(b.Qty) / float64(len(top))
			if len(top) > 1 {
				split = true
			}
			for _, tok := range top {
				snap.Totals[tok] += share
			}
			counted += float64(b.Qty)
		}

		minTotal, maxTotal := extremes(snap.Totals)

		// Majority of the non-exhausted weight ends the count.
		if counted > 0 && maxTotal > counted/2 {
			winner := tokensAt(snap.Totals, maxTotal)
			res.Rounds = append(res.Rounds, snap)
			res.Winners = winner
			res.Majority = true
			break
		}

		// Every remaining candidate tied: eliminating the minimum would
		// empty the active set, so the survivors are co-winners.
		if minTotal == maxTotal {
			res.Rounds = append(res.Rounds, snap)
			res.Winners = snap.Active
			res.Notices = append(res.Notices, domain.NewNotice(domain.NoticeWarning,
				fmt.Sprintf("No majority reached; %d candidates remain tied as co-winners", len(snap.Active)),
				fmt.Sprintf("After round %d every remaining candidate holds an identical total of %.3f "+
					"votes. Eliminating the round minimum would remove the entire active set, so all "+
					"remaining candidates are reported as co-winners instead.", round, maxTotal)))
			break
		}

		// Batch-eliminate everything tied at the round minimum.
		elim := tokensAt(snap.Totals, minTotal)
		snap.Eliminated = elim
		nextActive := make(map[string]bool, len(active)-len(elim))
		for tok := range active {
			nextActive[tok] = true
		}
		for _, tok := range elim {
			delete(nextActive, tok)
		}
		snap.Transfers = transfers(e, active, nextActive, elim)
		res.Rounds = append(res.Rounds, snap)
		active = nextActive
	}

	if split {
		res.Notices = append(res.Notices, domain.NewNotice(domain.NoticeInfo,
			"Tied top preferences split ballot weight fractionally between candidates",
			"At least one ballot ranked several still-active candidates equally at its top "+
				"position. Its quantity was divided evenly among them, so round totals may be "+
				"non-integral. Ballot quantities in the source model remain integers; the "+
				"fractions exist only in round accounting."))
	}
	return res, nil
}

// topActive returns the ballot's best-ranked candidates among the active
// set, sorted by token. Several entries mean a tied top preference.
func topActive(b domain.Ballot, active map[string]bool) []string {
	best := 0
	for tok, p := range b.Prefs {
		if !p.HasRank() || !active[tok] {
			continue
		}
		if best == 0 || p.Rank < best {
			best = p.Rank
		}
	}
	if best == 0 {
		return nil
	}
	var top []string
	for tok, p := range b.Prefs {
		if active[tok] && p.Rank == best {
			top = append(top, tok)
		}
	}
	sort.Strings(top)
	return top
}

// transfers computes where each eliminated candidate's weight flows in
// the next round. Weight with no active next preference lands on the
// pseudo-destination "exhausted".
func transfers(e *domain.Election, active, nextActive map[string]bool, elim []string) map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(elim))
	for _, tok := range elim {
		out[tok] = make(map[string]float64)
	}
	for _, b := range e.Ballots {
		top := topActive(b, active)
		if len(top) == 0 {
			continue
		}
		share := float64(b.Qty) / float64(len(top))
		next := topActive(b, nextActive)
		for _, from := range top {
			dest, ok := out[from]
			if !ok {
				continue // not eliminated this round
			}
			if len(next) == 0 {
				dest["exhausted"] += share
				continue
			}
			nextShare := share / float64(len(next))
			for _, to := range next {
				dest[to] += nextShare
			}
		}
	}
	return out
}

// extremes returns the minimum and maximum values of a totals map.
func extremes(totals map[string]float64) (min, max float64) {
	first := true
	for _, v := range totals {
		if first {
			min, max, first = v, v, false
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// tokensAt returns the sorted tokens holding exactly the given total.
func tokensAt(totals map[string]float64, want float64) []string {
	var toks []string
	for tok, v := range totals {
		if v == want {
			toks = append(toks, tok)
		}
	}
	sort.Strings(toks)
	return toks
}
