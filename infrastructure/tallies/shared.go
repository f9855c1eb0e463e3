// Package tallies provides the tally engines that compute election
// results from the canonical ballot model: plurality, ranked elimination,
// pairwise/Condorcet, score runoff, and approval.
package tallies

import (
	"errors"
	"fmt"
	"sort"

	"github.com/agnivade/levenshtein"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ahrav/go-tally/internal/domain"
)

// Method names under which the engines register.
const (
	MethodPlurality = "plurality"
	MethodIRV       = "irv"
	MethodPairwise  = "pairwise"
	MethodSTAR      = "star"
	MethodApproval  = "approval"
)

// Common errors returned by tally engines.
var (
	// ErrNoCandidates is returned when an election declares no candidates.
	ErrNoCandidates = errors.New("election has no candidates")

	// ErrNoRankings is returned when a ranked method receives ballots
	// carrying no rank data at all.
	ErrNoRankings = errors.New("ballots carry no rank data")
)

// Package-level validator instance for configuration validation.
// Uses go-playground/validator v10 for struct tag-based validation.
var validate = validator.New()

// resultID derives a stable identifier for a result. Tally computation
// is deterministic, so the identifier must be too: the same method run
// on the same election always yields the same ID.
func resultID(method string, e *domain.Election) string {
	seed := fmt.Sprintf("tally:%s:%s:%d:%d", method, e.Meta.Title, len(e.Candidates), e.TotalQty())
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(seed)).String()
}

// checkPool rejects an election whose candidate pool is empty. Every
// engine calls it before touching a single ballot.
func checkPool(component string, e *domain.Election) error {
	if len(e.Candidates) == 0 {
		return domain.NewConfigError(component, "cannot tally", ErrNoCandidates)
	}
	return nil
}

// checkBallots validates ballot references against the candidate pool.
// A ballot naming an undeclared candidate is a data error, never
// silently dropped.
func checkBallots(e *domain.Election) error {
	for i, b := range e.Ballots {
		if b.Qty < 1 {
			return domain.NewDataError("", fmt.Sprintf("ballot %d has quantity %d", i, b.Qty), domain.ErrInvalidQuantity)
		}
		for tok := range b.Prefs {
			if _, ok := e.Candidates[tok]; !ok {
				de := domain.NewDataError(tok, fmt.Sprintf("ballot %d references undeclared candidate", i), domain.ErrUnknownCandidate)
				de.Suggestion = nearest(tok, e.Tokens())
				return de
			}
		}
	}
	return nil
}

// nearest returns the declared token closest to tok by Levenshtein
// distance, or "" when nothing is within two edits.
func nearest(tok string, declared []string) string {
	best := ""
	bestDist := 3
	for _, cand := range declared {
		if d := levenshtein.ComputeDistance(tok, cand); d < bestDist {
			best, bestDist = cand, d
		}
	}
	return best
}

// leadingToken returns the candidate with the highest total, breaking
// ties by lexicographic token order. The second return is every token
// sharing the highest total, sorted.
func leadingToken(totals map[string]int) (string, []string) {
	best := 0
	first := true
	var leaders []string
	for tok, n := range totals {
		switch {
		case first || n > best:
			best, first = n, false
			leaders = []string{tok}
		case n == best:
			leaders = append(leaders, tok)
		}
	}
	sort.Strings(leaders)
	if len(leaders) == 0 {
		return "", nil
	}
	return leaders[0], leaders
}

// sortedTokens returns the map's keys sorted lexicographically, for
// deterministic iteration in reports and notices.
func sortedTokens[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
