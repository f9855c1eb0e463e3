package tallies

import (
	"context"
	"fmt"
	"sort"

	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

var _ ports.Tally = (*Pairwise)(nil)

// Pairwise implements the pairwise/Condorcet tally. It builds the full
// head-to-head preference matrix, derives a win-loss-tie record per
// candidate, and reports the Condorcet winner when one exists. When no
// candidate beats every other, it reports that fact along with a
// Copeland ranking as a deterministic fallback ordering.
type Pairwise struct{}

// NewPairwise creates the pairwise tally. It carries no configuration.
func NewPairwise() *Pairwise { return &Pairwise{} }

// Name returns the registry identifier for the pairwise method.
func (t *Pairwise) Name() string { return MethodPairwise }

// Validate implements ports.Tally; the engine has nothing to configure.
func (t *Pairwise) Validate() error { return nil }

// WinLossTie is one candidate's head-to-head record.
type WinLossTie struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Ties   int `json:"ties"`
}

// PairwiseResult carries the preference matrix and derived records.
type PairwiseResult struct {
	// ID is the stable identifier of this result.
	ID string `json:"id"`

	// Matrix holds cell[A][B] = total quantity of ballots ranking A
	// strictly above B. Ballots ranking the pair equally, or ranking
	// neither, contribute to neither cell. The diagonal is absent.
	Matrix map[string]map[string]int `json:"matrix"`

	// Records maps each candidate to its win-loss-tie record.
	Records map[string]WinLossTie `json:"records"`

	// CondorcetWinner is set when one candidate beats every other
	// head-to-head.
	CondorcetWinner string `json:"condorcet_winner,omitempty"`

	// Copeland maps each candidate to its Copeland score: one point per
	// pairwise win, half a point per pairwise tie.
	Copeland map[string]float64 `json:"copeland"`

	// Ranking orders candidates by descending Copeland score with
	// lexicographic token tie-break.
	Ranking []string `json:"ranking"`

	// Winners holds the Condorcet winner, or the Copeland leader(s)
	// when no Condorcet winner exists.
	Winners []string `json:"winners"`

	// Notices carries annotations attached to the result.
	Notices []domain.Notice `json:"notices,omitempty"`
}

// Method implements domain.Result.
func (r *PairwiseResult) Method() string { return MethodPairwise }

// WinnerTokens implements domain.Result.
func (r *PairwiseResult) WinnerTokens() []string { return r.Winners }

// Notes implements domain.Result.
func (r *PairwiseResult) Notes() []domain.Notice { return r.Notices }

// Tally implements ports.Tally.
func (t *Pairwise) Tally(ctx context.Context, e *domain.Election) (domain.Result, error) {
	if err := checkPool(MethodPairwise, e); err != nil {
		return nil, err
	}
	if err := checkBallots(e); err != nil {
		return nil, err
	}

	toks := e.Tokens()
	res := &PairwiseResult{
		ID:       resultID(MethodPairwise, e),
		Matrix:   Matrix(e),
		Records:  make(map[string]WinLossTie, len(toks)),
		Copeland: make(map[string]float64, len(toks)),
	}

	for _, a := range toks {
		rec := WinLossTie{}
		for _, b := range toks {
			if a == b {
				continue
			}
			switch {
			case res.Matrix[a][b] > res.Matrix[b][a]:
				rec.Wins++
			case res.Matrix[a][b] < res.Matrix[b][a]:
				rec.Losses++
			default:
				rec.Ties++
			}
		}
		res.Records[a] = rec
		res.Copeland[a] = float64(rec.Wins) + 0.5*float64(rec.Ties)
	}

	res.Ranking = append(res.Ranking, toks...)
	sort.Slice(res.Ranking, func(i, j int) bool {
		a, b := res.Ranking[i], res.Ranking[j]
		if res.Copeland[a] != res.Copeland[b] {
			return res.Copeland[a] > res.Copeland[b]
		}
		return a < b
	})

	for _, tok := range toks {
		if res.Records[tok].Wins == len(toks)-1 {
			res.CondorcetWinner = tok
			break
		}
	}

	if res.CondorcetWinner != "" {
		res.Winners = []string{res.CondorcetWinner}
		return res, nil
	}

	top := res.Copeland[res.Ranking[0]]
	for _, tok := range res.Ranking {
		if res.Copeland[tok] == top {
			res.Winners = append(res.Winners, tok)
		}
	}
	sort.Strings(res.Winners)
	res.Notices = append(res.Notices, domain.NewNotice(domain.NoticeInfo,
		"No Condorcet winner; ranking falls back to Copeland scores",
		fmt.Sprintf("No candidate beats every other candidate head-to-head, so the reported "+
			"ordering is the Copeland ranking: one point per pairwise win and half a point per "+
			"pairwise tie. The leading Copeland score is %.1f. Copeland ranking is a deterministic "+
			"fallback; it does not resolve the underlying cycle or tie.", top)))
	return res, nil
}

// Matrix builds the N-by-N pairwise preference matrix for an election.
// An unranked candidate on a ballot ranks below every ranked candidate,
// so a ballot ranking A but not B counts for cell[A][B].
func Matrix(e *domain.Election) map[string]map[string]int {
	toks := e.Tokens()
	matrix := make(map[string]map[string]int, len(toks))
	for _, a := range toks {
		matrix[a] = make(map[string]int, len(toks)-1)
		for _, b := range toks {
			if a != b {
				matrix[a][b] = 0
			}
		}
	}

	const unranked = int(^uint(0) >> 1) // effectively below any real rank

	for _, ballot := range e.Ballots {
		ranks := make(map[string]int, len(toks))
		for _, tok := range toks {
			ranks[tok] = unranked
			if p, ok := ballot.Prefs[tok]; ok && p.HasRank() {
				ranks[tok] = p.Rank
			}
		}
		for _, a := range toks {
			for _, b := range toks {
				if a != b && ranks[a] < ranks[b] {
					matrix[a][b] += ballot.Qty
				}
			}
		}
	}
	return matrix
}
