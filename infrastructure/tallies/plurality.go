package tallies

import (
	"context"
	"fmt"

	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

var _ ports.Tally = (*Plurality)(nil)

// Plurality implements the first-past-the-post tally. Each ballot's
// single top-ranked candidate receives the ballot's quantity; a ballot
// whose top rank is tied among several candidates is an overvote and
// contributes to none of them. That is deliberate counting policy, not
// a defect to normalize away: splitting overvotes would misstate what
// the ballots actually say.
type Plurality struct{}

// NewPlurality creates the plurality tally. It carries no configuration.
func NewPlurality() *Plurality { return &Plurality{} }

// Name returns the registry identifier for the plurality method.
func (p *Plurality) Name() string { return MethodPlurality }

// Validate implements ports.Tally; plurality has nothing to configure.
func (p *Plurality) Validate() error { return nil }

// PluralityResult carries per-candidate first-preference totals.
type PluralityResult struct {
	// ID is the stable identifier of this result.
	ID string `json:"id"`

	// TopPicks maps each candidate token to its first-preference total.
	TopPicks map[string]int `json:"top_picks"`

	// TotalValid is the summed quantity of ballots that resolved to
	// exactly one top candidate.
	TotalValid int `json:"total_valid"`

	// Overvotes is the summed quantity of ballots whose top rank was
	// tied among several candidates.
	Overvotes int `json:"overvotes"`

	// Blanks is the summed quantity of ballots with no top choice.
	Blanks int `json:"blanks"`

	// Winners holds the winning token; ties resolve to the
	// lexicographically first token, with the full tie recorded in a
	// notice.
	Winners []string `json:"winners"`

	// Notices carries annotations attached to the result.
	Notices []domain.Notice `json:"notices,omitempty"`
}

// Method implements domain.Result.
func (r *PluralityResult) Method() string { return MethodPlurality }

// WinnerTokens implements domain.Result.
func (r *PluralityResult) WinnerTokens() []string { return r.Winners }

// Notes implements domain.Result.
func (r *PluralityResult) Notes() []domain.Notice { return r.Notices }

// Tally implements ports.Tally.
func (p *Plurality) Tally(ctx context.Context, e *domain.Election) (domain.Result, error) {
	res, err := p.Count(e)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Count computes the typed plurality result. It exists alongside Tally
// so the conversion engine can consume first-preference totals without
// going through the Result interface.
func (p *Plurality) Count(e *domain.Election) (*PluralityResult, error) {
	if err := checkPool(MethodPlurality, e); err != nil {
		return nil, err
	}
	if err := checkBallots(e); err != nil {
		return nil, err
	}

	res := &PluralityResult{
		ID:       resultID(MethodPlurality, e),
		TopPicks: make(map[string]int, len(e.Candidates)),
	}
	for tok := range e.Candidates {
		res.TopPicks[tok] = 0
	}

	for _, b := range e.Ballots {
		top := b.TopRanked()
		switch len(top) {
		case 0:
			res.Blanks += b.Qty
		case 1:
			res.TopPicks[top[0]] += b.Qty
			res.TotalValid += b.Qty
		default:
			res.Overvotes += b.Qty
		}
	}

	winner, leaders := leadingToken(res.TopPicks)
	res.Winners = []string{winner}
	if len(leaders) > 1 {
		res.Notices = append(res.Notices, domain.NewNotice(domain.NoticeInfo,
			fmt.Sprintf("Plurality tie among %d candidates broken by token order", len(leaders)),
			fmt.Sprintf("Candidates %v share the highest first-preference total of %d votes. "+
				"The reported winner is the lexicographically first token; no ballot-derived "+
				"signal distinguishes the tied candidates.", leaders, res.TopPicks[winner])))
	}
	if res.Overvotes > 0 {
		res.Notices = append(res.Notices, domain.NewNotice(domain.NoticeWarning,
			fmt.Sprintf("%d ballots overvoted at the top rank and counted for no candidate", res.Overvotes),
			"A ballot whose top rank is shared by several candidates expresses no single first "+
				"choice. Such ballots contribute to no candidate's total rather than being split; "+
				"they are reported separately as overvotes."))
	}
	return res, nil
}
