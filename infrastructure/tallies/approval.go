package tallies

import (
	"context"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

var _ ports.Tally = (*Approval)(nil)

// Approval mode selectors. Automatic picks native counting for ballots
// that already express approvals and falls back to strategic simulation
// for ranked or rated ballots.
const (
	ApprovalModeAutomatic = "automatic"
	ApprovalModeNative    = "native"
	ApprovalModeSimulate  = "simulate"
)

// Simulation strategy names, shared with the conversion package.
const (
	StrategyFavoriteViableHalf = "favorite_viable_half"
	StrategyAllRankedApproved  = "all_ranked_approved"
)

// Approval implements approval counting. A candidate's total is the
// summed quantity of ballots approving it; the highest total wins.
type Approval struct {
	config ApprovalConfig
}

// ApprovalConfig holds the approval-counting parameters.
type ApprovalConfig struct {
	// Mode selects how ballots become approvals: "native" counts
	// approvals the ballots already express, "simulate" derives them
	// from rankings with a strategic model, and "automatic" picks per
	// the detected ballot type.
	Mode string `yaml:"mode" json:"mode" validate:"oneof=automatic native simulate"`

	// Strategy selects the simulation model used when Mode resolves to
	// simulate: "favorite_viable_half" approves down each ballot's
	// ranking to half of the Droop-viable set, "all_ranked_approved"
	// approves every ranked candidate. Empty selects
	// favorite_viable_half.
	Strategy string `yaml:"strategy" json:"strategy" validate:"omitempty,oneof=favorite_viable_half all_ranked_approved"`
}

// DefaultApprovalConfig returns the automatic-mode configuration with
// the Droop-quota simulation.
func DefaultApprovalConfig() ApprovalConfig {
	return ApprovalConfig{Mode: ApprovalModeAutomatic, Strategy: StrategyFavoriteViableHalf}
}

// NewApproval creates an approval tally with the given configuration.
func NewApproval(config ApprovalConfig) (*Approval, error) {
	if err := validate.Struct(config); err != nil {
		return nil, domain.NewConfigError(MethodApproval, "configuration validation failed", err)
	}
	return &Approval{config: config}, nil
}

// Name returns the registry identifier for the approval method.
func (t *Approval) Name() string { return MethodApproval }

// Validate implements ports.Tally.
func (t *Approval) Validate() error {
	if err := validate.Struct(t.config); err != nil {
		return domain.NewConfigError(MethodApproval, "configuration validation failed", err)
	}
	return nil
}

// ApprovalResult carries per-candidate approval totals.
type ApprovalResult struct {
	// ID is the stable identifier of this result.
	ID string `json:"id"`

	// Mode records whether the totals came from native approvals or a
	// strategic simulation.
	Mode string `json:"mode"`

	// Counts maps each candidate to its approval total.
	Counts map[string]int `json:"counts"`

	// TotalBallots is the summed quantity of all ballots counted.
	TotalBallots int `json:"total_ballots"`

	// TotalApprovals is the sum of every approval cast across all
	// candidates.
	TotalApprovals int `json:"total_approvals"`

	// WinnerPct is the share of ballots approving the winner, in
	// percent. On a tie all winners hold the same share.
	WinnerPct float64 `json:"winner_pct"`

	// Winners holds the leading candidate, or all of them on a tie.
	Winners []string `json:"winners"`

	// Notices carries annotations attached to the result. Simulated
	// totals always carry a disclaimer describing the strategic model.
	Notices []domain.Notice `json:"notices,omitempty"`
}

// Method implements domain.Result.
func (r *ApprovalResult) Method() string { return MethodApproval }

// WinnerTokens implements domain.Result.
func (r *ApprovalResult) WinnerTokens() []string { return r.Winners }

// Notes implements domain.Result.
func (r *ApprovalResult) Notes() []domain.Notice { return r.Notices }

// UnmarshalParameters deserializes YAML parameters into the tally's
// configuration with validation.
func (t *Approval) UnmarshalParameters(params yaml.Node) error {
	var config ApprovalConfig
	if err := params.Decode(&config); err != nil {
		return domain.NewConfigError(MethodApproval, "failed to decode parameters", err)
	}
	if config.Mode == "" {
		config.Mode = ApprovalModeAutomatic
	}
	if err := validate.Struct(config); err != nil {
		return domain.NewConfigError(MethodApproval, "parameter validation failed", err)
	}
	t.config = config
	return nil
}

// Tally implements ports.Tally.
func (t *Approval) Tally(ctx context.Context, e *domain.Election) (domain.Result, error) {
	if err := checkPool(MethodApproval, e); err != nil {
		return nil, err
	}
	if err := checkBallots(e); err != nil {
		return nil, err
	}

	mode := t.config.Mode
	if mode == ApprovalModeAutomatic {
		switch domain.DetectBallotType(e) {
		case domain.TypeApproval, domain.TypeMultiSelect:
			mode = ApprovalModeNative
		default:
			mode = ApprovalModeSimulate
		}
	}

	res := &ApprovalResult{
		ID:           resultID(MethodApproval, e),
		Mode:         mode,
		Counts:       make(map[string]int, len(e.Candidates)),
		TotalBallots: e.TotalQty(),
	}
	for tok := range e.Candidates {
		res.Counts[tok] = 0
	}

	switch mode {
	case ApprovalModeNative:
		for _, b := range e.Ballots {
			for tok, p := range b.Prefs {
				if approves(p) {
					res.Counts[tok] += b.Qty
				}
			}
		}
	case ApprovalModeSimulate:
		rankedWeight := 0
		for _, b := range e.Ballots {
			if len(b.RankedTokens()) > 0 {
				rankedWeight += b.Qty
			}
		}
		if rankedWeight == 0 {
			res.Notices = append(res.Notices, domain.NewNotice(domain.NoticeWarning,
				"no ranked preferences available to simulate approvals from",
				"Every ballot lacks rankings, so the simulation casts zero approvals. "+
					"Derive ranks from ratings first, or count the election natively."))
		}
		switch t.config.Strategy {
		case StrategyAllRankedApproved:
			for _, b := range e.Ballots {
				for tok, p := range b.Prefs {
					if p.HasRank() {
						res.Counts[tok] += b.Qty
					}
				}
			}
			res.Notices = append(res.Notices, domain.NewNotice(domain.NoticeDisclaimer,
				"Approvals derived from rankings; every ranked candidate counted as approved",
				"Each ballot approves every candidate it ranked, regardless of position, so "+
					"totals overstate support for low-ranked candidates. Actual approval ballots "+
					"could differ."))
		default:
			plan, err := NewViablePlan(e)
			if err != nil {
				return nil, err
			}
			for _, b := range e.Ballots {
				for _, tok := range plan.ApprovedTokens(b) {
					res.Counts[tok] += b.Qty
				}
			}
			res.Notices = append(res.Notices, plan.Disclaimer())
		}
	default:
		return nil, domain.NewConfigError(MethodApproval,
			fmt.Sprintf("unsupported mode %q", mode), domain.ErrInvalidConfiguration)
	}

	for _, n := range res.Counts {
		res.TotalApprovals += n
	}

	_, leaders := leadingToken(res.Counts)
	res.Winners = leaders
	if res.TotalBallots > 0 {
		res.WinnerPct = 100 * float64(res.Counts[leaders[0]]) / float64(res.TotalBallots)
	}
	if len(leaders) > 1 {
		res.Notices = append(res.Notices, domain.NewNotice(domain.NoticeWarning,
			fmt.Sprintf("%d candidates tie for the most approvals", len(leaders)),
			fmt.Sprintf("Candidates %v all hold %d approvals. All are reported as winners; "+
				"resolve the tie with another method or an external rule.",
				leaders, res.Counts[leaders[0]])))
	}
	return res, nil
}

// approves reports whether a single preference expresses approval: an
// explicit rating of one, or membership in the ballot's top rank group
// when no rating is present.
func approves(p domain.Pref) bool {
	if p.HasRating() {
		return *p.Rating == 1
	}
	return p.Rank == 1
}

// ViablePlan is the strategic model that turns a ranked election into
// approval decisions. It assumes each voter knows the first-preference
// standings, estimates how many candidates are viable with a Droop
// quota, and approves down their ranking until half of the viable set
// (rounded up) is covered.
type ViablePlan struct {
	// Seats is the smallest number of notional seats at which the
	// frontrunner meets the Droop quota.
	Seats int

	// VCM is the viable-candidate maximum: how many viable candidates a
	// single ballot will approve, floor((Seats+1)/2).
	VCM int

	// Viable holds the top Seats candidates by first-preference total,
	// ties broken by declaration order.
	Viable []string

	// FirstPrefs holds the first-preference totals the plan was built
	// from.
	FirstPrefs map[string]int

	// TotalValid is the summed quantity of ballots that resolved to a
	// single top choice, the vote count the Droop quota is taken over.
	TotalValid int

	viable map[string]bool
}

// NewViablePlan builds the strategic approval model for an election.
// First-preference totals come from plurality counting, so ballots with
// tied top ranks contribute to no candidate's viability estimate.
func NewViablePlan(e *domain.Election) (*ViablePlan, error) {
	counts, err := NewPlurality().Count(e)
	if err != nil {
		return nil, err
	}

	plan := &ViablePlan{
		FirstPrefs: counts.TopPicks,
		TotalValid: counts.TotalValid,
		viable:     make(map[string]bool),
	}

	frontrunner := 0
	for _, n := range counts.TopPicks {
		if n > frontrunner {
			frontrunner = n
		}
	}

	// Smallest seat count at which the frontrunner reaches the Droop
	// quota floor(total/(seats+1))+1. Capped at the candidate count so
	// a weak field cannot inflate the viable set past the pool.
	plan.Seats = len(e.Candidates)
	for s := 1; s < len(e.Candidates); s++ {
		if plan.TotalValid/(s+1)+1 <= frontrunner {
			plan.Seats = s
			break
		}
	}
	plan.VCM = (plan.Seats + 1) / 2

	// Viable set: top Seats candidates by first preference, ties broken
	// by declaration order.
	order := e.Tokens()
	pos := make(map[string]int, len(order))
	for i, tok := range order {
		pos[tok] = i
	}
	ranked := append([]string(nil), order...)
	sort.SliceStable(ranked, func(i, j int) bool {
		ci, cj := plan.FirstPrefs[ranked[i]], plan.FirstPrefs[ranked[j]]
		if ci != cj {
			return ci > cj
		}
		return pos[ranked[i]] < pos[ranked[j]]
	})
	if plan.Seats < len(ranked) {
		ranked = ranked[:plan.Seats]
	}
	plan.Viable = ranked
	for _, tok := range ranked {
		plan.viable[tok] = true
	}
	return plan, nil
}

// ApprovedTokens returns the candidates a single ballot approves under
// the plan: everything ranked at or above the VCM-th viable candidate
// on the ballot, intervening non-viable candidates included. A ballot
// ranking fewer viable candidates approves through its last viable one;
// a ballot ranking none casts zero approvals.
func (p *ViablePlan) ApprovedTokens(b domain.Ballot) []string {
	ranked := b.RankedTokens()
	cutoff := 0
	found := 0
	for _, tok := range ranked {
		if p.viable[tok] {
			found++
			cutoff = b.Prefs[tok].Rank
			if found == p.VCM {
				break
			}
		}
	}
	if found == 0 {
		return nil
	}
	var approved []string
	for _, tok := range ranked {
		if b.Prefs[tok].Rank <= cutoff {
			approved = append(approved, tok)
		}
	}
	return approved
}

// Disclaimer returns the notice every simulated approval result must
// carry.
func (p *ViablePlan) Disclaimer() domain.Notice {
	return domain.NewNotice(domain.NoticeDisclaimer,
		"Approvals simulated from rankings; voters never cast actual approvals",
		fmt.Sprintf("Approval decisions were derived from rankings with a strategic model: "+
			"with %d valid first-preference votes and a frontrunner total of %d, the Droop "+
			"quota is met at %d notional seats, so each ballot approves down its ranking until "+
			"%d of the viable candidates %v are covered. Actual approval ballots could differ.",
			p.TotalValid, p.FirstPrefs[p.Viable[0]], p.Seats, p.VCM, p.Viable))
}
