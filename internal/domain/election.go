// Package domain contains pure domain models and types for ballot data:
// elections, weighted ballots, notices, and ballot-type classification.
package domain

import (
	"fmt"
	"sort"
)

// Pref records one candidate's standing on a single ballot.
// A zero Rank means the candidate is unranked; a nil Rating means the
// ballot expresses no rating for the candidate.
type Pref struct {
	// Rank is the 1-based preference position; 1 is most preferred.
	// Equal ranks on the same ballot express a tie. Zero means unranked.
	Rank int `json:"rank,omitempty"`

	// Rating is the score given to the candidate, if any. Ratings must
	// lie within the election's declared [MinRating, MaxRating] bounds.
	Rating *int `json:"rating,omitempty"`
}

// HasRank reports whether the preference carries rank information.
func (p Pref) HasRank() bool { return p.Rank > 0 }

// HasRating reports whether the preference carries rating information.
func (p Pref) HasRating() bool { return p.Rating != nil }

// Ballot is a weighted ballot: Qty identical physical ballots recorded
// as a single entry. Candidates absent from Prefs are not preferred and
// exhaust for ranked methods.
type Ballot struct {
	// Qty is the number of identical physical ballots this entry
	// represents. Always at least 1 in a valid election.
	Qty int `json:"qty"`

	// Prefs maps candidate tokens to their rank and/or rating.
	Prefs map[string]Pref `json:"prefs"`
}

// Blank reports whether the ballot expresses no preference at all.
func (b Ballot) Blank() bool { return len(b.Prefs) == 0 }

// RankedTokens returns the ballot's candidate tokens ordered by ascending
// rank. Unranked candidates are omitted. Candidates sharing a rank are
// ordered lexicographically so the result is deterministic.
func (b Ballot) RankedTokens() []string {
	toks := make([]string, 0, len(b.Prefs))
	for tok, p := range b.Prefs {
		if p.HasRank() {
			toks = append(toks, tok)
		}
	}
	sort.Slice(toks, func(i, j int) bool {
		ri, rj := b.Prefs[toks[i]].Rank, b.Prefs[toks[j]].Rank
		if ri != rj {
			return ri < rj
		}
		return toks[i] < toks[j]
	})
	return toks
}

// TopRanked returns the candidates holding the ballot's best (lowest)
// rank value. The result is empty for blank or rank-free ballots.
func (b Ballot) TopRanked() []string {
	best := 0
	for _, p := range b.Prefs {
		if p.HasRank() && (best == 0 || p.Rank < best) {
			best = p.Rank
		}
	}
	if best == 0 {
		return nil
	}
	var top []string
	for tok, p := range b.Prefs {
		if p.Rank == best {
			top = append(top, tok)
		}
	}
	sort.Strings(top)
	return top
}

// Metadata carries the election-level fields of the ballot model.
type Metadata struct {
	// Title is the human-readable election title.
	Title string `json:"title,omitempty"`

	// Description provides free-form context about the election.
	Description string `json:"description,omitempty"`

	// BallotType is the declared ballot type, when the source data
	// declares one. An explicit declaration always wins over detection.
	BallotType BallotType `json:"ballot_type,omitempty"`

	// MinRating and MaxRating bound the ratings ballots may carry.
	// Nil means the bound was not declared.
	MinRating *int `json:"min_rating,omitempty"`
	MaxRating *int `json:"max_rating,omitempty"`

	// Version records the interchange-format version the model was
	// built from, when known.
	Version string `json:"version,omitempty"`
}

// Election is the canonical ballot model: candidates, weighted ballots,
// and metadata. It is constructed once, by the codec or an ingestion
// adapter, and treated as read-only by every tally and conversion.
// Components that need a transformed ballot set build a new Election.
type Election struct {
	// Meta holds the election-level metadata.
	Meta Metadata `json:"metadata"`

	// Candidates maps stable candidate tokens to display names.
	Candidates map[string]string `json:"candidates"`

	// Order preserves candidate declaration order, which is the
	// tie-break of last resort for viability rankings.
	Order []string `json:"order"`

	// Ballots is the ordered sequence of weighted ballots.
	Ballots []Ballot `json:"ballots"`
}

// TotalQty returns the total ballot weight: the sum of every ballot's
// quantity.
func (e *Election) TotalQty() int {
	total := 0
	for _, b := range e.Ballots {
		total += b.Qty
	}
	return total
}

// Tokens returns the candidate tokens in declaration order. Tokens that
// were registered without an Order entry are appended lexicographically
// so every candidate appears exactly once.
func (e *Election) Tokens() []string {
	seen := make(map[string]bool, len(e.Candidates))
	toks := make([]string, 0, len(e.Candidates))
	for _, tok := range e.Order {
		if _, ok := e.Candidates[tok]; ok && !seen[tok] {
			toks = append(toks, tok)
			seen[tok] = true
		}
	}
	var rest []string
	for tok := range e.Candidates {
		if !seen[tok] {
			rest = append(rest, tok)
		}
	}
	sort.Strings(rest)
	return append(toks, rest...)
}

// Clone returns a deep copy of the election. Conversion strategies use
// Clone as the starting point for the new ballot model they produce.
func (e *Election) Clone() *Election {
	out := &Election{
		Meta:       e.Meta,
		Candidates: make(map[string]string, len(e.Candidates)),
		Order:      append([]string(nil), e.Order...),
		Ballots:    make([]Ballot, len(e.Ballots)),
	}
	if e.Meta.MinRating != nil {
		v := *e.Meta.MinRating
		out.Meta.MinRating = &v
	}
	if e.Meta.MaxRating != nil {
		v := *e.Meta.MaxRating
		out.Meta.MaxRating = &v
	}
	for tok, name := range e.Candidates {
		out.Candidates[tok] = name
	}
	for i, b := range e.Ballots {
		nb := Ballot{Qty: b.Qty, Prefs: make(map[string]Pref, len(b.Prefs))}
		for tok, p := range b.Prefs {
			if p.Rating != nil {
				r := *p.Rating
				p.Rating = &r
			}
			nb.Prefs[tok] = p
		}
		out.Ballots[i] = nb
	}
	return out
}

// Validate checks the structural invariants of the ballot model: every
// referenced candidate is declared, quantities are positive, ranks are
// positive where present, and ratings honor the declared bounds.
// It returns a *DataError describing the first violation found.
func (e *Election) Validate() error {
	if len(e.Candidates) == 0 {
		return NewDataError("", "election declares no candidates", ErrEmptyCandidatePool)
	}
	for i, b := range e.Ballots {
		if b.Qty < 1 {
			return NewDataError("", fmt.Sprintf("ballot %d has non-positive quantity %d", i, b.Qty), ErrInvalidQuantity)
		}
		for tok, p := range b.Prefs {
			if _, ok := e.Candidates[tok]; !ok {
				return NewDataError(tok, fmt.Sprintf("ballot %d references undeclared candidate", i), ErrUnknownCandidate)
			}
			if p.Rank < 0 {
				return NewDataError(tok, fmt.Sprintf("ballot %d carries negative rank %d", i, p.Rank), ErrInvalidRank)
			}
			if p.Rating != nil {
				if e.Meta.MinRating != nil && *p.Rating < *e.Meta.MinRating {
					return NewDataError(tok, fmt.Sprintf("ballot %d rating %d below declared minimum %d", i, *p.Rating, *e.Meta.MinRating), ErrRatingOutOfBounds)
				}
				if e.Meta.MaxRating != nil && *p.Rating > *e.Meta.MaxRating {
					return NewDataError(tok, fmt.Sprintf("ballot %d rating %d above declared maximum %d", i, *p.Rating, *e.Meta.MaxRating), ErrRatingOutOfBounds)
				}
			}
		}
	}
	return nil
}

// IntPtr returns a pointer to v. It keeps literal ratings readable when
// building elections by hand, mostly in tests and fixtures.
func IntPtr(v int) *int { return &v }
