package domain

import "golang.org/x/text/cases"

// BallotType classifies how an election's ballots express preference.
type BallotType string

// Recognized ballot types. TypeUnknown means the ballots carry a mix of
// signals no tally should guess about; consumers must attach a warning
// notice instead of picking a type themselves.
const (
	TypeRanked      BallotType = "ranked"
	TypeRated       BallotType = "rated"
	TypeApproval    BallotType = "approval"
	TypeMultiSelect BallotType = "multi_select"
	TypeUnknown     BallotType = "unknown"
)

// declaredAliases maps case-folded declared ballot-type strings onto the
// canonical types. The fold caser handles Unicode-aware case-insensitive
// comparison the same way across all metadata matching.
var (
	foldCaser       = cases.Fold()
	declaredAliases = map[string]BallotType{
		"ranked":       TypeRanked,
		"rated":        TypeRated,
		"score":        TypeRated,
		"approval":     TypeApproval,
		"choose_many":  TypeMultiSelect,
		"multi_select": TypeMultiSelect,
		"multi-select": TypeMultiSelect,
	}
)

// SyntheticRating maps a rank onto the declared rating range with a
// Borda-like linear scale: rank 1 receives max, each subsequent rank
// steps down by one, and nothing falls below min. Results computed from
// synthesized ratings must carry a disclaimer notice.
func SyntheticRating(rank, min, max int) int {
	r := max - (rank - 1)
	if r < min {
		return min
	}
	return r
}

// ParseBallotType maps a declared ballot-type string onto a canonical
// BallotType, case-insensitively. Unrecognized declarations come back as
// TypeUnknown with ok=false so callers can warn about them.
func ParseBallotType(declared string) (BallotType, bool) {
	bt, ok := declaredAliases[foldCaser.String(declared)]
	if !ok {
		return TypeUnknown, false
	}
	return bt, true
}

// DetectBallotType classifies an election's ballots. An explicit declared
// type in the metadata wins outright. Otherwise the ballots themselves
// decide: ratings restricted to {0,1} with no rank data means approval;
// rank data with no rating data means ranked; ratings spanning more than
// two distinct values means rated. Anything else is TypeUnknown.
func DetectBallotType(e *Election) BallotType {
	if e.Meta.BallotType != "" {
		if bt, ok := ParseBallotType(string(e.Meta.BallotType)); ok {
			return bt
		}
		return TypeUnknown
	}

	hasRank := false
	hasRating := false
	ratings := make(map[int]struct{})
	for _, b := range e.Ballots {
		for _, p := range b.Prefs {
			if p.HasRank() {
				hasRank = true
			}
			if p.HasRating() {
				hasRating = true
				ratings[*p.Rating] = struct{}{}
			}
		}
	}

	binary := true
	for r := range ratings {
		if r != 0 && r != 1 {
			binary = false
			break
		}
	}

	switch {
	case hasRating && binary && !hasRank:
		return TypeApproval
	case hasRank && !hasRating:
		return TypeRanked
	case len(ratings) > 2:
		return TypeRated
	default:
		return TypeUnknown
	}
}
