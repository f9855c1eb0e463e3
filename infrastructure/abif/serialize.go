package abif

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ahrav/go-tally/internal/domain"
)

// ErrUnrepresentableBallot indicates a ballot whose preferences have no
// ABIF vote-line rendering, such as one mixing ranked and rating-only
// entries. Serialization fails rather than dropping content.
var ErrUnrepresentableBallot = errors.New("ballot has no ABIF rendering")

// Serialize converts the canonical ballot model to ABIF text. Candidate
// declarations are emitted in declaration order and vote lines are
// normalized to descending quantity; round-tripping the output through
// Parse yields a model semantically equal to the input. A ballot the
// grammar cannot express fails with a *domain.DataError wrapping
// ErrUnrepresentableBallot instead of serializing lossily.
func Serialize(e *domain.Election) (string, error) {
	var sb strings.Builder

	sb.WriteString("#------- metadata -------\n")
	writeMetadata(&sb, e.Meta)

	sb.WriteString("#------ candlines ------\n")
	for _, tok := range e.Tokens() {
		fmt.Fprintf(&sb, "=%s:[%s]\n", quoteToken(tok), e.Candidates[tok])
	}

	sb.WriteString("#------- votelines ------\n")
	ballots := make([]domain.Ballot, len(e.Ballots))
	copy(ballots, e.Ballots)
	sort.SliceStable(ballots, func(i, j int) bool { return ballots[i].Qty > ballots[j].Qty })
	for _, b := range ballots {
		prefs, err := prefString(b)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&sb, "%d:%s\n", b.Qty, prefs)
	}
	return sb.String(), nil
}

// writeMetadata emits the `{key: value}` records for every populated
// metadata field.
func writeMetadata(sb *strings.Builder, m domain.Metadata) {
	if m.Version != "" {
		fmt.Fprintf(sb, "{%s: %s}\n", keyVersion, m.Version)
	}
	if m.Title != "" {
		fmt.Fprintf(sb, "{%s: %s}\n", keyTitle, m.Title)
	}
	if m.Description != "" {
		fmt.Fprintf(sb, "{%s: %s}\n", keyDescription, m.Description)
	}
	if m.BallotType != "" {
		fmt.Fprintf(sb, "{%s: %s}\n", keyBallotType, m.BallotType)
	}
	if m.MinRating != nil {
		fmt.Fprintf(sb, "{%s: %d}\n", keyMinRating, *m.MinRating)
	}
	if m.MaxRating != nil {
		fmt.Fprintf(sb, "{%s: %d}\n", keyMaxRating, *m.MaxRating)
	}
}

// quoteToken wraps a candidate token in square brackets when it contains
// characters outside the bare-token alphabet.
func quoteToken(tok string) string {
	if bareTokenRE.MatchString(tok) {
		return tok
	}
	return "[" + tok + "]"
}

// prefString renders one ballot's preferences. Ranked ballots use the
// `>`/`=` ranking form with optional /rating suffixes; rating-only
// ballots use the comma-separated rating list form, with a trailing
// comma marking a one-entry list so it does not re-read as ranked.
func prefString(b domain.Ballot) (string, error) {
	ranked := b.RankedTokens()
	if len(ranked) > 0 {
		// The ranking form carries ranked entries only. A ballot that
		// also holds rating-only preferences fits neither form whole.
		if len(ranked) != len(b.Prefs) {
			for tok, p := range b.Prefs {
				if !p.HasRank() {
					return "", domain.NewDataError(tok,
						"ballot mixes ranked and rating-only preferences",
						ErrUnrepresentableBallot)
				}
			}
		}
		var sb strings.Builder
		prevRank := 0
		for i, tok := range ranked {
			p := b.Prefs[tok]
			if i > 0 {
				if p.Rank > prevRank {
					sb.WriteByte('>')
				} else {
					sb.WriteByte('=')
				}
			}
			sb.WriteString(quoteToken(tok))
			if p.Rating != nil {
				fmt.Fprintf(&sb, "/%d", *p.Rating)
			}
			prevRank = p.Rank
		}
		return sb.String(), nil
	}

	// Rating-only ballot: emit a deterministic comma list ordered by
	// descending rating, then token.
	toks := make([]string, 0, len(b.Prefs))
	for tok := range b.Prefs {
		toks = append(toks, tok)
	}
	sort.Slice(toks, func(i, j int) bool {
		ri, rj := 0, 0
		if r := b.Prefs[toks[i]].Rating; r != nil {
			ri = *r
		}
		if r := b.Prefs[toks[j]].Rating; r != nil {
			rj = *r
		}
		if ri != rj {
			return ri > rj
		}
		return toks[i] < toks[j]
	})
	parts := make([]string, 0, len(toks))
	for _, tok := range toks {
		p := b.Prefs[tok]
		if p.Rating == nil {
			return "", domain.NewDataError(tok,
				"preference carries neither rank nor rating",
				ErrUnrepresentableBallot)
		}
		parts = append(parts, fmt.Sprintf("%s/%d", quoteToken(tok), *p.Rating))
	}
	out := strings.Join(parts, ",")
	if len(parts) == 1 {
		// A lone token/rating would re-read as a rank-1 preference; the
		// trailing comma marks it as a rating list.
		out += ","
	}
	return out, nil
}
