// Package abif implements the line-oriented ABIF interchange format:
// parsing ABIF text into the canonical ballot model and serializing a
// model back to text with a semantic round-trip guarantee.
package abif

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/ahrav/go-tally/internal/domain"
)

// Compiled line patterns, immutable after initialization. The grammar is
// line oriented: metadata records, candidate declarations, vote lines,
// and comments.
var (
	// metadataRE matches `{key: value}` records. Keys and values may be
	// single- or double-quoted.
	metadataRE = regexp.MustCompile(`^\{\s*['"]?([\w][\w\s-]*?)['"]?\s*:\s*['"]?(.*?)['"]?\s*\}\s*$`)

	// candlineRE matches `=TOKEN:[Display Name]` declarations. The token
	// may be bracket- or double-quote wrapped; the display name may be
	// bracket wrapped.
	candlineRE = regexp.MustCompile(`^=\s*["\[]?([^:"\]]*)["\]]?\s*:\s*\[?([^\]]*)\]?\s*$`)

	// votelineRE matches `quantity:preferences` ballot lines.
	votelineRE = regexp.MustCompile(`^(\d+):(.*)$`)

	// bareTokenRE describes candidate tokens that need no quoting.
	bareTokenRE = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// Parse errors wrapped into *domain.FormatError values.
var (
	errUnparseableLine   = errors.New("unparseable line")
	errUndeclaredToken   = errors.New("candidate token used before declaration")
	errEmptyToken        = errors.New("empty candidate token")
	errMixedDelimiters   = errors.New("mixed rank and rating delimiters")
	errMissingRating     = errors.New("rating list entry without /rating suffix")
	errUnterminatedQuote = errors.New("unterminated quoted token")
	errZeroQuantity      = errors.New("ballot quantity must be at least 1")
)

// Metadata keys recognized on `{key: value}` lines. The ballotcount key
// is deliberately ignored: ballots are always recounted from the vote
// lines rather than trusted from metadata.
const (
	keyTitle       = "title"
	keyDescription = "description"
	keyBallotType  = "ballot_type"
	keyMinRating   = "min_rating"
	keyMaxRating   = "max_rating"
	keyVersion     = "version"
	keyBallotCount = "ballotcount"
)

// Parse converts ABIF text into the canonical ballot model. It fails with
// a *domain.FormatError carrying line context on the first malformed
// line, undeclared candidate reference, duplicate declaration, or rating
// outside the declared bounds; no partial model is returned on failure.
func Parse(text string) (*domain.Election, error) {
	e := &domain.Election{
		Meta:       domain.Metadata{},
		Candidates: make(map[string]string),
	}

	for i, raw := range strings.Split(text, "\n") {
		lineNum := i + 1
		line := stripComment(raw)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "{"):
			m := metadataRE.FindStringSubmatch(line)
			if m == nil {
				return nil, domain.NewFormatError(lineNum, line, errUnparseableLine)
			}
			if err := applyMetadata(e, m[1], m[2]); err != nil {
				return nil, domain.NewFormatError(lineNum, line, err)
			}

		case strings.HasPrefix(line, "="):
			m := candlineRE.FindStringSubmatch(line)
			if m == nil {
				return nil, domain.NewFormatError(lineNum, line, errUnparseableLine)
			}
			tok := strings.TrimSpace(m[1])
			if tok == "" {
				return nil, domain.NewFormatError(lineNum, line, errEmptyToken)
			}
			if _, dup := e.Candidates[tok]; dup {
				return nil, domain.NewFormatError(lineNum, line, domain.ErrDuplicateCandidate)
			}
			e.Candidates[tok] = strings.TrimSpace(m[2])
			e.Order = append(e.Order, tok)

		default:
			m := votelineRE.FindStringSubmatch(line)
			if m == nil {
				return nil, domain.NewFormatError(lineNum, line, errUnparseableLine)
			}
			qty, err := strconv.Atoi(m[1])
			if err != nil || qty < 1 {
				return nil, domain.NewFormatError(lineNum, line, errZeroQuantity)
			}
			prefs, err := parsePrefs(m[2], e)
			if err != nil {
				return nil, domain.NewFormatError(lineNum, line, err)
			}
			e.Ballots = append(e.Ballots, domain.Ballot{Qty: qty, Prefs: prefs})
		}
	}

	if len(e.Ballots) == 0 {
		return nil, domain.NewFormatError(0, "", domain.ErrNoBallots)
	}
	return e, nil
}

// stripComment removes a trailing `#` comment from a line. The comment
// marker is not meaningful inside bracket or quote pairs, but candidate
// tokens may not contain `#`, so a plain scan suffices.
func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

// applyMetadata folds one `{key: value}` record into the election.
// Unrecognized keys are tolerated and dropped; malformed numeric values
// are format errors.
func applyMetadata(e *domain.Election, key, value string) error {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case keyTitle:
		e.Meta.Title = value
	case keyDescription:
		e.Meta.Description = value
	case keyBallotType:
		e.Meta.BallotType = domain.BallotType(value)
	case keyVersion:
		e.Meta.Version = value
	case keyMinRating:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("min_rating %q: %w", value, errUnparseableLine)
		}
		e.Meta.MinRating = &n
	case keyMaxRating:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("max_rating %q: %w", value, errUnparseableLine)
		}
		e.Meta.MaxRating = &n
	case keyBallotCount:
		// Recounted from vote lines; the declared value is ignored.
	}
	return nil
}

// prefToken is one candidate entry scanned from a preference expression.
type prefToken struct {
	token  string
	rating *int
	delim  byte // delimiter following the token; 0 at end of line
}

// parsePrefs converts the expression part of a vote line into the
// ballot's preference map. The first delimiter decides the expression
// mode: `>` or `=` is a ranking, `,` is a rating list, and a single
// token is a lone first preference. A trailing comma is the explicit
// rating-list marker: `A/1,` is a one-entry rating list, while `A/1`
// is a rank-1 preference carrying a rating.
func parsePrefs(expr string, e *domain.Election) (map[string]domain.Pref, error) {
	toks, err := scanPrefTokens(expr)
	if err != nil {
		return nil, err
	}
	prefs := make(map[string]domain.Pref, len(toks))
	if len(toks) == 0 {
		return prefs, nil
	}

	rated := toks[0].delim == ','
	rank := 1
	for _, pt := range toks {
		if _, ok := e.Candidates[pt.token]; !ok {
			return nil, undeclaredTokenError(pt.token, e)
		}
		if pt.rating != nil {
			if e.Meta.MinRating != nil && *pt.rating < *e.Meta.MinRating {
				return nil, domain.ErrRatingOutOfBounds
			}
			if e.Meta.MaxRating != nil && *pt.rating > *e.Meta.MaxRating {
				return nil, domain.ErrRatingOutOfBounds
			}
		}

		p := domain.Pref{Rating: pt.rating}
		if rated {
			if pt.rating == nil {
				return nil, errMissingRating
			}
			if pt.delim != ',' && pt.delim != 0 {
				return nil, errMixedDelimiters
			}
		} else {
			p.Rank = rank
			switch pt.delim {
			case '>':
				rank++
			case '=', 0:
			default:
				return nil, errMixedDelimiters
			}
		}
		prefs[pt.token] = p
	}
	return prefs, nil
}

// scanPrefTokens tokenizes a preference expression: bare, bracketed, or
// quoted candidate tokens, each with an optional /rating suffix, joined
// by `>`, `=`, or `,` delimiters. A trailing comma is tolerated as the
// rating-list marker; trailing `>` or `=` is an error.
func scanPrefTokens(expr string) ([]prefToken, error) {
	var toks []prefToken
	s := strings.TrimSpace(expr)
	for len(s) > 0 {
		var tok string
		switch s[0] {
		case '[':
			end := strings.IndexByte(s, ']')
			if end < 0 {
				return nil, errUnterminatedQuote
			}
			tok = s[1:end]
			s = s[end+1:]
		case '"':
			end := strings.IndexByte(s[1:], '"')
			if end < 0 {
				return nil, errUnterminatedQuote
			}
			tok = s[1 : end+1]
			s = s[end+2:]
		default:
			end := strings.IndexAny(s, "/>=,")
			if end < 0 {
				end = len(s)
			}
			tok = strings.TrimSpace(s[:end])
			s = s[end:]
		}
		if tok == "" {
			return nil, errEmptyToken
		}

		pt := prefToken{token: tok}
		s = strings.TrimSpace(s)
		if strings.HasPrefix(s, "/") {
			rest := s[1:]
			digits := 0
			for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
				digits++
			}
			if digits == 0 {
				return nil, errMissingRating
			}
			n, _ := strconv.Atoi(rest[:digits])
			pt.rating = &n
			s = strings.TrimSpace(rest[digits:])
		}
		if len(s) > 0 {
			d := s[0]
			if d != '>' && d != '=' && d != ',' {
				return nil, errUnparseableLine
			}
			pt.delim = d
			s = strings.TrimSpace(s[1:])
			if s == "" && d != ',' {
				return nil, errEmptyToken
			}
		}
		toks = append(toks, pt)
	}
	return toks, nil
}

// undeclaredTokenError builds the format error for a vote line that
// references a candidate before its declaration, suggesting the closest
// declared token when one is plausibly a typo.
func undeclaredTokenError(tok string, e *domain.Election) error {
	suggestion := NearestToken(tok, e.Tokens())
	if suggestion != "" {
		return fmt.Errorf("%w: %q (closest declared token: %q)", errUndeclaredToken, tok, suggestion)
	}
	return fmt.Errorf("%w: %q", errUndeclaredToken, tok)
}

// NearestToken returns the declared token with the smallest Levenshtein
// distance from tok, or "" when nothing is within two edits. It exists
// to make undeclared-candidate errors actionable for hand-edited files.
func NearestToken(tok string, declared []string) string {
	best := ""
	bestDist := 3 // suggestions beyond two edits are noise
	for _, cand := range declared {
		if d := levenshtein.ComputeDistance(tok, cand); d < bestDist {
			best, bestDist = cand, d
		}
	}
	return best
}
