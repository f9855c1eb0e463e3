package domain

// NoticeKind classifies a notice attached to a tally or conversion result.
type NoticeKind string

// Notice kinds, ordered roughly by severity.
const (
	// NoticeDisclaimer marks results derived from estimation or
	// simulation rather than direct counting.
	NoticeDisclaimer NoticeKind = "disclaimer"

	// NoticeWarning marks conditions the caller should surface to
	// users, such as an undetectable ballot type.
	NoticeWarning NoticeKind = "warning"

	// NoticeInfo marks observations that do not affect trust in the
	// result, such as a Condorcet cycle being reported via Copeland.
	NoticeInfo NoticeKind = "info"

	// NoticeDebug marks internal detail useful when auditing a result.
	NoticeDebug NoticeKind = "debug"
)

// noticeShortMax bounds the one-line summary of a notice.
const noticeShortMax = 120

// Notice is a structured annotation attached to a result. Short is a
// one-line summary; Long carries enough detail that the algorithm which
// produced the result could be reimplemented from it.
type Notice struct {
	Kind  NoticeKind `json:"kind"`
	Short string     `json:"short"`
	Long  string     `json:"long,omitempty"`
}

// NewNotice builds a notice, truncating Short to its 120-character limit.
func NewNotice(kind NoticeKind, short, long string) Notice {
	if r := []rune(short); len(r) > noticeShortMax {
		short = string(r[:noticeShortMax])
	}
	return Notice{Kind: kind, Short: short, Long: long}
}

// Result is the common shape of every tally outcome. Concrete result
// types carry method-specific computed values alongside these accessors.
type Result interface {
	// Method names the tally method that produced the result.
	Method() string

	// WinnerTokens lists the winning candidate tokens in order.
	WinnerTokens() []string

	// Notes returns the notices attached to the result.
	Notes() []Notice
}
