package judge

import (
	"context"
	"errors"
)

// ErrInvalidVerdict indicates the oracle returned a payload that cannot be
// parsed into a Verdict. It is permanent: retrying the same request is not
// expected to help.
var ErrInvalidVerdict = errors.New("invalid verdict from judge")

// PermanentError indicates an error that will not resolve with retries.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}

// Request is one evaluation of a content fragment against a named criterion.
type Request struct {
	NodeID    string
	Content   string
	Criterion Criterion
	// Context carries surrounding report context the judge may need
	// (parent section, report kind). Optional.
	Context string
}

// Verdict is the oracle's answer for a single (fragment, criterion) pair.
// Scores are 0..100.
type Verdict struct {
	Score          int            `json:"score"`
	SelfConfidence int            `json:"self_confidence"`
	Evidence       []string       `json:"evidence"`
	Issues         []VerdictIssue `json:"issues"`
}

// VerdictIssue is an issue as reported by the oracle. The scorer maps it
// onto the pipeline's issue model and tags it with the source category.
type VerdictIssue struct {
	Severity    string   `json:"severity"`
	Description string   `json:"description"`
	Evidence    []string `json:"evidence"`
	Priority    int      `json:"priority"`
}

// Client is the quality-judge oracle. Evaluate must be deterministic enough
// to cache by content hash within a single Version; the pipeline never
// re-invokes it for an unchanged hash within the same version.
type Client interface {
	Name() string
	Version() string
	Evaluate(ctx context.Context, req Request) (Verdict, error)
	Close() error
}
