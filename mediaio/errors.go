package mediaio

import (
	"errors"
	"fmt"
)

// ErrorKind is the taxonomy tag of a ClassifiedError.
type ErrorKind string

const (
	KindNotFound           ErrorKind = "not_found"
	KindQuotaExhausted     ErrorKind = "quota_exhausted"
	KindBillingRequired    ErrorKind = "billing_required"
	KindTransient          ErrorKind = "transient"
	KindUnknown            ErrorKind = "unknown"
	KindNoArtifactProduced ErrorKind = "no_artifact_produced"
	KindUploadFailed       ErrorKind = "upload_failed"
	KindTimeout            ErrorKind = "timeout"
)

// Remediation text attached to quota and billing errors.
const (
	FreeTierMessage = `[FREE TIER LIMITATION] Image/Video generation unavailable on free tier.

Free tier has zero quota (limit: 0) for:
- Imagen models (imagen-4.0-*)
- Veo models (veo-*)
- Gemini image models (gemini-*-image)

Solutions:
1. Enable billing: https://aistudio.google.com/apikey
2. Use Google Cloud $300 credits: https://cloud.google.com/free

STOP: Don't retry - free tier will always fail for generation.`

	BillingMessage = `[BILLING REQUIRED] This operation requires a paid account.

Enable billing at: https://aistudio.google.com/apikey`
)

// ClassifiedError annotates a failure with a taxonomy kind. Cause is the
// original error and is always retained.
type ClassifiedError struct {
	Kind    ErrorKind
	Op      string
	Message string
	Cause   error
}

func (e *ClassifiedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return string(e.Kind)
}

func (e *ClassifiedError) Unwrap() error {
	return e.Cause
}

// Is matches another *ClassifiedError by kind, so errors.Is(err,
// &ClassifiedError{Kind: KindTimeout}) works.
func (e *ClassifiedError) Is(target error) bool {
	t, ok := target.(*ClassifiedError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op)
}

// Sentinel causes for failures that originate in this package.
var (
	ErrNoArtifact   = errors.New("backend returned no usable output")
	ErrUploadFailed = errors.New("upload processing failed")
	ErrPollTimeout  = errors.New("polling bound exceeded")
)

func newClassified(kind ErrorKind, op string, cause error, format string, args ...any) *ClassifiedError {
	return &ClassifiedError{
		Kind:    kind,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

func noArtifact(op string) *ClassifiedError {
	return newClassified(KindNoArtifactProduced, op, ErrNoArtifact, "%s failed: no artifact produced", op)
}

// KindOf returns the kind of the first ClassifiedError in err's chain, or
// the empty kind when err is not classified.
func KindOf(err error) ErrorKind {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// IsTerminal reports whether retrying err cannot succeed: the quota is zero
// or billing must be enabled first.
func IsTerminal(err error) bool {
	switch KindOf(err) {
	case KindQuotaExhausted, KindBillingRequired:
		return true
	default:
		return false
	}
}

// IsTransient reports whether err is ordinary rate limiting or overload.
func IsTransient(err error) bool {
	return KindOf(err) == KindTransient
}
