package mediaio

import (
	"errors"
	"fmt"
	"strings"
)

// The service does not reliably expose structured error codes, so
// classification matches substrings of the error message.

const resourceExhausted = "RESOURCE_EXHAUSTED"

var (
	zeroQuotaMarkers = []string{"limit: 0"}
	freeTierMarker   = "free_tier"

	billingIndicators = []string{
		"billing",
		"billed users",
		"payment",
		"not authorized",
		"permission denied",
	}

	transientMarkers = []string{
		resourceExhausted,
		"UNAVAILABLE",
		"DEADLINE_EXCEEDED",
	}
)

// IsQuotaExhaustedMessage reports the zero-quota condition: a resource
// exhaustion marker together with a zero limit or a free-tier marker.
// Ordinary rate limiting lacks the second marker and does not match.
func IsQuotaExhaustedMessage(msg string) bool {
	if !strings.Contains(msg, resourceExhausted) {
		return false
	}
	for _, m := range zeroQuotaMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(msg), freeTierMarker)
}

// IsBillingMessage reports whether msg mentions billing, payment or
// authorization problems. Matching is case-insensitive.
func IsBillingMessage(msg string) bool {
	lower := strings.ToLower(msg)
	for _, ind := range billingIndicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}

// IsTransientMessage reports rate limiting or overload status markers.
func IsTransientMessage(msg string) bool {
	for _, m := range transientMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// ClassifyMessage maps an error message to a kind. It never returns an
// empty kind.
func ClassifyMessage(msg string) ErrorKind {
	switch {
	case IsQuotaExhaustedMessage(msg):
		return KindQuotaExhausted
	case IsBillingMessage(msg):
		return KindBillingRequired
	case IsTransientMessage(msg):
		return KindTransient
	default:
		return KindUnknown
	}
}

// Classify wraps a backend error in a *ClassifiedError for operation op.
// Already classified errors are returned unchanged, and a nil error stays nil.
// QuotaExhausted and BillingRequired carry a remediation message; other
// kinds keep the original message verbatim.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return err
	}

	kind := ClassifyMessage(err.Error())
	out := &ClassifiedError{Kind: kind, Op: op, Cause: err}
	switch kind {
	case KindQuotaExhausted:
		out.Message = fmt.Sprintf("%s failed.\n\n%s", op, FreeTierMessage)
	case KindBillingRequired:
		out.Message = fmt.Sprintf("%s failed.\n\n%s", op, BillingMessage)
	default:
		out.Message = err.Error()
	}
	return out
}
