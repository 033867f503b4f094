package reliability

import (
	"context"
	"errors"
	"net"
)

// Outcome labels for delivery metrics.
const (
	OutcomeOK        = "ok"
	OutcomeRetryable = "retryable"
	OutcomePermanent = "permanent"
	OutcomeCanceled  = "canceled"
)

// IsRetryableHTTPStatus classifies retryable HTTP status codes.
func IsRetryableHTTPStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

// StatusCoder is implemented by errors that carry an upstream HTTP status.
type StatusCoder interface {
	HTTPStatus() int
}

// Classify maps a delivery error to an outcome label. Nothing is retried on
// the strength of it; it only separates transient failures in dashboards.
func Classify(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if errors.Is(err, context.Canceled) {
		return OutcomeCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return OutcomeRetryable
	}
	var sc StatusCoder
	if errors.As(err, &sc) {
		if IsRetryableHTTPStatus(sc.HTTPStatus()) {
			return OutcomeRetryable
		}
		return OutcomePermanent
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return OutcomeRetryable
	}
	return OutcomePermanent
}
