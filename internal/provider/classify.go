package provider

import (
	"context"
	"errors"
	"strings"
)

// FailureClass is the three-way taxonomy driving the retry loop.
type FailureClass int

const (
	// FailurePermanent aborts immediately: malformed input, unsupported
	// language, provider-side rejection.
	FailurePermanent FailureClass = iota
	// FailureQuota marks the active credential exhausted and rotates.
	FailureQuota
	// FailureTransient retries the same credential after a backoff.
	FailureTransient
)

// Classifier maps a vendor error to a FailureClass. Each vendor package
// exports its own.
type Classifier func(error) FailureClass

// StatusClass classifies by HTTP status code: 429 is quota, 5xx and 408 are
// transient, anything else is permanent.
func StatusClass(status int) FailureClass {
	switch {
	case status == 429:
		return FailureQuota
	case status >= 500, status == 408:
		return FailureTransient
	default:
		return FailurePermanent
	}
}

// MessageClass applies the substring heuristics shared by the vendors for
// errors that carry no usable status code.
func MessageClass(err error) FailureClass {
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTransient
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "quota"),
		strings.Contains(msg, "resource_exhausted"),
		strings.Contains(msg, "rate limit"):
		return FailureQuota
	case strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "broken pipe"),
		strings.Contains(msg, "eof"):
		return FailureTransient
	default:
		return FailurePermanent
	}
}
