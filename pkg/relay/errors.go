package relay

import (
	"errors"
	"fmt"

	"relayhq/azrelay/pkg/providers"
)

// Category is the caller-visible class of a relay outcome. Every error
// maps to exactly one category.
type Category string

const (
	CategorySuccess     Category = "success"
	CategoryClientInput Category = "client_input"
	CategoryUpstream    Category = "upstream"
	CategoryTransport   Category = "transport"
	CategoryTLS         Category = "tls"
	CategoryInternal    Category = "internal"
)

// String returns the category as used in logs and metric labels.
func (c Category) String() string {
	return string(c)
}

// ClientInputError is returned for a request that is rejected before the
// upstream is contacted.
type ClientInputError struct {
	Reason string
}

// Error implements the error interface.
func (e *ClientInputError) Error() string {
	return e.Reason
}

// ErrNoMessage is returned when the message is absent or empty.
var ErrNoMessage = &ClientInputError{Reason: "no message provided"}

// InternalError wraps any failure that is not an input, upstream,
// transport or TLS failure: a malformed request body, an unparseable or
// empty upstream reply, a recovered panic.
type InternalError struct {
	// Op names the step that failed
	Op string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *InternalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying error.
func (e *InternalError) Unwrap() error {
	return e.Cause
}

// Classify maps err to its category. nil is CategorySuccess and anything
// unrecognised is CategoryInternal. TLS failures are checked before
// transport failures.
func Classify(err error) Category {
	if err == nil {
		return CategorySuccess
	}

	var (
		inputErr     *ClientInputError
		tlsErr       *providers.TLSVerificationError
		upstreamErr  *providers.UpstreamError
		transportErr *providers.TransportError
	)
	switch {
	case errors.As(err, &inputErr):
		return CategoryClientInput
	case errors.As(err, &tlsErr):
		return CategoryTLS
	case errors.As(err, &upstreamErr):
		return CategoryUpstream
	case errors.As(err, &transportErr):
		return CategoryTransport
	default:
		return CategoryInternal
	}
}

// UpstreamStatus returns the upstream HTTP status carried by err, or 0.
func UpstreamStatus(err error) int {
	var upstreamErr *providers.UpstreamError
	if errors.As(err, &upstreamErr) {
		return upstreamErr.StatusCode
	}
	return 0
}
