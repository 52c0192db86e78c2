package providers

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
)

// UpstreamError is returned when the provider answered with a status other
// than 200 OK. Body holds a bounded excerpt of the response for diagnostics;
// it must never be returned to an API caller.
type UpstreamError struct {
	// Provider is the name of the provider that returned the error
	Provider string

	// StatusCode is the HTTP status code returned by the provider
	StatusCode int

	// Body is an excerpt of the response body
	Body string
}

// Error implements the error interface. It does not include Body.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("provider %q returned status %d", e.Provider, e.StatusCode)
}

// TransportError represents a failure to exchange HTTP messages with the
// provider: DNS resolution, refused connections, resets and timeouts.
type TransportError struct {
	// Provider is the name of the provider that could not be reached
	Provider string

	// Cause is the underlying network error
	Cause error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("provider %q request failed: %v", e.Provider, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// Timeout reports whether the failure was a timeout.
func (e *TransportError) Timeout() bool {
	var netErr net.Error
	return errors.As(e.Cause, &netErr) && netErr.Timeout()
}

// TLSVerificationError represents a failure to verify the provider's
// certificate chain or hostname.
type TLSVerificationError struct {
	// Provider is the name of the provider whose certificate was rejected
	Provider string

	// Cause is the underlying verification error
	Cause error
}

// Error implements the error interface.
func (e *TLSVerificationError) Error() string {
	return fmt.Sprintf("provider %q certificate verification failed: %v", e.Provider, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *TLSVerificationError) Unwrap() error {
	return e.Cause
}

// ParseError represents a failure to decode a successful provider response.
type ParseError struct {
	// Provider is the name of the provider that returned the unparseable response
	Provider string

	// RawResponse is an excerpt of the raw response body
	RawResponse string

	// Cause is the underlying parsing error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("provider %q response parsing failed: %v", e.Provider, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ConfigError represents an invalid provider configuration.
type ConfigError struct {
	// Provider is the name of the misconfigured provider
	Provider string

	// Field is the configuration field with the problem
	Field string

	// Message describes the configuration problem
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("provider %q configuration error in field %q: %s", e.Provider, e.Field, e.Message)
}

// classifyTransportError wraps an error returned by http.Client.Do (or by
// reading a response body) in either a TLSVerificationError or a
// TransportError.
func classifyTransportError(provider string, err error) error {
	if isCertificateError(err) {
		return &TLSVerificationError{Provider: provider, Cause: err}
	}
	return &TransportError{Provider: provider, Cause: err}
}

// isCertificateError reports whether err is a certificate verification
// failure on our side of the handshake.
func isCertificateError(err error) bool {
	var (
		verifyErr    *tls.CertificateVerificationError
		authorityErr x509.UnknownAuthorityError
		hostnameErr  x509.HostnameError
		invalidErr   x509.CertificateInvalidError
		rootsErr     x509.SystemRootsError
	)
	return errors.As(err, &verifyErr) ||
		errors.As(err, &authorityErr) ||
		errors.As(err, &hostnameErr) ||
		errors.As(err, &invalidErr) ||
		errors.As(err, &rootsErr)
}
