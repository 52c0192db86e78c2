package providers

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/url"
	"testing"
)

func TestClassifyTransportError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantTLS bool
	}{
		{
			name:    "unknown authority inside url.Error",
			err:     &url.Error{Op: "Post", URL: "https://x", Err: &tls.CertificateVerificationError{Err: x509.UnknownAuthorityError{}}},
			wantTLS: true,
		},
		{
			name:    "bare hostname mismatch",
			err:     x509.HostnameError{Host: "evil.example"},
			wantTLS: true,
		},
		{
			name:    "expired certificate",
			err:     fmt.Errorf("handshake: %w", x509.CertificateInvalidError{Reason: x509.Expired}),
			wantTLS: true,
		},
		{
			name:    "missing system roots",
			err:     x509.SystemRootsError{},
			wantTLS: true,
		},
		{
			name:    "connection refused",
			err:     &url.Error{Op: "Post", URL: "https://x", Err: errors.New("dial tcp: connect: connection refused")},
			wantTLS: false,
		},
		{
			name:    "deadline exceeded",
			err:     context.DeadlineExceeded,
			wantTLS: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyTransportError("azure", tt.err)

			var tlsErr *TLSVerificationError
			var transportErr *TransportError
			switch {
			case tt.wantTLS && !errors.As(got, &tlsErr):
				t.Errorf("classifyTransportError() = %T, want *TLSVerificationError", got)
			case !tt.wantTLS && !errors.As(got, &transportErr):
				t.Errorf("classifyTransportError() = %T, want *TransportError", got)
			}

			if !errors.Is(got, tt.err) {
				t.Error("classified error should wrap the original")
			}
		})
	}
}

func TestTransportError_Timeout(t *testing.T) {
	timeoutErr := &TransportError{Provider: "azure", Cause: context.DeadlineExceeded}
	if !timeoutErr.Timeout() {
		t.Error("context.DeadlineExceeded should be a timeout")
	}

	refused := &TransportError{Provider: "azure", Cause: errors.New("connection refused")}
	if refused.Timeout() {
		t.Error("plain error should not be a timeout")
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&UpstreamError{Provider: "azure", StatusCode: 503, Body: "secret"}, `provider "azure" returned status 503`},
		{&ParseError{Provider: "azure", Cause: errors.New("eof")}, `provider "azure" response parsing failed: eof`},
		{&ConfigError{Provider: "azure", Field: "endpoint", Message: "required"}, `provider "azure" configuration error in field "endpoint": required`},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
