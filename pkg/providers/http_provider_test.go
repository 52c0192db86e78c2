package providers

import (
	"context"
	"crypto/x509"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestProvider(timeout time.Duration, roots *x509.CertPool) *HTTPProvider {
	return NewHTTPProvider(ProviderConfig{
		Name:    "test-provider",
		Timeout: timeout,
		RootCAs: roots,
	})
}

func trustPool(server *httptest.Server) *x509.CertPool {
	pool := x509.NewCertPool()
	pool.AddCert(server.Certificate())
	return pool
}

func TestHTTPProvider_Success(t *testing.T) {
	var gotHeader, gotContentType string
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("api-key")
		gotContentType = r.Header.Get("Content-Type")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hi"}}]}`))
	}))
	defer server.Close()

	provider := newTestProvider(5*time.Second, trustPool(server))

	var resp ChatCompletionResponse
	err := provider.DoJSONRequest(context.Background(), http.MethodPost, server.URL, &ChatCompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	}, &resp, map[string]string{"api-key": "secret"})
	if err != nil {
		t.Fatalf("DoJSONRequest() error = %v", err)
	}

	if len(resp.Choices) != 1 || resp.Choices[0].Message.Content != "hi" {
		t.Errorf("choices = %+v, want one choice with content %q", resp.Choices, "hi")
	}
	if gotHeader != "secret" {
		t.Errorf("api-key header = %q, want %q", gotHeader, "secret")
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want %q", gotContentType, "application/json")
	}
	if h := provider.GetHealth(); h.LastStatusCode != http.StatusOK || h.TotalRequests != 1 {
		t.Errorf("health = %+v, want one 200 request", h)
	}
}

func TestHTTPProvider_NoRetryOnErrorStatus(t *testing.T) {
	statuses := []int{
		http.StatusBadRequest,
		http.StatusUnauthorized,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusServiceUnavailable,
		http.StatusCreated,
	}

	for _, status := range statuses {
		t.Run(http.StatusText(status), func(t *testing.T) {
			var attempts int32
			server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&attempts, 1)
				w.WriteHeader(status)
				_, _ = w.Write([]byte(`{"error":{"code":"upstream-detail"}}`))
			}))
			defer server.Close()

			provider := newTestProvider(5*time.Second, trustPool(server))
			_, err := provider.DoRequest(context.Background(), http.MethodPost, server.URL, []byte(`{}`), nil)

			var upstreamErr *UpstreamError
			if !errors.As(err, &upstreamErr) {
				t.Fatalf("error = %v (%T), want *UpstreamError", err, err)
			}
			if upstreamErr.StatusCode != status {
				t.Errorf("StatusCode = %d, want %d", upstreamErr.StatusCode, status)
			}
			if !strings.Contains(upstreamErr.Body, "upstream-detail") {
				t.Errorf("Body = %q, want excerpt of upstream body", upstreamErr.Body)
			}
			if strings.Contains(upstreamErr.Error(), "upstream-detail") {
				t.Errorf("Error() = %q, must not contain the body", upstreamErr.Error())
			}
			if got := atomic.LoadInt32(&attempts); got != 1 {
				t.Errorf("attempts = %d, want 1", got)
			}
			if !provider.IsHealthy() {
				t.Error("a provider that responds should stay healthy")
			}
		})
	}
}

func TestHTTPProvider_RedirectNotFollowed(t *testing.T) {
	var otherHostKey atomic.Value
	var otherHostCalls int32
	other := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&otherHostCalls, 1)
		otherHostKey.Store(r.Header.Get("api-key"))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"from-other-host"}}]}`))
	}))
	defer other.Close()

	for _, status := range []int{http.StatusFound, http.StatusTemporaryRedirect, http.StatusPermanentRedirect} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			upstream := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, other.URL+"/collect", status)
			}))
			defer upstream.Close()

			pool := trustPool(upstream)
			pool.AddCert(other.Certificate())
			provider := newTestProvider(5*time.Second, pool)

			var resp ChatCompletionResponse
			err := provider.DoJSONRequest(context.Background(), http.MethodPost, upstream.URL, &ChatCompletionRequest{
				Messages: []Message{{Role: RoleUser, Content: "hello"}},
			}, &resp, map[string]string{"api-key": "secret-key"})

			var upstreamErr *UpstreamError
			if !errors.As(err, &upstreamErr) {
				t.Fatalf("error = %v (%T), want *UpstreamError", err, err)
			}
			if upstreamErr.StatusCode != status {
				t.Errorf("StatusCode = %d, want %d", upstreamErr.StatusCode, status)
			}
			if len(resp.Choices) != 0 {
				t.Errorf("choices = %+v, want none", resp.Choices)
			}
		})
	}

	if n := atomic.LoadInt32(&otherHostCalls); n != 0 {
		t.Errorf("redirect target called %d times with api-key %v, want 0", n, otherHostKey.Load())
	}
}

func TestHTTPProvider_ErrorBodyIsBounded(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, strings.Repeat("x", MaxErrorBodyBytes*2))
	}))
	defer server.Close()

	provider := newTestProvider(5*time.Second, trustPool(server))
	_, err := provider.DoRequest(context.Background(), http.MethodPost, server.URL, nil, nil)

	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("error = %v, want *UpstreamError", err)
	}
	if len(upstreamErr.Body) != MaxErrorBodyBytes {
		t.Errorf("len(Body) = %d, want %d", len(upstreamErr.Body), MaxErrorBodyBytes)
	}
}

func TestHTTPProvider_UntrustedCertificate(t *testing.T) {
	var attempts int32
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
	}))
	defer server.Close()

	// An empty pool trusts nothing, so the test server's self-signed
	// certificate is rejected.
	provider := newTestProvider(5*time.Second, x509.NewCertPool())
	_, err := provider.DoRequest(context.Background(), http.MethodPost, server.URL, []byte(`{}`), nil)

	var tlsErr *TLSVerificationError
	if !errors.As(err, &tlsErr) {
		t.Fatalf("error = %v (%T), want *TLSVerificationError", err, err)
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		t.Error("certificate failure must not also be a *TransportError")
	}
	if got := atomic.LoadInt32(&attempts); got != 0 {
		t.Errorf("handler reached %d times, want 0", got)
	}
}

func TestHTTPProvider_ConnectionRefused(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	pool := trustPool(server)
	server.Close()

	provider := newTestProvider(5*time.Second, pool)
	_, err := provider.DoRequest(context.Background(), http.MethodPost, url, nil, nil)

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("error = %v (%T), want *TransportError", err, err)
	}
	if transportErr.Timeout() {
		t.Error("connection refused should not be reported as a timeout")
	}
}

func TestHTTPProvider_Timeout(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	provider := newTestProvider(100*time.Millisecond, trustPool(server))
	_, err := provider.DoRequest(context.Background(), http.MethodPost, server.URL, nil, nil)

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("error = %v (%T), want *TransportError", err, err)
	}
	if !transportErr.Timeout() {
		t.Errorf("Timeout() = false for %v", err)
	}
}

func TestHTTPProvider_ParseError(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	provider := newTestProvider(5*time.Second, trustPool(server))

	var resp ChatCompletionResponse
	err := provider.DoJSONRequest(context.Background(), http.MethodPost, server.URL, nil, &resp, nil)

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v (%T), want *ParseError", err, err)
	}
	if parseErr.RawResponse != `<html>not json</html>` {
		t.Errorf("RawResponse = %q", parseErr.RawResponse)
	}
}

func TestHTTPProvider_HealthThreshold(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	pool := trustPool(server)
	liveURL := server.URL

	dead := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	provider := NewHTTPProvider(ProviderConfig{
		Name:             "test-provider",
		Timeout:          5 * time.Second,
		RootCAs:          pool,
		FailureThreshold: 2,
	})

	ctx := context.Background()
	_, _ = provider.DoRequest(ctx, http.MethodPost, deadURL, nil, nil)
	if !provider.IsHealthy() {
		t.Fatal("one failure should not mark the provider unhealthy")
	}

	_, _ = provider.DoRequest(ctx, http.MethodPost, deadURL, nil, nil)
	if provider.IsHealthy() {
		t.Fatal("two consecutive failures should mark the provider unhealthy")
	}
	if h := provider.GetHealth(); h.ConsecutiveFailures != 2 || h.LastError == nil {
		t.Errorf("health = %+v, want 2 failures with LastError set", h)
	}

	resp, err := provider.DoRequest(ctx, http.MethodPost, liveURL, nil, nil)
	if err != nil {
		t.Fatalf("DoRequest() error = %v", err)
	}
	resp.Body.Close()
	server.Close()

	if !provider.IsHealthy() {
		t.Error("a response should restore health")
	}
	if h := provider.GetHealth(); h.FailedRequests != 2 || h.TotalRequests != 3 {
		t.Errorf("health counters = %d/%d, want 2 failed of 3", h.FailedRequests, h.TotalRequests)
	}
}
