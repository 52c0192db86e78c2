package tls

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"os"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

func TestCertificateReloader_Start(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := writeKeyPair(t, dir, validTestCert(t, "first"))

	var reloads atomic.Int32
	reloader := NewCertificateReloader(certFile, keyFile,
		WithReloadDebounce(10*time.Millisecond),
		WithOnReload(func(*x509.Certificate) { reloads.Add(1) }),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := reloader.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if got := reloader.Leaf().Subject.CommonName; got != "first" {
		t.Errorf("Leaf CN = %q, want %q", got, "first")
	}
	if reloads.Load() != 1 {
		t.Errorf("onReload calls = %d, want 1", reloads.Load())
	}

	writeKeyPair(t, dir, validTestCert(t, "second"))

	ok := waitFor(t, 5*time.Second, func() bool {
		leaf := reloader.Leaf()
		return leaf != nil && leaf.Subject.CommonName == "second"
	})
	if !ok {
		t.Fatalf("certificate was not reloaded, Leaf CN = %q", reloader.Leaf().Subject.CommonName)
	}

	cancel()
	select {
	case <-reloader.Done():
	case <-time.After(2 * time.Second):
		t.Error("watch loop did not exit after cancel")
	}
}

func TestCertificateReloader_StartInvalid(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := writeKeyPair(t, dir, validTestCert(t, "x"))
	if err := os.WriteFile(certFile, []byte("garbage"), 0o600); err != nil {
		t.Fatal(err)
	}

	reloader := NewCertificateReloader(certFile, keyFile)
	if err := reloader.Start(context.Background()); err == nil {
		t.Fatal("Start() error = nil, want error for invalid certificate")
	}
	if _, err := reloader.GetCertificate(&tls.ClientHelloInfo{}); err == nil {
		t.Error("GetCertificate() before a successful load should fail")
	}
}

func TestCertificateReloader_KeepsPreviousOnFailure(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := writeKeyPair(t, dir, validTestCert(t, "good"))

	reloader := NewCertificateReloader(certFile, keyFile)
	if err := reloader.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	// Mismatched key.
	other := validTestCert(t, "other")
	if err := os.WriteFile(keyFile, other.keyPEM, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := reloader.Reload(); err == nil {
		t.Fatal("Reload() with mismatched key = nil, want error")
	}

	cert, err := reloader.GetCertificate(&tls.ClientHelloInfo{})
	if err != nil {
		t.Fatalf("GetCertificate() error = %v", err)
	}
	if cert.Leaf.Subject.CommonName != "good" {
		t.Errorf("served CN = %q, want previous %q", cert.Leaf.Subject.CommonName, "good")
	}
}

func TestCertificateReloader_RejectsExpired(t *testing.T) {
	now := time.Now()
	expired := newTestCert(t, "expired", now.Add(-48*time.Hour), now.Add(-time.Hour), nil)
	certFile, keyFile := writeKeyPair(t, t.TempDir(), expired)

	if err := NewCertificateReloader(certFile, keyFile).Reload(); err == nil {
		t.Error("Reload() of expired certificate = nil, want error")
	}
}
