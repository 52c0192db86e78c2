package tls

import (
	"crypto/x509"
	"fmt"
	"log/slog"
	"os"
)

// TrustStore is the set of roots used to verify the upstream's certificate:
// the system roots plus any certificates from a configured CA bundle.
type TrustStore struct {
	// Pool is passed to tls.Config.RootCAs.
	Pool *x509.CertPool

	// BundlePath is the CA bundle file, or "" when only system roots are used.
	BundlePath string

	// Bundle holds the certificates parsed from BundlePath.
	Bundle []*x509.Certificate
}

// LoadTrustStore builds the upstream trust store. An empty bundlePath
// returns the system roots unchanged. A bundle that cannot be read or that
// holds no certificates is an error; there is no fallback to skipping
// verification.
func LoadTrustStore(bundlePath string) (*TrustStore, error) {
	pool, err := x509.SystemCertPool()
	if err != nil {
		slog.Warn("system certificate pool unavailable, using CA bundle only", "error", err)
		pool = x509.NewCertPool()
	}

	store := &TrustStore{Pool: pool, BundlePath: bundlePath}
	if bundlePath == "" {
		return store, nil
	}

	data, err := os.ReadFile(bundlePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA bundle %q: %w", bundlePath, err)
	}
	certs, err := ParsePEMCertificates(data)
	if err != nil {
		return nil, fmt.Errorf("invalid CA bundle %q: %w", bundlePath, err)
	}
	for _, cert := range certs {
		pool.AddCert(cert)
	}
	store.Bundle = certs

	return store, nil
}

// Summary describes each bundle certificate.
func (s *TrustStore) Summary() []CertificateInfo {
	infos := make([]CertificateInfo, 0, len(s.Bundle))
	for _, cert := range s.Bundle {
		infos = append(infos, ExtractCertificateInfo(cert))
	}
	return infos
}
