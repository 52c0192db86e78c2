package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"relayhq/azrelay/pkg/config"
)

// clearEnv unsets every variable LoadConfig reads for the duration of t.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		config.EnvEndpoint, config.EnvAPIKey, config.EnvDeployment,
		config.EnvAPIVersion, config.EnvCABundle, config.EnvTimeout,
		config.EnvPort, config.EnvListenAddress, config.EnvLogLevel,
		config.EnvLogFormat, config.EnvMetricsEnabled, config.EnvTracingEnabled,
		config.EnvSecretsFileDir,
	} {
		t.Setenv(name, "")
	}
}

// selfSignedCA returns a CA certificate valid until notAfter.
func selfSignedCA(t *testing.T, cn string, notAfter time.Time) *x509.Certificate {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(42),
		Subject:               pkix.Name{CommonName: cn},
		NotBefore:             notAfter.Add(-365 * 24 * time.Hour),
		NotAfter:              notAfter,
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("CreateCertificate: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("ParseCertificate: %v", err)
	}
	return cert
}

// writePEM writes certs to a bundle file under t.TempDir.
func writePEM(t *testing.T, certs ...*x509.Certificate) string {
	t.Helper()

	var data []byte
	for _, c := range certs {
		data = append(data, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: c.Raw})...)
	}
	path := filepath.Join(t.TempDir(), "ca.pem")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}
