package tls

import (
	"crypto/tls"
	"fmt"

	"relayhq/azrelay/pkg/config"
)

// NewServerConfig builds the TLS configuration for the inbound listener.
// When reloader is non-nil the certificate is served from it so rotated
// files take effect without a restart; otherwise the key pair is loaded
// once from cfg.
func NewServerConfig(cfg config.TLSConfig, reloader *CertificateReloader) (*tls.Config, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if cfg.CertFile == "" || cfg.KeyFile == "" {
		return nil, fmt.Errorf("cert_file and key_file are required when TLS is enabled")
	}

	minVersion, err := ParseMinVersion(cfg.MinVersion)
	if err != nil {
		return nil, err
	}

	// #nosec G402 - MinVersion is validated to 1.2 or 1.3
	tlsConfig := &tls.Config{
		MinVersion: minVersion,
	}

	if reloader != nil {
		tlsConfig.GetCertificate = reloader.GetCertificate
		return tlsConfig, nil
	}

	cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load certificate: %w", err)
	}
	if err := ValidateCertificate(&cert); err != nil {
		return nil, fmt.Errorf("certificate validation failed: %w", err)
	}
	tlsConfig.Certificates = []tls.Certificate{cert}

	return tlsConfig, nil
}

// ParseMinVersion converts "1.2" or "1.3" to a tls version constant. An
// empty string means TLS 1.2.
func ParseMinVersion(v string) (uint16, error) {
	switch v {
	case "1.2", "":
		return tls.VersionTLS12, nil
	case "1.3":
		return tls.VersionTLS13, nil
	default:
		return 0, fmt.Errorf("unsupported TLS min_version %q (valid: 1.2, 1.3)", v)
	}
}
