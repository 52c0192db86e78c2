/*
Package tls manages the certificates azrelay serves and trusts.

# Upstream trust

LoadTrustStore returns the system roots plus an optional CA bundle. The
pool is used as RootCAs for the upstream client; certificate verification
is never disabled.

	store, err := tls.LoadTrustStore(cfg.Upstream.CABundle)
	if err != nil {
		return err
	}

# Inbound TLS

	reloader := tls.NewCertificateReloader(cfg.Security.TLS.CertFile, cfg.Security.TLS.KeyFile)
	if err := reloader.Start(ctx); err != nil {
		return err
	}
	tlsConfig, err := tls.NewServerConfig(cfg.Security.TLS, reloader)

The reloader watches the certificate directories with fsnotify and swaps
the key pair when it changes.

# Expiry monitoring

ExpiryMonitor scans the served certificate and the CA bundle on a cron
schedule, exports their NotAfter as a metric and fails readiness when a
certificate has expired.
*/
package tls
