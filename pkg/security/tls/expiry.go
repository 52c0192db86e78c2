package tls

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ExpiryRecorder receives the NotAfter of every scanned certificate.
// *metrics.Collector implements it.
type ExpiryRecorder interface {
	SetCertificateExpiry(name string, notAfter time.Time)
}

// CertificateSource returns the certificates to scan. It is called on
// every scan so reloaded certificates are picked up.
type CertificateSource func() []*x509.Certificate

// ExpiryMonitor periodically scans certificates for expiry. Certificates
// inside the warning window are logged; expired or not-yet-valid ones
// make Check fail.
type ExpiryMonitor struct {
	schedule   string
	warnBefore time.Duration
	recorder   ExpiryRecorder
	logger     *slog.Logger
	now        func() time.Time

	mu      sync.Mutex
	sources map[string]CertificateSource
	lastErr error
	scanned bool
	cron    *cron.Cron
}

// NewExpiryMonitor creates a monitor. recorder may be nil.
func NewExpiryMonitor(schedule string, warnBefore time.Duration, recorder ExpiryRecorder, logger *slog.Logger) *ExpiryMonitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExpiryMonitor{
		schedule:   schedule,
		warnBefore: warnBefore,
		recorder:   recorder,
		logger:     logger.With("component", "tls.expiry"),
		now:        time.Now,
		sources:    make(map[string]CertificateSource),
	}
}

// AddSource registers certificates under name. name is used as the
// metric label prefix.
func (m *ExpiryMonitor) AddSource(name string, source CertificateSource) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources[name] = source
}

// AddCertificates registers a fixed set of certificates under name.
func (m *ExpiryMonitor) AddCertificates(name string, certs []*x509.Certificate) {
	m.AddSource(name, func() []*x509.Certificate { return certs })
}

// Start runs one scan immediately and then on the configured schedule
// until ctx is cancelled or Stop is called.
func (m *ExpiryMonitor) Start(ctx context.Context) error {
	if _, err := cron.ParseStandard(m.schedule); err != nil {
		return fmt.Errorf("invalid certificate check schedule %q: %w", m.schedule, err)
	}

	m.Scan()

	c := cron.New()
	if _, err := c.AddFunc(m.schedule, m.Scan); err != nil {
		return fmt.Errorf("failed to schedule certificate check: %w", err)
	}

	m.mu.Lock()
	m.cron = c
	m.mu.Unlock()
	c.Start()

	m.logger.Info("certificate expiry monitor started", "schedule", m.schedule, "warn_before", m.warnBefore.String())

	go func() {
		<-ctx.Done()
		m.Stop()
	}()
	return nil
}

// Stop stops the schedule and waits for a running scan to finish.
func (m *ExpiryMonitor) Stop() {
	m.mu.Lock()
	c := m.cron
	m.cron = nil
	m.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}

// Scan checks every registered certificate now.
func (m *ExpiryMonitor) Scan() {
	m.mu.Lock()
	names := make([]string, 0, len(m.sources))
	for name := range m.sources {
		names = append(names, name)
	}
	sources := make(map[string]CertificateSource, len(m.sources))
	for name, src := range m.sources {
		sources[name] = src
	}
	m.mu.Unlock()
	sort.Strings(names)

	now := m.now()
	var errs []error
	for _, name := range names {
		for _, cert := range sources[name]() {
			if cert == nil {
				continue
			}
			label := name + "/" + cert.Subject.CommonName
			if m.recorder != nil {
				m.recorder.SetCertificateExpiry(label, cert.NotAfter)
			}

			if err := ValidateX509Certificate(cert, now); err != nil {
				m.logger.Error("certificate not valid", "name", label, "error", err)
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				continue
			}
			if remaining := cert.NotAfter.Sub(now); remaining < m.warnBefore {
				m.logger.Warn("certificate expiring soon",
					"name", label,
					"expires_in_days", DaysUntilExpiry(cert, now),
					"expires_at", cert.NotAfter.Format(time.RFC3339),
				)
			}
		}
	}

	m.mu.Lock()
	m.lastErr = errors.Join(errs...)
	m.scanned = true
	m.mu.Unlock()
}

// Check reports the result of the last scan. It is a health.CheckFunc.
func (m *ExpiryMonitor) Check(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.scanned {
		return errors.New("certificate check has not run yet")
	}
	return m.lastErr
}
