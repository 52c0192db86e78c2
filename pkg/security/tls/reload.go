package tls

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultReloadDebounce collapses the burst of events an editor or a
// secret mount produces for one rotation.
const DefaultReloadDebounce = 250 * time.Millisecond

// CertificateReloader serves a key pair and swaps it when the files change
// on disk. A failed reload keeps serving the previous certificate.
type CertificateReloader struct {
	certFile string
	keyFile  string
	logger   *slog.Logger
	debounce time.Duration
	onReload func(*x509.Certificate)

	cert atomic.Pointer[tls.Certificate]
	done chan struct{}
}

// ReloaderOption customizes a CertificateReloader.
type ReloaderOption func(*CertificateReloader)

// WithReloadLogger sets the logger. Default: slog.Default().
func WithReloadLogger(logger *slog.Logger) ReloaderOption {
	return func(r *CertificateReloader) { r.logger = logger }
}

// WithReloadDebounce sets the quiet period before a reload runs.
func WithReloadDebounce(d time.Duration) ReloaderOption {
	return func(r *CertificateReloader) { r.debounce = d }
}

// WithOnReload registers fn to run with the new leaf after every
// successful load, including the initial one.
func WithOnReload(fn func(*x509.Certificate)) ReloaderOption {
	return func(r *CertificateReloader) { r.onReload = fn }
}

// NewCertificateReloader creates a reloader. Call Start to load the
// initial certificate and begin watching.
func NewCertificateReloader(certFile, keyFile string, opts ...ReloaderOption) *CertificateReloader {
	r := &CertificateReloader{
		certFile: filepath.Clean(certFile),
		keyFile:  filepath.Clean(keyFile),
		logger:   slog.Default(),
		debounce: DefaultReloadDebounce,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "tls.reloader")
	return r
}

// Start loads the certificate and watches the containing directories
// until ctx is cancelled. Directories are watched instead of the files so
// that atomic renames and Kubernetes ..data symlink swaps are seen.
func (r *CertificateReloader) Start(ctx context.Context) error {
	if err := r.Reload(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	for _, dir := range r.watchDirs() {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return fmt.Errorf("failed to watch %q: %w", dir, err)
		}
	}

	go r.watch(ctx, watcher)
	return nil
}

// Done is closed once the watch loop has exited.
func (r *CertificateReloader) Done() <-chan struct{} {
	return r.done
}

func (r *CertificateReloader) watchDirs() []string {
	certDir := filepath.Dir(r.certFile)
	keyDir := filepath.Dir(r.keyFile)
	if certDir == keyDir {
		return []string{certDir}
	}
	return []string{certDir, keyDir}
}

func (r *CertificateReloader) watch(ctx context.Context, watcher *fsnotify.Watcher) {
	defer close(r.done)
	defer watcher.Close()

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !r.relevant(event) {
				continue
			}
			r.logger.Debug("certificate file event", "path", event.Name, "op", event.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(r.debounce, func() {
				if err := r.Reload(); err != nil {
					r.logger.Error("failed to reload certificate, keeping previous",
						"error", err,
						"cert_file", r.certFile,
						"key_file", r.keyFile,
					)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			r.logger.Error("certificate watcher error", "error", err)
		}
	}
}

func (r *CertificateReloader) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Clean(event.Name)
	if name == r.certFile || name == r.keyFile {
		return true
	}
	return strings.HasPrefix(filepath.Base(name), "..data")
}

// Reload loads the key pair from disk and swaps it in if it is valid.
func (r *CertificateReloader) Reload() error {
	cert, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err != nil {
		return fmt.Errorf("failed to load certificate: %w", err)
	}
	leaf, err := Leaf(&cert)
	if err != nil {
		return err
	}
	if err := ValidateX509Certificate(leaf, time.Now()); err != nil {
		return err
	}
	cert.Leaf = leaf

	r.cert.Store(&cert)
	r.logger.Info("certificate loaded",
		"subject", leaf.Subject.CommonName,
		"issuer", leaf.Issuer.CommonName,
		"expires_at", leaf.NotAfter.Format(time.RFC3339),
	)
	if r.onReload != nil {
		r.onReload(leaf)
	}
	return nil
}

// GetCertificate implements tls.Config.GetCertificate.
func (r *CertificateReloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	cert := r.cert.Load()
	if cert == nil {
		return nil, fmt.Errorf("no certificate loaded")
	}
	return cert, nil
}

// Leaf returns the current leaf certificate, or nil before Start.
func (r *CertificateReloader) Leaf() *x509.Certificate {
	if cert := r.cert.Load(); cert != nil {
		return cert.Leaf
	}
	return nil
}
