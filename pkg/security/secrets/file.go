package secrets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// FileProvider reads one secret per file from a directory, the layout
// Kubernetes and Docker use for mounted secrets. Values are trimmed and
// cached until the directory changes.
//
// Files must not be writable by group or accessible by others; 0600,
// 0400, 0640 and 0440 are accepted.
type FileProvider struct {
	dir    string
	logger *slog.Logger

	mu       sync.RWMutex
	cache    map[string]string
	onChange func()

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewFileProvider creates a provider for dir. When watch is true the
// cache is cleared whenever a file in dir changes and the OnChange
// callback runs.
func NewFileProvider(dir string, watch bool) (*FileProvider, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat secrets directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("secrets path is not a directory: %s", dir)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve secrets directory: %w", err)
	}

	p := &FileProvider{
		dir:    absDir,
		logger: slog.Default().With("component", "secrets.file"),
		cache:  make(map[string]string),
		done:   make(chan struct{}),
	}

	if !watch {
		close(p.done)
		return p, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(absDir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch secrets directory: %w", err)
	}
	p.watcher = watcher
	go p.watchLoop()

	return p, nil
}

// GetSecret reads dir/name.
func (p *FileProvider) GetSecret(_ context.Context, name string) (string, error) {
	p.mu.RLock()
	value, ok := p.cache[name]
	p.mu.RUnlock()
	if ok {
		return value, nil
	}

	path, err := p.path(name)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return "", fmt.Errorf("failed to stat secret file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("secret path is not a regular file: %s", name)
	}
	if perm := info.Mode().Perm(); perm&0o027 != 0 {
		return "", fmt.Errorf("insecure permissions on secret %s: %o", name, perm)
	}

	// #nosec G304 - path is confined to p.dir above
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file: %w", err)
	}
	value = strings.TrimSpace(string(data))

	p.mu.Lock()
	p.cache[name] = value
	p.mu.Unlock()

	return value, nil
}

// path resolves name inside dir and rejects anything that escapes it.
func (p *FileProvider) path(name string) (string, error) {
	if name == "" || strings.ContainsRune(name, filepath.Separator) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid secret name %q", name)
	}
	path := filepath.Join(p.dir, name)
	if filepath.Dir(path) != p.dir {
		return "", fmt.Errorf("invalid secret name %q", name)
	}
	return path, nil
}

// Name returns "file".
func (p *FileProvider) Name() string {
	return "file"
}

// Supports reports whether dir/name exists.
func (p *FileProvider) Supports(name string) bool {
	path, err := p.path(name)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Refresh clears the cache.
func (p *FileProvider) Refresh(context.Context) error {
	p.mu.Lock()
	p.cache = make(map[string]string)
	p.mu.Unlock()
	return nil
}

// OnChange sets fn to run after a change in dir cleared the cache. It
// replaces any earlier callback and never runs when the provider does not
// watch.
func (p *FileProvider) OnChange(fn func()) {
	p.mu.Lock()
	p.onChange = fn
	p.mu.Unlock()
}

// Close stops watching.
func (p *FileProvider) Close() error {
	if p.watcher == nil {
		return nil
	}
	err := p.watcher.Close()
	<-p.done
	return err
}

func (p *FileProvider) watchLoop() {
	defer close(p.done)
	for {
		select {
		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			p.logger.Debug("secret file changed", "file", filepath.Base(event.Name), "op", event.Op.String())
			_ = p.Refresh(context.Background())

			p.mu.RLock()
			fn := p.onChange
			p.mu.RUnlock()
			if fn != nil {
				fn()
			}

		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("secret watcher error", "error", err)
		}
	}
}
