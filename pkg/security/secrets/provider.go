package secrets

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a provider that has no value for a name.
var ErrNotFound = errors.New("secret not found")

// Provider retrieves secret values by name.
type Provider interface {
	// GetSecret returns the value for name, or an error wrapping ErrNotFound.
	GetSecret(ctx context.Context, name string) (string, error)

	// Name identifies the provider in logs ("env", "file").
	Name() string

	// Supports reports whether the provider may hold name. The manager
	// skips providers that return false.
	Supports(name string) bool
}

// WatchingProvider reports changes to the values it serves.
type WatchingProvider interface {
	Provider
	OnChange(fn func())
}
