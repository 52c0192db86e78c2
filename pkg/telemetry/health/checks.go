package health

import (
	"context"
	"fmt"

	"relayhq/azrelay/pkg/providers"
)

// HealthReporter is the part of a provider the readiness check needs.
type HealthReporter interface {
	GetName() string
	IsHealthy() bool
	GetHealth() providers.ProviderHealth
}

// ProviderCheck fails when the provider has crossed its consecutive
// transport failure threshold. It never calls the upstream; the state comes
// from real relay traffic.
func ProviderCheck(p HealthReporter) CheckFunc {
	return func(context.Context) error {
		if p.IsHealthy() {
			return nil
		}
		h := p.GetHealth()
		if h.LastError != nil {
			return fmt.Errorf("provider %q unreachable after %d consecutive failures: %w",
				p.GetName(), h.ConsecutiveFailures, h.LastError)
		}
		return fmt.Errorf("provider %q unreachable after %d consecutive failures",
			p.GetName(), h.ConsecutiveFailures)
	}
}
