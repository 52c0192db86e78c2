// Package health provides liveness, readiness and version endpoints.
//
// Endpoints:
//
//   - /health: liveness. Always 200 while the process serves HTTP.
//   - /ready: readiness. Runs registered checks concurrently, each bounded
//     by a timeout, and returns 503 when any of them fails.
//   - /version: build information.
//
// Readiness checks only read state that other components already track.
// The upstream check looks at the provider's consecutive failure counter
// and the certificate check looks at the last scheduled expiry scan, so a
// probe never costs an upstream call.
//
// Usage:
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("upstream", health.ProviderCheck(provider))
//	checker.RegisterCheck("certificates", monitor.Check)
//	health.Register(mux, checker, health.NewVersionInfo(version, commit, date))
package health
