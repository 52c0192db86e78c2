// Package config provides configuration management for azrelay.
//
// Configuration is assembled from three layers, later layers overriding
// earlier ones:
//
//  1. Default values (defined in defaults.go)
//  2. An optional YAML file
//  3. Environment variables
//
// The upstream settings use the variable names Azure tooling already
// exports:
//
//   - AZURE_OPENAI_ENDPOINT
//   - AZURE_OPENAI_API_KEY
//   - AZURE_OPENAI_DEPLOYMENT
//   - AZURE_OPENAI_API_VERSION
//
// PORT replaces the port of server.listen_address. The remaining service
// settings use the AZRELAY_ prefix.
//
// # Secrets
//
// upstream.api_key may hold a ${secret:name} reference. LoadConfig leaves
// it untouched; ResolveSecrets replaces it using a SecretResolver such as
// the secrets.Manager. A missing or empty key fails startup.
//
// # Example
//
//	cfg, err := config.LoadConfig("azrelay.yaml")
//	if err != nil {
//		return err
//	}
//	if err := config.ResolveSecrets(ctx, cfg, manager); err != nil {
//		return err
//	}
//
// The returned Config is not modified after startup. Pass it, or the
// sections a component needs, explicitly.
package config
