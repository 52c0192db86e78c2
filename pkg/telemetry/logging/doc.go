// Package logging configures log/slog for azrelay.
//
// New returns a *slog.Logger that the run command installs with
// slog.SetDefault, so the package-level slog functions used across the
// codebase share one handler. The handler:
//   - writes JSON or text at the configured level
//   - adds request_id, trace_id and span_id when they are in the context
//   - redacts API keys, bearer tokens, passwords, custom patterns and the
//     configured upstream key from every string attribute and error
//
// # Usage
//
//	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging, cfg.Upstream.APIKey))
//	if err != nil {
//		return err
//	}
//	slog.SetDefault(logger)
//
//	ctx = logging.WithRequestID(ctx, "9f1c...")
//	slog.InfoContext(ctx, "relaying message") // includes request_id
package logging
