// Package relay forwards a single chat message to a completion provider
// and maps every outcome onto one of five caller-visible categories:
// client input, upstream status, transport, TLS verification and internal.
//
//	svc := relay.NewService(provider,
//		relay.WithMetrics(collector),
//		relay.WithTracer(tracer),
//	)
//	reply, err := svc.Relay(ctx, "How can I reduce plastic use?")
//	switch relay.Classify(err) {
//	case relay.CategorySuccess:
//		...
//	}
package relay
