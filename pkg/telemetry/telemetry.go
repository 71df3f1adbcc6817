package telemetry

import (
	"context"
)

// Embedded PostHog key, stamped at release with -ldflags
var embeddedTelemetryApiKey string

// Client sends command metrics somewhere
type Client interface {
	AddMetric(ctx context.Context, metric Metric) error
	Close() error
}

type clientContextKey struct{}

// ContextWithClient returns a new context with the telemetry client
func ContextWithClient(ctx context.Context, client Client) context.Context {
	return context.WithValue(ctx, clientContextKey{}, client)
}

// ClientFromContext retrieves the telemetry client from context
func ClientFromContext(ctx context.Context) (Client, bool) {
	client, ok := ctx.Value(clientContextKey{}).(Client)
	return client, ok
}
