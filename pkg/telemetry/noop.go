package telemetry

import "context"

// NoopClient drops every metric; it is used whenever telemetry is off
type NoopClient struct{}

func NewNoopClient() *NoopClient {
	return &NoopClient{}
}

func (c *NoopClient) AddMetric(_ context.Context, _ Metric) error {
	return nil
}

func (c *NoopClient) Close() error {
	return nil
}

// IsNoopClient reports whether telemetry is disabled for client
func IsNoopClient(client Client) bool {
	_, isNoop := client.(*NoopClient)
	return isNoop
}
