package telemetry

import (
	"context"
	"errors"
	"time"
)

// MetricsContext collects the metrics of one command invocation
type MetricsContext struct {
	StartTime  time.Time         `json:"start_time"`
	Metrics    []Metric          `json:"metrics"`
	Properties map[string]string `json:"properties"`
}

// Metric is a named value with dimensions
type Metric struct {
	Value      float64           `json:"value"`
	Name       string            `json:"name"`
	Dimensions map[string]string `json:"dimensions"`
}

type metricsContextKey struct{}

// WithMetricsContext returns a new context with the metrics context
func WithMetricsContext(ctx context.Context, metrics *MetricsContext) context.Context {
	return context.WithValue(ctx, metricsContextKey{}, metrics)
}

// MetricsFromContext returns the metrics context of a command, or an empty
// one and an error when none was set
func MetricsFromContext(ctx context.Context) (*MetricsContext, error) {
	metrics, ok := ctx.Value(metricsContextKey{}).(*MetricsContext)
	if !ok {
		return &MetricsContext{Properties: map[string]string{}}, errors.New("no metrics context")
	}
	return metrics, nil
}

func NewMetricsContext() *MetricsContext {
	return &MetricsContext{
		StartTime:  time.Now(),
		Metrics:    make([]Metric, 0),
		Properties: make(map[string]string),
	}
}

// AddMetric adds a metric without dimensions
func (m *MetricsContext) AddMetric(name string, value float64) {
	m.AddMetricWithDimensions(name, value, make(map[string]string))
}

func (m *MetricsContext) AddMetricWithDimensions(name string, value float64, dimensions map[string]string) {
	m.Metrics = append(m.Metrics, Metric{
		Name:       name,
		Value:      value,
		Dimensions: dimensions,
	})
}

// Flatten merges the context properties into every metric's dimensions.
// Metric dimensions win over properties of the same name.
func (m *MetricsContext) Flatten() []Metric {
	out := make([]Metric, len(m.Metrics))
	for i, metric := range m.Metrics {
		dims := make(map[string]string, len(m.Properties)+len(metric.Dimensions))
		for k, v := range m.Properties {
			dims[k] = v
		}
		for k, v := range metric.Dimensions {
			dims[k] = v
		}
		out[i] = Metric{Name: metric.Name, Value: metric.Value, Dimensions: dims}
	}
	return out
}
