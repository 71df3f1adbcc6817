package telemetry

import (
	"context"
	"os"
	"strings"

	"github.com/lazysuperheroes/mission-cli/pkg/common"

	"github.com/posthog/posthog-go"
)

// Environment variables overriding the PostHog key and endpoint
const (
	EnvPostHogKey      = "MISSION_POSTHOG_KEY"
	EnvPostHogEndpoint = "MISSION_POSTHOG_ENDPOINT"
	defaultEndpoint    = "https://us.i.posthog.com"
)

// PostHogClient sends each metric as a PostHog event named after the namespace
type PostHogClient struct {
	namespace      string
	client         posthog.Client
	appEnvironment *common.AppEnvironment
}

// NewPostHogClient returns nil without error when no key is configured
func NewPostHogClient(environment *common.AppEnvironment, namespace string) (*PostHogClient, error) {
	apiKey := postHogAPIKey()
	if apiKey == "" {
		return nil, nil
	}
	client, err := posthog.NewWithConfig(apiKey, posthog.Config{Endpoint: postHogEndpoint()})
	if err != nil {
		return nil, err
	}
	return &PostHogClient{
		namespace:      namespace,
		client:         client,
		appEnvironment: environment,
	}, nil
}

func (c *PostHogClient) AddMetric(_ context.Context, metric Metric) error {
	if c == nil || c.client == nil {
		return nil
	}

	props := posthog.NewProperties().
		Set("name", metric.Name).
		Set("value", metric.Value)
	for k, v := range metric.Dimensions {
		props.Set(k, v)
	}

	return c.client.Enqueue(posthog.Capture{
		DistinctId: c.distinctID(),
		Event:      c.namespace,
		Properties: props,
	})
}

// distinctID prefers the project so a team's runs group together
func (c *PostHogClient) distinctID() string {
	if c.appEnvironment == nil {
		return "anonymous"
	}
	if c.appEnvironment.ProjectUUID != "" {
		return c.appEnvironment.ProjectUUID
	}
	if c.appEnvironment.UserUUID != "" {
		return c.appEnvironment.UserUUID
	}
	return "anonymous"
}

func (c *PostHogClient) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	_ = c.client.Close()
	return nil
}

func postHogAPIKey() string {
	if key := strings.TrimSpace(os.Getenv(EnvPostHogKey)); key != "" {
		return key
	}
	return embeddedTelemetryApiKey
}

func postHogEndpoint() string {
	if endpoint := strings.TrimSpace(os.Getenv(EnvPostHogEndpoint)); endpoint != "" {
		return endpoint
	}
	return defaultEndpoint
}
