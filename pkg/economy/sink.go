package economy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lazysuperheroes/mission-cli/pkg/common/iface"
	"github.com/lazysuperheroes/mission-cli/pkg/common/logger"
)

// Sink persists snapshots
type Sink interface {
	Name() string
	Write(ctx context.Context, s *Snapshot) error
}

// DirectusConfig configures the Directus item sink
type DirectusConfig struct {
	URL        string
	Collection string
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// DirectusSink creates one item per snapshot in a Directus collection
type DirectusSink struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// directusItem is the row written to Directus; the full snapshot is kept
// as a JSON payload next to a few filterable columns
type directusItem struct {
	SnapshotID string    `json:"snapshot_id"`
	Network    string    `json:"network"`
	CapturedAt time.Time `json:"captured_at"`
	Complete   bool      `json:"complete"`
	Payload    *Snapshot `json:"payload"`
}

func NewDirectusSink(cfg DirectusConfig) (*DirectusSink, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if base == "" {
		return nil, errors.New("directus: url not configured")
	}
	if cfg.Collection == "" {
		return nil, errors.New("directus: collection not configured")
	}
	if cfg.Token == "" {
		return nil, errors.New("directus: token not configured")
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &DirectusSink{
		endpoint:   base + "/items/" + url.PathEscape(cfg.Collection),
		token:      cfg.Token,
		httpClient: client,
	}, nil
}

func (d *DirectusSink) Name() string { return "directus" }

func (d *DirectusSink) Write(ctx context.Context, s *Snapshot) error {
	body, err := json.Marshal(directusItem{
		SnapshotID: s.ID,
		Network:    s.Network,
		CapturedAt: s.CapturedAt,
		Complete:   s.Complete(),
		Payload:    s,
	})
	if err != nil {
		return fmt.Errorf("directus: encode snapshot: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("directus: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.token)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("directus: post %s: %w", d.endpoint, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("directus: status %d: %s", resp.StatusCode, directusMessage(raw))
	}
	return nil
}

// directusMessage extracts errors[].message from a Directus error body
func directusMessage(raw []byte) string {
	var env struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(raw, &env); err == nil && len(env.Errors) > 0 {
		msgs := make([]string, 0, len(env.Errors))
		for _, e := range env.Errors {
			msgs = append(msgs, e.Message)
		}
		return strings.Join(msgs, "; ")
	}
	text := strings.TrimSpace(string(raw))
	if len(text) > 200 {
		text = text[:200] + "..."
	}
	return text
}

// StdoutSink prints snapshots as indented JSON
type StdoutSink struct {
	w io.Writer
}

func NewStdoutSink(w io.Writer) *StdoutSink {
	return &StdoutSink{w: w}
}

func (s *StdoutSink) Name() string { return "stdout" }

func (s *StdoutSink) Write(_ context.Context, snap *Snapshot) error {
	enc := json.NewEncoder(s.w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// MultiSink writes to every sink and fails only when all of them fail
type MultiSink struct {
	sinks []Sink
	log   iface.Logger
}

func NewMultiSink(log iface.Logger, sinks ...Sink) *MultiSink {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &MultiSink{sinks: sinks, log: log}
}

func (m *MultiSink) Name() string {
	names := make([]string, 0, len(m.sinks))
	for _, s := range m.sinks {
		names = append(names, s.Name())
	}
	return strings.Join(names, ",")
}

func (m *MultiSink) Write(ctx context.Context, snap *Snapshot) error {
	if len(m.sinks) == 0 {
		return errors.New("no sinks configured")
	}
	var errs []error
	for _, s := range m.sinks {
		if err := s.Write(ctx, snap); err != nil {
			m.log.Warn("Snapshot %s not written to %s: %v", snap.ID, s.Name(), err)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		m.log.Debug("Snapshot %s written to %s", snap.ID, s.Name())
	}
	if len(errs) == len(m.sinks) {
		return fmt.Errorf("all sinks failed: %w", errors.Join(errs...))
	}
	return nil
}
