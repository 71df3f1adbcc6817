package economy

import (
	"context"
	"errors"
	"fmt"

	"github.com/lazysuperheroes/mission-cli/pkg/common/iface"
	"github.com/lazysuperheroes/mission-cli/pkg/common/logger"
)

// Job takes a snapshot, publishes it to metrics and the latest holder,
// then writes it to the sink
type Job struct {
	Collector *Collector
	Sink      Sink
	Metrics   *Metrics
	Latest    *Latest
	Logger    iface.Logger
}

// RunOnce performs one snapshot cycle. A snapshot with failed sections is
// still written; only a cancelled context or a sink failure is an error.
func (j *Job) RunOnce(ctx context.Context) (*Snapshot, error) {
	if j.Collector == nil {
		return nil, errors.New("economy: job has no collector")
	}
	log := j.Logger
	if log == nil {
		log = logger.NewNoopLogger()
	}

	snap, err := j.Collector.Collect(ctx)
	if err != nil {
		return snap, fmt.Errorf("collect: %w", err)
	}
	if j.Metrics != nil {
		j.Metrics.Observe(snap)
	}
	if j.Latest != nil {
		j.Latest.Set(snap)
	}
	if failed := snap.FailedSections(); len(failed) > 0 {
		log.Warn("Snapshot %s is partial: %d of %d sections failed %v", snap.ID, len(failed), len(Sections), failed)
	}
	if j.Sink != nil {
		if err := j.Sink.Write(ctx, snap); err != nil {
			return snap, fmt.Errorf("write snapshot %s: %w", snap.ID, err)
		}
	}
	log.Info("Snapshot %s captured for %s", snap.ID, snap.Network)
	return snap, nil
}
