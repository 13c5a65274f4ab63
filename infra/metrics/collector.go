package metrics

import (
	"context"
	"time"

	"github.com/mjoly/fieldops/core/events"
	coremetrics "github.com/mjoly/fieldops/core/metrics"
	"github.com/mjoly/fieldops/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records lifecycle
// transitions on the sink. Assignment outcomes are recorded by the engine
// itself, so only status events are bridged here.
// It stops when the context is canceled.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.Sink) {
	if bus == nil || sink == nil {
		return
	}
	sr, ok := sink.(coremetrics.StatusRecorder)
	if !ok {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if e, ok := ev.(events.StatusEvent); ok {
					_ = sr.RecordStatusChange(coremetrics.StatusRecord{
						JobID:    e.JobID,
						From:     string(e.From),
						To:       string(e.To),
						Rejected: e.Err != nil,
						Time:     time.Now(),
					})
				}
			}
		}
	}()
}
