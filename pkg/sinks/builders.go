package sinks

import (
	"context"
	"fmt"
)

// Builder turns a validated entry into a live Sink.
type Builder func(ctx context.Context, cfg SinkConfig, log Logger) (Sink, error)

// Builders maps a sink kind to its Builder.
type Builders map[string]Builder

// DefaultBuilders knows every kind a sinks file may declare.
func DefaultBuilders() Builders {
	return Builders{
		KindHTTP:   newHTTPSink,
		KindSQS:    newSQSSink,
		KindSNS:    newSNSSink,
		KindPubSub: newPubSubSink,
	}
}

// Build creates one sink per entry, in order. On failure the sinks already
// built are closed.
func (b Builders) Build(ctx context.Context, cfgs []SinkConfig, log Logger) ([]Sink, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	built := make([]Sink, 0, len(cfgs))
	for _, cfg := range cfgs {
		build, ok := b[cfg.Type]
		if !ok {
			closeSinks(built)
			return nil, fmt.Errorf("sink %q: no builder for type %q", cfg.ID, cfg.Type)
		}
		s, err := build(ctx, cfg, log)
		if err != nil {
			closeSinks(built)
			return nil, fmt.Errorf("sink %q: %w", cfg.ID, err)
		}
		built = append(built, s)
	}
	return built, nil
}
