// Package sinks forwards finished job results to downstream systems.
package sinks

import (
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// Sink kinds accepted in a sinks file.
const (
	KindHTTP   = "http"
	KindSQS    = "sqs"
	KindSNS    = "sns"
	KindPubSub = "pubsub"
)

// Sink receives job events.
type Sink interface {
	ID() string
	Kind() string
	Send(ctx context.Context, evt Event) error
}

// Logger is the logging surface sinks rely on; internal/logger.Logger satisfies it.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

type nopLogger struct{}

func (nopLogger) InfoObj(string, string, interface{})  {}
func (nopLogger) DebugObj(string, string, interface{}) {}
func (nopLogger) WarnObj(string, string, interface{})  {}
func (nopLogger) ErrorObj(string, string, interface{}) {}

func orNop(log Logger) Logger {
	if log == nil {
		return nopLogger{}
	}
	return log
}

// sendFunc delivers one encoded event and returns the backend message id, if any.
type sendFunc func(ctx context.Context, payload []byte, attrs map[string]string) (string, error)

// sink is shared by every kind; a kind only supplies how bytes leave the process.
type sink struct {
	id    string
	kind  string
	send  sendFunc
	close func() error
	log   Logger
}

func (s *sink) ID() string   { return s.id }
func (s *sink) Kind() string { return s.kind }

// Send encodes evt as JSON and hands it to the backend.
func (s *sink) Send(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event for %s sink %q: %w", s.kind, s.id, err)
	}

	msgID, err := s.send(ctx, payload, evt.attributes())
	if err != nil {
		s.log.WarnObj("sink rejected job event", "sink_failure", map[string]any{
			"sink":   s.id,
			"kind":   s.kind,
			"job_id": evt.JobID,
			"error":  err.Error(),
		})
		return err
	}

	meta := map[string]any{"sink": s.id, "kind": s.kind, "job_id": evt.JobID}
	if msgID != "" {
		meta["message_id"] = msgID
	}
	s.log.DebugObj("sink accepted job event", "sink_delivery", meta)
	return nil
}

// Close releases backend clients, if the kind holds any.
func (s *sink) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// clip shortens b to at most n bytes without splitting a UTF-8 sequence.
func clip(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	for n > 0 && !utf8.RuneStart(b[n]) {
		n--
	}
	return string(b[:n]) + "..."
}
