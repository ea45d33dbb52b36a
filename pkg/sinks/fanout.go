package sinks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
)

// Fanout sends each event to every sink, one after another.
type Fanout struct {
	sinks []Sink
}

// NewFanout keeps the non-nil sinks, in order.
func NewFanout(sinks ...Sink) *Fanout {
	f := &Fanout{}
	for _, s := range sinks {
		if s != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	return f
}

// Report summarizes one delivery round. Failures is keyed by sink id.
type Report struct {
	Attempted int
	Delivered int
	Failures  map[string]error
}

// Err joins the failures, ordered by sink id, or returns nil.
func (r Report) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	ids := make([]string, 0, len(r.Failures))
	for id := range r.Failures {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	errs := make([]error, 0, len(ids))
	for _, id := range ids {
		errs = append(errs, fmt.Errorf("sink %s: %w", id, r.Failures[id]))
	}
	return errors.Join(errs...)
}

// Deliver sends evt to every sink. A failing sink does not stop the others.
func (f *Fanout) Deliver(ctx context.Context, evt Event) Report {
	var rep Report
	if f == nil {
		return rep
	}
	for _, s := range f.sinks {
		rep.Attempted++
		if err := s.Send(ctx, evt); err != nil {
			if rep.Failures == nil {
				rep.Failures = make(map[string]error)
			}
			rep.Failures[s.ID()] = err
			continue
		}
		rep.Delivered++
	}
	return rep
}

// Len is the number of sinks.
func (f *Fanout) Len() int {
	if f == nil {
		return 0
	}
	return len(f.sinks)
}

// Close releases every sink that holds a client.
func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}
	return closeSinks(f.sinks)
}

func closeSinks(sinks []Sink) error {
	var errs []error
	for _, s := range sinks {
		c, ok := s.(io.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s sink %s: %w", s.Kind(), s.ID(), err))
		}
	}
	return errors.Join(errs...)
}
