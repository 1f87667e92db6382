// Package lifecycle exposes note change events as a lifecycle.Source so
// they can be consumed alongside other supervised event streams.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/jot/pkg/core"
)

// NoteSource forwards note events, optionally restricted to some types.
type NoteSource struct {
	events <-chan core.Event
	types  map[core.EventType]bool
	out    chan lifecycle.Event
}

// NewSource wraps a note event channel. When types is non-empty only
// events of those types are forwarded.
func NewSource(events <-chan core.Event, types ...core.EventType) *NoteSource {
	s := &NoteSource{
		events: events,
		out:    make(chan lifecycle.Event),
	}
	if len(types) > 0 {
		s.types = make(map[core.EventType]bool, len(types))
		for _, t := range types {
			s.types[t] = true
		}
	}
	return s
}

// Events implements lifecycle.Source.
func (s *NoteSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start implements lifecycle.Source. The output channel closes when ctx is
// done or the upstream channel closes.
func (s *NoteSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, s.forward)
	return nil
}

func (s *NoteSource) forward(ctx context.Context) error {
	defer close(s.out)
	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-s.events:
			if !ok {
				return nil
			}
			if s.types != nil && !s.types[e.Type] {
				continue
			}
			select {
			case s.out <- e:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

var _ lifecycle.Source = (*NoteSource)(nil)
