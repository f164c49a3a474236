package eventmock

import (
	"context"
	"sync"

	"lendledger/internal/domain/event"
)

// Recorder collects emitted envelopes. Set EmitFn to script failures
// instead.
type Recorder struct {
	EmitFn func(ctx context.Context, e event.Envelope) error

	mu     sync.Mutex
	events []event.Envelope
}

func (r *Recorder) Emit(ctx context.Context, e event.Envelope) error {
	if r.EmitFn != nil {
		return r.EmitFn(ctx, e)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Events() []event.Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]event.Envelope, len(r.events))
	copy(out, r.events)
	return out
}

// Kinds returns the emitted event types in order.
func (r *Recorder) Kinds() []event.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]event.Type, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}
