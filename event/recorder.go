package event

import (
	"context"
	"sync"
)

// Published is one event captured by a Recorder.
type Published struct {
	Name   string
	Data   any
	SiteID string
}

// Recorder is a Publisher that keeps every event in memory. It is meant
// for tests.
type Recorder struct {
	mu     sync.Mutex
	events []Published
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Publish records the event.
func (r *Recorder) Publish(_ context.Context, name string, data any, siteID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Published{Name: name, Data: data, SiteID: siteID})
}

// Events returns a copy of the recorded events in publish order.
func (r *Recorder) Events() []Published {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Published, len(r.events))
	copy(out, r.events)
	return out
}

// Names returns the recorded event names in publish order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Name
	}
	return out
}

// Reset discards recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
