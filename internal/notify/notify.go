// Package notify defines the single channel through which workflows report
// user-visible outcomes.
package notify

import (
	"sync"
	"time"
)

// Kind classifies a notification.
type Kind int

const (
	// KindInfo reports a successful operation.
	KindInfo Kind = iota
	// KindValidation reports input rejected locally before any network call.
	KindValidation
	// KindTransport reports a network failure or failing HTTP status.
	KindTransport
	// KindRender reports a visualization that could not be loaded or decoded.
	KindRender
	// KindStorage reports a local file that could not be written or spooled.
	KindStorage
)

// String returns the lowercase name used in logs.
func (k Kind) String() string {
	switch k {
	case KindInfo:
		return "info"
	case KindValidation:
		return "validation"
	case KindTransport:
		return "transport"
	case KindRender:
		return "render"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// Notification is a transient message for the user.
type Notification struct {
	Kind    Kind
	Title   string
	Message string
	Time    time.Time
}

// IsError reports whether the notification describes a failure.
func (n Notification) IsError() bool {
	return n.Kind != KindInfo
}

// Sink receives notifications. Implementations must be safe for concurrent use.
type Sink interface {
	Notify(Notification)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Notification)

// Notify calls f(n).
func (f SinkFunc) Notify(n Notification) { f(n) }

// Discard drops every notification.
var Discard Sink = SinkFunc(func(Notification) {})

// Multi fans a notification out to several sinks.
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(n Notification) {
		for _, s := range sinks {
			if s != nil {
				s.Notify(n)
			}
		}
	})
}

// Recorder keeps every notification it receives. It is intended for tests
// and for front ends that replay notifications after an operation.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// Notify appends n.
func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Errors returns the recorded failures only.
func (r *Recorder) Errors() []Notification {
	var out []Notification
	for _, n := range r.All() {
		if n.IsError() {
			out = append(out, n)
		}
	}
	return out
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}
