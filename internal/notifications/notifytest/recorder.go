// Package notifytest provides an in-memory notification channel for tests.
package notifytest

import (
	"context"
	"sync"
	"testing"

	"assetnexus/internal/notifications"

	"github.com/stretchr/testify/assert"
)

// Recorder is a Channel that keeps every notification it is sent.
type Recorder struct {
	name string
	err  error

	mu   sync.Mutex
	sent []notifications.Notification
}

var _ notifications.Channel = (*Recorder)(nil)

func NewRecorder(name string) *Recorder {
	return &Recorder{name: name}
}

// FailWith makes subsequent sends return err without recording.
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *Recorder) Name() string { return r.name }

func (r *Recorder) Send(ctx context.Context, n notifications.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, n)
	return nil
}

// Sent returns the recorded notifications of the given kind.
func (r *Recorder) Sent(kind notifications.Kind) []notifications.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notifications.Notification
	for _, n := range r.sent {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

func (r *Recorder) All() []notifications.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notifications.Notification(nil), r.sent...)
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}

// AssertSent checks that exactly one notification of kind went out on this
// channel and nothing else did.
func (r *Recorder) AssertSent(t testing.TB, kind notifications.Kind) bool {
	t.Helper()
	all := r.All()
	if !assert.Len(t, all, 1, "expected exactly one notification on %s", r.name) {
		return false
	}
	return assert.Equal(t, kind, all[0].Kind) && assert.Equal(t, r.name, all[0].Channel)
}

func (r *Recorder) AssertNotSent(t testing.TB, kind notifications.Kind) bool {
	t.Helper()
	return assert.Empty(t, r.Sent(kind), "unexpected %s on %s", kind, r.name)
}

func (r *Recorder) AssertNothingSent(t testing.TB) bool {
	t.Helper()
	return assert.Empty(t, r.All(), "unexpected notifications on %s", r.name)
}
