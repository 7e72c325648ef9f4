// internal/settings/gate.go
package settings

import (
	"sort"
	"sync"
)

// Channel names understood by the notification router.
const (
	ChannelWebhook = "webhook"
	ChannelNATS    = "nats"
)

// Gate holds per-channel enablement flags. Channels that were never enabled
// report false.
type Gate struct {
	mu    sync.RWMutex
	flags map[string]bool
}

// NewGate returns a gate with the given channels enabled.
func NewGate(enabled ...string) *Gate {
	g := &Gate{flags: make(map[string]bool)}
	for _, ch := range enabled {
		g.flags[ch] = true
	}
	return g
}

func (g *Gate) IsEnabled(channel string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.flags[channel]
}

func (g *Gate) Enable(channel string)  { g.Set(channel, true) }
func (g *Gate) Disable(channel string) { g.Set(channel, false) }

func (g *Gate) Set(channel string, enabled bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.flags[channel] = enabled
}

// Snapshot returns a copy of every flag that has been set.
func (g *Gate) Snapshot() map[string]bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[string]bool, len(g.flags))
	for k, v := range g.flags {
		out[k] = v
	}
	return out
}

// Names returns the channels that have a flag, sorted.
func (g *Gate) Names() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	names := make([]string, 0, len(g.flags))
	for k := range g.flags {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
