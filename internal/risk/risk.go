// Package risk hosts the guard-rails consulted before any live order.
package risk

import "sync"

// Limits caps how much size a single trade may take on.
type Limits struct {
	MaxNotionalPerTrade float64
}

// Allow reports whether a trade of the given notional fits the limit.
func (l Limits) Allow(notional float64) bool {
	return notional <= l.MaxNotionalPerTrade
}

// Permission is the boolean trade gate a live deployment MUST consult before
// placing any real order. The shadow path bypasses it deliberately: shadow
// decisions move no money and exist to be compared against it later.
type Permission interface {
	CanTrade() bool
}

// KillSwitch trips permanently once observed equity draws down past the
// configured fraction of its starting value. Tripping is one-way; a tripped
// switch stays tripped until the process restarts.
type KillSwitch struct {
	mu          sync.Mutex
	startEquity float64
	maxDrawdown float64
	tripped     bool
}

// NewKillSwitch arms the switch against a starting equity value. A
// non-positive drawdown threshold disables tripping.
func NewKillSwitch(startEquity, maxDrawdown float64) *KillSwitch {
	return &KillSwitch{startEquity: startEquity, maxDrawdown: maxDrawdown}
}

// Observe feeds the latest equity mark into the switch.
func (k *KillSwitch) Observe(equity float64) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.tripped || k.maxDrawdown <= 0 || k.startEquity <= 0 {
		return
	}
	if (k.startEquity-equity)/k.startEquity >= k.maxDrawdown {
		k.tripped = true
	}
}

// CanTrade reports whether live orders are still permitted.
func (k *KillSwitch) CanTrade() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return !k.tripped
}
