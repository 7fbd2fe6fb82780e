// Package feed hosts connectors for market tick and headline sources.
package feed

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"fusionbot-go/internal/metrics"
	"fusionbot-go/internal/signal"
)

const (
	// ProviderStub emits deterministic synthetic ticks (useful for tests/offline work).
	ProviderStub = "stub"
	// ProviderBinance streams live trades from Binance public websockets.
	ProviderBinance = "binance"
)

// Feed represents a pluggable market data stream implementation.
type Feed struct {
	provider string
	log      zerolog.Logger
	mu       sync.RWMutex
	tickers  []string
}

// New constructs a feed backed by the requested provider.
func New(provider string, tickers []string, log zerolog.Logger) *Feed {
	if provider == "" {
		provider = ProviderStub
	}
	f := &Feed{provider: strings.ToLower(provider), log: log}
	f.SetTickers(tickers)
	return f
}

// SetTickers replaces the tracked ticker list (deduplicated, sorted for determinism).
func (f *Feed) SetTickers(tickers []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	unique := make(map[string]struct{}, len(tickers))
	for _, sym := range tickers {
		sym = strings.TrimSpace(sym)
		if sym == "" {
			continue
		}
		unique[sym] = struct{}{}
	}
	f.tickers = f.tickers[:0]
	for sym := range unique {
		f.tickers = append(f.tickers, sym)
	}
	sort.Strings(f.tickers)
}

// Tickers returns a copy of the tracked ticker list.
func (f *Feed) Tickers() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, len(f.tickers))
	copy(out, f.tickers)
	return out
}

// Run pushes ticks onto the provided channel until the context is canceled.
func (f *Feed) Run(ctx context.Context, out chan<- signal.Tick) error {
	switch f.provider {
	case ProviderBinance:
		return f.runBinance(ctx, out)
	default:
		return f.runStub(ctx, out)
	}
}

func (f *Feed) runStub(ctx context.Context, out chan<- signal.Tick) error {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	var px float64 = 100.0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ts := <-ticker.C:
			px += 0.1
			for _, s := range f.Tickers() {
				tick := signal.Tick{Symbol: s, Price: px, Size: 1000, Side: 1, Ts: ts}
				select {
				case out <- tick:
					metrics.TicksTotal.WithLabelValues(s).Inc()
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
}
