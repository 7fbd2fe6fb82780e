package feed

import (
	"math"
	"sync"
	"time"

	"fusionbot-go/internal/signal"
)

// Volumes tracks a rolling per-ticker market snapshot (last price, traded
// notional over a sliding window) for gate and benchmark consumers.
type Volumes struct {
	window time.Duration
	mu     sync.Mutex
	series map[string][]signal.Tick
}

// NewVolumes builds a tracker with the given look-back window.
func NewVolumes(window time.Duration) *Volumes {
	if window <= 0 {
		window = time.Minute
	}
	return &Volumes{window: window, series: make(map[string][]signal.Tick)}
}

// Observe records a tick and evicts entries older than the window.
func (v *Volumes) Observe(tk signal.Tick) {
	if tk.Symbol == "" {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	ticks := append(v.series[tk.Symbol], tk)
	cutoff := tk.Ts.Add(-v.window)
	idx := 0
	for i, existing := range ticks {
		if existing.Ts.After(cutoff) {
			idx = i
			break
		}
		idx = i + 1
	}
	if idx > 0 && idx <= len(ticks) {
		ticks = ticks[idx:]
	}
	v.series[tk.Symbol] = ticks
}

// Notional returns the traded notional inside the window for a ticker.
func (v *Volumes) Notional(symbol string) float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	var total float64
	for _, tk := range v.series[symbol] {
		total += math.Abs(tk.Price * tk.Size)
	}
	return total
}

// LastPrice returns the most recent price seen for a ticker, zero if none.
func (v *Volumes) LastPrice(symbol string) float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	ticks := v.series[symbol]
	if len(ticks) == 0 {
		return 0
	}
	return ticks[len(ticks)-1].Price
}

// VWAP returns the size-weighted average price inside the window, falling back
// to the last price when sizes are zero.
func (v *Volumes) VWAP(symbol string) float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	var notional, size float64
	ticks := v.series[symbol]
	for _, tk := range ticks {
		notional += tk.Price * math.Abs(tk.Size)
		size += math.Abs(tk.Size)
	}
	if size == 0 {
		if len(ticks) == 0 {
			return 0
		}
		return ticks[len(ticks)-1].Price
	}
	return notional / size
}

// Momentum returns the fractional price change across the window, squashed
// into signal range.
func (v *Volumes) Momentum(symbol string) float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	ticks := v.series[symbol]
	if len(ticks) == 0 || ticks[0].Price <= 0 {
		return 0
	}
	raw := (ticks[len(ticks)-1].Price - ticks[0].Price) / ticks[0].Price
	return signal.Clamp(math.Tanh(raw*3), -1, 1)
}

// Flow returns short- and long-window signed order-flow imbalance in [-1,1].
// The short window is the most recent quarter of the configured window.
func (v *Volumes) Flow(symbol string) (float64, float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	ticks := v.series[symbol]
	if len(ticks) == 0 {
		return 0, 0
	}
	shortCutoff := ticks[len(ticks)-1].Ts.Add(-v.window / 4)
	var shortBuy, shortSell, longBuy, longSell float64
	for _, tk := range ticks {
		vol := math.Abs(tk.Size)
		buy := tk.Side >= 0
		if buy {
			longBuy += vol
		} else {
			longSell += vol
		}
		if tk.Ts.After(shortCutoff) {
			if buy {
				shortBuy += vol
			} else {
				shortSell += vol
			}
		}
	}
	return imbalance(shortBuy, shortSell), imbalance(longBuy, longSell)
}

func imbalance(buy, sell float64) float64 {
	total := buy + sell
	if total == 0 {
		return 0
	}
	return signal.Clamp((buy-sell)/total, -1, 1)
}
