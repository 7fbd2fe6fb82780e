package execution

import "math/rand"

// SimMarket is a seeded random-walk market used to train and exercise policies
// offline. It implements both MarketView and FlowSource so one instance can
// back an entire episode.
type SimMarket struct {
	rng   *rand.Rand
	price float64
	vwap  float64
	ticks int
	drift float64
}

// NewSimMarket starts a walk at the given price. The seed fixes the walk so
// training runs are reproducible.
func NewSimMarket(price float64, seed int64) *SimMarket {
	return &SimMarket{
		rng:   rand.New(rand.NewSource(seed)),
		price: price,
		vwap:  price,
	}
}

// Advance moves the walk one tick. Drift flips sign occasionally so the flow
// readings carry real information.
func (m *SimMarket) Advance() {
	if m.ticks%25 == 0 {
		m.drift = (m.rng.Float64() - 0.5) * 0.002
	}
	m.price *= 1 + m.drift + (m.rng.Float64()-0.5)*0.001
	m.vwap += (m.price - m.vwap) / float64(m.ticks+2)
	m.ticks++
}

func (m *SimMarket) ReferencePrice() float64 { return m.price }

func (m *SimMarket) BenchmarkVWAP() float64 { return m.vwap }

// Flow reports the walk's drift on both windows.
func (m *SimMarket) Flow() (short, long float64) {
	return m.drift * 1000, m.drift * 500
}
