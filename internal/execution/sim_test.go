package execution

import "testing"

func TestSimMarketAdvances(t *testing.T) {
	m := NewSimMarket(100, 7)
	start := m.ReferencePrice()
	for i := 0; i < 50; i++ {
		m.Advance()
	}
	if m.ReferencePrice() == start {
		t.Fatal("price never moved")
	}
	if m.BenchmarkVWAP() <= 0 {
		t.Fatalf("vwap should stay positive, got %f", m.BenchmarkVWAP())
	}
}

func TestSimMarketReproducible(t *testing.T) {
	a := NewSimMarket(100, 42)
	b := NewSimMarket(100, 42)
	for i := 0; i < 20; i++ {
		a.Advance()
		b.Advance()
	}
	if a.ReferencePrice() != b.ReferencePrice() {
		t.Fatalf("same seed diverged: %f vs %f", a.ReferencePrice(), b.ReferencePrice())
	}
}

func TestSimMarketDrivesEpisode(t *testing.T) {
	m := NewSimMarket(100, 1)
	env := NewEnv(EnvConfig{TotalShares: 100, MaxDurationSecs: 10, PassiveQty: 20, AggressiveQty: 50}, m, m)
	env.Reset()

	_, _, terminated, _, info := env.Step(Aggressive)
	if terminated {
		t.Fatal("one aggressive fill should not complete the order")
	}
	if info.Fill == nil || info.Fill.Price <= 0 {
		t.Fatalf("expected a priced fill, got %+v", info.Fill)
	}
}
