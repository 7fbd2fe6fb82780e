package fusion

import (
	"math"
	"testing"

	"github.com/rs/zerolog"

	"fusionbot-go/internal/gates"
	"fusionbot-go/internal/signal"
)

func defaultWeights() map[signal.Source]float64 {
	return map[signal.Source]float64{
		signal.SourceChart: 0.4,
		signal.SourceNews:  0.6,
		signal.SourceGraph: 0.3,
	}
}

func defaultEngine() *Engine {
	return NewEngine(zerolog.Nop(), defaultWeights(),
		gates.NewLiquidity(100000), gates.NewEventPriority(0.8, 0.5))
}

func TestFuseEmptyBatchIsNeutralHold(t *testing.T) {
	intent := defaultEngine().Fuse("AAPL", nil, gates.Market{})
	if intent.Direction != Hold {
		t.Fatalf("expected HOLD, got %s", intent.Direction)
	}
	if intent.Score != 0 || intent.Confidence != 0 {
		t.Fatalf("expected neutral intent, got score=%.2f conf=%.2f", intent.Score, intent.Confidence)
	}
	if len(intent.Rationale) != 1 || intent.Rationale[0] != "No signals" {
		t.Fatalf("unexpected rationale: %+v", intent.Rationale)
	}
}

func TestFuseEventDampensChartThenBuys(t *testing.T) {
	batch := []signal.Signal{
		signal.New(signal.SourceChart, 0.5, 1.0, signal.Meta{Ticker: "AAPL"}),
		signal.New(signal.SourceNews, 1.0, 1.0, signal.Meta{Ticker: "AAPL"}),
	}
	intent := defaultEngine().Fuse("AAPL", batch, gates.Market{Volume: 500000})

	// News impact 1.0 >= 0.8, so chart confidence halves to 0.5 before
	// aggregation: (0.5*0.5*0.4 + 1.0*1.0*0.6) / (0.4+0.6) = 0.7.
	if math.Abs(intent.Score-0.7) > 1e-9 {
		t.Fatalf("expected fused score 0.7, got %.4f", intent.Score)
	}
	if intent.Direction != Buy {
		t.Fatalf("expected BUY, got %s", intent.Direction)
	}
	if math.Abs(intent.Confidence-0.75) > 1e-9 {
		t.Fatalf("expected avg confidence 0.75, got %.4f", intent.Confidence)
	}
	if len(intent.Rationale) != 2 {
		t.Fatalf("expected one rationale line per contributing signal, got %+v", intent.Rationale)
	}
}

func TestFuseSellDirection(t *testing.T) {
	batch := []signal.Signal{
		signal.New(signal.SourceNews, -0.6, 0.9, signal.Meta{}),
	}
	intent := defaultEngine().Fuse("MSFT", batch, gates.Market{Volume: 500000})
	if intent.Direction != Sell {
		t.Fatalf("expected SELL, got %s (score %.2f)", intent.Direction, intent.Score)
	}
}

func TestFuseWithinThresholdHolds(t *testing.T) {
	batch := []signal.Signal{
		signal.New(signal.SourceNews, 0.2, 1.0, signal.Meta{}),
	}
	intent := defaultEngine().Fuse("MSFT", batch, gates.Market{Volume: 500000})
	// Score lands exactly on the threshold; BUY requires strictly greater.
	if intent.Direction != Hold {
		t.Fatalf("expected HOLD at threshold, got %s", intent.Direction)
	}
}

func TestFuseUnknownSourceExcluded(t *testing.T) {
	batch := []signal.Signal{
		signal.New(signal.Source("astrology"), 1.0, 1.0, signal.Meta{}),
	}
	intent := defaultEngine().Fuse("AAPL", batch, gates.Market{Volume: 500000})
	if intent.Score != 0 {
		t.Fatalf("expected unknown source excluded, got score %.2f", intent.Score)
	}
	if intent.Direction != Hold {
		t.Fatalf("expected HOLD, got %s", intent.Direction)
	}
	if len(intent.Rationale) != 0 {
		t.Fatalf("expected no rationale for excluded source, got %+v", intent.Rationale)
	}
}

func TestFuseFullyVetoedBatchIsNeutral(t *testing.T) {
	batch := []signal.Signal{
		signal.New(signal.SourceChart, 0.9, 1.0, signal.Meta{}),
	}
	// Thin market: chart confidence vetoed to zero, but the source weight
	// still lands in the denominator, so the score decays to zero.
	intent := defaultEngine().Fuse("AAPL", batch, gates.Market{Volume: 10})
	if intent.Score != 0 {
		t.Fatalf("expected zero score for vetoed batch, got %.4f", intent.Score)
	}
	if intent.Direction != Hold {
		t.Fatalf("expected HOLD, got %s", intent.Direction)
	}
}

func TestActionable(t *testing.T) {
	if (Intent{Direction: Hold}).Actionable() {
		t.Fatalf("HOLD must not be actionable")
	}
	if !(Intent{Direction: Buy}).Actionable() || !(Intent{Direction: Sell}).Actionable() {
		t.Fatalf("BUY/SELL must be actionable")
	}
}
