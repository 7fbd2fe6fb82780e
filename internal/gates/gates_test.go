package gates

import (
	"testing"

	"fusionbot-go/internal/signal"
)

func TestLiquidityVetoesThinMarket(t *testing.T) {
	g := NewLiquidity(100000)
	batch := []signal.Signal{
		signal.New(signal.SourceChart, 0.5, 0.9, signal.Meta{}),
		signal.New(signal.SourceNews, 0.7, 0.8, signal.Meta{}),
	}
	out := g.Apply(batch, Market{Volume: 50000})
	if len(out) != 2 {
		t.Fatalf("expected vetoed signal retained for audit, got %d signals", len(out))
	}
	if out[0].Confidence != 0 {
		t.Fatalf("expected chart confidence zeroed, got %.2f", out[0].Confidence)
	}
	if out[0].Score != 0.5 {
		t.Fatalf("veto must not alter score, got %.2f", out[0].Score)
	}
	if out[1].Confidence != 0.8 {
		t.Fatalf("news signal must pass unchanged, got %.2f", out[1].Confidence)
	}
}

func TestLiquidityPassesDeepMarket(t *testing.T) {
	g := NewLiquidity(100000)
	batch := []signal.Signal{signal.New(signal.SourceChart, 0.5, 0.9, signal.Meta{})}
	out := g.Apply(batch, Market{Volume: 100000})
	if out[0].Confidence != 0.9 {
		t.Fatalf("expected confidence untouched at the floor, got %.2f", out[0].Confidence)
	}
}

func TestLiquidityDoesNotMutateInput(t *testing.T) {
	g := NewLiquidity(100000)
	batch := []signal.Signal{signal.New(signal.SourceChart, 0.5, 0.9, signal.Meta{})}
	_ = g.Apply(batch, Market{Volume: 0})
	if batch[0].Confidence != 0.9 {
		t.Fatalf("input batch mutated: %.2f", batch[0].Confidence)
	}
}

func TestEventPriorityDampensOnStrongEvent(t *testing.T) {
	g := NewEventPriority(0.8, 0.5)
	batch := []signal.Signal{
		signal.New(signal.SourceChart, 0.5, 1.0, signal.Meta{}),
		signal.New(signal.SourceNews, 1.0, 1.0, signal.Meta{}),
	}
	out := g.Apply(batch, Market{})
	if out[0].Confidence != 0.5 {
		t.Fatalf("expected chart confidence dampened to 0.5, got %.2f", out[0].Confidence)
	}
	if out[1].Confidence != 1.0 {
		t.Fatalf("event signal must pass unchanged, got %.2f", out[1].Confidence)
	}
}

func TestEventPriorityBelowThresholdNoChange(t *testing.T) {
	g := NewEventPriority(0.8, 0.5)
	batch := []signal.Signal{
		signal.New(signal.SourceChart, 0.5, 1.0, signal.Meta{}),
		signal.New(signal.SourceNews, 0.7, 0.9, signal.Meta{}), // impact 0.63
	}
	out := g.Apply(batch, Market{})
	if out[0].Confidence != 1.0 {
		t.Fatalf("expected chart confidence untouched, got %.2f", out[0].Confidence)
	}
}

func TestEventPriorityNegativeScoreCounts(t *testing.T) {
	g := NewEventPriority(0.8, 0.5)
	batch := []signal.Signal{
		signal.New(signal.SourceChart, 0.5, 1.0, signal.Meta{}),
		signal.New(signal.SourceNews, -0.9, 1.0, signal.Meta{}), // |score|×conf = 0.9
	}
	out := g.Apply(batch, Market{})
	if out[0].Confidence != 0.5 {
		t.Fatalf("expected dampening on strong negative event, got %.2f", out[0].Confidence)
	}
}

func TestEventPriorityDefaultDampening(t *testing.T) {
	g := NewEventPriority(0.8, 0)
	if g.Dampening != 0.5 {
		t.Fatalf("expected default dampening 0.5, got %.2f", g.Dampening)
	}
}

func TestApplyRunsGatesInOrder(t *testing.T) {
	batch := []signal.Signal{
		signal.New(signal.SourceChart, 0.5, 1.0, signal.Meta{}),
		signal.New(signal.SourceNews, 1.0, 1.0, signal.Meta{}),
	}
	// Thin market: liquidity zeroes chart first, event-priority then halves the
	// already-zero confidence (still zero).
	out := Apply(batch, Market{Volume: 10}, NewLiquidity(100000), NewEventPriority(0.8, 0.5))
	if out[0].Confidence != 0 {
		t.Fatalf("expected liquidity veto to win, got %.2f", out[0].Confidence)
	}
	if out[1].Confidence != 1.0 {
		t.Fatalf("expected news untouched, got %.2f", out[1].Confidence)
	}
}
