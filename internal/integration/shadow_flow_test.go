package integration

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"fusionbot-go/internal/execution"
	"fusionbot-go/internal/feed"
	"fusionbot-go/internal/fusion"
	"fusionbot-go/internal/gates"
	"fusionbot-go/internal/graph"
	"fusionbot-go/internal/shadow"
	sig "fusionbot-go/internal/signal"
)

type alwaysPassive struct{}

func (alwaysPassive) Train(context.Context, int) error               { return nil }
func (alwaysPassive) Predict(execution.State, bool) execution.Action { return execution.Passive }
func (alwaysPassive) Save(string) error                              { return nil }
func (alwaysPassive) Load(string) error                              { return nil }

func TestShadowFlowProducesDecision(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Market data via the stub provider.
	mdFeed := feed.New(feed.ProviderStub, []string{"AAPL"}, zerolog.Nop())
	ticks := make(chan sig.Tick, 8)
	go func() { _ = mdFeed.Run(ctx, ticks) }()

	weights := map[sig.Source]float64{
		sig.SourceChart: 0.4,
		sig.SourceNews:  0.6,
		sig.SourceGraph: 0.3,
	}
	engine := fusion.NewEngine(zerolog.Nop(), weights,
		gates.NewLiquidity(100), gates.NewEventPriority(0.8, 0.5))

	ledger := shadow.NewLedger(16)
	envCfg := execution.EnvConfig{TotalShares: 1000, MaxDurationSecs: 60, PassiveQty: 20, AggressiveQty: 50, SlippageBps: 5}
	runner := shadow.NewRunner(zerolog.Nop(), engine, alwaysPassive{}, envCfg, feed.NewVolumes(time.Minute), 2, ledger)

	// One bullish headline fans out into news plus propagated graph signals
	// for every co-mentioned ticker.
	events := shadow.NewEventBuilder(
		graph.NewBuilder([]string{"AAPL", "MSFT"}),
		graph.NewPropagator(0.5, 2),
	)
	headline := feed.Headline{Text: "AAPL and MSFT extend their cloud pact", Score: 0.9, Ts: time.Now()}
	batches := events.Signals(headline)
	if len(batches["AAPL"]) != 2 {
		t.Fatalf("expected news+graph signals for AAPL, got %+v", batches["AAPL"])
	}
	for ticker, batch := range batches {
		runner.SetEventSignals(ticker, batch)
	}

	for {
		select {
		case tk := <-ticks:
			runner.Observe(tk)
			entry, err := runner.Evaluate(ctx, tk.Symbol)
			if err != nil {
				t.Fatalf("Evaluate returned error: %v", err)
			}
			if entry.Intent.Direction != fusion.Buy {
				continue
			}
			if entry.Status != shadow.StatusShadowFilled {
				t.Fatalf("expected SHADOW_FILLED, got %s", entry.Status)
			}
			if entry.Execution == nil || entry.Execution.Fill == nil || entry.Execution.Fill.Qty != 20 {
				t.Fatalf("expected a passive virtual fill, got %+v", entry.Execution)
			}
			if len(ledger.Snapshot()) == 0 {
				t.Fatalf("expected ledger entries")
			}
			return
		case <-ctx.Done():
			t.Fatalf("timed out waiting for a shadow decision")
		}
	}
}
