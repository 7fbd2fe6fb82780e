package feed

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"fusionbot-go/internal/signal"
)

func TestStubFeedEmitsTicks(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	f := New(ProviderStub, []string{"AAPL"}, zerolog.Nop())
	ticks := make(chan signal.Tick, 8)
	go func() { _ = f.Run(ctx, ticks) }()

	select {
	case tk := <-ticks:
		if tk.Symbol != "AAPL" || tk.Price <= 0 {
			t.Fatalf("unexpected tick: %+v", tk)
		}
	case <-ctx.Done():
		t.Fatalf("timed out waiting for stub tick")
	}
}

func TestSetTickersDeduplicatesAndSorts(t *testing.T) {
	f := New(ProviderStub, []string{"MSFT", "AAPL", "MSFT", " ", ""}, zerolog.Nop())
	got := f.Tickers()
	if len(got) != 2 || got[0] != "AAPL" || got[1] != "MSFT" {
		t.Fatalf("unexpected tickers: %+v", got)
	}
}

func TestParseBinanceSymbol(t *testing.T) {
	if got := parseBinanceSymbol("btcusdt@trade"); got != "BTCUSDT" {
		t.Fatalf("unexpected symbol: %s", got)
	}
	if got := parseBinanceSymbol("ethusdt"); got != "ETHUSDT" {
		t.Fatalf("unexpected symbol: %s", got)
	}
}

func TestHeadlineStubRotation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	h := NewHeadlines(HeadlineConfig{Provider: HeadlineProviderStub, PollInterval: 10 * time.Millisecond}, zerolog.Nop())
	h.SetStubHeadlines([]Headline{
		{Text: "AAPL and MSFT extend cloud pact", Score: 0.6},
		{Text: "NVDA guidance disappoints", Score: -0.7},
	})
	out := make(chan Headline, 4)
	go func() { _ = h.Run(ctx, out) }()

	first := <-out
	second := <-out
	if first.Text == second.Text {
		t.Fatalf("expected rotation through stub headlines")
	}
	if first.Ts.IsZero() {
		t.Fatalf("expected timestamp stamped on emit")
	}
}
