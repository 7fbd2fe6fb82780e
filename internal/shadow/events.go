package shadow

import (
	"fusionbot-go/internal/feed"
	"fusionbot-go/internal/graph"
	"fusionbot-go/internal/metrics"
	"fusionbot-go/internal/signal"
)

// EventBuilder turns one headline into per-ticker event signal batches: a
// news signal for every ticker the headline mentions, plus graph signals for
// tickers reached by impact propagation over the headline's own co-occurrence
// snapshot.
type EventBuilder struct {
	builder *graph.Builder
	prop    graph.Propagator

	// NewsConfidence and GraphConfidence seed the respective signal
	// confidences; propagation hops decay scores, not confidence.
	NewsConfidence  float64
	GraphConfidence float64
}

// NewEventBuilder wires the extraction vocabulary and propagation knobs.
func NewEventBuilder(builder *graph.Builder, prop graph.Propagator) *EventBuilder {
	return &EventBuilder{
		builder:         builder,
		prop:            prop,
		NewsConfidence:  1.0,
		GraphConfidence: 0.5,
	}
}

// Signals maps each affected ticker to its event signal batch for the
// headline. Every mentioned ticker gets a news signal; tickers that receive
// impact propagated from their co-mentions additionally get a graph signal
// scored by the received (decayed) impact. The co-occurrence snapshot is
// built fresh per headline and discarded, so repeated calls replace rather
// than accumulate graph state.
func (b *EventBuilder) Signals(hl feed.Headline) map[string][]signal.Signal {
	mentions := b.builder.Mentions(hl.Text)
	if len(mentions) == 0 {
		return nil
	}

	snap := graph.NewSnapshot(b.builder.ExtractEdges(hl.Text))
	batches := make(map[string][]signal.Signal, len(mentions))
	sources := make(map[string]float64, len(mentions))
	for _, ticker := range mentions {
		news := signal.New(signal.SourceNews, hl.Score, b.NewsConfidence,
			signal.Meta{Ticker: ticker, Headline: hl.Text})
		metrics.SignalsTotal.WithLabelValues(string(signal.SourceNews)).Inc()
		batches[ticker] = append(batches[ticker], news)
		sources[ticker] = hl.Score
	}

	for ticker, impact := range b.prop.PropagateBatch(snap, sources) {
		// Strip the ticker's own contribution; only impact arriving from
		// other mentions counts as a graph signal.
		received := impact - sources[ticker]
		if received == 0 {
			continue
		}
		gsig := signal.New(signal.SourceGraph, received, b.GraphConfidence,
			signal.Meta{Ticker: ticker, Headline: hl.Text})
		metrics.SignalsTotal.WithLabelValues(string(signal.SourceGraph)).Inc()
		batches[ticker] = append(batches[ticker], gsig)
	}
	return batches
}
