// Package gates hosts batch-level signal filters applied ahead of fusion.
package gates

import (
	"fusionbot-go/internal/metrics"
	"fusionbot-go/internal/signal"
)

// Market is the slice of market state the gates need for one ticker at one tick.
type Market struct {
	Price  float64
	Volume float64
}

// Gate transforms a signal batch before fusion. Implementations must not
// mutate the input slice; vetoed signals stay in the output for audit.
type Gate interface {
	Name() string
	Apply(batch []signal.Signal, mkt Market) []signal.Signal
}

// Liquidity vetoes technical signals when market volume sits under the floor.
// A veto zeroes confidence and never touches score; non-technical sources
// pass through unchanged.
type Liquidity struct {
	MinVolume float64
}

// NewLiquidity builds the liquidity gate with the supplied volume floor.
func NewLiquidity(minVolume float64) Liquidity {
	if minVolume < 0 {
		minVolume = 0
	}
	return Liquidity{MinVolume: minVolume}
}

// Name returns the identifier used in logs and metrics.
func (g Liquidity) Name() string { return "liquidity" }

// Apply zeroes the confidence of chart-derived signals when volume < MinVolume.
func (g Liquidity) Apply(batch []signal.Signal, mkt Market) []signal.Signal {
	out := append([]signal.Signal(nil), batch...)
	if mkt.Volume >= g.MinVolume {
		return out
	}
	for i := range out {
		if !out[i].Source.Technical() || out[i].Confidence == 0 {
			continue
		}
		out[i].Confidence = 0
		metrics.GateActionsTotal.WithLabelValues(g.Name(), "veto").Inc()
	}
	return out
}

const defaultDampening = 0.5

// EventPriority dampens technical signals when a strong event-driven signal
// is present in the same batch: if the maximum |score|×confidence among
// news/graph signals reaches Threshold, every technical signal's confidence
// is multiplied by Dampening.
type EventPriority struct {
	Threshold float64
	Dampening float64
}

// NewEventPriority builds the event-priority gate; a non-positive dampening
// falls back to 0.5.
func NewEventPriority(threshold, dampening float64) EventPriority {
	if dampening <= 0 || dampening > 1 {
		dampening = defaultDampening
	}
	return EventPriority{Threshold: threshold, Dampening: dampening}
}

// Name returns the identifier used in logs and metrics.
func (g EventPriority) Name() string { return "event_priority" }

// Apply dampens technical confidence when the strongest event impact in the
// batch reaches the threshold; otherwise the batch passes unchanged.
func (g EventPriority) Apply(batch []signal.Signal, _ Market) []signal.Signal {
	out := append([]signal.Signal(nil), batch...)

	var maxImpact float64
	for _, s := range out {
		if s.Source.EventDriven() && s.Impact() > maxImpact {
			maxImpact = s.Impact()
		}
	}
	if maxImpact < g.Threshold {
		return out
	}
	for i := range out {
		if !out[i].Source.Technical() {
			continue
		}
		out[i].Confidence *= g.Dampening
		metrics.GateActionsTotal.WithLabelValues(g.Name(), "dampen").Inc()
	}
	return out
}

// Apply runs the batch through every gate in order. Order matters: the
// pipeline applies liquidity before event-priority.
func Apply(batch []signal.Signal, mkt Market, gs ...Gate) []signal.Signal {
	out := batch
	for _, g := range gs {
		out = g.Apply(out, mkt)
	}
	return out
}
