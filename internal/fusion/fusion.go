// Package fusion combines gated signals into a single trading intent per ticker.
package fusion

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"fusionbot-go/internal/gates"
	"fusionbot-go/internal/metrics"
	"fusionbot-go/internal/signal"
)

// Direction is the fused decision for one ticker at one tick.
type Direction string

const (
	Buy  Direction = "BUY"
	Sell Direction = "SELL"
	Hold Direction = "HOLD"
)

// Fixed decision thresholds on the fused score.
const (
	buyThreshold  = 0.2
	sellThreshold = -0.2
)

// Intent is the engine's single output decision for one ticker at one tick.
type Intent struct {
	Ticker     string    `json:"ticker"`
	Direction  Direction `json:"direction"`
	Score      float64   `json:"score"`
	Confidence float64   `json:"confidence"`
	Rationale  []string  `json:"rationale"`
	Ts         time.Time `json:"ts"`
}

// Engine fuses pre-partitioned signal batches. Callers are responsible for
// grouping signals by ticker before calling Fuse; the engine never guesses a
// ticker from signal metadata.
type Engine struct {
	weights map[signal.Source]float64
	gates   []gates.Gate
	log     zerolog.Logger
}

// NewEngine builds an engine with per-source weights and an ordered gate chain.
// Sources absent from the weight map are excluded from aggregation.
func NewEngine(log zerolog.Logger, weights map[signal.Source]float64, gs ...gates.Gate) *Engine {
	w := make(map[signal.Source]float64, len(weights))
	for src, weight := range weights {
		if weight > 0 {
			w[src] = weight
		}
	}
	return &Engine{weights: w, gates: gs, log: log}
}

// Fuse runs the batch through the gate chain and aggregates what survives
// into an Intent. An empty batch yields a neutral HOLD, never an error.
func (e *Engine) Fuse(ticker string, batch []signal.Signal, mkt gates.Market) Intent {
	now := time.Now()
	if len(batch) == 0 {
		metrics.IntentsTotal.WithLabelValues(string(Hold)).Inc()
		return Intent{Ticker: ticker, Direction: Hold, Rationale: []string{"No signals"}, Ts: now}
	}

	gated := gates.Apply(batch, mkt, e.gates...)

	var contribution, totalWeight, confidenceSum float64
	rationale := make([]string, 0, len(gated))
	for _, s := range gated {
		confidenceSum += s.Confidence
		weight, known := e.weights[s.Source]
		if !known {
			e.log.Debug().Str("source", string(s.Source)).Msg("unweighted source excluded from fusion")
			continue
		}
		contribution += s.Score * s.Confidence * weight
		totalWeight += weight
		rationale = append(rationale,
			fmt.Sprintf("%s: score=%.2f conf=%.2f weight=%.2f", s.Source, s.Score, s.Confidence, weight))
	}

	score := 0.0
	if totalWeight > 0 {
		score = contribution / totalWeight
	}
	confidence := confidenceSum / float64(len(gated))

	dir := direction(score)
	metrics.IntentsTotal.WithLabelValues(string(dir)).Inc()
	return Intent{
		Ticker:     ticker,
		Direction:  dir,
		Score:      score,
		Confidence: confidence,
		Rationale:  rationale,
		Ts:         now,
	}
}

func direction(score float64) Direction {
	switch {
	case score > buyThreshold:
		return Buy
	case score < sellThreshold:
		return Sell
	default:
		return Hold
	}
}

// Actionable reports whether the intent calls for working an order.
func (i Intent) Actionable() bool { return i.Direction == Buy || i.Direction == Sell }
