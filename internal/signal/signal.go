// Package signal standardizes payloads shared between data ingestion and fusion layers.
package signal

import "time"

// Source labels the subsystem that produced a signal. Gates key off these.
type Source string

const (
	// SourceChart marks technical signals derived from price/volume series.
	SourceChart Source = "chart"
	// SourceNews marks signals derived from headline sentiment.
	SourceNews Source = "news"
	// SourceGraph marks signals propagated through the co-occurrence graph.
	SourceGraph Source = "graph"
)

// Technical reports whether the source is chart-derived; the liquidity and
// event-priority gates only act on technical sources.
func (s Source) Technical() bool { return s == SourceChart }

// EventDriven reports whether the source carries news or graph-propagated
// information, the inputs the event-priority gate measures.
func (s Source) EventDriven() bool { return s == SourceNews || s == SourceGraph }

// Tick models the essential pieces of market data consumed by the pipeline.
type Tick struct {
	Symbol string
	Price  float64
	Size   float64
	Side   int // +1 buy, -1 sell (aggressor)
	Ts     time.Time
}

// Meta carries optional context attached to a signal at creation time.
type Meta struct {
	Ticker   string
	Headline string
	Origin   string // propagation source ticker for graph signals
}

// Signal expresses one normalized trading bias. Values are clamped at
// construction and the struct is treated as immutable afterwards.
type Signal struct {
	Source     Source
	Score      float64 // [-1, 1], positive long bias, negative short bias
	Confidence float64 // [0, 1]
	Meta       Meta
	Ts         time.Time
}

// New builds a Signal, clamping score to [-1,1] and confidence to [0,1].
// It never fails: out-of-range inputs are clamped, not rejected.
func New(source Source, score, confidence float64, meta Meta) Signal {
	return Signal{
		Source:     source,
		Score:      Clamp(score, -1, 1),
		Confidence: Clamp(confidence, 0, 1),
		Meta:       meta,
		Ts:         time.Now(),
	}
}

// Impact is the gate-facing strength of a signal: |score| × confidence.
func (s Signal) Impact() float64 {
	score := s.Score
	if score < 0 {
		score = -score
	}
	return score * s.Confidence
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
