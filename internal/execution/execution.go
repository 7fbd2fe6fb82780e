// Package execution models working a parent order as an episodic decision
// process and hosts the virtual order submitter used in shadow mode.
package execution

import (
	"github.com/rs/zerolog"

	"fusionbot-go/internal/metrics"
)

// Side enumerates order directions used by the executor.
type Side string

const (
	// Buy indicates a long order.
	Buy Side = "BUY"
	// Sell indicates a short order.
	Sell Side = "SELL"
)

// Order represents a virtual placement request.
type Order struct {
	Ticker string
	Side   Side
	Qty    float64
	Price  float64
}

// Executor logs virtual order submissions. It never routes to a venue; the
// shadow pipeline exists precisely to validate decisions before any live
// connectivity exists.
type Executor struct{ log zerolog.Logger }

// NewExecutor wraps a zerolog logger for virtual order submissions.
func NewExecutor(log zerolog.Logger) *Executor { return &Executor{log: log} }

// Submit records the virtual order request.
func (executor *Executor) Submit(order Order) error {
	metrics.OrdersTotal.WithLabelValues(order.Ticker, string(order.Side)).Inc()
	executor.log.Info().
		Str("ticker", order.Ticker).
		Str("side", string(order.Side)).
		Float64("qty", order.Qty).
		Float64("px", order.Price).
		Msg("virtual order")
	return nil
}
