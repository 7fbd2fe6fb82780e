// Package shadow runs the decision pipeline against live or replayed data and
// records what it would have done. No real order is ever placed here.
package shadow

import (
	"time"

	"fusionbot-go/internal/execution"
	"fusionbot-go/internal/fusion"
)

// Status classifies one shadow decision.
type Status string

const (
	// StatusSkipped means the fused intent was HOLD; the agent was never queried.
	StatusSkipped Status = "SKIPPED"
	// StatusShadowFilled means the agent chose a filling micro-action.
	StatusShadowFilled Status = "SHADOW_FILLED"
	// StatusShadowHold means the agent was queried and chose to wait.
	StatusShadowHold Status = "SHADOW_HOLD"
)

// Execution captures what the agent decided for an actionable intent.
type Execution struct {
	Action string          `json:"action"`
	Fill   *execution.Fill `json:"fill,omitempty"`
}

// Entry is one immutable shadow decision log record.
type Entry struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Ticker    string        `json:"ticker"`
	Intent    fusion.Intent `json:"intent"`
	Execution *Execution    `json:"execution,omitempty"`
	Status    Status        `json:"status"`
}

// Recorder captures shadow decisions for later inspection.
type Recorder interface {
	Record(Entry)
}
