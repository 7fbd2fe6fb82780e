package execution

import (
	"github.com/google/uuid"

	"fusionbot-go/internal/metrics"
)

// Action is one micro-decision while working a parent order.
type Action int

const (
	// Hold skips the step entirely; no fill.
	Hold Action = iota
	// Passive works a smaller fill at the reference price, no slippage.
	Passive
	// Aggressive crosses the spread for a larger fill at a fixed slippage cost.
	Aggressive
)

func (a Action) String() string {
	switch a {
	case Passive:
		return "PASSIVE"
	case Aggressive:
		return "AGGRESSIVE"
	default:
		return "HOLD"
	}
}

// State is the observation handed to the policy each step.
type State struct {
	RemainingRatio float64 // remaining_shares / total_shares, in [0,1]
	ElapsedRatio   float64 // elapsed / max_duration, in [0,1]
	FlowShort      float64
	FlowLong       float64
}

// FlowSource supplies short- and long-window order-flow readings. The
// environment never computes flow itself.
type FlowSource interface {
	Flow() (short, long float64)
}

// MarketView supplies the reference price for fills and the running VWAP
// benchmark. The environment owns no market simulation of its own.
type MarketView interface {
	ReferencePrice() float64
	BenchmarkVWAP() float64
}

// Fill is one executed slice of the parent order. Fills are append-only
// within an episode.
type Fill struct {
	Price    float64 `json:"price"`
	Qty      float64 `json:"qty"`
	StepTime int     `json:"step_time"`
}

// EnvConfig sizes the parent order and the action fills.
type EnvConfig struct {
	TotalShares     float64
	MaxDurationSecs int
	PassiveQty      float64
	AggressiveQty   float64
	SlippageBps     float64
}

// StepInfo carries auxiliary detail alongside a step result.
type StepInfo struct {
	EpisodeID string
	Fill      *Fill
	Reason    string
}

// Env models the execution of one parent order as an episodic decision
// process. One instance owns exactly one in-flight episode's mutable state and
// must not be shared across concurrent orders.
type Env struct {
	cfg    EnvConfig
	market MarketView
	flow   FlowSource

	episodeID string
	remaining float64
	elapsed   int
	fills     []Fill
	reward    float64
	done      bool
}

// NewEnv wires the environment to its market collaborators, applying defaults
// for missing sizing knobs.
func NewEnv(cfg EnvConfig, market MarketView, flow FlowSource) *Env {
	if cfg.TotalShares <= 0 {
		cfg.TotalShares = 1000
	}
	if cfg.MaxDurationSecs <= 0 {
		cfg.MaxDurationSecs = 60
	}
	if cfg.PassiveQty <= 0 {
		cfg.PassiveQty = 20
	}
	if cfg.AggressiveQty <= 0 {
		cfg.AggressiveQty = 50
	}
	if cfg.SlippageBps < 0 {
		cfg.SlippageBps = 0
	}
	e := &Env{cfg: cfg, market: market, flow: flow}
	e.Reset()
	return e
}

// Reset starts a new episode and returns the initial state.
func (e *Env) Reset() State {
	e.episodeID = uuid.NewString()
	e.remaining = e.cfg.TotalShares
	e.elapsed = 0
	e.fills = nil
	e.reward = 0
	e.done = false
	return e.state()
}

// EpisodeID identifies the in-flight episode.
func (e *Env) EpisodeID() string { return e.episodeID }

// Fills returns a copy of the fills recorded so far this episode.
func (e *Env) Fills() []Fill {
	out := make([]Fill, len(e.fills))
	copy(out, e.fills)
	return out
}

func (e *Env) state() State {
	short, long := 0.0, 0.0
	if e.flow != nil {
		short, long = e.flow.Flow()
	}
	return State{
		RemainingRatio: e.remaining / e.cfg.TotalShares,
		ElapsedRatio:   float64(e.elapsed) / float64(e.cfg.MaxDurationSecs),
		FlowShort:      short,
		FlowLong:       long,
	}
}

// Step advances one unit of simulated time under the chosen action and returns
// (state, reward, terminated, truncated, info). Terminated means the order
// filled completely; truncated means the deadline forced the episode closed
// with a penalty proportional to the unfilled remainder. Stepping a finished
// episode is a no-op.
func (e *Env) Step(action Action) (State, float64, bool, bool, StepInfo) {
	info := StepInfo{EpisodeID: e.episodeID}
	if e.done {
		info.Reason = "episode already terminal"
		return e.state(), 0, e.remaining <= 0, e.remaining > 0, info
	}

	e.elapsed++
	metrics.EpisodeStepsTotal.WithLabelValues(action.String()).Inc()

	// Simulated markets advance one tick per step; live views ignore this.
	if adv, ok := e.market.(interface{ Advance() }); ok {
		adv.Advance()
	}

	var reward float64
	if fill := e.fill(action); fill != nil {
		e.remaining -= fill.Qty
		e.fills = append(e.fills, *fill)
		info.Fill = fill

		// Reward beating the running VWAP benchmark, scaled by how much of
		// the parent order this step completed.
		if vwap := e.market.BenchmarkVWAP(); vwap > 0 {
			reward = ((vwap - fill.Price) / vwap) * (fill.Qty / e.cfg.TotalShares)
		}
	}

	terminated := e.remaining <= 0
	truncated := false
	if !terminated && e.elapsed >= e.cfg.MaxDurationSecs {
		truncated = true
		reward -= e.remaining / e.cfg.TotalShares
		info.Reason = "deadline reached with unfilled remainder"
	}
	if terminated || truncated {
		e.done = true
		metrics.EpisodeReward.Observe(e.reward + reward)
	}
	e.reward += reward

	return e.state(), reward, terminated, truncated, info
}

func (e *Env) fill(action Action) *Fill {
	var qty, price float64
	switch action {
	case Passive:
		qty = e.cfg.PassiveQty
		price = e.market.ReferencePrice()
	case Aggressive:
		qty = e.cfg.AggressiveQty
		price = e.market.ReferencePrice() * (1 + e.cfg.SlippageBps/10000)
	default:
		return nil
	}
	if qty > e.remaining {
		qty = e.remaining
	}
	if qty <= 0 || price <= 0 {
		return nil
	}
	return &Fill{Price: price, Qty: qty, StepTime: e.elapsed}
}
