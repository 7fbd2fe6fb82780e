package shadow

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"fusionbot-go/internal/execution"
	"fusionbot-go/internal/feed"
	"fusionbot-go/internal/fusion"
	"fusionbot-go/internal/gates"
	"fusionbot-go/internal/metrics"
	"fusionbot-go/internal/risk"
	"fusionbot-go/internal/signal"
)

// Runner orchestrates one virtual decision per ticker per tick: gather
// signals, fuse, and — only for actionable intents — query the execution
// policy for a micro-action. Each evaluation is independent and idempotent; a
// failed tick never touches already-recorded entries or another ticker's
// state.
type Runner struct {
	log       zerolog.Logger
	engine    *fusion.Engine
	policy    execution.Policy
	envCfg    execution.EnvConfig
	volumes   *feed.Volumes
	executor  *execution.Executor
	recorders []Recorder
	limits    risk.Limits
	sem       chan struct{}

	killSwitch  *risk.KillSwitch
	startEquity float64

	mu        sync.Mutex
	event     map[string][]signal.Signal // latest news/graph signals per ticker
	positions map[string]position        // net virtual position per ticker
	halted    bool
}

// position tracks the net virtual quantity and cash spent for one ticker.
type position struct {
	qty  float64
	cost float64
}

// NewRunner wires the orchestrator. maxConcurrent bounds concurrent ticker
// evaluations, capping downstream policy inference fan-out.
func NewRunner(log zerolog.Logger, engine *fusion.Engine, policy execution.Policy, envCfg execution.EnvConfig, volumes *feed.Volumes, maxConcurrent int, recorders ...Recorder) *Runner {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	return &Runner{
		log:       log,
		engine:    engine,
		policy:    policy,
		envCfg:    envCfg,
		volumes:   volumes,
		executor:  execution.NewExecutor(log),
		recorders: recorders,
		sem:       make(chan struct{}, maxConcurrent),
		event:     make(map[string][]signal.Signal),
		positions: make(map[string]position),
	}
}

// SetLimits attaches live trade limits for comparison. Shadow fills are never
// blocked by them; a breach is logged so the divergence shows up in review.
func (r *Runner) SetLimits(limits risk.Limits) {
	r.limits = limits
}

// ArmKillSwitch attaches the drawdown trip a live deployment would consult.
// The runner marks virtual positions to market after every decision and feeds
// the equity into the switch; a trip is logged, never enforced, because shadow
// fills move no money.
func (r *Runner) ArmKillSwitch(startEquity, maxDrawdown float64) {
	r.killSwitch = risk.NewKillSwitch(startEquity, maxDrawdown)
	r.startEquity = startEquity
}

// LiveTradingAllowed reports what the permission gate would tell a live
// executor right now. Always true when no kill switch is armed.
func (r *Runner) LiveTradingAllowed() bool {
	if r.killSwitch == nil {
		return true
	}
	return r.killSwitch.CanTrade()
}

// Observe feeds a market tick into the rolling market state.
func (r *Runner) Observe(tk signal.Tick) {
	r.volumes.Observe(tk)
}

// SetEventSignals replaces the latest news/graph signals for a ticker. The
// caller (headline pipeline) pre-partitions signals by ticker.
func (r *Runner) SetEventSignals(ticker string, sigs []signal.Signal) {
	r.mu.Lock()
	r.event[ticker] = append([]signal.Signal(nil), sigs...)
	r.mu.Unlock()
}

func (r *Runner) eventSignals(ticker string) []signal.Signal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]signal.Signal(nil), r.event[ticker]...)
}

// batch assembles the per-ticker signal batch for one tick: a chart signal
// derived from rolling momentum plus whatever event signals are current.
func (r *Runner) batch(ticker string) []signal.Signal {
	sigs := r.eventSignals(ticker)
	if momentum := r.volumes.Momentum(ticker); momentum != 0 {
		chart := signal.New(signal.SourceChart, momentum, 0.8, signal.Meta{Ticker: ticker})
		metrics.SignalsTotal.WithLabelValues(string(signal.SourceChart)).Inc()
		sigs = append(sigs, chart)
	}
	return sigs
}

// Evaluate runs one shadow decision for the ticker and appends exactly one
// log entry. It blocks while the concurrency cap is saturated.
func (r *Runner) Evaluate(ctx context.Context, ticker string) (Entry, error) {
	select {
	case r.sem <- struct{}{}:
		defer func() { <-r.sem }()
	case <-ctx.Done():
		return Entry{}, ctx.Err()
	}

	mkt := gates.Market{
		Price:  r.volumes.LastPrice(ticker),
		Volume: r.volumes.Notional(ticker),
	}
	intent := r.engine.Fuse(ticker, r.batch(ticker), mkt)

	entry := Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Ticker:    ticker,
		Intent:    intent,
		Status:    StatusSkipped,
	}

	// HOLD intents never reach the agent.
	if intent.Actionable() {
		entry.Status, entry.Execution = r.decide(ticker, intent)
	}
	r.markEquity()

	metrics.ShadowDecisionsTotal.WithLabelValues(string(entry.Status)).Inc()
	for _, rec := range r.recorders {
		rec.Record(entry)
	}
	r.log.Debug().
		Str("ticker", ticker).
		Str("direction", string(intent.Direction)).
		Str("status", string(entry.Status)).
		Float64("score", intent.Score).
		Msg("shadow decision")
	return entry, nil
}

// decide queries the policy against a minimal state observation and, for
// filling actions, synthesizes the virtual fill the environment would grant.
func (r *Runner) decide(ticker string, intent fusion.Intent) (Status, *Execution) {
	short, long := r.volumes.Flow(ticker)
	state := execution.State{
		RemainingRatio: 1,
		ElapsedRatio:   0,
		FlowShort:      short,
		FlowLong:       long,
	}
	action := r.policy.Predict(state, true)
	exec := &Execution{Action: action.String()}
	if action == execution.Hold {
		return StatusShadowHold, exec
	}

	// Fills require a known positive price. Event signals can make a ticker
	// actionable before any tick arrives; withhold the fill until one does.
	price := r.volumes.LastPrice(ticker)
	if price <= 0 {
		r.log.Debug().Str("ticker", ticker).Msg("no market price yet, withholding virtual fill")
		return StatusShadowHold, exec
	}
	qty := r.envCfg.PassiveQty
	if action == execution.Aggressive {
		qty = r.envCfg.AggressiveQty
		price *= 1 + r.envCfg.SlippageBps/10000
	}
	exec.Fill = &execution.Fill{Price: price, Qty: qty, StepTime: 0}
	if r.limits.MaxNotionalPerTrade > 0 && !r.limits.Allow(qty*price) {
		r.log.Warn().
			Str("ticker", ticker).
			Float64("notional", qty*price).
			Msg("virtual fill exceeds live notional limit")
	}

	side := execution.Buy
	signedQty := qty
	if intent.Direction == fusion.Sell {
		side = execution.Sell
		signedQty = -qty
	}
	_ = r.executor.Submit(execution.Order{Ticker: ticker, Side: side, Qty: qty, Price: price})

	r.mu.Lock()
	pos := r.positions[ticker]
	pos.qty += signedQty
	pos.cost += signedQty * price
	r.positions[ticker] = pos
	r.mu.Unlock()

	return StatusShadowFilled, exec
}

// markEquity marks virtual positions against the latest prices and feeds the
// result into the kill switch.
func (r *Runner) markEquity() {
	if r.killSwitch == nil {
		return
	}

	r.mu.Lock()
	equity := r.startEquity
	for ticker, pos := range r.positions {
		if last := r.volumes.LastPrice(ticker); last > 0 {
			equity += pos.qty*last - pos.cost
		}
	}
	alreadyHalted := r.halted
	r.mu.Unlock()

	r.killSwitch.Observe(equity)
	if !alreadyHalted && !r.killSwitch.CanTrade() {
		r.mu.Lock()
		r.halted = true
		r.mu.Unlock()
		r.log.Warn().
			Float64("equity", equity).
			Msg("kill switch tripped, live trading would be halted")
	}
}
