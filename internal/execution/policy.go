package execution

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

// Policy decides micro-actions over the environment's action space. Selection
// happens explicitly at construction time via NewPolicy; the pipeline never
// swaps implementations behind the caller's back.
type Policy interface {
	Train(ctx context.Context, timesteps int) error
	Predict(state State, deterministic bool) Action
	Save(path string) error
	Load(path string) error
}

// HoldPolicy is the safe no-op fallback: it always holds, trains to nothing,
// and persists nothing. It keeps the pipeline operable when no learning
// backend is configured; choosing it is never an error.
type HoldPolicy struct{}

func (HoldPolicy) Train(context.Context, int) error { return nil }
func (HoldPolicy) Predict(State, bool) Action       { return Hold }
func (HoldPolicy) Save(string) error                { return nil }
func (HoldPolicy) Load(string) error                { return nil }

// NewPolicy selects a policy implementation by mode. "table" requires an
// environment factory for training; anything else, or a missing factory,
// degrades to the no-op HoldPolicy.
func NewPolicy(mode string, envFn func() *Env) Policy {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "table", "q", "qtable":
		if envFn == nil {
			return HoldPolicy{}
		}
		return NewTablePolicy(envFn)
	default:
		return HoldPolicy{}
	}
}

const (
	remainingBuckets = 4
	elapsedBuckets   = 4

	learnRate   = 0.1
	discount    = 0.95
	exploreRate = 0.1
)

// TablePolicy is a small tabular value learner over a discretized state space.
// It exists to make train/predict/save/load real, not to be a serious
// optimizer.
type TablePolicy struct {
	envFn func() *Env
	table map[string][3]float64
	rng   *rand.Rand
}

// NewTablePolicy builds an untrained table policy around an episode factory.
func NewTablePolicy(envFn func() *Env) *TablePolicy {
	return &TablePolicy{
		envFn: envFn,
		table: make(map[string][3]float64),
		rng:   rand.New(rand.NewSource(1)),
	}
}

func bucket(v float64, n int) int {
	if v < 0 {
		v = 0
	}
	if v >= 1 {
		return n - 1
	}
	return int(v * float64(n))
}

func flowSign(v float64) int {
	switch {
	case v > 0:
		return 2
	case v < 0:
		return 0
	default:
		return 1
	}
}

func key(s State) string {
	return fmt.Sprintf("r%d.e%d.f%d%d",
		bucket(s.RemainingRatio, remainingBuckets),
		bucket(s.ElapsedRatio, elapsedBuckets),
		flowSign(s.FlowShort), flowSign(s.FlowLong))
}

// Train runs value iteration over whole episodes until the step budget runs out.
func (p *TablePolicy) Train(ctx context.Context, timesteps int) error {
	if timesteps <= 0 {
		return nil
	}
	steps := 0
	for steps < timesteps {
		env := p.envFn()
		state := env.Reset()
		for steps < timesteps {
			if err := ctx.Err(); err != nil {
				return err
			}
			action := p.Predict(state, false)
			next, reward, terminated, truncated, _ := env.Step(action)
			p.update(state, action, reward, next, terminated || truncated)
			state = next
			steps++
			if terminated || truncated {
				break
			}
		}
	}
	return nil
}

func (p *TablePolicy) update(s State, a Action, reward float64, next State, terminal bool) {
	target := reward
	if !terminal {
		best := p.table[key(next)]
		target += discount * max3(best[0], best[1], best[2])
	}
	row := p.table[key(s)]
	row[a] += learnRate * (target - row[a])
	p.table[key(s)] = row
}

// Predict returns the best known action for the state. When deterministic is
// false a small exploration rate applies.
func (p *TablePolicy) Predict(state State, deterministic bool) Action {
	if !deterministic && p.rng.Float64() < exploreRate {
		return Action(p.rng.Intn(3))
	}
	row := p.table[key(state)]
	best := Hold
	for a := Passive; a <= Aggressive; a++ {
		if row[a] > row[best] {
			best = a
		}
	}
	return best
}

// Save writes the value table as JSON, creating parent directories as needed.
func (p *TablePolicy) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create policy dir: %w", err)
	}
	data, err := json.MarshalIndent(p.table, "", "  ")
	if err != nil {
		return fmt.Errorf("encode policy: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write policy: %w", err)
	}
	return nil
}

// Load replaces the value table from a JSON file written by Save.
func (p *TablePolicy) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read policy: %w", err)
	}
	table := make(map[string][3]float64)
	if err := json.Unmarshal(data, &table); err != nil {
		return fmt.Errorf("decode policy: %w", err)
	}
	p.table = table
	return nil
}

func max3(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
