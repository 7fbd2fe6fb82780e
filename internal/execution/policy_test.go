package execution

import (
	"context"
	"path/filepath"
	"testing"
)

func trainingEnvFn() func() *Env {
	mkt := stubMarket{ref: 99.5, vwap: 100}
	return func() *Env {
		return NewEnv(EnvConfig{TotalShares: 200, MaxDurationSecs: 10, PassiveQty: 20, AggressiveQty: 50, SlippageBps: 5}, mkt, stubFlow{})
	}
}

func TestNewPolicySelection(t *testing.T) {
	if _, ok := NewPolicy("table", trainingEnvFn()).(*TablePolicy); !ok {
		t.Fatalf("expected table policy")
	}
	if _, ok := NewPolicy("hold", nil).(HoldPolicy); !ok {
		t.Fatalf("expected hold policy")
	}
	if _, ok := NewPolicy("", nil).(HoldPolicy); !ok {
		t.Fatalf("expected hold fallback for empty mode")
	}
	// A table request without an environment factory degrades safely.
	if _, ok := NewPolicy("table", nil).(HoldPolicy); !ok {
		t.Fatalf("expected hold fallback without env factory")
	}
}

func TestHoldPolicyIsSafeNoop(t *testing.T) {
	p := HoldPolicy{}
	if err := p.Train(context.Background(), 100); err != nil {
		t.Fatalf("Train returned error: %v", err)
	}
	if got := p.Predict(State{RemainingRatio: 0.5}, true); got != Hold {
		t.Fatalf("expected HOLD, got %s", got)
	}
	if err := p.Save("/nonexistent/ignored"); err != nil {
		t.Fatalf("Save must be a no-op, got %v", err)
	}
}

func TestTablePolicyLearnsToFill(t *testing.T) {
	p := NewTablePolicy(trainingEnvFn())
	if err := p.Train(context.Background(), 5000); err != nil {
		t.Fatalf("Train returned error: %v", err)
	}
	// Filling below benchmark earns reward while holding forfeits it and
	// risks the timeout penalty, so the learned action must not be HOLD.
	action := p.Predict(State{RemainingRatio: 1, ElapsedRatio: 0}, true)
	if action == Hold {
		t.Fatalf("expected trained policy to prefer filling, got %s", action)
	}
}

func TestTablePolicySaveLoadRoundTrip(t *testing.T) {
	p := NewTablePolicy(trainingEnvFn())
	if err := p.Train(context.Background(), 500); err != nil {
		t.Fatalf("Train returned error: %v", err)
	}
	path := filepath.Join(t.TempDir(), "policy", "table.json")
	if err := p.Save(path); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	restored := NewTablePolicy(trainingEnvFn())
	if err := restored.Load(path); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	state := State{RemainingRatio: 1, ElapsedRatio: 0}
	if p.Predict(state, true) != restored.Predict(state, true) {
		t.Fatalf("restored policy disagrees with saved policy")
	}
}

func TestTablePolicyLoadMissingFile(t *testing.T) {
	p := NewTablePolicy(trainingEnvFn())
	if err := p.Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing policy file")
	}
}

func TestTrainHonorsContext(t *testing.T) {
	p := NewTablePolicy(trainingEnvFn())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Train(ctx, 1000); err == nil {
		t.Fatalf("expected context error")
	}
}
