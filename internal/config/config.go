// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"fusionbot-go/internal/signal"
)

// App captures process-wide runtime settings such as name, environment, metrics, and logging levels.
type App struct {
	Name        string
	Env         string
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Feed describes the market data and headline connectivity the pipeline expects.
type Feed struct {
	Provider  string
	Tickers   []string
	Headlines Headlines `yaml:"headlines"`
}

// Headlines configures the HTTP polling feed for news text.
type Headlines struct {
	Provider     string  `yaml:"provider"`
	BaseURL      string  `yaml:"base_url"`
	APIKey       string  `yaml:"api_key"`
	PollInterval int     `yaml:"poll_interval_ms"`
	RatePerSec   float64 `yaml:"rate_per_sec"`
}

// Fusion groups per-source weights used by the weighted aggregation.
type Fusion struct {
	ChartWeight float64 `yaml:"chart_weight"`
	NewsWeight  float64 `yaml:"news_weight"`
	GraphWeight float64 `yaml:"graph_weight"`
}

// Gates carries thresholds for the pre-fusion signal filters.
type Gates struct {
	MinVolume      float64 `yaml:"min_volume"`
	EventThreshold float64 `yaml:"event_threshold"`
	EventDampening float64 `yaml:"event_dampening"`
}

// Graph tunes co-occurrence extraction and impact propagation.
type Graph struct {
	DecayFactor float64  `yaml:"decay_factor"`
	MaxHops     int      `yaml:"max_hops"`
	Vocabulary  []string `yaml:"vocabulary"`
}

// Execution parameterizes the episodic order-working environment and its policy.
type Execution struct {
	TotalShares     float64 `yaml:"total_shares"`
	MaxDurationSecs int     `yaml:"max_duration_secs"`
	PassiveQty      float64 `yaml:"passive_qty"`
	AggressiveQty   float64 `yaml:"aggressive_qty"`
	SlippageBps     float64 `yaml:"slippage_bps"`
	PolicyMode      string  `yaml:"policy_mode"` // "table" or "hold"
	PolicyPath      string  `yaml:"policy_path"`
}

// Shadow captures virtual-execution settings such as log destination and tick fan-out.
type Shadow struct {
	LogPath        string `yaml:"log_path"`
	MaxConcurrent  int    `yaml:"max_concurrent"`
	LedgerCapacity int    `yaml:"ledger_capacity"`
}

// Risk encodes guard-rails consulted before any live order.
type Risk struct {
	MaxNotionalPerTrade float64 `yaml:"max_notional_per_trade"`
	StartEquity         float64 `yaml:"start_equity"`
	KillSwitchDrawdown  float64 `yaml:"kill_switch_drawdown"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App       App       `yaml:"app"`
	Feed      Feed      `yaml:"feed"`
	Fusion    Fusion    `yaml:"fusion"`
	Gates     Gates     `yaml:"gates"`
	Graph     Graph     `yaml:"graph"`
	Execution Execution `yaml:"execution"`
	Shadow    Shadow    `yaml:"shadow"`
	Risk      Risk      `yaml:"risk"`
}

// Load reads a YAML file from disk and hydrates a Config struct. A local .env
// file, when present, supplies credentials the YAML omits.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // best-effort

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	config.applyEnv()
	return &config, nil
}

func (c *Config) applyEnv() {
	if key := os.Getenv("HEADLINES_API_KEY"); key != "" {
		c.Feed.Headlines.APIKey = key
	}
}

// SourceWeights returns the fusion weights keyed by signal source.
func (f Fusion) SourceWeights() map[signal.Source]float64 {
	return map[signal.Source]float64{
		signal.SourceChart: f.ChartWeight,
		signal.SourceNews:  f.NewsWeight,
		signal.SourceGraph: f.GraphWeight,
	}
}
