// Binary train fits the execution policy offline against a simulated market
// and writes the result where the shadow runner loads it from.
package main

import (
	"context"
	"flag"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"fusionbot-go/internal/config"
	"fusionbot-go/internal/execution"
	"fusionbot-go/internal/util"
)

func main() {
	configPath := flag.String("config", "internal/config/config.yaml", "config file")
	timesteps := flag.Int("timesteps", 50000, "total environment steps to train for")
	seed := flag.Int64("seed", time.Now().UnixNano(), "market walk seed")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		boot := util.NewLogger("info")
		boot.Fatal().Err(err).Msg("load config")
	}
	log := util.NewLogger(cfg.App.LogLevel)

	envCfg := execution.EnvConfig{
		TotalShares:     cfg.Execution.TotalShares,
		MaxDurationSecs: cfg.Execution.MaxDurationSecs,
		PassiveQty:      cfg.Execution.PassiveQty,
		AggressiveQty:   cfg.Execution.AggressiveQty,
		SlippageBps:     cfg.Execution.SlippageBps,
	}
	walk := *seed
	policy := execution.NewPolicy(cfg.Execution.PolicyMode, func() *execution.Env {
		walk++
		market := execution.NewSimMarket(100, walk)
		return execution.NewEnv(envCfg, market, market)
	})

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Info().
		Str("mode", cfg.Execution.PolicyMode).
		Int("timesteps", *timesteps).
		Msg("training started")
	start := time.Now()
	if err := policy.Train(ctx, *timesteps); err != nil {
		log.Fatal().Err(err).Msg("training interrupted")
	}

	if err := policy.Save(cfg.Execution.PolicyPath); err != nil {
		log.Fatal().Err(err).Str("path", cfg.Execution.PolicyPath).Msg("save policy")
	}
	log.Info().
		Dur("elapsed", time.Since(start)).
		Str("path", cfg.Execution.PolicyPath).
		Msg("policy saved")
}
