package main

import (
	"context"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"fusionbot-go/internal/config"
	"fusionbot-go/internal/execution"
	"fusionbot-go/internal/feed"
	"fusionbot-go/internal/fusion"
	"fusionbot-go/internal/gates"
	"fusionbot-go/internal/graph"
	"fusionbot-go/internal/metrics"
	"fusionbot-go/internal/risk"
	"fusionbot-go/internal/shadow"
	sig "fusionbot-go/internal/signal"
	"fusionbot-go/internal/util"
)

func main() {
	cfg, err := config.Load("internal/config/config.yaml")
	if err != nil {
		boot := util.NewLogger("info")
		boot.Fatal().Err(err).Msg("load config")
	}
	log := util.NewLogger(cfg.App.LogLevel)

	_ = metrics.Serve(cfg.App.MetricsAddr)
	log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	marketFeed := feed.New(cfg.Feed.Provider, cfg.Feed.Tickers, log)
	ticks := make(chan sig.Tick, 1024)
	go func() {
		if err := marketFeed.Run(ctx, ticks); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("feed stopped")
			cancel()
		}
	}()

	news := feed.NewHeadlines(feed.HeadlineConfig{
		Provider:     cfg.Feed.Headlines.Provider,
		BaseURL:      cfg.Feed.Headlines.BaseURL,
		APIKey:       cfg.Feed.Headlines.APIKey,
		PollInterval: time.Duration(cfg.Feed.Headlines.PollInterval) * time.Millisecond,
		RatePerSec:   cfg.Feed.Headlines.RatePerSec,
	}, log)
	if cfg.Feed.Headlines.Provider != feed.HeadlineProviderHTTP {
		news.SetStubHeadlines([]feed.Headline{
			{Text: "AAPL and MSFT extend cloud partnership", Score: 0.6},
			{Text: "NVDA guides above expectations, AMD rallies in sympathy", Score: 0.9},
			{Text: "TSLA recalls vehicles pending software fix", Score: -0.7},
		})
	}
	headlines := make(chan feed.Headline, 64)
	go func() {
		if err := news.Run(ctx, headlines); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("headline feed stopped")
			cancel()
		}
	}()

	engine := fusion.NewEngine(log, cfg.Fusion.SourceWeights(),
		gates.NewLiquidity(cfg.Gates.MinVolume),
		gates.NewEventPriority(cfg.Gates.EventThreshold, cfg.Gates.EventDampening),
	)

	envCfg := execution.EnvConfig{
		TotalShares:     cfg.Execution.TotalShares,
		MaxDurationSecs: cfg.Execution.MaxDurationSecs,
		PassiveQty:      cfg.Execution.PassiveQty,
		AggressiveQty:   cfg.Execution.AggressiveQty,
		SlippageBps:     cfg.Execution.SlippageBps,
	}
	policy := execution.NewPolicy(cfg.Execution.PolicyMode, func() *execution.Env {
		market := execution.NewSimMarket(100, time.Now().UnixNano())
		return execution.NewEnv(envCfg, market, market)
	})
	if cfg.Execution.PolicyPath != "" {
		if err := policy.Load(cfg.Execution.PolicyPath); err != nil {
			log.Warn().Err(err).Str("path", cfg.Execution.PolicyPath).Msg("policy load failed, acting untrained")
		}
	}

	recorder, err := shadow.NewJSONLRecorder(cfg.Shadow.LogPath)
	if err != nil {
		log.Fatal().Err(err).Msg("open shadow log")
	}
	defer recorder.Close()
	ledger := shadow.NewLedger(cfg.Shadow.LedgerCapacity)

	volumes := feed.NewVolumes(time.Minute)
	runner := shadow.NewRunner(log, engine, policy, envCfg, volumes, cfg.Shadow.MaxConcurrent, ledger, recorder)
	runner.SetLimits(risk.Limits{MaxNotionalPerTrade: cfg.Risk.MaxNotionalPerTrade})
	runner.ArmKillSwitch(cfg.Risk.StartEquity, cfg.Risk.KillSwitchDrawdown)

	events := shadow.NewEventBuilder(
		graph.NewBuilder(cfg.Graph.Vocabulary),
		graph.NewPropagator(cfg.Graph.DecayFactor, cfg.Graph.MaxHops),
	)

	log.Info().Strs("tickers", cfg.Feed.Tickers).Msg("shadow runner started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("entries", len(ledger.Snapshot())).Msg("shutting down")
			return
		case hl := <-headlines:
			for ticker, batch := range events.Signals(hl) {
				runner.SetEventSignals(ticker, batch)
			}
		case tk := <-ticks:
			runner.Observe(tk)
			if _, err := runner.Evaluate(ctx, tk.Symbol); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Str("ticker", tk.Symbol).Msg("evaluate")
			}
		}
	}
}
