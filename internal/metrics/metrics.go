package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ticks_total", Help: "Count of market ticks ingested"},
		[]string{"symbol"},
	)
	HeadlinesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "headlines_total", Help: "Count of headlines ingested"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orders_total", Help: "Virtual orders submitted"},
		[]string{"ticker", "side"},
	)
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signals_total", Help: "Signals constructed per source"},
		[]string{"source"},
	)
	GateActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "gate_actions_total", Help: "Signals vetoed or dampened by a gate"},
		[]string{"gate", "action"},
	)
	IntentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "intents_total", Help: "Fused trading intents per direction"},
		[]string{"direction"},
	)
	PropagationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "propagations_total", Help: "Graph impact propagation calls"},
	)
	ShadowDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "shadow_decisions_total", Help: "Shadow runner decisions per status"},
		[]string{"status"},
	)
	EpisodeStepsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "episode_steps_total", Help: "Execution environment steps per action"},
		[]string{"action"},
	)
	EpisodeReward = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "episode_reward",
			Help:    "Total reward at episode end",
			Buckets: prometheus.LinearBuckets(-1, 0.1, 21),
		},
	)
)

func init() {
	prometheus.MustRegister(
		TicksTotal, HeadlinesTotal, OrdersTotal, SignalsTotal, GateActionsTotal, IntentsTotal,
		PropagationsTotal, ShadowDecisionsTotal, EpisodeStepsTotal, EpisodeReward,
	)
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
