package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"fusionbot-go/internal/metrics"
)

const (
	// HeadlineProviderStub cycles through a fixed set of synthetic headlines.
	HeadlineProviderStub = "stub"
	// HeadlineProviderHTTP polls a JSON endpoint for scored headlines.
	HeadlineProviderHTTP = "http"
)

// Headline is one scored piece of news text.
type Headline struct {
	Text  string    `json:"headline"`
	Score float64   `json:"sentiment"` // [-1, 1]
	Ts    time.Time `json:"ts"`
}

// HeadlineConfig tunes the polling provider.
type HeadlineConfig struct {
	Provider     string
	BaseURL      string
	APIKey       string
	PollInterval time.Duration
	RatePerSec   float64
}

// Headlines polls or synthesizes news text consumed by the sentiment and
// co-occurrence layers.
type Headlines struct {
	cfg     HeadlineConfig
	log     zerolog.Logger
	client  *http.Client
	limiter *rate.Limiter
	stub    []Headline
}

const defaultHeadlinePoll = 5 * time.Second

// NewHeadlines constructs a headline source backed by the requested provider.
func NewHeadlines(cfg HeadlineConfig, log zerolog.Logger) *Headlines {
	if cfg.Provider == "" {
		cfg.Provider = HeadlineProviderStub
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultHeadlinePoll
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 1
	}
	return &Headlines{
		cfg:     cfg,
		log:     log,
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1),
	}
}

// SetStubHeadlines replaces the synthetic rotation used by the stub provider.
func (h *Headlines) SetStubHeadlines(headlines []Headline) {
	h.stub = append([]Headline(nil), headlines...)
}

// Run pushes headlines onto the provided channel until the context is canceled.
func (h *Headlines) Run(ctx context.Context, out chan<- Headline) error {
	ticker := time.NewTicker(h.cfg.PollInterval)
	defer ticker.Stop()

	i := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		var batch []Headline
		switch h.cfg.Provider {
		case HeadlineProviderHTTP:
			fetched, err := h.poll(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				h.log.Warn().Err(err).Msg("headline poll failed")
				continue
			}
			batch = fetched
		default:
			if len(h.stub) > 0 {
				batch = []Headline{h.stub[i%len(h.stub)]}
				i++
			}
		}

		for _, hl := range batch {
			if hl.Ts.IsZero() {
				hl.Ts = time.Now()
			}
			select {
			case out <- hl:
				metrics.HeadlinesTotal.Inc()
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (h *Headlines) poll(ctx context.Context) ([]Headline, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.cfg.BaseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build headline request: %w", err)
	}
	if h.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.cfg.APIKey)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch headlines: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("headline endpoint returned %d", resp.StatusCode)
	}

	var payload []Headline
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode headlines: %w", err)
	}
	return payload, nil
}
