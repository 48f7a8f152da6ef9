package provider

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrCircuitOpen is returned when the breaker rejects a request without
// calling the underlying provider.
var ErrCircuitOpen = errors.New("provider circuit breaker is open")

// BreakerConfig tunes the circuit breaker guarding a provider.
type BreakerConfig struct {
	FailureThreshold uint32        // consecutive failures before opening
	ResetTimeout     time.Duration // time in open state before probing
	HalfOpenRequests uint32        // probe requests allowed while half-open
}

// DefaultBreakerConfig is tuned for upstream LLM APIs, where a short burst
// of failures usually means the provider is degraded.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		ResetTimeout:     30 * time.Second,
		HalfOpenRequests: 1,
	}
}

// BreakerGenerator wraps a TextGenerator with a circuit breaker so that a
// failing provider is given time to recover instead of being hammered.
type BreakerGenerator struct {
	inner      TextGenerator
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
	stateGauge prometheus.Gauge
}

// NewBreakerGenerator wraps gen with a circuit breaker. Pass a nil registry
// to skip metric registration (useful in tests).
func NewBreakerGenerator(gen TextGenerator, cfg BreakerConfig, logger *zap.Logger, registry *prometheus.Registry) *BreakerGenerator {
	bg := &BreakerGenerator{
		inner:  gen,
		logger: logger,
	}

	bg.stateGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wingman_provider_breaker_state",
		Help: "Current state of the provider circuit breaker (0=closed, 1=half-open, 2=open)",
		ConstLabels: prometheus.Labels{
			"provider": gen.Name(),
		},
	})
	if registry != nil {
		registry.MustRegister(bg.stateGauge)
	}

	bg.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        gen.Name(),
		MaxRequests: cfg.HalfOpenRequests,
		Timeout:     cfg.ResetTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			bg.stateGauge.Set(float64(to))
			logger.Warn("provider circuit breaker state change",
				zap.String("provider", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return bg
}

// Name implements TextGenerator.
func (b *BreakerGenerator) Name() string { return b.inner.Name() }

// State reports the current breaker state.
func (b *BreakerGenerator) State() gobreaker.State { return b.breaker.State() }

// Generate implements TextGenerator. When the breaker is open the request is
// rejected immediately with ErrCircuitOpen.
func (b *BreakerGenerator) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	result, err := b.breaker.Execute(func() (interface{}, error) {
		return b.inner.Generate(ctx, prompt, opts)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", ErrCircuitOpen
		}
		return "", err
	}
	return result.(string), nil
}
