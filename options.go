package reactor

import (
	"github.com/rs/zerolog"

	"github.com/ygrebnov/reactor/metrics"
	"github.com/ygrebnov/reactor/pool"
)

// Option configures an Executor, ScheduledExecutor, Promise, or
// Publisher. The functional-options shape mirrors the teacher's
// Option func(*configOptions) pattern.
type Option func(*runtimeConfig)

// runtimeConfig is the internal builder state assembled by options.
type runtimeConfig struct {
	logger         zerolog.Logger
	metricsProvider metrics.Provider
	timerPool      pool.Pool
}

func defaultRuntimeConfig() runtimeConfig {
	return runtimeConfig{
		logger:         zerolog.Nop(),
		metricsProvider: metrics.NewNoopProvider(),
	}
}

func buildRuntimeConfig(opts []Option) runtimeConfig {
	cfg := defaultRuntimeConfig()
	for _, opt := range opts {
		if opt == nil {
			panic("nil reactor option")
		}
		opt(&cfg)
	}
	return cfg
}

// WithLogger attaches a zerolog.Logger used purely for best-effort
// diagnostic events (thunk panics). It never affects
// control flow.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *runtimeConfig) { c.logger = logger }
}

// WithMetricsProvider attaches a metrics.Provider. Defaults to
// metrics.NewNoopProvider().
func WithMetricsProvider(p metrics.Provider) Option {
	return func(c *runtimeConfig) { c.metricsProvider = p }
}

// WithTimerPoolCapacity bounds the number of recycled timer-entry
// objects a ScheduledExecutor keeps using a fixed-size pool, instead of
// the default unbounded pool.NewDynamic. Ignored by Executor/Promise/
// Publisher constructors, which never recycle timer entries.
func WithTimerPoolCapacity(capacity uint) Option {
	return func(c *runtimeConfig) {
		c.timerPool = pool.NewFixed(capacity, func() interface{} { return &timerEntry{} })
	}
}
