package bufbus

import (
	"math/rand/v2"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// Default maintenance settings.
const (
	// DefaultTTL is the retention threshold for idle buffers.
	DefaultTTL = 10 * time.Minute

	// DefaultMaintenanceChance is the percentage chance that a maintenance
	// pass runs on any given CreateBuffer call.
	DefaultMaintenanceChance = 10
)

// Option configures an Emitter.
type Option func(*config)

// config contains configuration for the emitter.
type config struct {
	// ttl is how long a buffer may sit idle before a maintenance pass
	// evicts it.
	ttl time.Duration

	// maintenanceChance is the percentage chance (0-100) that CreateBuffer
	// triggers a maintenance pass.
	maintenanceChance int

	// clk supplies wall-clock time for buffer timestamps and the TTL check.
	clk clock.Clock

	// randFloat draws a uniform value in [0, 1) for the maintenance check.
	randFloat func() float64

	// logger receives operational logs. Nil means logging is disabled
	// until SetDebug installs a development logger.
	logger *zap.Logger
}

// defaultConfig returns sensible default configuration.
func defaultConfig() config {
	return config{
		ttl:               DefaultTTL,
		maintenanceChance: DefaultMaintenanceChance,
		clk:               clock.New(),
		randFloat:         rand.Float64,
		logger:            nil,
	}
}

// WithTTL sets the idle retention threshold for buffers.
func WithTTL(ttl time.Duration) Option {
	return func(c *config) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithMaintenanceChance sets the percentage chance (0-100) that a
// CreateBuffer call triggers a maintenance pass. Zero disables maintenance.
func WithMaintenanceChance(percent int) Option {
	return func(c *config) {
		if percent >= 0 && percent <= 100 {
			c.maintenanceChance = percent
		}
	}
}

// WithClock sets the clock used for buffer timestamps and TTL checks.
// Tests use this to inject a mock clock.
func WithClock(clk clock.Clock) Option {
	return func(c *config) {
		if clk != nil {
			c.clk = clk
		}
	}
}

// WithRandSource sets the uniform random source, in [0, 1), used for the
// probabilistic maintenance check. Tests use this for determinism.
func WithRandSource(randFloat func() float64) Option {
	return func(c *config) {
		if randFloat != nil {
			c.randFloat = randFloat
		}
	}
}

// WithLogger sets the logger for operational and debug logs.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}
