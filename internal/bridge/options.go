package bridge

import (
	"github.com/onelane/onelane/internal/event"
	"github.com/onelane/onelane/internal/logging"
)

// Option configures a Bridge at construction time.
type Option func(*config)

type config struct {
	bus    *event.Bus
	logger *logging.Logger
}

// WithBus sets the event bus the bridge publishes crossing and state
// events to. Without it the bridge stays silent.
func WithBus(bus *event.Bus) Option {
	return func(c *config) {
		c.bus = bus
	}
}

// WithLogger sets the logger for the bridge.
func WithLogger(logger *logging.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}
