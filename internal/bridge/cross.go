package bridge

import (
	"time"

	"github.com/onelane/onelane/internal/errors"
	"github.com/onelane/onelane/internal/event"
)

// Report describes one completed crossing.
type Report struct {
	Label     string        // car label as narrated
	Direction Direction     // direction travelled
	OnBridge  Snapshot      // state observed mid-span
	WaitedFor time.Duration // entry request to admission
	Held      time.Duration // admission to departure
}

// CrossOption configures a single Cross call.
type CrossOption func(*crossConfig)

type crossConfig struct {
	label    string
	onBridge func(Snapshot)
}

// WithLabel names the car in events, logs, and errors.
func WithLabel(label string) CrossOption {
	return func(c *crossConfig) {
		c.label = label
	}
}

// WithOnBridge installs the occupancy step: fn runs once per crossing,
// between admission and departure, with a snapshot taken just after
// entry. Drivers use it to dwell on the span. fn must not call back into
// the bridge's blocking operations.
func WithOnBridge(fn func(Snapshot)) CrossOption {
	return func(c *crossConfig) {
		c.onBridge = fn
	}
}

// Cross runs one car's full crossing: wait for admission travelling dir,
// occupy the span, depart. It blocks for as long as admission takes;
// there is no timeout and no cancellation, a car that has asked to enter
// commits to crossing.
//
// The returned Report is meaningful only when err is nil. A
// ConsistencyError means the shared state is corrupt and the car never
// entered (or never left cleanly); ErrBridgeClosed means the bridge was
// closed before admission.
func (b *Bridge) Cross(dir Direction, opts ...CrossOption) (Report, error) {
	if !dir.Valid() {
		return Report{}, errors.NewValidation("cross direction must be north or south").
			WithField("direction").
			WithValue(dir.String()).
			WithCause(errors.ErrInvalidDirection)
	}

	cfg := &crossConfig{label: "car"}
	for _, opt := range opts {
		opt(cfg)
	}

	waited, err := b.arrive(dir, cfg.label)
	if err != nil {
		return Report{}, err
	}

	entered := time.Now()
	snap := b.Snapshot()
	b.publish(event.NewCarCrossingEvent(cfg.label, snap.Direction.String(),
		snap.Occupants, snap.WaitingNorth, snap.WaitingSouth))

	if cfg.onBridge != nil {
		cfg.onBridge(snap)
	}

	held := time.Since(entered)
	if err := b.depart(dir, cfg.label, held); err != nil {
		return Report{}, err
	}

	return Report{
		Label:     cfg.label,
		Direction: dir,
		OnBridge:  snap,
		WaitedFor: waited,
		Held:      held,
	}, nil
}
