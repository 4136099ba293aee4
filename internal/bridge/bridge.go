package bridge

import (
	"sync"
	"time"

	"github.com/onelane/onelane/internal/errors"
	"github.com/onelane/onelane/internal/event"
	"github.com/onelane/onelane/internal/logging"
)

// Bridge is the shared state of a single-lane span: which way traffic is
// flowing, how many cars occupy it, and how many are blocked at each end.
// One Bridge instance is shared by every car in a run.
//
// All mutable fields are guarded by mu. The two condition variables share
// mu, one per direction of travel, so a departing car can wake exactly
// the end it means to.
//
// Invariants, holding whenever mu is not held:
//   - direction == None exactly when occupants == 0
//   - occupants never exceeds capacity
//   - every car on the span travels in direction
//   - neither waiting count is negative
type Bridge struct {
	mu        sync.Mutex
	direction Direction
	occupants int
	waiting   [2]int        // blocked cars per direction, indexed by Direction.index()
	cond      [2]*sync.Cond // parked cars per direction, indexed by Direction.index()

	capacity int
	closed   bool

	bus    *event.Bus
	logger *logging.Logger
}

// New creates an empty bridge. Capacity is the maximum number of cars on
// the span at once, fixed for the bridge's lifetime, and must be at
// least 1.
func New(capacity int, opts ...Option) (*Bridge, error) {
	if capacity < 1 {
		return nil, errors.NewResource("create",
			errors.NewValidation("capacity must be at least 1").
				WithField("capacity").
				WithValue(capacity).
				WithCause(errors.ErrInvalidCapacity))
	}

	cfg := &config{
		logger: logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logging.NopLogger()
	}

	b := &Bridge{
		capacity: capacity,
		bus:      cfg.bus,
		logger:   cfg.logger.WithComponent("bridge"),
	}
	b.cond[Northbound.index()] = sync.NewCond(&b.mu)
	b.cond[Southbound.index()] = sync.NewCond(&b.mu)

	b.logger.Debug("bridge created", "capacity", capacity)
	return b, nil
}

// Snapshot is a point-in-time copy of the shared bridge fields, taken
// under the lock. It is safe to retain and read without synchronization.
type Snapshot struct {
	Direction    Direction
	Occupants    int
	WaitingNorth int
	WaitingSouth int
}

// Waiting returns the blocked-car count for the given direction of
// travel. None has no queue and reports 0.
func (s Snapshot) Waiting(dir Direction) int {
	switch dir {
	case Northbound:
		return s.WaitingNorth
	case Southbound:
		return s.WaitingSouth
	default:
		return 0
	}
}

// Snapshot returns a consistent copy of the bridge state.
func (b *Bridge) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	return Snapshot{
		Direction:    b.direction,
		Occupants:    b.occupants,
		WaitingNorth: b.waiting[Northbound.index()],
		WaitingSouth: b.waiting[Southbound.index()],
	}
}

// Capacity returns the maximum number of cars allowed on the span.
func (b *Bridge) Capacity() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.capacity
}

// Occupants returns the number of cars currently on the span.
func (b *Bridge) Occupants() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.occupants
}

// Direction returns the direction currently flowing, or None when the
// span is empty.
func (b *Bridge) Direction() Direction {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.direction
}

// arrive blocks the calling car until it may enter the span travelling
// dir, then admits it. It returns how long admission took, or
// ErrBridgeClosed if the bridge closed before the car got on, or a
// ConsistencyError if the shared state is corrupt.
func (b *Bridge) arrive(dir Direction, label string) (time.Duration, error) {
	i := dir.index()
	start := time.Now()

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return 0, errors.NewResource("arrive", errors.ErrBridgeClosed)
	}

	// Count this car as waiting before the first admissibility check so
	// that a concurrent departure sizes its wake batch with this car
	// included.
	b.waiting[i]++
	queued := b.waiting[i]
	b.mu.Unlock()

	b.publish(event.NewCarWaitingEvent(label, dir.String(), queued))
	b.logger.Debug("car waiting",
		"car", label, "direction", dir.String(), "waiting", queued)

	b.mu.Lock()

	// Mesa-style wait: a wake is a hint, not a grant. Re-evaluate the
	// admission predicate every time the lock is reacquired.
	for !b.closed && (b.direction == dir.Opposite() || b.occupants >= b.capacity) {
		b.cond[i].Wait()
	}

	if b.closed {
		b.waiting[i]--
		b.mu.Unlock()
		return 0, errors.NewResource("arrive", errors.ErrBridgeClosed)
	}

	// The loop exits only when the admission predicate holds. Verify it,
	// plus the empty-span invariant, before touching the state; a failure
	// here means the shared state is corrupt and this car must not enter.
	var violation *errors.ConsistencyError
	switch {
	case b.direction == dir.Opposite():
		violation = errors.NewConsistency("arrive", "admitted against oncoming traffic")
	case b.occupants >= b.capacity:
		violation = errors.NewConsistency("arrive", "admitted onto a full span")
	case b.direction == None && b.occupants != 0:
		violation = errors.NewConsistency("arrive", "span has occupants but no direction")
	}
	if violation != nil {
		violation = violation.WithCar(label).
			WithState(b.direction.String(), b.occupants, b.capacity)
		b.waiting[i]--
		b.mu.Unlock()
		b.logger.Error("admission failed", "car", label, "error", violation)
		return 0, violation
	}

	prev := b.direction
	if b.direction == None {
		b.direction = dir
	}
	b.waiting[i]--
	b.occupants++
	occupants := b.occupants
	b.mu.Unlock()

	waited := time.Since(start)
	if prev == None {
		b.publish(event.NewDirectionChangedEvent(prev.String(), dir.String()))
		b.logger.Debug("direction established", "direction", dir.String())
	}
	b.publish(event.NewCarEnteredEvent(label, dir.String(), occupants, waited))
	b.logger.Debug("car entered",
		"car", label, "direction", dir.String(),
		"occupants", occupants, "waited", waited)

	return waited, nil
}

// depart takes the calling car off the span and wakes blocked cars that
// the freed slot (or the emptied span) can now admit.
func (b *Bridge) depart(dir Direction, label string, held time.Duration) error {
	i := dir.index()

	b.mu.Lock()

	var violation *errors.ConsistencyError
	switch {
	case b.occupants <= 0:
		violation = errors.NewConsistency("depart", "departing from an empty span")
	case b.direction != dir:
		violation = errors.NewConsistency("depart", "departing against the current flow")
	}
	if violation != nil {
		violation = violation.WithCar(label).
			WithState(b.direction.String(), b.occupants, b.capacity)
		b.mu.Unlock()
		b.logger.Error("departure failed", "car", label, "error", violation)
		return violation
	}

	b.occupants--
	remaining := b.occupants

	// A freed slot can admit one more same-direction car; an emptied span
	// can admit a fresh batch from the opposite end. Signal exactly as
	// many waiters as could now pass the predicate; waking a car that
	// still cannot enter is harmless, it re-checks and parks again.
	emptied := false
	wakeOther := 0
	if b.occupants == 0 {
		b.direction = None
		emptied = true
		wakeOther = min(b.capacity, b.waiting[dir.Opposite().index()])
	}
	wakeSame := min(b.capacity-b.occupants, b.waiting[i])

	for n := 0; n < wakeSame; n++ {
		b.cond[i].Signal()
	}
	other := dir.Opposite().index()
	for n := 0; n < wakeOther; n++ {
		b.cond[other].Signal()
	}
	b.mu.Unlock()

	b.publish(event.NewCarDepartedEvent(label, dir.String(), remaining, held))
	b.logger.Debug("car departed",
		"car", label, "direction", dir.String(),
		"remaining", remaining, "held", held)
	if emptied {
		b.publish(event.NewDirectionChangedEvent(dir.String(), None.String()))
		b.logger.Debug("span emptied", "previous", dir.String())
	}

	return nil
}

// Close tears the bridge down. It is idempotent; the first call marks
// the bridge closed and wakes every parked car so it can fail fast with
// ErrBridgeClosed.
//
// The caller owns the "no crossings in flight" contract. If cars were
// still on the span or waiting at either end, Close still completes the
// teardown and then reports the leaks as a single resource error, one
// joined cause per group.
func (b *Bridge) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true

	occupants := b.occupants
	waitingNorth := b.waiting[Northbound.index()]
	waitingSouth := b.waiting[Southbound.index()]

	b.cond[Northbound.index()].Broadcast()
	b.cond[Southbound.index()].Broadcast()
	b.mu.Unlock()

	var leaks []error
	if occupants > 0 {
		leaks = append(leaks, errors.Wrapf(errors.ErrBridgeBusy,
			"%d car(s) still on the span", occupants))
	}
	if waitingNorth > 0 {
		leaks = append(leaks, errors.Wrapf(errors.ErrBridgeBusy,
			"%d car(s) still waiting northbound", waitingNorth))
	}
	if waitingSouth > 0 {
		leaks = append(leaks, errors.Wrapf(errors.ErrBridgeBusy,
			"%d car(s) still waiting southbound", waitingSouth))
	}

	if len(leaks) > 0 {
		err := errors.NewResource("close", errors.Join(leaks...))
		b.logger.Warn("bridge closed with traffic",
			"occupants", occupants,
			"waiting_north", waitingNorth,
			"waiting_south", waitingSouth)
		return err
	}

	b.logger.Debug("bridge closed")
	return nil
}

// publish sends an event if a bus was attached.
func (b *Bridge) publish(e event.Event) {
	if b.bus != nil {
		b.bus.Publish(e)
	}
}
