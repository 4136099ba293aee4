package event

import "time"

// Event is the interface that all events must implement.
// It provides a common way to identify and timestamp events.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "car.entered", "run.finished")
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

// newBaseEvent creates a baseEvent with the current time.
func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Crossing Lifecycle Events
// -----------------------------------------------------------------------------

// CarWaitingEvent is emitted when a car requests entry and joins the
// waiting count for its direction.
type CarWaitingEvent struct {
	baseEvent
	Car       string // Car label (e.g., "car 03")
	Direction string // Direction the car wants to travel ("north" or "south")
	Waiting   int    // Cars now waiting in that direction, this one included
}

// NewCarWaitingEvent creates a CarWaitingEvent.
func NewCarWaitingEvent(car, direction string, waiting int) CarWaitingEvent {
	return CarWaitingEvent{
		baseEvent: newBaseEvent("car.waiting"),
		Car:       car,
		Direction: direction,
		Waiting:   waiting,
	}
}

// CarEnteredEvent is emitted when a car passes the admission predicate and
// rolls onto the span.
type CarEnteredEvent struct {
	baseEvent
	Car       string        // Car label
	Direction string        // Direction of travel
	Occupants int           // Cars on the span after this one entered
	Waited    time.Duration // How long the car waited for admission
}

// NewCarEnteredEvent creates a CarEnteredEvent.
func NewCarEnteredEvent(car, direction string, occupants int, waited time.Duration) CarEnteredEvent {
	return CarEnteredEvent{
		baseEvent: newBaseEvent("car.entered"),
		Car:       car,
		Direction: direction,
		Occupants: occupants,
		Waited:    waited,
	}
}

// CarCrossingEvent is emitted once per crossing, mid-span, carrying the
// occupancy report the car observed. This is the narrated "on the bridge"
// line.
type CarCrossingEvent struct {
	baseEvent
	Car          string // Car label
	Direction    string // Current flow on the span
	Occupants    int    // Cars on the span, this one included
	WaitingNorth int    // Cars blocked wanting to go north
	WaitingSouth int    // Cars blocked wanting to go south
}

// NewCarCrossingEvent creates a CarCrossingEvent.
func NewCarCrossingEvent(car, direction string, occupants, waitingNorth, waitingSouth int) CarCrossingEvent {
	return CarCrossingEvent{
		baseEvent:    newBaseEvent("car.crossing"),
		Car:          car,
		Direction:    direction,
		Occupants:    occupants,
		WaitingNorth: waitingNorth,
		WaitingSouth: waitingSouth,
	}
}

// CarDepartedEvent is emitted when a car rolls off the far end of the span.
type CarDepartedEvent struct {
	baseEvent
	Car       string        // Car label
	Direction string        // Direction the car traveled
	Remaining int           // Cars still on the span after this one left
	Held      time.Duration // How long the car occupied the span
}

// NewCarDepartedEvent creates a CarDepartedEvent.
func NewCarDepartedEvent(car, direction string, remaining int, held time.Duration) CarDepartedEvent {
	return CarDepartedEvent{
		baseEvent: newBaseEvent("car.departed"),
		Car:       car,
		Direction: direction,
		Remaining: remaining,
		Held:      held,
	}
}

// -----------------------------------------------------------------------------
// Bridge State Events
// -----------------------------------------------------------------------------

// DirectionChangedEvent is emitted when a direction epoch opens (empty span
// adopts the first car's direction) or closes (last car departs and the
// span empties). Current is "none" when the span just emptied.
type DirectionChangedEvent struct {
	baseEvent
	Previous string // Flow before the change ("none", "north", "south")
	Current  string // Flow after the change
}

// NewDirectionChangedEvent creates a DirectionChangedEvent.
func NewDirectionChangedEvent(previous, current string) DirectionChangedEvent {
	return DirectionChangedEvent{
		baseEvent: newBaseEvent("bridge.direction"),
		Previous:  previous,
		Current:   current,
	}
}

// -----------------------------------------------------------------------------
// Simulation Run Events
// -----------------------------------------------------------------------------

// RunStartedEvent is emitted when the driver begins spawning cars.
type RunStartedEvent struct {
	baseEvent
	Cars     int // Total cars the run will spawn
	Capacity int // Bridge capacity for the run
}

// NewRunStartedEvent creates a RunStartedEvent.
func NewRunStartedEvent(cars, capacity int) RunStartedEvent {
	return RunStartedEvent{
		baseEvent: newBaseEvent("run.started"),
		Cars:      cars,
		Capacity:  capacity,
	}
}

// RunFinishedEvent is emitted after every car has been joined and the final
// bridge state verified.
type RunFinishedEvent struct {
	baseEvent
	Crossings int           // Cars that completed the full crossing
	Failures  int           // Cars that aborted with a fatal error
	Elapsed   time.Duration // Wall time from first spawn to last join
}

// NewRunFinishedEvent creates a RunFinishedEvent.
func NewRunFinishedEvent(crossings, failures int, elapsed time.Duration) RunFinishedEvent {
	return RunFinishedEvent{
		baseEvent: newBaseEvent("run.finished"),
		Crossings: crossings,
		Failures:  failures,
		Elapsed:   elapsed,
	}
}
