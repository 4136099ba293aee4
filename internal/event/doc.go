// Package event provides a pub-sub event bus for decoupled inter-component
// communication in onelane.
//
// The bridge core publishes crossing lifecycle events without knowing who
// consumes them; the console narrator, the TUI, and the tests subscribe
// without the core knowing they exist. This keeps the synchronization core
// free of any I/O or display dependency.
//
// # Main Types
//
//   - [Event]: Interface that all events must implement, providing EventType() and Timestamp()
//   - [Bus]: Synchronous pub-sub event dispatcher with thread-safe operations
//   - [Handler]: Function type for event handlers (func(Event))
//
// # Event Categories
//
// Crossing lifecycle (one car's trip over the span):
//   - [CarWaitingEvent]: a car requested entry and is blocked
//   - [CarEnteredEvent]: a car was admitted onto the span
//   - [CarCrossingEvent]: the mid-span occupancy report
//   - [CarDepartedEvent]: a car left the span
//
// Bridge state:
//   - [DirectionChangedEvent]: a direction epoch opened or closed
//
// Simulation runs:
//   - [RunStartedEvent]: a simulation began
//   - [RunFinishedEvent]: all cars joined and the final state was verified
//
// # Thread Safety
//
// The [Bus] type is safe for concurrent use. Multiple goroutines can publish
// and subscribe concurrently. Handlers are called synchronously on the
// publishing goroutine and protected against panics: a panicking handler
// will not prevent other handlers from being called.
//
// Events carry only plain values (strings, ints, durations), never live
// references into bridge state, so a handler can do nothing to violate the
// locking discipline.
//
// # Basic Usage
//
//	bus := event.NewBus()
//
//	id := bus.Subscribe("car.entered", func(e event.Event) {
//	    entered := e.(event.CarEnteredEvent)
//	    fmt.Println(entered.Car, "is on the span")
//	})
//	defer bus.Unsubscribe(id)
//
//	bus.Publish(event.NewCarEnteredEvent("car 01", "north", 1, 0))
package event
