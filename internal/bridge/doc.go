// Package bridge implements the synchronization core for a single-lane
// bridge shared by cars approaching from both ends.
//
// One [Bridge] holds the shared state: the direction currently flowing,
// the number of cars on the span, and per-direction counts of blocked
// cars. A single mutex guards all of it; two condition variables, one
// per direction, park the cars that cannot enter yet.
//
// A car may enter when traffic is not flowing the opposite way and the
// span is below capacity. An empty span carries no direction, so the
// first car admitted establishes the flow, which holds until the span
// empties again. Waiting is a Mesa-style loop: a wake is a hint, and the
// woken car re-evaluates the predicate before entering.
//
// A departing car wakes as many same-direction waiters as the remaining
// capacity admits. The car that empties the span also wakes up to a full
// batch of opposite-direction waiters, so a reversal starts with up to
// capacity cars. Admission order within a direction is unspecified;
// there is no fairness guarantee between directions.
//
// Lifecycle:
//
//	b, err := bridge.New(3, bridge.WithBus(bus), bridge.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	report, err := b.Cross(bridge.Northbound,
//		bridge.WithLabel("car 01"),
//		bridge.WithOnBridge(func(s bridge.Snapshot) { time.Sleep(dwell) }),
//	)
//	// ... all crossings finish ...
//	err = b.Close()
//
// [Bridge.Cross] has no timeout and takes no context: a car that has
// asked to enter commits to crossing. Drivers that need cancellation
// must apply it before calling Cross.
package bridge
