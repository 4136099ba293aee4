package event

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// testEvent is a minimal Event implementation for bus tests.
type testEvent struct {
	eventType string
	payload   string
}

func (e testEvent) EventType() string    { return e.eventType }
func (e testEvent) Timestamp() time.Time { return time.Now() }

func TestBus_Subscribe(t *testing.T) {
	bus := NewBus()

	id := bus.Subscribe("test.event", func(Event) {})

	if id == 0 {
		t.Error("Subscribe() returned zero ID")
	}
	if got := bus.SubscriptionCount(); got != 1 {
		t.Errorf("SubscriptionCount() = %d, want 1", got)
	}
}

func TestBus_Publish(t *testing.T) {
	bus := NewBus()

	var received Event
	bus.Subscribe("test.event", func(e Event) {
		received = e
	})

	sent := testEvent{eventType: "test.event", payload: "hello"}
	bus.Publish(sent)

	if received == nil {
		t.Fatal("handler did not receive event")
	}
	got, ok := received.(testEvent)
	if !ok {
		t.Fatalf("received event type = %T, want testEvent", received)
	}
	if got.payload != "hello" {
		t.Errorf("payload = %q, want %q", got.payload, "hello")
	}
}

func TestBus_PublishToMatchingTypeOnly(t *testing.T) {
	bus := NewBus()

	var matched, other int
	bus.Subscribe("test.match", func(Event) { matched++ })
	bus.Subscribe("test.other", func(Event) { other++ })

	bus.Publish(testEvent{eventType: "test.match"})

	if matched != 1 {
		t.Errorf("matching handler called %d times, want 1", matched)
	}
	if other != 0 {
		t.Errorf("non-matching handler called %d times, want 0", other)
	}
}

func TestBus_PublishMultipleHandlers(t *testing.T) {
	bus := NewBus()

	var order []int
	bus.Subscribe("test.event", func(Event) { order = append(order, 1) })
	bus.Subscribe("test.event", func(Event) { order = append(order, 2) })
	bus.Subscribe("test.event", func(Event) { order = append(order, 3) })

	bus.Publish(testEvent{eventType: "test.event"})

	if len(order) != 3 {
		t.Fatalf("called %d handlers, want 3", len(order))
	}
	for i, got := range order {
		if got != i+1 {
			t.Errorf("handler order[%d] = %d, want %d (registration order)", i, got, i+1)
		}
	}
}

func TestBus_PublishNoSubscribers(t *testing.T) {
	bus := NewBus()

	// Must not panic.
	bus.Publish(testEvent{eventType: "test.unheard"})
}

func TestBus_SubscribeAll(t *testing.T) {
	bus := NewBus()

	var types []string
	bus.SubscribeAll(func(e Event) {
		types = append(types, e.EventType())
	})

	bus.Publish(testEvent{eventType: "car.entered"})
	bus.Publish(testEvent{eventType: "car.departed"})
	bus.Publish(testEvent{eventType: "run.finished"})

	want := []string{"car.entered", "car.departed", "run.finished"}
	if len(types) != len(want) {
		t.Fatalf("wildcard handler saw %d events, want %d", len(types), len(want))
	}
	for i, w := range want {
		if types[i] != w {
			t.Errorf("event[%d] = %q, want %q", i, types[i], w)
		}
	}
}

func TestBus_SpecificHandlersRunBeforeWildcard(t *testing.T) {
	bus := NewBus()

	var order []string
	bus.SubscribeAll(func(Event) { order = append(order, "wildcard") })
	bus.Subscribe("test.event", func(Event) { order = append(order, "specific") })

	bus.Publish(testEvent{eventType: "test.event"})

	if len(order) != 2 {
		t.Fatalf("called %d handlers, want 2", len(order))
	}
	if order[0] != "specific" || order[1] != "wildcard" {
		t.Errorf("dispatch order = %v, want [specific wildcard]", order)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()

	var calls int
	id := bus.Subscribe("test.event", func(Event) { calls++ })

	bus.Publish(testEvent{eventType: "test.event"})

	if !bus.Unsubscribe(id) {
		t.Error("Unsubscribe() = false, want true for live subscription")
	}

	bus.Publish(testEvent{eventType: "test.event"})

	if calls != 1 {
		t.Errorf("handler called %d times, want 1 (removed after first publish)", calls)
	}
	if got := bus.SubscriptionCount(); got != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0", got)
	}
}

func TestBus_UnsubscribeUnknownID(t *testing.T) {
	bus := NewBus()
	bus.Subscribe("test.event", func(Event) {})

	if bus.Unsubscribe(9999) {
		t.Error("Unsubscribe(9999) = true, want false for unknown ID")
	}
	if got := bus.SubscriptionCount(); got != 1 {
		t.Errorf("SubscriptionCount() = %d, want 1 (nothing removed)", got)
	}
}

func TestBus_UnsubscribeWildcard(t *testing.T) {
	bus := NewBus()

	var calls int
	id := bus.SubscribeAll(func(Event) { calls++ })
	bus.Unsubscribe(id)

	bus.Publish(testEvent{eventType: "test.event"})

	if calls != 0 {
		t.Errorf("handler called %d times after Unsubscribe, want 0", calls)
	}
}

func TestBus_HandlerPanicDoesNotStopDispatch(t *testing.T) {
	bus := NewBus()

	var after int
	bus.Subscribe("test.event", func(Event) { panic("handler exploded") })
	bus.Subscribe("test.event", func(Event) { after++ })

	// Must not propagate the panic.
	bus.Publish(testEvent{eventType: "test.event"})

	if after != 1 {
		t.Errorf("handler after panicking one called %d times, want 1", after)
	}
}

func TestBus_HandlerCanSubscribeDuringDispatch(t *testing.T) {
	bus := NewBus()

	var nested int
	bus.Subscribe("test.event", func(Event) {
		bus.Subscribe("test.nested", func(Event) { nested++ })
	})

	bus.Publish(testEvent{eventType: "test.event"})
	bus.Publish(testEvent{eventType: "test.nested"})

	if nested != 1 {
		t.Errorf("nested handler called %d times, want 1", nested)
	}
}

func TestBus_HandlerCanUnsubscribeDuringDispatch(t *testing.T) {
	bus := NewBus()

	var calls int
	var id uint64
	id = bus.Subscribe("test.event", func(Event) {
		calls++
		bus.Unsubscribe(id)
	})

	bus.Publish(testEvent{eventType: "test.event"})
	bus.Publish(testEvent{eventType: "test.event"})

	if calls != 1 {
		t.Errorf("self-removing handler called %d times, want 1", calls)
	}
}

func TestBus_Clear(t *testing.T) {
	bus := NewBus()

	var calls int
	bus.Subscribe("test.event", func(Event) { calls++ })
	bus.SubscribeAll(func(Event) { calls++ })

	bus.Clear()
	bus.Publish(testEvent{eventType: "test.event"})

	if calls != 0 {
		t.Errorf("handlers called %d times after Clear, want 0", calls)
	}
	if got := bus.SubscriptionCount(); got != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0 after Clear", got)
	}
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus()

	var count atomic.Int64
	bus.Subscribe("test.event", func(Event) {
		count.Add(1)
	})

	const goroutines = 10
	const perGoroutine = 100

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				bus.Publish(testEvent{eventType: "test.event"})
			}
		}()
	}
	wg.Wait()

	if got := count.Load(); got != goroutines*perGoroutine {
		t.Errorf("handler called %d times, want %d", got, goroutines*perGoroutine)
	}
}

func TestBus_ConcurrentSubscribeAndPublish(t *testing.T) {
	bus := NewBus()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			id := bus.Subscribe("test.event", func(Event) {})
			bus.Unsubscribe(id)
		}()
		go func() {
			defer wg.Done()
			bus.Publish(testEvent{eventType: "test.event"})
		}()
	}
	wg.Wait()
}
