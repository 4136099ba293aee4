// Package narrate renders bus events as console narration, one line per
// crossing step. It is the headless counterpart of the TUI: `onelane
// run` attaches a Narrator to the run's bus and the bridge stays
// otherwise silent.
package narrate

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/onelane/onelane/internal/event"
)

var (
	northStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#60A5FA")) // Blue
	southStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FBBF24")) // Yellow
	carStyle     = lipgloss.NewStyle().Bold(true)
	midSpanStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A78BFA")) // Purple
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")) // Gray
)

// Narrator writes one line per bus event to an injected writer. Handlers
// run on the publishing goroutines, so writes are serialized internally.
type Narrator struct {
	mu    sync.Mutex
	out   io.Writer
	plain bool

	bus   *event.Bus
	subID uint64
}

// Option configures a Narrator.
type Option func(*Narrator)

// WithPlain disables styling; lines come out as plain text regardless of
// the terminal.
func WithPlain() Option {
	return func(n *Narrator) {
		n.plain = true
	}
}

// New creates a Narrator writing to out.
func New(out io.Writer, opts ...Option) *Narrator {
	n := &Narrator{out: out}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Attach subscribes the narrator to every event on the bus. Attaching
// twice replaces the previous subscription.
func (n *Narrator) Attach(bus *event.Bus) {
	n.Detach()

	n.mu.Lock()
	defer n.mu.Unlock()
	n.bus = bus
	n.subID = bus.SubscribeAll(n.handle)
}

// Detach unsubscribes from the currently attached bus, if any.
func (n *Narrator) Detach() {
	n.mu.Lock()
	bus, id := n.bus, n.subID
	n.bus = nil
	n.mu.Unlock()

	if bus != nil {
		bus.Unsubscribe(id)
	}
}

func (n *Narrator) handle(e event.Event) {
	switch ev := e.(type) {
	case event.CarWaitingEvent:
		n.printf("%s waits to go %s (%d in line)",
			n.car(ev.Car), n.dir(ev.Direction), ev.Waiting)

	case event.CarEnteredEvent:
		n.printf("%s rolls on %sbound (%d aboard, waited %s)",
			n.car(ev.Car), n.dir(ev.Direction), ev.Occupants, round(ev.Waited))

	case event.CarCrossingEvent:
		n.printf("%s", n.style(midSpanStyle, fmt.Sprintf(
			"%s mid-span: flow %s, %d aboard, waiting north %d / south %d",
			ev.Car, ev.Direction, ev.Occupants, ev.WaitingNorth, ev.WaitingSouth)))

	case event.CarDepartedEvent:
		n.printf("%s rolls off %sbound (%d still aboard, held %s)",
			n.car(ev.Car), n.dir(ev.Direction), ev.Remaining, round(ev.Held))

	case event.DirectionChangedEvent:
		if ev.Current == "none" {
			n.printf("%s", n.style(mutedStyle, "the span is empty"))
		} else {
			n.printf("traffic now flows %s", n.dir(ev.Current))
		}

	case event.RunStartedEvent:
		n.printf("spawning %d cars onto a capacity-%d span", ev.Cars, ev.Capacity)

	case event.RunFinishedEvent:
		if ev.Failures > 0 {
			n.printf("%d crossings, %d failures, in %s",
				ev.Crossings, ev.Failures, round(ev.Elapsed))
		} else {
			n.printf("%d crossings in %s", ev.Crossings, round(ev.Elapsed))
		}
	}
}

func (n *Narrator) printf(format string, args ...any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.out, format+"\n", args...)
}

func (n *Narrator) style(s lipgloss.Style, text string) string {
	if n.plain {
		return text
	}
	return s.Render(text)
}

func (n *Narrator) car(label string) string {
	return n.style(carStyle, label)
}

func (n *Narrator) dir(direction string) string {
	switch direction {
	case "north":
		return n.style(northStyle, direction)
	case "south":
		return n.style(southStyle, direction)
	default:
		return direction
	}
}

// round trims durations to whole milliseconds for readable lines.
func round(d time.Duration) time.Duration {
	return d.Round(time.Millisecond)
}
