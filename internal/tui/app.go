// Package tui renders a live view of one bridge simulation: the current
// flow direction, span occupancy, per-direction waiting queues, and a
// scrolling crossing log. Bus events are forwarded into the Bubbletea
// program; the simulation itself runs in a background goroutine owned by
// the program.
package tui

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/onelane/onelane/internal/event"
	"github.com/onelane/onelane/internal/sim"
)

// App wraps the Bubbletea program
type App struct {
	program *tea.Program
	model   model
	bus     *event.Bus
}

// Config describes one simulation the TUI can run and re-run.
type Config struct {
	// Bus carries the bridge and runner events the view mirrors.
	Bus *event.Bus
	// Capacity is the span capacity, used to scale the occupancy bar.
	Capacity int
	// Cars is the number of cars in the plan, used for the progress line.
	Cars int
	// ScenarioPath is shown in the header when a scenario file drives the
	// run; empty for a random plan.
	ScenarioPath string
	// Start launches one simulation run. The TUI calls it once on startup
	// and again on 'r' or a scenario reload; invocations never overlap.
	Start func(ctx context.Context) (*sim.Result, error)
}

// New creates a new TUI application
func New(cfg Config) *App {
	return &App{
		model: newModel(cfg),
		bus:   cfg.Bus,
	}
}

// Run starts the TUI application and blocks until it exits.
func (a *App) Run() error {
	a.program = tea.NewProgram(
		a.model,
		tea.WithAltScreen(),
	)

	// Forward bus events into the program. Handlers run on the car
	// goroutines, so the subscription lives exactly as long as the
	// program loop that drains it.
	subID := a.bus.SubscribeAll(func(e event.Event) {
		a.program.Send(eventMsg{event: e})
	})
	defer a.bus.Unsubscribe(subID)

	// Forward termination signals as a quit message so the alt screen is
	// restored before the process exits.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	go func() {
		<-sigChan
		a.program.Send(tea.Quit())
	}()

	_, err := a.program.Run()
	return err
}

// Reload asks the TUI to re-run the simulation. Watch mode calls this
// when the scenario file changes; if a run is still in progress the
// reload is queued until it finishes.
func (a *App) Reload() {
	if a.program != nil {
		a.program.Send(reloadMsg{})
	}
}

// Messages

type tickMsg time.Time

type eventMsg struct {
	event event.Event
}

type runDoneMsg struct {
	result *sim.Result
	err    error
}

type reloadMsg struct{}

// Commands

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
