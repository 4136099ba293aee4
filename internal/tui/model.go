package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/onelane/onelane/internal/event"
	"github.com/onelane/onelane/internal/sim"
	"github.com/onelane/onelane/internal/tui/styles"
	"github.com/onelane/onelane/internal/util"
)

// maxLogLines bounds the crossing log backlog.
const maxLogLines = 500

// model mirrors the bridge state from bus events. It never touches the
// bridge directly; everything it shows arrived over the bus.
type model struct {
	cfg Config

	// Live bridge mirror.
	direction    string
	occupants    int
	waitingNorth int
	waitingSouth int

	// Run bookkeeping.
	total         int
	capacity      int
	crossed       int
	failures      int
	running       bool
	pendingReload bool
	startedAt     time.Time
	elapsed       time.Duration
	cancelRun     context.CancelFunc
	result        *sim.Result
	runErr        error

	logLines  []string
	log       viewport.Model
	occupancy progress.Model
	spin      spinner.Model

	width    int
	height   int
	ready    bool
	quitting bool
}

func newModel(cfg Config) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Primary

	return model{
		cfg:       cfg,
		direction: "none",
		total:     cfg.Cars,
		capacity:  cfg.Capacity,
		log:       viewport.New(80, 20),
		occupancy: progress.New(progress.WithDefaultGradient()),
		spin:      sp,
	}
}

// Init schedules the clock, the spinner, and the first run.
func (m model) Init() tea.Cmd {
	return tea.Batch(
		tick(),
		m.spin.Tick,
		func() tea.Msg { return reloadMsg{} },
	)
}

// Update handles messages and updates the model
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeypress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.ready = true
		return m, nil

	case tickMsg:
		if m.running {
			m.elapsed = time.Since(m.startedAt)
		}
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case eventMsg:
		m.applyEvent(msg.event)
		return m, nil

	case runDoneMsg:
		m.running = false
		m.cancelRun = nil
		m.result = msg.result
		m.runErr = msg.err
		if msg.result != nil {
			m.elapsed = msg.result.Elapsed
		}
		if msg.err != nil {
			m.appendLog(styles.ErrorMsg.Render("run failed: " + msg.err.Error()))
		}
		if m.pendingReload {
			return m.startRun()
		}
		return m, nil

	case reloadMsg:
		if m.running {
			m.pendingReload = true
			return m, nil
		}
		return m.startRun()
	}

	return m, nil
}

// handleKeypress processes keyboard input
func (m model) handleKeypress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		if m.cancelRun != nil {
			m.cancelRun()
		}
		return m, tea.Quit

	case "r":
		if m.running {
			m.pendingReload = true
			return m, nil
		}
		return m.startRun()
	}

	// Everything else scrolls the crossing log.
	var cmd tea.Cmd
	m.log, cmd = m.log.Update(msg)
	return m, cmd
}

// startRun resets the live mirror and launches one simulation run in a
// command goroutine. Callers guarantee no run is currently in progress.
func (m model) startRun() (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelRun = cancel
	m.running = true
	m.pendingReload = false
	m.startedAt = time.Now()
	m.elapsed = 0
	m.crossed = 0
	m.failures = 0
	m.result = nil
	m.runErr = nil
	m.direction = "none"
	m.occupants = 0
	m.waitingNorth = 0
	m.waitingSouth = 0

	start := m.cfg.Start
	return m, func() tea.Msg {
		result, err := start(ctx)
		return runDoneMsg{result: result, err: err}
	}
}

// applyEvent folds one bus event into the live mirror and the log.
func (m *model) applyEvent(e event.Event) {
	switch ev := e.(type) {
	case event.RunStartedEvent:
		m.total = ev.Cars
		m.capacity = ev.Capacity
		m.appendLog(fmt.Sprintf("run started: %d cars, capacity %d", ev.Cars, ev.Capacity))

	case event.CarWaitingEvent:
		if ev.Direction == "north" {
			m.waitingNorth = ev.Waiting
		} else {
			m.waitingSouth = ev.Waiting
		}

	case event.CarEnteredEvent:
		m.occupants = ev.Occupants
		if ev.Direction == "north" && m.waitingNorth > 0 {
			m.waitingNorth--
		}
		if ev.Direction == "south" && m.waitingSouth > 0 {
			m.waitingSouth--
		}
		m.appendLog(fmt.Sprintf("%s entered %s (%d aboard)",
			ev.Car, styles.DirectionStyle(ev.Direction).Render(ev.Direction+"bound"), ev.Occupants))

	case event.CarCrossingEvent:
		// Mid-span reports carry authoritative counts for both queues.
		m.occupants = ev.Occupants
		m.waitingNorth = ev.WaitingNorth
		m.waitingSouth = ev.WaitingSouth

	case event.CarDepartedEvent:
		m.occupants = ev.Remaining
		m.crossed++
		m.appendLog(fmt.Sprintf("%s departed (%d still aboard, held %s)",
			ev.Car, ev.Remaining, ev.Held.Round(time.Millisecond)))

	case event.DirectionChangedEvent:
		m.direction = ev.Current
		if ev.Current == "none" {
			m.appendLog(styles.Muted.Render("span is empty"))
		} else {
			m.appendLog("flow is now " + styles.DirectionStyle(ev.Current).Render(ev.Current+"bound"))
		}

	case event.RunFinishedEvent:
		m.failures = ev.Failures
		m.appendLog(fmt.Sprintf("run finished: %d crossings in %s",
			ev.Crossings, ev.Elapsed.Round(time.Millisecond)))
	}
}

func (m *model) appendLog(line string) {
	stamp := time.Now().Format("15:04:05.000")
	entry := styles.Muted.Render(stamp) + " " + line
	// One row per entry, or the scrollback cap stops meaning anything.
	m.logLines = append(m.logLines, util.TruncateANSI(entry, m.log.Width))
	if len(m.logLines) > maxLogLines {
		m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
	}
	m.log.SetContent(strings.Join(m.logLines, "\n"))
	m.log.GotoBottom()
}

// layout resizes the viewport and occupancy bar to the terminal.
func (m *model) layout() {
	w := m.width - 4
	if w < 20 {
		w = 20
	}
	h := m.height - 14
	if h < 3 {
		h = 3
	}
	m.log.Width = w
	m.log.Height = h

	m.occupancy.Width = min(40, max(10, m.width-30))
}
