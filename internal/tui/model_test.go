package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/onelane/onelane/internal/event"
	"github.com/onelane/onelane/internal/sim"
)

func testModel() model {
	return newModel(Config{
		Capacity: 3,
		Cars:     6,
		Start: func(ctx context.Context) (*sim.Result, error) {
			return &sim.Result{}, nil
		},
	})
}

// applyMsg runs one Update step and asserts the concrete model comes back.
func applyMsg(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	next, ok := updated.(model)
	if !ok {
		t.Fatalf("Update returned %T, want model", updated)
	}
	return next, cmd
}

func TestNewModel_Defaults(t *testing.T) {
	m := testModel()

	if m.direction != "none" {
		t.Errorf("direction = %q, want %q", m.direction, "none")
	}
	if m.total != 6 {
		t.Errorf("total = %d, want 6", m.total)
	}
	if m.capacity != 3 {
		t.Errorf("capacity = %d, want 3", m.capacity)
	}
	if m.running {
		t.Error("new model should not be running")
	}
}

func TestModel_WindowSizeMakesReady(t *testing.T) {
	m := testModel()
	if m.ready {
		t.Fatal("model should not be ready before the first WindowSizeMsg")
	}

	m, _ = applyMsg(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	if !m.ready {
		t.Error("model should be ready after WindowSizeMsg")
	}
	if m.width != 100 || m.height != 40 {
		t.Errorf("size = %dx%d, want 100x40", m.width, m.height)
	}
}

func TestModel_WaitingEventSetsQueueDepth(t *testing.T) {
	m := testModel()

	m, _ = applyMsg(t, m, eventMsg{event: event.NewCarWaitingEvent("car 01", "north", 3)})
	m, _ = applyMsg(t, m, eventMsg{event: event.NewCarWaitingEvent("car 02", "south", 1)})

	if m.waitingNorth != 3 {
		t.Errorf("waitingNorth = %d, want 3", m.waitingNorth)
	}
	if m.waitingSouth != 1 {
		t.Errorf("waitingSouth = %d, want 1", m.waitingSouth)
	}
}

func TestModel_EnteredEventUpdatesSpan(t *testing.T) {
	m := testModel()
	m, _ = applyMsg(t, m, eventMsg{event: event.NewCarWaitingEvent("car 01", "north", 2)})

	m, _ = applyMsg(t, m, eventMsg{event: event.NewCarEnteredEvent("car 01", "north", 1, 5*time.Millisecond)})

	if m.occupants != 1 {
		t.Errorf("occupants = %d, want 1", m.occupants)
	}
	if m.waitingNorth != 1 {
		t.Errorf("waitingNorth = %d, want 1 after a northbound car entered", m.waitingNorth)
	}
}

func TestModel_EnteredEventNeverUnderflowsQueue(t *testing.T) {
	m := testModel()

	m, _ = applyMsg(t, m, eventMsg{event: event.NewCarEnteredEvent("car 01", "south", 1, 0)})

	if m.waitingSouth != 0 {
		t.Errorf("waitingSouth = %d, want 0", m.waitingSouth)
	}
}

func TestModel_CrossingEventIsAuthoritative(t *testing.T) {
	m := testModel()

	m, _ = applyMsg(t, m, eventMsg{event: event.NewCarCrossingEvent("car 01", "north", 2, 4, 7)})

	if m.occupants != 2 {
		t.Errorf("occupants = %d, want 2", m.occupants)
	}
	if m.waitingNorth != 4 {
		t.Errorf("waitingNorth = %d, want 4", m.waitingNorth)
	}
	if m.waitingSouth != 7 {
		t.Errorf("waitingSouth = %d, want 7", m.waitingSouth)
	}
}

func TestModel_DepartedEventCountsCrossings(t *testing.T) {
	m := testModel()

	m, _ = applyMsg(t, m, eventMsg{event: event.NewCarDepartedEvent("car 01", "north", 1, 40*time.Millisecond)})
	m, _ = applyMsg(t, m, eventMsg{event: event.NewCarDepartedEvent("car 02", "north", 0, 55*time.Millisecond)})

	if m.crossed != 2 {
		t.Errorf("crossed = %d, want 2", m.crossed)
	}
	if m.occupants != 0 {
		t.Errorf("occupants = %d, want 0", m.occupants)
	}
}

func TestModel_DirectionChangeEvent(t *testing.T) {
	m := testModel()

	m, _ = applyMsg(t, m, eventMsg{event: event.NewDirectionChangedEvent("none", "south")})
	if m.direction != "south" {
		t.Errorf("direction = %q, want %q", m.direction, "south")
	}

	m, _ = applyMsg(t, m, eventMsg{event: event.NewDirectionChangedEvent("south", "none")})
	if m.direction != "none" {
		t.Errorf("direction = %q, want %q", m.direction, "none")
	}
}

func TestModel_RunStartedRefreshesPlan(t *testing.T) {
	m := testModel()

	// A scenario reload can change the plan between runs.
	m, _ = applyMsg(t, m, eventMsg{event: event.NewRunStartedEvent(12, 5)})

	if m.total != 12 {
		t.Errorf("total = %d, want 12", m.total)
	}
	if m.capacity != 5 {
		t.Errorf("capacity = %d, want 5", m.capacity)
	}
}

func TestModel_RunFinishedRecordsFailures(t *testing.T) {
	m := testModel()

	m, _ = applyMsg(t, m, eventMsg{event: event.NewRunFinishedEvent(18, 2, time.Second)})

	if m.failures != 2 {
		t.Errorf("failures = %d, want 2", m.failures)
	}
}

func TestModel_ReloadWhileIdleStartsRun(t *testing.T) {
	m := testModel()

	m, cmd := applyMsg(t, m, reloadMsg{})

	if !m.running {
		t.Error("model should be running after reload while idle")
	}
	if cmd == nil {
		t.Fatal("expected a run command")
	}
	if _, ok := cmd().(runDoneMsg); !ok {
		t.Error("run command should produce a runDoneMsg")
	}
}

func TestModel_ReloadWhileRunningQueues(t *testing.T) {
	m := testModel()
	m, _ = applyMsg(t, m, reloadMsg{})

	m, cmd := applyMsg(t, m, reloadMsg{})

	if !m.pendingReload {
		t.Error("reload during a run should be queued")
	}
	if cmd != nil {
		t.Error("queued reload should not start a second run")
	}
}

func TestModel_RunDoneFiresQueuedReload(t *testing.T) {
	m := testModel()
	m, _ = applyMsg(t, m, reloadMsg{})
	m, _ = applyMsg(t, m, reloadMsg{})

	m, cmd := applyMsg(t, m, runDoneMsg{result: &sim.Result{}})

	if !m.running {
		t.Error("queued reload should start the next run immediately")
	}
	if m.pendingReload {
		t.Error("pendingReload should be cleared once the next run starts")
	}
	if cmd == nil {
		t.Error("expected a run command for the queued reload")
	}
}

func TestModel_RunDoneWithoutQueuedReloadGoesIdle(t *testing.T) {
	m := testModel()
	m, _ = applyMsg(t, m, reloadMsg{})

	result := &sim.Result{Elapsed: 2 * time.Second}
	m, cmd := applyMsg(t, m, runDoneMsg{result: result})

	if m.running {
		t.Error("model should be idle after the run finished")
	}
	if m.result != result {
		t.Error("result should be stored")
	}
	if m.elapsed != 2*time.Second {
		t.Errorf("elapsed = %s, want 2s", m.elapsed)
	}
	if cmd != nil {
		t.Error("no command expected when no reload is queued")
	}
}

func TestModel_RunDoneStoresError(t *testing.T) {
	m := testModel()
	m, _ = applyMsg(t, m, reloadMsg{})

	runErr := errors.New("boom")
	m, _ = applyMsg(t, m, runDoneMsg{err: runErr})

	if m.runErr != runErr {
		t.Errorf("runErr = %v, want %v", m.runErr, runErr)
	}
}

func TestModel_RerunKeyWhenIdle(t *testing.T) {
	m := testModel()

	m, cmd := applyMsg(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})

	if !m.running {
		t.Error("r should start a run when idle")
	}
	if cmd == nil {
		t.Error("expected a run command")
	}
}

func TestModel_RerunKeyWhileRunningQueues(t *testing.T) {
	m := testModel()
	m, _ = applyMsg(t, m, reloadMsg{})

	m, cmd := applyMsg(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})

	if !m.pendingReload {
		t.Error("r during a run should queue a re-run")
	}
	if cmd != nil {
		t.Error("queued re-run should not start a second run")
	}
}

func TestModel_QuitCancelsRun(t *testing.T) {
	m := testModel()
	m, _ = applyMsg(t, m, reloadMsg{})

	cancelled := false
	m.cancelRun = func() { cancelled = true }

	m, cmd := applyMsg(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})

	if !m.quitting {
		t.Error("ctrl+c should mark the model quitting")
	}
	if !cancelled {
		t.Error("ctrl+c should cancel the in-flight run")
	}
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg from the quit command")
	}
}

func TestModel_StartRunResetsMirror(t *testing.T) {
	m := testModel()
	m, _ = applyMsg(t, m, eventMsg{event: event.NewCarCrossingEvent("car 01", "north", 2, 4, 7)})
	m, _ = applyMsg(t, m, eventMsg{event: event.NewCarDepartedEvent("car 01", "north", 1, time.Millisecond)})

	m, _ = applyMsg(t, m, reloadMsg{})

	if m.occupants != 0 || m.waitingNorth != 0 || m.waitingSouth != 0 {
		t.Errorf("mirror not reset: occupants=%d north=%d south=%d",
			m.occupants, m.waitingNorth, m.waitingSouth)
	}
	if m.crossed != 0 {
		t.Errorf("crossed = %d, want 0 after reset", m.crossed)
	}
	if m.direction != "none" {
		t.Errorf("direction = %q, want %q after reset", m.direction, "none")
	}
}

func TestModel_ViewBeforeReady(t *testing.T) {
	m := testModel()

	view := m.View()

	if view == "" {
		t.Error("pre-ready view should show a placeholder")
	}
}

func TestModel_ViewAfterQuit(t *testing.T) {
	m := testModel()
	m, _ = applyMsg(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m, _ = applyMsg(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	if got := m.View(); got != "" {
		t.Errorf("post-quit view = %q, want empty", got)
	}
}
