package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/onelane/onelane/internal/tui/styles"
	"github.com/onelane/onelane/internal/util"
)

// queueGaugeMax caps the bar length of a waiting queue gauge.
const queueGaugeMax = 20

// View renders the live bridge dashboard.
func (m model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "\n  initializing..."
	}

	sections := []string{
		m.renderHeader(),
		m.renderStatus(),
		m.renderBridge(),
		styles.LogBox.Render(m.log.View()),
		m.renderHelp(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m model) renderHeader() string {
	source := "random plan"
	if m.cfg.ScenarioPath != "" {
		source = util.TruncateString(m.cfg.ScenarioPath, 48)
	}
	subtitle := fmt.Sprintf("%d cars over a capacity-%d span (%s)", m.total, m.capacity, source)
	return styles.Title.Render("onelane") + "  " + styles.Subtitle.Render(subtitle)
}

func (m model) renderStatus() string {
	switch {
	case m.running:
		line := fmt.Sprintf("%s crossing %d/%d, %s elapsed",
			m.spin.View(), m.crossed, m.total, m.elapsed.Round(100*time.Millisecond))
		if m.pendingReload {
			line += styles.Warning.Render("  (reload queued)")
		}
		return line

	case m.runErr != nil:
		return styles.ErrorMsg.Render("✗ run failed: " + m.runErr.Error())

	case m.result != nil:
		line := styles.SuccessMsg.Render(fmt.Sprintf("✓ %d crossings in %s",
			m.result.Crossings(), m.result.Elapsed.Round(time.Millisecond)))
		if m.failures > 0 {
			line += styles.Warning.Render(fmt.Sprintf("  (%d cancelled)", m.failures))
		}
		return line
	}

	return styles.Muted.Render("waiting for first run")
}

// renderBridge draws the span panel: flow marker, occupancy bar, and the
// two waiting queues.
func (m model) renderBridge() string {
	flow := styles.DirectionStyle(m.direction).Render(
		fmt.Sprintf("%s %s", styles.DirectionArrow(m.direction), flowLabel(m.direction)))

	pct := 0.0
	if m.capacity > 0 {
		pct = float64(m.occupants) / float64(m.capacity)
	}
	occupancy := fmt.Sprintf("span  %s %d/%d aboard", m.occupancy.ViewAs(pct), m.occupants, m.capacity)

	north := fmt.Sprintf("north %s %d waiting", queueGauge(m.waitingNorth, styles.North), m.waitingNorth)
	south := fmt.Sprintf("south %s %d waiting", queueGauge(m.waitingSouth, styles.South), m.waitingSouth)

	body := lipgloss.JoinVertical(lipgloss.Left, flow, occupancy, north, south)
	return styles.PanelBox.Render(body)
}

func (m model) renderHelp() string {
	help := styles.HelpKey.Render("q") + " quit  " +
		styles.HelpKey.Render("r") + " re-run  " +
		styles.HelpKey.Render("↑/↓") + " scroll log"
	return styles.HelpBar.Render(help)
}

func flowLabel(direction string) string {
	if direction == "none" || direction == "" {
		return "idle"
	}
	return direction + "bound"
}

// queueGauge renders a one-character-per-car bar, capped so a long queue
// cannot push the panel off screen.
func queueGauge(n int, style lipgloss.Style) string {
	if n <= 0 {
		return styles.Muted.Render("·")
	}
	bar := strings.Repeat("█", min(n, queueGaugeMax))
	if n > queueGaugeMax {
		bar += "…"
	}
	return style.Render(bar)
}
