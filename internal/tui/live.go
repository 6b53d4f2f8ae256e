// Package tui is the interactive terminal front end. It drives the flight
// controller at a fixed 60 Hz tick and renders HUD panels from snapshots; the
// engine itself never touches the terminal or the clock.
package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/tvcsim/internal/flight"
	"github.com/san-kum/tvcsim/internal/vehicle"
)

const (
	graphWidth     = 60
	graphHeight    = 10
	altitudeWindow = 600 // ~10s of trace at 60 ticks/s
)

var (
	hudStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 2)
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	runningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	pausedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	idleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	contactStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	graphStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))
	gimbalStepDeg = 1.0
)

type TickMsg time.Time

// Model wraps the flight controller for bubbletea.
type Model struct {
	ctrl     *flight.Controller
	altTrace []float64
	notice   string
	showHelp bool
}

func NewModel(ctrl *flight.Controller) Model {
	return Model{
		ctrl:     ctrl,
		altTrace: make([]float64, 0, altitudeWindow),
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case TickMsg:
		if err := m.ctrl.Tick(); err != nil {
			m.notice = err.Error()
		}
		snap := m.ctrl.Snapshot()
		m.altTrace = append(m.altTrace, vehicle.Altitude(snap.State))
		if len(m.altTrace) > altitudeWindow {
			m.altTrace = m.altTrace[len(m.altTrace)-altitudeWindow:]
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.ctrl.Snapshot()

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		var err error
		if snap.Phase == flight.PhaseRunning {
			err = m.ctrl.Pause()
		} else {
			err = m.ctrl.Start()
		}
		m.report(err)
	case "s":
		m.report(m.ctrl.Step())
	case "r":
		m.ctrl.Reset()
		m.altTrace = m.altTrace[:0]
		m.notice = "reset"
	case "g":
		m.ctrl.Stage()
		m.notice = "stage separation"
	case "up":
		m.ctrl.SetThrottle(snap.Throttle + 0.05)
	case "down":
		m.ctrl.SetThrottle(snap.Throttle - 0.05)
	case "left":
		m.report(m.ctrl.SetGimbal(snap.GimbalX-deg(gimbalStepDeg), snap.GimbalY))
	case "right":
		m.report(m.ctrl.SetGimbal(snap.GimbalX+deg(gimbalStepDeg), snap.GimbalY))
	case "a":
		m.report(m.ctrl.SetGimbal(snap.GimbalX, snap.GimbalY-deg(gimbalStepDeg)))
	case "d":
		m.report(m.ctrl.SetGimbal(snap.GimbalX, snap.GimbalY+deg(gimbalStepDeg)))
	case "e":
		name := fmt.Sprintf("tvcsim_run_%s.csv", time.Now().Format("20060102_150405"))
		if err := m.ctrl.ExportCSV(name); err != nil {
			m.notice = err.Error()
		} else {
			m.notice = "exported " + name
		}
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *Model) report(err error) {
	if err != nil {
		m.notice = err.Error()
	} else {
		m.notice = ""
	}
}

func deg(d float64) float64 {
	return d * math.Pi / 180
}

func (m Model) View() string {
	snap := m.ctrl.Snapshot()
	s := snap.State

	var phase string
	switch snap.Phase {
	case flight.PhaseRunning:
		phase = runningStyle.Render("RUNNING")
	case flight.PhasePaused:
		phase = pausedStyle.Render("PAUSED")
	default:
		phase = idleStyle.Render("IDLE")
	}

	roll, pitch, yaw := vehicle.EulerAngles(vehicle.Orientation(s))

	var hud strings.Builder
	hud.WriteString(headerStyle.Render("tvcsim") + "  " + phase + "\n\n")
	row := func(label, value string) {
		hud.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("time", fmt.Sprintf("%8.2f s", snap.T))
	row("altitude", fmt.Sprintf("%8.2f m", vehicle.Altitude(s)))
	row("speed", fmt.Sprintf("%8.2f m/s", vehicle.Speed(s)))
	row("mass", fmt.Sprintf("%8.2f kg", s[vehicle.Mass]))
	row("throttle", fmt.Sprintf("%7.0f %%", snap.Throttle*100))
	row("gimbal", fmt.Sprintf("x %+.1f°  y %+.1f°", snap.GimbalX*180/math.Pi, snap.GimbalY*180/math.Pi))
	row("attitude", fmt.Sprintf("r %+.1f° p %+.1f° y %+.1f°", roll*180/math.Pi, pitch*180/math.Pi, yaw*180/math.Pi))
	hud.WriteString("\n")
	row("max alt", fmt.Sprintf("%8.2f m", snap.Stats.MaxAltitude))
	row("max speed", fmt.Sprintf("%8.2f m/s", snap.Stats.MaxSpeed))
	row("distance", fmt.Sprintf("%8.2f m", snap.Stats.Distance))
	row("mass spent", fmt.Sprintf("%8.2f kg", snap.Stats.MassSpent))

	if snap.Contact != nil {
		kind := "soft"
		if snap.Contact.Hard {
			kind = "HARD"
		}
		hud.WriteString("\n" + contactStyle.Render(
			fmt.Sprintf("%s contact at %.1f m/s", kind, snap.Contact.Speed)) + "\n")
	}
	if snap.PauseReason != "" && snap.PauseReason != "paused" {
		hud.WriteString(contactStyle.Render(snap.PauseReason) + "\n")
	}

	graph := ""
	if len(m.altTrace) > 1 {
		graph = graphStyle.Render(asciigraph.Plot(m.altTrace,
			asciigraph.Height(graphHeight),
			asciigraph.Width(graphWidth),
			asciigraph.Caption("altitude (m)")))
	}

	out := lipgloss.JoinHorizontal(lipgloss.Top, hudStyle.Render(hud.String()), graph)

	if m.notice != "" {
		out += "\n" + noticeStyle.Render(m.notice)
	}

	help := "space start/pause · s step · r reset · g stage · ↑↓ throttle · ←→ gimbal x · a/d gimbal y · e export · ? help · q quit"
	if m.showHelp {
		help += "\ngimbal is locked once started and released by reset; throttle stays live in flight"
	}
	out += "\n" + helpStyle.Render(help)

	return out
}

// Run starts the interactive session.
func Run(ctrl *flight.Controller) error {
	p := tea.NewProgram(NewModel(ctrl))
	_, err := p.Run()
	return err
}
