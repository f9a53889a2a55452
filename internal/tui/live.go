// Package tui renders a live spinner wheel in the terminal: a braille
// canvas for the wheel and needle, a stats pane, and a velocity
// sparkline. The player charges a power meter and releases it to spin.
package tui

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/spinsim/internal/session"
	"github.com/san-kum/spinsim/internal/wedge"
)

const (
	canvasWidth     = 46
	canvasHeight    = 22
	historyCapacity = 300
	powerStep       = 0.02
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(42)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	resultStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

type mode int

const (
	modeIdle mode = iota
	modeCharging
	modeSpinning
	modeStopped
)

// Model runs the interactive spinner loop, stepping the session's
// engine directly on every tick.
type Model struct {
	sess    *session.Session
	set     *wedge.Set
	rng     *rand.Rand
	canvas  *Canvas
	mode    mode
	power   float64
	meterUp bool
	t       float64
	frameDt float64
	history []float64
	landed  *wedge.Wedge
	drawn   *wedge.Wedge
}

func NewModel(sess *session.Session, seed int64) Model {
	return Model{
		sess:    sess,
		set:     sess.Wedges(),
		rng:     rand.New(rand.NewSource(seed)),
		canvas:  NewCanvas(canvasWidth, canvasHeight),
		frameDt: 1.0 / 60.0,
		history: make([]float64, 0, historyCapacity),
		meterUp: true,
	}
}

// Run starts the interactive view and blocks until the player quits.
func Run(sess *session.Session, seed int64) error {
	p := tea.NewProgram(NewModel(sess, seed))
	_, err := p.Run()
	return err
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
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			switch m.mode {
			case modeIdle, modeStopped:
				m.mode = modeCharging
				m.power = 0
				m.meterUp = true
				m.landed = nil
				m.drawn = nil
			case modeCharging:
				m.launch()
			}
		case "r":
			m.reset()
		}
	case TickMsg:
		m.step()
		return m, tick()
	}
	return m, nil
}

func (m *Model) launch() {
	eng := m.sess.Engine()
	eng.Reset()
	eng.SetVelocity(session.OuterWheel, m.sess.LaunchVelocity(m.power))
	m.mode = modeSpinning
	m.t = 0
	m.history = m.history[:0]
}

func (m *Model) reset() {
	m.sess.Reset()
	m.mode = modeIdle
	m.power = 0
	m.t = 0
	m.history = m.history[:0]
	m.landed = nil
	m.drawn = nil
}

func (m *Model) step() {
	switch m.mode {
	case modeCharging:
		if m.meterUp {
			m.power += powerStep
			if m.power >= 1 {
				m.power = 1
				m.meterUp = false
			}
		} else {
			m.power -= powerStep
			if m.power <= 0 {
				m.power = 0
				m.meterUp = true
			}
		}
	case modeSpinning:
		eng := m.sess.Engine()
		eng.Step(m.frameDt)
		m.t += m.frameDt

		outer, _ := eng.WheelState(session.OuterWheel)
		m.history = append(m.history, outer.Velocity)
		if len(m.history) > historyCapacity {
			m.history = m.history[1:]
		}

		if eng.Stable() {
			m.mode = modeStopped
			landed := m.set.At(outer.Angle)
			drawn := m.set.Pick(m.rng)
			m.landed = &landed
			m.drawn = &drawn
		}
	}
}

func (m *Model) draw() {
	m.canvas.Clear()

	eng := m.sess.Engine()
	outer, _ := eng.WheelState(session.OuterWheel)
	inner, _ := eng.WheelState(session.InnerWheel)

	cx, cy := canvasWidth, canvasHeight*2 // sub-pixel center
	rOuter := float64(canvasWidth) - 6
	rInner := rOuter * 0.4

	m.canvas.Circle(cx, cy, rOuter)
	m.canvas.Circle(cx, cy, rInner)

	// Wedge boundaries rotate with the outer wheel past the fixed
	// needle at the top.
	for i := 0; i < m.set.Len(); i++ {
		start, _ := m.set.Arc(i)
		m.canvas.Spoke(cx, cy, rOuter, start-outer.Angle, rInner/rOuter)
	}

	// Inner wheel marker.
	m.canvas.Spoke(cx, cy, rInner, -inner.Angle, 0)

	// Needle.
	m.canvas.Line(cx, cy-int(rOuter/2)-3, cx, cy-int(rOuter/2)+1)
}

func (m Model) View() string {
	m.draw()

	var s strings.Builder
	s.WriteString(headerStyle.Render("SPINSIM") + "\n")
	s.WriteString(m.status() + "\n\n")

	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("outer velocity"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	eng := m.sess.Engine()
	outer, _ := eng.WheelState(session.OuterWheel)
	inner, _ := eng.WheelState(session.InnerWheel)

	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", m.t)) + "\n")
	s.WriteString(labelStyle.Render("Outer ω") + valueStyle.Render(fmt.Sprintf("%.3f rad/s", outer.Velocity)) + "\n")
	s.WriteString(labelStyle.Render("Inner ω") + valueStyle.Render(fmt.Sprintf("%.3f rad/s", inner.Velocity)) + "\n")
	s.WriteString(labelStyle.Render("Power") + valueStyle.Render(powerBar(m.power)) + "\n")

	if m.landed != nil && m.drawn != nil {
		s.WriteString("\n")
		s.WriteString(labelStyle.Render("Landed") + resultStyle.Render(m.landed.Label) + "\n")
		s.WriteString(labelStyle.Render("Drawn") + resultStyle.Render(fmt.Sprintf("%s (x%d)", m.drawn.Label, m.drawn.Payout)) + "\n")
	}

	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Charge/Release R:Reset Q:Quit"))

	canvasView := canvasStyle.Render(m.canvas.String())
	statsView := statsStyle.Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
}

func (m Model) status() string {
	switch m.mode {
	case modeCharging:
		return "CHARGING"
	case modeSpinning:
		return "SPINNING"
	case modeStopped:
		return "STOPPED"
	default:
		return "READY"
	}
}

func powerBar(p float64) string {
	const width = 20
	filled := int(p * width)
	return "[" + strings.Repeat("=", filled) + strings.Repeat("-", width-filled) + fmt.Sprintf("] %3.0f%%", p*100)
}
