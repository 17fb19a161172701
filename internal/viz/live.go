package viz

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/ionosim/internal/dynamo"
	"github.com/san-kum/ionosim/internal/ionocraft"
)

const (
	canvasWidth     = 48
	canvasHeight    = 18
	historyCapacity = 600
	trailCapacity   = 300
	frameRate       = 30
	minViewSpan     = 0.1
)

// Tunable is implemented by controllers whose gains can be adjusted while
// the rollout runs.
type Tunable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64)
}

type TickMsg time.Time

type point struct{ x, y float64 }

// Live steps a vehicle in real time and renders it.
type Live struct {
	vehicle       dynamo.VehicleDynamics
	controller    dynamo.Controller
	title         string
	inputNames    []string
	initial       dynamo.State
	state         dynamo.State
	u             dynamo.Control
	t             float64
	steps         int
	stepsPerFrame int
	running       bool
	err           error
	canvas        *Canvas
	view          Viewport
	trail         []point
	altitude      []float64
	paramKeys     []string
	initialParams map[string]float64
	selected      int
}

// NewLive builds a viewer. inputNames labels the control vector.
func NewLive(vehicle dynamo.VehicleDynamics, ctrl dynamo.Controller, x0 dynamo.State, title string, inputNames []string) Live {
	perFrame := int(math.Round(1 / (frameRate * vehicle.Timestep())))
	if perFrame < 1 {
		perFrame = 1
	}

	m := Live{
		vehicle:       vehicle,
		controller:    ctrl,
		title:         title,
		inputNames:    inputNames,
		initial:       x0.Clone(),
		stepsPerFrame: perFrame,
		canvas:        NewCanvas(canvasWidth, canvasHeight),
		initialParams: make(map[string]float64),
	}
	if t, ok := ctrl.(Tunable); ok {
		for k, v := range t.GetParams() {
			m.paramKeys = append(m.paramKeys, k)
			m.initialParams[k] = v
		}
		sort.Strings(m.paramKeys)
	}
	m.reset()
	return m
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Live) Init() tea.Cmd {
	return tick()
}

func (m Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if m.err == nil {
				m.running = !m.running
			}
		case "r":
			m.reset()
		case "tab":
			if len(m.paramKeys) > 0 {
				m.selected = (m.selected + 1) % len(m.paramKeys)
			}
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		}
	case TickMsg:
		if m.running {
			for i := 0; i < m.stepsPerFrame && m.running; i++ {
				m.step()
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m *Live) step() {
	u := m.controller.Compute(m.state, m.t)
	next, err := m.vehicle.Step(m.state, u)
	if err == nil && !next.IsValid() {
		err = dynamo.ErrInvalidState
	}
	if err != nil {
		m.err = err
		m.running = false
		return
	}

	m.state, m.u = next, u
	m.steps++
	m.t = float64(m.steps) * m.vehicle.Timestep()
	m.record()
}

func (m *Live) record() {
	x, alt := m.state[ionocraft.X], -m.state[ionocraft.Z]

	m.altitude = append(m.altitude, alt)
	if len(m.altitude) > historyCapacity {
		m.altitude = m.altitude[1:]
	}
	m.trail = append(m.trail, point{x, alt})
	if len(m.trail) > trailCapacity {
		m.trail = m.trail[1:]
	}
	m.view.Include(x, alt)
}

func (m *Live) adjustParam(factor float64) {
	t, ok := m.controller.(Tunable)
	if !ok || len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	t.SetParam(key, t.GetParams()[key]*factor)
}

// reset restores the initial state and the controller gains.
func (m *Live) reset() {
	m.state = m.initial.Clone()
	m.u = make(dynamo.Control, m.vehicle.ControlDim())
	m.t, m.steps = 0, 0
	m.err = nil
	m.running = true
	m.trail = m.trail[:0]
	m.altitude = m.altitude[:0]
	m.view = NewViewport(minViewSpan)
	if t, ok := m.controller.(Tunable); ok {
		for k, v := range m.initialParams {
			t.SetParam(k, v)
		}
	}
	m.record()
}

func (m Live) State() dynamo.State { return m.state.Clone() }
func (m Live) Time() float64       { return m.t }
func (m Live) Running() bool       { return m.running }
func (m Live) Err() error          { return m.err }

// draw renders the side view: X to the right, altitude up, the body as a
// bar tilted by pitch.
func (m Live) draw() {
	m.canvas.Clear()

	w, _ := m.canvas.Dots()
	_, gy := m.view.Project(m.canvas, 0, 0)
	for x := 0; x < w; x += 3 {
		m.canvas.Set(x, gy)
	}

	for _, p := range m.trail {
		px, py := m.view.Project(m.canvas, p.x, p.y)
		m.canvas.Set(px, py)
	}

	x, alt, pitch := m.state[ionocraft.X], -m.state[ionocraft.Z], m.state[ionocraft.Pitch]
	if !m.state.IsValid() {
		return
	}
	cx, cy := m.view.Project(m.canvas, x, alt)
	arm := 6.0
	dx, dy := int(math.Round(arm*math.Cos(pitch))), int(math.Round(arm*math.Sin(pitch)))
	m.canvas.Line(cx-dx, cy+dy, cx+dx, cy-dy)
}

func (m Live) status() string {
	switch {
	case m.err != nil:
		return statusFailed.Render("FAILED: " + m.err.Error())
	case m.running:
		return statusRunning.Render("RUNNING")
	default:
		return statusPaused.Render("PAUSED")
	}
}

func (m Live) View() string {
	m.draw()

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(m.status() + "\n\n")

	s.WriteString(row("time", fmt.Sprintf("%.3fs (%d steps)", m.t, m.steps)))
	s.WriteString(row("position", fmt.Sprintf("%+.4f %+.4f %+.4f", m.state[ionocraft.X], m.state[ionocraft.Y], m.state[ionocraft.Z])))
	s.WriteString(row("velocity", fmt.Sprintf("%+.4f %+.4f %+.4f", m.state[ionocraft.VX], m.state[ionocraft.VY], m.state[ionocraft.VZ])))
	s.WriteString(row("ypr (deg)", fmt.Sprintf("%+.2f %+.2f %+.2f",
		degrees(m.state[ionocraft.Yaw]), degrees(m.state[ionocraft.Pitch]), degrees(m.state[ionocraft.Roll]))))
	s.WriteString(row("omega", fmt.Sprintf("%+.3f %+.3f %+.3f", m.state[ionocraft.WX], m.state[ionocraft.WY], m.state[ionocraft.WZ])))
	s.WriteString(row("accel", fmt.Sprintf("%+.3f %+.3f %+.3f", m.state[ionocraft.AX], m.state[ionocraft.AY], m.state[ionocraft.AZ])))

	s.WriteString("\nINPUT\n")
	for i, v := range m.u {
		name := fmt.Sprintf("u%d", i)
		if i < len(m.inputNames) {
			name = m.inputNames[i]
		}
		s.WriteString(row(name, fmt.Sprintf("%.4e", v)))
	}

	if len(m.altitude) > 1 {
		chart := asciigraph.Plot(m.altitude, asciigraph.Height(5), asciigraph.Width(36), asciigraph.Caption("altitude (-Z)"))
		s.WriteString("\n" + graphStyle.Render(chart) + "\n")
	}

	if t, ok := m.controller.(Tunable); ok && len(m.paramKeys) > 0 {
		s.WriteString("\nGAINS\n")
		params := t.GetParams()
		for i, k := range m.paramKeys {
			line := fmt.Sprintf("%-8s %.4e", k, params[k])
			if i == m.selected {
				s.WriteString(activeParamStyle.Render("> "+line) + "\n")
			} else {
				s.WriteString("  " + labelStyle.Render(line) + "\n")
			}
		}
	}

	s.WriteString(helpStyle.Render("SPC:pause  R:reset  Q:quit  TAB/↑↓:gains"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasStyle.Render(m.canvas.String()), statsStyle.Render(s.String()))
}

func degrees(rad float64) float64 { return rad * 180 / math.Pi }

// Run blocks until the viewer exits.
func Run(m Live) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
