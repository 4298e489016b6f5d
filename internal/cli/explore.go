package cli

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/infinicanvas/pkg/canvas"
	"github.com/matzehuels/infinicanvas/pkg/core/geom"
	"github.com/matzehuels/infinicanvas/pkg/core/viewport"
	"github.com/matzehuels/infinicanvas/pkg/core/visibility"
	"github.com/matzehuels/infinicanvas/pkg/scene"
)

// Terminal geometry: one character cell covers cellW x cellH render pixels.
const (
	cellW = 8.0
	cellH = 16.0

	panStep     = 64.0 // render pixels per arrow key
	zoomStep    = 1.25
	flingSpeed  = 2400.0 // render px/s for the f key
	frameRate   = 30
	statusLines = 2
)

// Explorer styles
var (
	exploreItemStyle    = lipgloss.NewStyle().Foreground(colorWhite)
	exploreAltStyle     = lipgloss.NewStyle().Foreground(colorGray)
	exploreUnsizedStyle = lipgloss.NewStyle().Foreground(colorYellow)
	exploreStatusStyle  = lipgloss.NewStyle().Foreground(colorDim)
)

// exploreCommand creates the explore command, an interactive terminal view of
// a canvas.
func (c *CLI) exploreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "explore [scene]",
		Short: "Pan, zoom and fling a canvas in the terminal",
		Long: `Explore draws the visible items of a scene in the terminal.

Keys: arrows pan, +/- zoom, f flings right, F flings left, space stops a fling,
enter brings the selected item to the front, q quits. The mouse wheel zooms at
the pointer; dragging empty space pans and flings on release, dragging an item
brings it to the front and moves it.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeScenes(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := c.loadWorkspace(ctx, sceneArg(args), nil)
			if err != nil {
				return err
			}
			m := newExploreModel(ctx, ws.canvas, ws.model)
			defer m.close()

			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx)).Run()
			return err
		},
	}
}

// =============================================================================
// exploreModel - Interactive canvas view
// =============================================================================

type (
	// frameMsg redraws while a fling runs.
	frameMsg struct{}
	// flingDoneMsg reports the end of fling gen.
	flingDoneMsg struct {
		gen int
		err error
	}
)

// exploreModel is the bubbletea model for the explore command.
type exploreModel struct {
	ctx    context.Context
	canvas *canvas.Canvas
	scene  *scene.Model

	pass     *visibility.Pass
	err      error
	cols     int
	rows     int
	selected any
	flinging bool
	flingGen int

	// pointer drag state
	drag     *viewport.Drag
	dragItem any
	dragAt   geom.Point
	dragTime time.Time
	velocity geom.Point

	dirty       *atomic.Bool
	unsubscribe func()
}

func newExploreModel(ctx context.Context, c *canvas.Canvas, m *scene.Model) *exploreModel {
	em := &exploreModel{ctx: ctx, canvas: c, scene: m, dirty: &atomic.Bool{}}
	// Listeners run inside viewport updates, so this one only flags a redraw.
	em.unsubscribe = c.State().OnChange(func(geom.Rect) { em.dirty.Store(true) })
	em.relayout()
	return em
}

func (m *exploreModel) close() {
	m.unsubscribe()
	m.canvas.State().CancelFling()
}

func (m *exploreModel) relayout() {
	m.dirty.Store(false)
	m.pass, m.err = m.scene.Frame(m.ctx, m.canvas)
}

func (m *exploreModel) Init() tea.Cmd {
	return nil
}

func (m *exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	st := m.canvas.State()
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, max(msg.Height-statusLines, 1)
		st.Resize(geom.Sz(float64(m.cols)*cellW, float64(m.rows)*cellH))

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			st.Pan(geom.Pt(panStep, 0))
		case "right", "l":
			st.Pan(geom.Pt(-panStep, 0))
		case "up", "k":
			st.Pan(geom.Pt(0, panStep))
		case "down", "j":
			st.Pan(geom.Pt(0, -panStep))
		case "+", "=":
			st.AnchorZoom(m.center(), zoomStep)
		case "-", "_":
			st.AnchorZoom(m.center(), 1/zoomStep)
		case "f":
			cmd = m.fling(geom.Pt(-flingSpeed, 0))
		case "F":
			cmd = m.fling(geom.Pt(flingSpeed, 0))
		case " ":
			st.CancelFling()
		case "enter":
			if m.selected != nil {
				m.scene.Touch(m.selected, time.Now().UnixNano())
			}
		}

	case tea.MouseMsg:
		cmd = m.mouse(msg)

	case frameMsg:
		if !m.flinging {
			return m, nil
		}
		if m.dirty.Load() {
			m.relayout()
		}
		return m, frameTick()

	case flingDoneMsg:
		if msg.gen != m.flingGen {
			return m, nil
		}
		m.flinging = false
		if msg.err != nil && m.ctx.Err() == nil {
			m.err = msg.err
		}
	}

	if !m.flinging {
		m.relayout()
	}
	return m, cmd
}

// mouse handles wheel zoom, item selection and pointer drags.
func (m *exploreModel) mouse(msg tea.MouseMsg) tea.Cmd {
	st := m.canvas.State()
	at := geom.Pt((float64(msg.X)+0.5)*cellW, (float64(msg.Y)+0.5)*cellH)

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		st.AnchorZoom(at, viewport.WheelScale(-10))
	case msg.Button == tea.MouseButtonWheelDown:
		st.AnchorZoom(at, viewport.WheelScale(10))

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.dragAt, m.dragTime, m.velocity = at, time.Now(), geom.Point{}
		m.selected, m.dragItem = nil, nil
		if m.pass == nil {
			return nil
		}
		if v, ok := m.pass.HitTest(at); ok {
			m.selected, m.dragItem = v.Key, v.Key
			m.scene.Touch(v.Key, time.Now().UnixNano())
			return nil
		}
		d, err := st.BeginDrag(m.ctx)
		if err != nil {
			m.err = err
			return nil
		}
		m.drag = d

	case msg.Action == tea.MouseActionMotion:
		delta := at.Sub(m.dragAt)
		now := time.Now()
		if dt := now.Sub(m.dragTime).Seconds(); dt > 0 {
			m.velocity = delta.Div(dt)
		}
		m.dragAt, m.dragTime = at, now
		switch {
		case m.dragItem != nil:
			m.scene.Drag(m.dragItem, delta, st.Scale())
		case m.drag != nil:
			m.drag.Move(delta)
		}

	case msg.Action == tea.MouseActionRelease:
		m.dragItem = nil
		if m.drag == nil {
			return nil
		}
		d, v := m.drag, m.velocity
		m.drag = nil
		if time.Since(m.dragTime) > 100*time.Millisecond {
			v = geom.Point{}
		}
		return m.animate(func() error { return d.End(m.ctx, v) })
	}
	return nil
}

// fling flings the viewport with velocity in render px/s.
func (m *exploreModel) fling(velocity geom.Point) tea.Cmd {
	st := m.canvas.State()
	return m.animate(func() error { return st.Fling(m.ctx, velocity) })
}

// animate runs a blocking motion in the background and ticks frames until it
// ends. Only the newest motion's end stops the ticks.
func (m *exploreModel) animate(run func() error) tea.Cmd {
	m.flingGen++
	gen := m.flingGen
	cmds := []tea.Cmd{func() tea.Msg { return flingDoneMsg{gen: gen, err: run()} }}
	if !m.flinging {
		cmds = append(cmds, frameTick())
	}
	m.flinging = true
	return tea.Batch(cmds...)
}

func frameTick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(time.Time) tea.Msg { return frameMsg{} })
}

func (m *exploreModel) center() geom.Point {
	size := m.canvas.State().Size()
	return geom.Pt(size.Width/2, size.Height/2)
}

func (m *exploreModel) View() string {
	if m.pass == nil {
		if m.err != nil {
			return styleIconError.Render(iconError) + " " + m.err.Error() + "\n"
		}
		return ""
	}

	owner := make([][]int, m.rows)
	for r := range owner {
		owner[r] = make([]int, m.cols)
		for c := range owner[r] {
			owner[r][c] = -1
		}
	}
	for i, v := range m.pass.Items {
		c0, r0, c1, r1 := m.cellBounds(v.RenderRect)
		for r := r0; r < r1; r++ {
			for c := c0; c < c1; c++ {
				owner[r][c] = i
			}
		}
	}

	var b strings.Builder
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; {
			i := owner[r][c]
			start := c
			for c < m.cols && owner[r][c] == i {
				c++
			}
			b.WriteString(m.drawRun(i, r, start, c))
		}
		b.WriteString("\n")
	}
	b.WriteString(m.status())
	return b.String()
}

// cellBounds converts a render rect to clamped character cell bounds.
func (m *exploreModel) cellBounds(r geom.Rect) (c0, r0, c1, r1 int) {
	clamp := func(v float64, hi int) int {
		return int(math.Max(0, math.Min(float64(hi), v)))
	}
	c0 = clamp(math.Floor(r.Left/cellW), m.cols)
	r0 = clamp(math.Floor(r.Top/cellH), m.rows)
	c1 = clamp(math.Ceil(r.Right/cellW), m.cols)
	r1 = clamp(math.Ceil(r.Bottom/cellH), m.rows)
	return c0, r0, c1, r1
}

// drawRun draws columns [from, to) of row r, all owned by item i.
func (m *exploreModel) drawRun(i, r, from, to int) string {
	if i < 0 {
		return strings.Repeat(" ", to-from)
	}
	v := m.pass.Items[i]
	c0, r0, c1, r1 := m.cellBounds(v.RenderRect)

	runes := make([]rune, 0, to-from)
	label := []rune(scene.Label(v))
	for c := from; c < to; c++ {
		switch {
		case (r == r0 || r == r1-1) && (c == c0 || c == c1-1):
			runes = append(runes, '+')
		case r == r0 || r == r1-1:
			runes = append(runes, '-')
		case c == c0 || c == c1-1:
			runes = append(runes, '|')
		case r == r0+1 && c-c0-1 < len(label):
			runes = append(runes, label[c-c0-1])
		default:
			runes = append(runes, ' ')
		}
	}

	style := exploreItemStyle
	switch {
	case v.Key == m.selected:
		style = StyleSelected
	case v.Unbounded:
		style = exploreUnsizedStyle
	case i%2 == 1:
		style = exploreAltStyle
	}
	return style.Render(string(runes))
}

func (m *exploreModel) status() string {
	st := m.canvas.State()
	t := st.Transform()
	line := fmt.Sprintf("scale %.2f · offset %.0f,%.0f · %s · %d/%d visible",
		t.Scale, t.Translation.X, t.Translation.Y, st.Motion(), len(m.pass.Items), m.pass.Registered)
	if m.selected != nil {
		if v, ok := m.pass.Find(m.selected); ok {
			line += " · " + StyleSelected.Render(scene.Label(v))
		}
	}
	if m.err != nil {
		line += " · " + styleIconError.Render(m.err.Error())
	}
	return exploreStatusStyle.Render(line) + "\n" + StyleDim.Render("arrows pan  +/- zoom  f/F fling  space stop  q quit")
}
