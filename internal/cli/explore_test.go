package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/infinicanvas/pkg/canvas"
	"github.com/matzehuels/infinicanvas/pkg/core/geom"
	"github.com/matzehuels/infinicanvas/pkg/core/viewport"
	"github.com/matzehuels/infinicanvas/pkg/scene"
)

func newTestExplorer(t *testing.T) *exploreModel {
	t.Helper()
	s := &scene.Scene{Items: []scene.Item{
		{ID: "note", X: 16, Y: 32, Width: 160, Height: 64, Label: "Note"},
	}}
	c := canvas.New(canvas.Config{Viewport: viewport.Config{Clock: viewport.NewManualClock(0)}}, nil)
	m := newExploreModel(context.Background(), c, scene.NewModel(s))
	t.Cleanup(m.close)

	m.Update(tea.WindowSizeMsg{Width: 80, Height: 26})
	return m
}

func TestExploreResize(t *testing.T) {
	m := newTestExplorer(t)
	if got := m.canvas.State().Size(); got != geom.Sz(80*cellW, 24*cellH) {
		t.Errorf("viewport size = %v", got)
	}
	if len(m.pass.Items) != 1 {
		t.Fatalf("visible = %d, want 1", len(m.pass.Items))
	}

	view := m.View()
	if !strings.Contains(view, "Note") {
		t.Errorf("View() does not draw the item label:\n%s", view)
	}
	if lines := strings.Count(view, "\n"); lines != 25 {
		t.Errorf("View() has %d lines, want 25", lines)
	}
}

func TestExploreKeys(t *testing.T) {
	m := newTestExplorer(t)
	st := m.canvas.State()

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if got := st.Translation(); got != geom.Pt(-panStep, 0) {
		t.Errorf("translation after right = %v", got)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	if got := st.Scale(); got != zoomStep {
		t.Errorf("scale after + = %v, want %v", got, zoomStep)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestExploreMouse(t *testing.T) {
	m := newTestExplorer(t)
	st := m.canvas.State()

	// Cell (4, 3) covers render pixels 32..40 x 48..64, inside the note.
	m.Update(tea.MouseMsg{X: 4, Y: 3, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if m.selected != "note" {
		t.Fatalf("selected = %v, want note", m.selected)
	}
	m.Update(tea.MouseMsg{X: 6, Y: 3, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m.Update(tea.MouseMsg{X: 6, Y: 3, Action: tea.MouseActionRelease})

	n, _ := m.scene.Node("note")
	if got := n.Cell.Get().Rect; got != geom.R(32, 32, 192, 96) {
		t.Errorf("note after drag = %v", got)
	}
	if st.Translation() != (geom.Point{}) {
		t.Errorf("item drag moved the viewport to %v", st.Translation())
	}

	m.Update(tea.MouseMsg{X: 40, Y: 12, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	if got := st.Scale(); got != viewport.WheelScale(-10) {
		t.Errorf("scale after wheel = %v", got)
	}
	if m.selected != "note" {
		t.Errorf("wheel changed the selection to %v", m.selected)
	}
}

func TestExplorePanDrag(t *testing.T) {
	m := newTestExplorer(t)
	st := m.canvas.State()

	m.Update(tea.MouseMsg{X: 60, Y: 20, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if m.selected != nil || m.drag == nil {
		t.Fatalf("press on empty space: selected = %v, drag = %v", m.selected, m.drag)
	}
	m.Update(tea.MouseMsg{X: 58, Y: 20, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	if got := st.Translation(); got != geom.Pt(-2*cellW, 0) {
		t.Errorf("translation during drag = %v", got)
	}
	if st.Motion() != viewport.Panning {
		t.Errorf("motion = %v, want panning", st.Motion())
	}
}

func TestExploreDragToFront(t *testing.T) {
	s := &scene.Scene{Items: []scene.Item{
		{ID: "note", X: 16, Y: 32, Width: 160, Height: 64, Label: "Note"},
		{ID: "card", X: 100, Y: 40, Width: 160, Height: 64, Label: "Card"},
	}}
	c := canvas.New(canvas.Config{Viewport: viewport.Config{Clock: viewport.NewManualClock(0)}}, nil)
	m := newExploreModel(context.Background(), c, scene.NewModel(s))
	t.Cleanup(m.close)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 26})

	top := func() any { return m.pass.Items[len(m.pass.Items)-1].Key }
	if top() != "card" {
		t.Fatalf("topmost before drag = %v, want card", top())
	}

	// Cell (4, 3) is covered by the note only.
	m.Update(tea.MouseMsg{X: 4, Y: 3, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if top() != "note" {
		t.Errorf("topmost after press = %v, want note", top())
	}
	m.Update(tea.MouseMsg{X: 4, Y: 3, Action: tea.MouseActionRelease})
	if top() != "note" {
		t.Errorf("topmost after release = %v, want note", top())
	}
}
