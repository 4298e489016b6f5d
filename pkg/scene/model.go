package scene

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/matzehuels/infinicanvas/pkg/canvas"
	"github.com/matzehuels/infinicanvas/pkg/core/geom"
	"github.com/matzehuels/infinicanvas/pkg/core/item"
	"github.com/matzehuels/infinicanvas/pkg/core/registry"
	"github.com/matzehuels/infinicanvas/pkg/core/visibility"
)

// GridKey is the registry key of generated grid item i.
type GridKey int

func (k GridKey) String() string { return fmt.Sprintf("grid-%d", int(k)) }

// Node is the live state of one scene item on a canvas.
type Node struct {
	Key     any
	Label   string
	Measure item.Measure
	Scale   item.Scale
	Cell    *item.Cell
}

// Model holds the mutable layouts of a scene's items. It plays the part of
// the embedding surface's item storage: layouts persist across passes and
// are moved by drags and measurement reports.
type Model struct {
	Nodes []*Node // explicit items, in file order
	Grid  []*Node // generated items

	byKey map[any]*Node
}

// NewModel creates the live state of s.
func NewModel(s *Scene) *Model {
	m := &Model{byKey: make(map[any]*Node)}
	for i, it := range s.Items {
		label := it.Label
		if label == "" && it.ID != "" {
			label = it.ID
		}
		n := &Node{
			Key:     it.Key(i),
			Label:   label,
			Measure: it.MeasurePolicy(),
			Scale:   it.ScalePolicy(),
			Cell:    item.NewCell(it.Layout()),
		}
		m.Nodes = append(m.Nodes, n)
		m.byKey[n.Key] = n
	}
	if g := s.Grid; g != nil {
		for i := 0; i < g.Count; i++ {
			n := &Node{
				Key:   GridKey(i),
				Label: fmt.Sprintf("#%d", i),
				Cell:  item.NewCell(item.Sized(g.Rect(i))),
			}
			m.Grid = append(m.Grid, n)
			m.byKey[n.Key] = n
		}
	}
	return m
}

// Len returns the number of items.
func (m *Model) Len() int {
	return len(m.Nodes) + len(m.Grid)
}

// Node returns the item registered under key.
func (m *Model) Node(key any) (*Node, bool) {
	n, ok := m.byKey[key]
	return n, ok
}

// Register declares every item of m into r: explicit items as a keyed list,
// then the grid by count.
func Register(r *registry.Registry, m *Model) error {
	err := registry.Items(r, m.Nodes, registry.ListSpec[*Node]{
		Key:     func(n *Node) any { return n.Key },
		Layout:  func(n *Node) item.Accessor { return n.Cell },
		Measure: func(n *Node) item.Measure { return n.Measure },
		Scale:   func(n *Node) item.Scale { return n.Scale },
		Content: func(n *Node) any { return n },
	})
	if err != nil {
		return err
	}
	return r.Count(len(m.Grid), registry.CountSpec{
		Key:     func(i int) any { return m.Grid[i].Key },
		Layout:  func(i int) item.Accessor { return m.Grid[i].Cell },
		Content: func(i int) any { return m.Grid[i] },
	})
}

// Touch stamps the item with now, bringing it to the top of the paint order.
func (m *Model) Touch(key any, now int64) bool {
	n, ok := m.byKey[key]
	if !ok {
		return false
	}
	n.Cell.Touch(now)
	return true
}

// Drag moves the item by a drag offset in its content coordinates at the
// given canvas scale.
func (m *Model) Drag(key any, offset geom.Point, scale float64) bool {
	n, ok := m.byKey[key]
	if !ok {
		return false
	}
	n.Cell.Update(func(l *item.Layout) {
		*l = item.DragOffset(*l, offset, scale, n.Scale)
	})
	return true
}

// Label metrics used to size wrap-content items, in logic units.
const (
	charWidth   = 8.0
	lineHeight  = 24.0
	textPadding = 16.0
)

// ContentSize returns the logic size a label needs.
func ContentSize(label string) geom.Size {
	return geom.Sz(float64(utf8.RuneCountInString(label))*charWidth+textPadding, lineHeight)
}

// Measure reports a content size for every unmeasured item of p, sized from
// its label, and returns how many were recorded. ScaleInMeasure content is
// reported in render pixels at the pass scale, ScaleInRender content in
// logic units.
func (m *Model) Measure(p *visibility.Pass) int {
	n := 0
	for _, v := range p.Items {
		if !v.Unbounded {
			continue
		}
		node, ok := v.Content.(*Node)
		if !ok {
			continue
		}
		size := ContentSize(node.Label)
		if v.Scale == item.ScaleInMeasure {
			size = size.Mul(p.Transform.Scale)
		}
		if p.ReportMeasured(v.Index, size) {
			n++
		}
	}
	return n
}

// Frame runs a layout pass of m on c. When the pass holds unmeasured items
// they are measured and a second pass is returned with their final bounds.
func (m *Model) Frame(ctx context.Context, c *canvas.Canvas) (*visibility.Pass, error) {
	build := func(r *registry.Registry) error { return Register(r, m) }
	pass, err := c.Layout(ctx, build)
	if err != nil {
		return nil, err
	}
	if m.Measure(pass) == 0 {
		return pass, nil
	}
	return c.Layout(ctx, build)
}

// Label returns the label of a visible scene item, or its key.
func Label(v visibility.VisibleItem) string {
	if n, ok := v.Content.(*Node); ok && n.Label != "" {
		return n.Label
	}
	return fmt.Sprint(v.Key)
}

// ParseKey maps the text form of a key back to the key: "grid-N" names grid
// item N, anything else an explicit item.
func ParseKey(s string) any {
	var n int
	if _, err := fmt.Sscanf(s, "grid-%d", &n); err == nil && GridKey(n).String() == s {
		return GridKey(n)
	}
	return s
}
