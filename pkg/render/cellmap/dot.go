package cellmap

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/infinicanvas/pkg/core/spatial"
	"github.com/matzehuels/infinicanvas/pkg/render"
)

// Options configures cell diagram generation.
type Options struct {
	// CellSize adds the logic bounds of each cell to its label.
	CellSize float64
	// Detailed lists the item indices of each cell.
	Detailed bool
	// MaxItems caps the listed indices per cell. Zero means 8.
	MaxItems int
}

// ToDOT converts index cells, as returned by [spatial.Index.Buckets], to
// Graphviz DOT source.
func ToDOT(cells []spatial.Cell, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowhead=none, color=grey];\n")
	buf.WriteString("  ranksep=0.3;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	occupied := make(map[[2]int]bool, len(cells))
	for _, c := range cells {
		occupied[[2]int{c.X, c.Y}] = true
	}

	for i := 0; i < len(cells); {
		row := cells[i].Y
		var ids []string
		for ; i < len(cells) && cells[i].Y == row; i++ {
			c := cells[i]
			fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(c.X, c.Y), strings.Join(fmtAttrs(c, opts), ", "))
			ids = append(ids, strconv.Quote(nodeID(c.X, c.Y)))
		}
		fmt.Fprintf(&buf, "  { rank=same; %s; }\n", strings.Join(ids, "; "))
		for j := 1; j < len(ids); j++ {
			fmt.Fprintf(&buf, "  %s -> %s [style=invis];\n", ids[j-1], ids[j])
		}
	}

	buf.WriteString("\n")
	for _, c := range cells {
		if occupied[[2]int{c.X, c.Y + 1}] {
			fmt.Fprintf(&buf, "  %q -> %q;\n", nodeID(c.X, c.Y), nodeID(c.X, c.Y+1))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(x, y int) string {
	return fmt.Sprintf("%d,%d", x, y)
}

func fmtLabel(c spatial.Cell, opts Options) string {
	parts := []string{fmt.Sprintf("(%d, %d)", c.X, c.Y), fmt.Sprintf("%d items", len(c.Items))}
	if opts.CellSize > 0 {
		s := opts.CellSize
		parts = append(parts, fmt.Sprintf("%g,%g .. %g,%g", float64(c.X)*s, float64(c.Y)*s, float64(c.X+1)*s, float64(c.Y+1)*s))
	}
	if opts.Detailed {
		limit := opts.MaxItems
		if limit <= 0 {
			limit = 8
		}
		items := make([]string, 0, limit)
		for i, idx := range c.Items {
			if i == limit {
				items = append(items, "...")
				break
			}
			items = append(items, strconv.Itoa(idx))
		}
		parts = append(parts, strings.Join(items, " "))
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(c spatial.Cell, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(c, opts))}
	if len(c.Items) > 1 {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", shade(len(c.Items))))
	}
	return attrs
}

// shade darkens with the number of items in a cell.
func shade(n int) string {
	switch {
	case n >= 16:
		return "#f4a261"
	case n >= 4:
		return "#ffd6a5"
	default:
		return "#fdf0d5"
	}
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}
