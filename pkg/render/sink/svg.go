package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/infinicanvas/pkg/core/geom"
	"github.com/matzehuels/infinicanvas/pkg/core/visibility"
)

const itemInteractionCSS = `
    .item rect { transition: stroke-width 0.2s ease; }
    .item:hover rect { stroke-width: 3; }
    .item text { font-family: monospace; font-size: 12px; pointer-events: none; }`

// RenderSVG draws the pass as an SVG document sized to the viewport.
func RenderSVG(p *visibility.Pass, opts ...Option) []byte {
	o := newOptions(opts...)
	size := frame(p)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		size.Width, size.Height, size.Width, size.Height)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", itemInteractionCSS)
	fmt.Fprintf(&buf, `  <rect x="0" y="0" width="%.1f" height="%.1f" fill="%s"/>`+"\n", size.Width, size.Height, o.background)

	if cells := o.cellRects(p); len(cells) > 0 {
		buf.WriteString(`  <g class="cells">` + "\n")
		for _, r := range cells {
			fmt.Fprintf(&buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="%s" stroke-dasharray="2,4"/>`+"\n",
				r.Left, r.Top, r.Width(), r.Height(), cellColor)
		}
		buf.WriteString("  </g>\n")
	}

	for _, v := range p.Items {
		renderItemSVG(&buf, p, v, o)
	}

	if o.overscan {
		r := p.Transform.LogicRectToRender(p.Expanded)
		fmt.Fprintf(&buf, `  <rect class="overscan" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="%s" stroke-dasharray="8,4"/>`+"\n",
			r.Left, r.Top, r.Width(), r.Height(), overscanColor)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderItemSVG(buf *bytes.Buffer, p *visibility.Pass, v visibility.VisibleItem, o options) {
	r := drawRect(p, v)
	fmt.Fprintf(buf, `  <g class="item" data-index="%d" data-key="%s">`+"\n", v.Index, escape(fmt.Sprint(v.Key)))
	if v.Unbounded {
		fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="%s" stroke-dasharray="6,3"/>`+"\n",
			r.Left, r.Top, r.Width(), r.Height(), unboundedColor)
	} else {
		fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="4" fill="%s" stroke="%s"/>`+"\n",
			r.Left, r.Top, r.Width(), r.Height(), fillColor(v), strokeColor)
	}
	if label := o.label(v); label != "" {
		at := labelAnchor(r)
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f">%s</text>`+"\n", at.X, at.Y, escape(label))
	}
	buf.WriteString("  </g>\n")
}

func labelAnchor(r geom.Rect) geom.Point {
	return geom.Pt(r.Left+6, r.Top+16)
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
