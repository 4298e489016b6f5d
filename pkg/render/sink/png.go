package sink

import (
	"bytes"
	"fmt"
	"math"

	"github.com/gogpu/gg"

	"github.com/matzehuels/infinicanvas/pkg/core/geom"
	"github.com/matzehuels/infinicanvas/pkg/core/visibility"
)

// RenderPNG rasterizes the pass at the given pixel ratio. A ratio of 2.0
// produces a 2x resolution image; non-positive ratios draw at 1x. Labels are
// drawn only when a font is set with WithFont.
func RenderPNG(p *visibility.Pass, ratio float64, opts ...Option) ([]byte, error) {
	o := newOptions(opts...)
	if !(ratio > 0) || math.IsInf(ratio, 0) {
		ratio = 1
	}
	size := frame(p)
	w, h := int(math.Ceil(size.Width*ratio)), int(math.Ceil(size.Height*ratio))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("render png: empty viewport %vx%v", size.Width, size.Height)
	}

	dc := gg.NewContext(w, h)
	defer dc.Close()
	dc.ClearWithColor(gg.Hex(o.background))
	dc.Scale(ratio, ratio)

	dc.SetLineWidth(1)
	dc.SetDash(2, 4)
	for _, r := range o.cellRects(p) {
		if err := strokeRect(dc, r, cellColor); err != nil {
			return nil, err
		}
	}
	dc.SetDash()

	for _, v := range p.Items {
		r := drawRect(p, v)
		if v.Unbounded {
			dc.SetDash(6, 3)
			if err := strokeRect(dc, r, unboundedColor); err != nil {
				return nil, err
			}
			dc.SetDash()
			continue
		}
		dc.DrawRoundedRectangle(r.Left, r.Top, r.Width(), r.Height(), 4)
		dc.SetHexColor(fillColor(v))
		if err := dc.Fill(); err != nil {
			return nil, fmt.Errorf("render png: fill item %d: %w", v.Index, err)
		}
		dc.DrawRoundedRectangle(r.Left, r.Top, r.Width(), r.Height(), 4)
		dc.SetHexColor(strokeColor)
		if err := dc.Stroke(); err != nil {
			return nil, fmt.Errorf("render png: stroke item %d: %w", v.Index, err)
		}
	}

	if o.font != nil {
		// Text is drawn in device pixels, outside the context transform.
		dc.SetFont(o.font.Face(labelSize * ratio))
		dc.SetHexColor(strokeColor)
		for _, v := range p.Items {
			if v.Unbounded {
				continue
			}
			at := labelAnchor(drawRect(p, v))
			dc.DrawString(o.label(v), at.X*ratio, at.Y*ratio)
		}
	}

	if o.overscan {
		dc.SetDash(8, 4)
		if err := strokeRect(dc, p.Transform.LogicRectToRender(p.Expanded), overscanColor); err != nil {
			return nil, err
		}
		dc.SetDash()
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("render png: encode: %w", err)
	}
	return buf.Bytes(), nil
}

func strokeRect(dc *gg.Context, r geom.Rect, hex string) error {
	dc.DrawRectangle(r.Left, r.Top, r.Width(), r.Height())
	dc.SetHexColor(hex)
	if err := dc.Stroke(); err != nil {
		return fmt.Errorf("render png: stroke: %w", err)
	}
	return nil
}
