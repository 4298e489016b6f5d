package sink

import (
	"bytes"
	"encoding/json"
	"image/png"
	"strings"
	"testing"

	"github.com/matzehuels/infinicanvas/pkg/core/geom"
	"github.com/matzehuels/infinicanvas/pkg/core/item"
	"github.com/matzehuels/infinicanvas/pkg/core/registry"
	"github.com/matzehuels/infinicanvas/pkg/core/transform"
	"github.com/matzehuels/infinicanvas/pkg/core/viewport"
	"github.com/matzehuels/infinicanvas/pkg/core/visibility"
	"github.com/matzehuels/infinicanvas/pkg/fonts"
)

// testPass resolves two sized items, one unmeasured wrap item and one item
// outside a 300x200 viewport at scale 1.
func testPass(t *testing.T, overscan float64) (*visibility.Pass, *visibility.Resolver) {
	t.Helper()
	layouts := []item.Layout{
		item.Sized(geom.R(10, 10, 110, 60)),
		item.Sized(geom.R(150, 40, 250, 90)),
		item.At(geom.Pt(50, 120)),
		item.Sized(geom.R(1000, 1000, 1100, 1100)),
	}
	reg := registry.New()
	err := reg.Count(len(layouts), registry.CountSpec{
		Layout: func(i int) item.Accessor { return item.NewCell(layouts[i]) },
		Measure: func(i int) item.Measure {
			if i == 2 {
				return item.WrapContent{}
			}
			return nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	res := visibility.NewResolver(visibility.Options{CellSize: 100})
	snap := viewport.Snapshot{Transform: transform.Identity(), Size: geom.Sz(300, 200), Overscan: overscan}
	return res.Resolve(snap, reg), res
}

func TestRenderSVG(t *testing.T) {
	p, _ := testPass(t, 0)
	svg := string(RenderSVG(p))

	if !strings.HasPrefix(svg, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 300.0 200.0" width="300" height="200">`) {
		t.Errorf("RenderSVG() header = %s", strings.SplitN(svg, "\n", 2)[0])
	}
	if got := strings.Count(svg, `class="item"`); got != 3 {
		t.Errorf("RenderSVG() drew %d items, want 3", got)
	}
	if !strings.Contains(svg, `<rect x="10.0" y="10.0" width="100.0" height="50.0" rx="4"`) {
		t.Error("RenderSVG() missing item 0 at its render rect")
	}
	if strings.Contains(svg, `data-index="3"`) {
		t.Error("RenderSVG() drew an item outside the viewport")
	}
	if !strings.Contains(svg, `<rect x="50.0" y="120.0" width="250.0" height="80.0" fill="none"`) {
		t.Error("RenderSVG() did not clip the unmeasured item to the viewport")
	}
	if !strings.HasSuffix(svg, "</svg>\n") {
		t.Error("RenderSVG() not closed")
	}
}

func TestRenderSVG_Options(t *testing.T) {
	p, res := testPass(t, 20)
	svg := string(RenderSVG(p,
		WithLabels(func(v visibility.VisibleItem) string { return "<item>" }),
		WithCells(res.Buckets(), res.CellSize()),
		WithOverscan(),
		WithBackground("#000000"),
	))

	if !strings.Contains(svg, "&lt;item&gt;") {
		t.Error("RenderSVG() labels not escaped")
	}
	if !strings.Contains(svg, `class="cells"`) || !strings.Contains(svg, `stroke-dasharray="2,4"`) {
		t.Error("RenderSVG() missing index cells")
	}
	if !strings.Contains(svg, `<rect class="overscan" x="-20.0" y="-20.0" width="340.0" height="240.0"`) {
		t.Error("RenderSVG() missing overscan outline")
	}
	if !strings.Contains(svg, `fill="#000000"`) {
		t.Error("RenderSVG() ignored the background")
	}
}

func TestRenderSVG_ScaledViewport(t *testing.T) {
	p, _ := testPass(t, 0)
	p.Transform = transform.New(2, geom.Pt(0, 0))
	p.Viewport = geom.R(0, 0, 150, 100)
	if got := frame(p); got != geom.Sz(300, 200) {
		t.Errorf("frame() = %v, want 300x200", got)
	}
}

func TestRenderPNG(t *testing.T) {
	p, _ := testPass(t, 0)

	tests := []struct {
		name  string
		ratio float64
		w, h  int
	}{
		{"1x", 1, 300, 200},
		{"2x", 2, 600, 400},
		{"invalid ratio", -1, 300, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := RenderPNG(p, tt.ratio)
			if err != nil {
				t.Fatal(err)
			}
			img, err := png.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if b := img.Bounds(); b.Dx() != tt.w || b.Dy() != tt.h {
				t.Errorf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.w, tt.h)
			}
		})
	}
}

func TestRenderPNG_Fills(t *testing.T) {
	p, _ := testPass(t, 0)
	data, err := RenderPNG(p, 1, WithBackground("#ffffff"))
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}

	r, g, b, _ := img.At(290, 10).RGBA()
	if r>>8 != 0xff || g>>8 != 0xff || b>>8 != 0xff {
		t.Errorf("background pixel = %d,%d,%d, want white", r>>8, g>>8, b>>8)
	}
	r, g, b, _ = img.At(60, 35).RGBA()
	if r>>8 == 0xff && g>>8 == 0xff && b>>8 == 0xff {
		t.Error("item 0 not filled")
	}
}

func TestRenderPNG_Labels(t *testing.T) {
	src, err := fonts.Default()
	if err != nil {
		t.Skipf("no system font installed: %v", err)
	}
	p, _ := testPass(t, 0)

	plain, err := RenderPNG(p, 1)
	if err != nil {
		t.Fatal(err)
	}
	labeled, err := RenderPNG(p, 1, WithFont(src))
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(plain, labeled) {
		t.Error("WithFont() did not draw any labels")
	}
}

func TestRenderPNG_EmptyViewport(t *testing.T) {
	p, _ := testPass(t, 0)
	p.Viewport = geom.Rect{}
	if _, err := RenderPNG(p, 1); err == nil {
		t.Error("RenderPNG() succeeded on an empty viewport")
	}
}

func TestRenderJSON(t *testing.T) {
	p, _ := testPass(t, 0)
	data, err := RenderJSON(p)
	if err != nil {
		t.Fatal(err)
	}

	var got struct {
		Registered int `json:"registered"`
		Items      []struct {
			Index     int       `json:"index"`
			Unbounded bool      `json:"unbounded"`
			Render    geom.Rect `json:"render_rect"`
		} `json:"items"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Registered != 4 || len(got.Items) != 3 {
		t.Fatalf("RenderJSON() = %s", data)
	}
	if got.Items[0].Render != geom.R(10, 10, 110, 60) || !got.Items[2].Unbounded {
		t.Errorf("RenderJSON() items = %+v", got.Items)
	}
}
