// Package fonts locates label fonts for raster output.
//
// SVG output leaves font selection to the viewer, but PNG output has to
// rasterize glyphs itself. The fonts are looked up among the fonts installed
// on the system, so nothing is embedded in the binary. When no font is found
// raster output is drawn without labels.
package fonts

import (
	"sync"

	"github.com/flopp/go-findfont"
	"github.com/gogpu/gg/text"

	"github.com/matzehuels/infinicanvas/pkg/errors"
)

// Candidates lists the sans-serif fonts tried by Default, in order.
var Candidates = []string{
	"DejaVuSans.ttf",
	"LiberationSans-Regular.ttf",
	"NotoSans-Regular.ttf",
	"Arial.ttf",
	"Helvetica.ttf",
}

// Find returns the path of the first installed font among names.
func Find(names ...string) (string, error) {
	for _, name := range names {
		if path, err := findfont.Find(name); err == nil {
			return path, nil
		}
	}
	return "", errors.New(errors.ErrCodeNotFound, "no installed font among %v", names)
}

var (
	mu      sync.Mutex
	sources = make(map[string]*text.FontSource)
)

// Load parses the font file at path. Sources are cached per path and shared.
func Load(path string) (*text.FontSource, error) {
	mu.Lock()
	defer mu.Unlock()
	if src, ok := sources[path]; ok {
		return src, nil
	}
	src, err := text.NewFontSourceFromFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "load font %s", path)
	}
	sources[path] = src
	return src, nil
}

var (
	defaultOnce sync.Once
	defaultSrc  *text.FontSource
	defaultErr  error
)

// Default returns the first installed font among Candidates. The lookup runs
// once per process.
func Default() (*text.FontSource, error) {
	defaultOnce.Do(func() {
		path, err := Find(Candidates...)
		if err != nil {
			defaultErr = err
			return
		}
		defaultSrc, defaultErr = Load(path)
	})
	return defaultSrc, defaultErr
}
