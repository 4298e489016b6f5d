package httpapi

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/infinicanvas/pkg/buildinfo"
	"github.com/matzehuels/infinicanvas/pkg/cache"
	"github.com/matzehuels/infinicanvas/pkg/canvas"
	"github.com/matzehuels/infinicanvas/pkg/core/geom"
	"github.com/matzehuels/infinicanvas/pkg/core/spatial"
	"github.com/matzehuels/infinicanvas/pkg/core/viewport"
	"github.com/matzehuels/infinicanvas/pkg/core/visibility"
	"github.com/matzehuels/infinicanvas/pkg/errors"
	"github.com/matzehuels/infinicanvas/pkg/fonts"
	"github.com/matzehuels/infinicanvas/pkg/observability"
	"github.com/matzehuels/infinicanvas/pkg/render/cellmap"
	"github.com/matzehuels/infinicanvas/pkg/render/sink"
	"github.com/matzehuels/infinicanvas/pkg/scene"
)

// Server serves one canvas and its scene.
type Server struct {
	canvas *canvas.Canvas
	model  *scene.Model
	logger *log.Logger
	cache  cache.Cache
	ctx    context.Context // bounds background flings

	mu     sync.Mutex // serializes layout passes
	router chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger. The default discards output.
func WithLogger(l *log.Logger) Option { return func(s *Server) { s.logger = l } }

// WithCache sets the cache for rendered index diagrams. The default keeps
// the most recent diagrams in memory.
func WithCache(c cache.Cache) Option { return func(s *Server) { s.cache = c } }

// New creates a server. Flings started over HTTP stop when ctx is done.
func New(ctx context.Context, c *canvas.Canvas, m *scene.Model, opts ...Option) *Server {
	s := &Server{canvas: c, model: m, ctx: ctx}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if s.cache == nil {
		s.cache = cache.NewMemoryCache(16)
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, struct {
			Status string         `json:"status"`
			Build  buildinfo.Info `json:"build"`
		}{"ok", buildinfo.Get()})
	})

	r.Route("/viewport", func(r chi.Router) {
		r.Get("/", s.getViewport)
		r.Post("/pan", s.pan)
		r.Post("/zoom", s.zoom)
		r.Post("/resize", s.resize)
		r.Post("/overscan", s.overscan)
		r.Post("/fling", s.fling)
		r.Delete("/fling", s.cancelFling)
	})

	r.Get("/visible", s.visible)
	r.Get("/visible.svg", s.visibleSVG)
	r.Get("/visible.png", s.visiblePNG)
	r.Get("/hit", s.hit)
	r.Get("/index", s.index)
	r.Get("/index.svg", s.indexSVG)

	r.Route("/items/{key}", func(r chi.Router) {
		r.Post("/touch", s.touch)
		r.Post("/drag", s.drag)
	})
	return r
}

// observe reports each request to the HTTP hooks and the debug log.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, elapsed)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", elapsed,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// frame runs one measured pass under the server lock.
func (s *Server) frame(ctx context.Context) (*visibility.Pass, error) {
	f, err := s.frameWith(ctx, false)
	return f.pass, err
}

// framed is a pass with an optional copy of the index cells it built.
type framed struct {
	pass     *visibility.Pass
	cells    []spatial.Cell
	cellSize float64
}

// frameWith runs one measured pass and, when cells is set, copies the index
// cells before the lock is released. The next pass rebuilds the index in
// place, so the cells must not be read after unlocking.
func (s *Server) frameWith(ctx context.Context, cells bool) (framed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pass, err := s.model.Frame(ctx, s.canvas)
	if err != nil {
		return framed{}, err
	}
	f := framed{pass: pass}
	if cells {
		res := s.canvas.Resolver()
		f.cells, f.cellSize = res.Buckets(), res.CellSize()
	}
	return f, nil
}

// ViewportState is the JSON form of the viewport.
type ViewportState struct {
	Scale       float64    `json:"scale"`
	Translation geom.Point `json:"translation"`
	Size        geom.Size  `json:"size"`
	Overscan    float64    `json:"overscan"`
	Motion      string     `json:"motion"`
	Logic       geom.Rect  `json:"logic"`
}

func (s *Server) viewportState() ViewportState {
	st := s.canvas.State()
	snap := st.Snapshot()
	return ViewportState{
		Scale:       snap.Transform.Scale,
		Translation: snap.Transform.Translation,
		Size:        snap.Size,
		Overscan:    snap.Overscan,
		Motion:      st.Motion().String(),
		Logic:       snap.ViewportLogicRect(),
	}
}

func (s *Server) getViewport(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.viewportState())
}

type panRequest struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

func (s *Server) pan(w http.ResponseWriter, r *http.Request) {
	var req panRequest
	if !decode(w, r, &req) {
		return
	}
	d := geom.Pt(req.DX, req.DY)
	if !d.IsFinite() {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "pan delta must be finite"))
		return
	}
	s.canvas.State().Pan(d)
	writeJSON(w, http.StatusOK, s.viewportState())
}

type zoomRequest struct {
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Factor *float64 `json:"factor,omitempty"`
	Wheel  *float64 `json:"wheel,omitempty"`
}

func (s *Server) zoom(w http.ResponseWriter, r *http.Request) {
	var req zoomRequest
	if !decode(w, r, &req) {
		return
	}
	var factor float64
	switch {
	case req.Factor != nil && req.Wheel == nil:
		factor = *req.Factor
	case req.Wheel != nil && req.Factor == nil:
		factor = viewport.WheelScale(*req.Wheel)
	default:
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "zoom needs exactly one of factor or wheel"))
		return
	}
	focal := geom.Pt(req.X, req.Y)
	if !focal.IsFinite() {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "zoom focal point must be finite"))
		return
	}
	if err := errors.ValidatePositive("factor", factor); err != nil {
		writeError(w, err)
		return
	}
	s.canvas.State().AnchorZoom(focal, factor)
	writeJSON(w, http.StatusOK, s.viewportState())
}

type resizeRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (s *Server) resize(w http.ResponseWriter, r *http.Request) {
	var req resizeRequest
	if !decode(w, r, &req) {
		return
	}
	if err := errors.ValidateNonNegative("width", req.Width); err != nil {
		writeError(w, err)
		return
	}
	if err := errors.ValidateNonNegative("height", req.Height); err != nil {
		writeError(w, err)
		return
	}
	s.canvas.State().Resize(geom.Sz(req.Width, req.Height))
	writeJSON(w, http.StatusOK, s.viewportState())
}

type overscanRequest struct {
	Overscan float64 `json:"overscan"`
}

func (s *Server) overscan(w http.ResponseWriter, r *http.Request) {
	var req overscanRequest
	if !decode(w, r, &req) {
		return
	}
	if err := errors.ValidateNonNegative("overscan", req.Overscan); err != nil {
		writeError(w, err)
		return
	}
	s.canvas.State().SetOverscan(req.Overscan)
	writeJSON(w, http.StatusOK, s.viewportState())
}

type flingRequest struct {
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
}

func (s *Server) fling(w http.ResponseWriter, r *http.Request) {
	var req flingRequest
	if !decode(w, r, &req) {
		return
	}
	v := geom.Pt(req.VX, req.VY)
	if !v.IsFinite() {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "fling velocity must be finite"))
		return
	}
	go func() {
		if err := s.canvas.State().Fling(s.ctx, v); err != nil {
			s.logger.Debug("fling stopped", "err", err)
		}
	}()
	writeJSON(w, http.StatusAccepted, map[string]any{"velocity": v})
}

func (s *Server) cancelFling(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"cancelled": s.canvas.State().CancelFling()})
}

func (s *Server) visible(w http.ResponseWriter, r *http.Request) {
	pass, err := s.frame(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := sink.RenderJSON(pass)
	if err != nil {
		writeError(w, err)
		return
	}
	write(w, http.StatusOK, "application/json", data)
}

func (s *Server) visibleSVG(w http.ResponseWriter, r *http.Request) {
	f, err := s.frameWith(r.Context(), r.URL.Query().Has("cells"))
	if err != nil {
		writeError(w, err)
		return
	}
	write(w, http.StatusOK, "image/svg+xml", sink.RenderSVG(f.pass, sinkOptions(r, f)...))
}

func (s *Server) visiblePNG(w http.ResponseWriter, r *http.Request) {
	ratio := 1.0
	if q := r.URL.Query().Get("ratio"); q != "" {
		v, err := strconv.ParseFloat(q, 64)
		if err != nil || errors.ValidatePositive("ratio", v) != nil {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "ratio must be a positive number, got %q", q))
			return
		}
		ratio = v
	}
	f, err := s.frameWith(r.Context(), r.URL.Query().Has("cells"))
	if err != nil {
		writeError(w, err)
		return
	}
	opts := sinkOptions(r, f)
	if src, err := fonts.Default(); err == nil {
		opts = append(opts, sink.WithFont(src))
	}
	data, err := sink.RenderPNG(f.pass, ratio, opts...)
	if err != nil {
		writeError(w, err)
		return
	}
	write(w, http.StatusOK, "image/png", data)
}

func sinkOptions(r *http.Request, f framed) []sink.Option {
	opts := []sink.Option{sink.WithLabels(scene.Label)}
	q := r.URL.Query()
	if f.cells != nil {
		opts = append(opts, sink.WithCells(f.cells, f.cellSize))
	}
	if q.Has("overscan") {
		opts = append(opts, sink.WithOverscan())
	}
	return opts
}

func (s *Server) hit(w http.ResponseWriter, r *http.Request) {
	x, errX := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	y, errY := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
	if errX != nil || errY != nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "hit needs numeric x and y"))
		return
	}
	pass, err := s.frame(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	v, ok := pass.HitTest(geom.Pt(x, y))
	if !ok {
		writeError(w, errors.New(errors.ErrCodeNotFound, "no item at %g,%g", x, y))
		return
	}
	writeJSON(w, http.StatusOK, itemView(v))
}

// ItemView is the JSON form of one visible item.
type ItemView struct {
	visibility.VisibleItem
	Key   string `json:"key"`
	Label string `json:"label"`
}

func itemView(v visibility.VisibleItem) ItemView {
	return ItemView{VisibleItem: v, Key: keyString(v.Key), Label: scene.Label(v)}
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	f, err := s.frameWith(r.Context(), true)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"cell_size": f.cellSize,
		"cells":     f.cells,
	})
}

func (s *Server) indexSVG(w http.ResponseWriter, r *http.Request) {
	f, err := s.frameWith(r.Context(), true)
	if err != nil {
		writeError(w, err)
		return
	}
	dot := cellmap.ToDOT(f.cells, cellmap.Options{CellSize: f.cellSize, Detailed: r.URL.Query().Has("detailed")})
	svg, hit, err := cache.GetOrSet(r.Context(), s.cache, cache.Key("cellmap", dot, "svg"), 0, func() ([]byte, error) {
		return cellmap.RenderSVG(r.Context(), dot)
	})
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render index diagram"))
		return
	}
	s.logger.Debug("index diagram", "cached", hit, "bytes", len(svg))
	write(w, http.StatusOK, "image/svg+xml", svg)
}

func (s *Server) touch(w http.ResponseWriter, r *http.Request) {
	key := scene.ParseKey(chi.URLParam(r, "key"))
	s.mu.Lock()
	ok := s.model.Touch(key, time.Now().UnixNano())
	s.mu.Unlock()
	if !ok {
		writeError(w, errors.New(errors.ErrCodeNotFound, "no item %v", key))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) drag(w http.ResponseWriter, r *http.Request) {
	var req panRequest
	if !decode(w, r, &req) {
		return
	}
	d := geom.Pt(req.DX, req.DY)
	if !d.IsFinite() {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "drag offset must be finite"))
		return
	}
	key := scene.ParseKey(chi.URLParam(r, "key"))
	s.mu.Lock()
	ok := s.model.Touch(key, time.Now().UnixNano()) && s.model.Drag(key, d, s.canvas.State().Scale())
	s.mu.Unlock()
	if !ok {
		writeError(w, errors.New(errors.ErrCodeNotFound, "no item %v", key))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
