package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/infinicanvas/pkg/core/visibility"
)

// newLogger creates a logger that timestamps each line as "HH:MM:SS.ms" and
// drops messages below level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long an operation took. It is meant for one goroutine.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time rounded to the millisecond, e.g.
// "Loaded scene (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, p.elapsed())
}

// pass logs a resolved pass, e.g. "Resolved 42 of 10000 items (3ms)". The
// index counters and the scale go to the debug level.
func (p *progress) pass(ps *visibility.Pass) {
	p.done(fmt.Sprintf("Resolved %d of %d items", len(ps.Items), ps.Registered))
	p.logger.Debug("Pass",
		"registered", ps.Registered,
		"candidates", ps.Candidates,
		"visible", len(ps.Items),
		"cells", ps.Cells,
		"scale", ps.Transform.Scale,
	)
}

func (p *progress) elapsed() time.Duration {
	return time.Since(p.start).Round(time.Millisecond)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx. Without one, output
// is discarded.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.New(io.Discard)
}
