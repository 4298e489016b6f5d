package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/infinicanvas/pkg/config"
	"github.com/matzehuels/infinicanvas/pkg/core/geom"
	"github.com/matzehuels/infinicanvas/pkg/core/visibility"
	"github.com/matzehuels/infinicanvas/pkg/errors"
	"github.com/matzehuels/infinicanvas/pkg/fonts"
	"github.com/matzehuels/infinicanvas/pkg/render"
	"github.com/matzehuels/infinicanvas/pkg/render/sink"
	"github.com/matzehuels/infinicanvas/pkg/scene"
)

const (
	formatSVG  = "svg"
	formatPNG  = "png"
	formatJSON = "json"
	formatPDF  = "pdf"

	defaultBase = "canvas" // output base name when rendering the demo grid
)

// renderFormats is the set of supported render output formats.
var renderFormats = []string{formatSVG, formatPNG, formatJSON, formatPDF}

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output       string   // output file path (or base path for multiple outputs)
	formats      []string // output formats: "svg", "png", "json", "pdf"
	width        float64  // viewport width in render pixels
	height       float64  // viewport height in render pixels
	scale        float64  // canvas scale
	x, y         float64  // logic point at the viewport's top-left corner
	overscan     float64  // overscan margin in render pixels
	ratio        float64  // PNG pixel ratio
	cells        bool     // outline occupied index cells
	showOverscan bool     // outline the overscan region
}

// renderCommand creates the render command for drawing one viewport.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{
		width:  config.DefaultWidth,
		height: config.DefaultHeight,
		scale:  1,
		ratio:  1,
	}

	cmd := &cobra.Command{
		Use:   "render [scene]",
		Short: "Render the visible items of one viewport",
		Long: `Render resolves the items of a scene file inside one viewport and writes them as SVG, PNG, JSON or PDF.

Without a scene file the demo grid of 100 items is rendered. Flags override the
viewport values from --config.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeScenes(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := errors.ValidateFormats(opts.formats, renderFormats...); err != nil {
				return err
			}
			if err := errors.ValidatePositive("ratio", opts.ratio); err != nil {
				return err
			}
			adjust := func(cfg *config.Config) {
				flags := cmd.Flags()
				if flags.Changed("width") {
					cfg.Viewport.Width = opts.width
				}
				if flags.Changed("height") {
					cfg.Viewport.Height = opts.height
				}
				if flags.Changed("scale") {
					cfg.Viewport.Scale = opts.scale
				}
				if flags.Changed("overscan") {
					cfg.Viewport.Overscan = opts.overscan
				}
			}
			return c.runRender(cmd.Context(), sceneArg(args), adjust, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, json, pdf (comma-separated)")
	cmd.Flags().Float64Var(&opts.width, "width", opts.width, "viewport width in pixels")
	cmd.Flags().Float64Var(&opts.height, "height", opts.height, "viewport height in pixels")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "canvas scale")
	cmd.Flags().Float64Var(&opts.x, "x", 0, "logic x at the viewport's left edge")
	cmd.Flags().Float64Var(&opts.y, "y", 0, "logic y at the viewport's top edge")
	cmd.Flags().Float64Var(&opts.overscan, "overscan", 0, "overscan margin in pixels")
	cmd.Flags().Float64Var(&opts.ratio, "ratio", opts.ratio, "PNG pixel ratio")
	cmd.Flags().BoolVar(&opts.cells, "cells", false, "outline occupied spatial index cells")
	cmd.Flags().BoolVar(&opts.showOverscan, "show-overscan", false, "outline the overscan region")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats(true, renderFormats...))

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{formatSVG}
	}
	formats := strings.Split(s, ",")
	for i := range formats {
		formats[i] = strings.TrimSpace(formats[i])
	}
	return formats
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input, or uses "canvas"
// when there is no input. If output has a format extension, it is stripped.
func basePath(output, input string) string {
	if output == "" {
		if input == "" {
			return defaultBase
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if errors.ValidateFormats([]string{strings.TrimPrefix(ext, ".")}, renderFormats...) == nil {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath returns the file a format is written to. A single format with an
// explicit output goes exactly there.
func outputPath(opts *renderOpts, input, format string) string {
	if len(opts.formats) == 1 && opts.output != "" {
		return opts.output
	}
	return basePath(opts.output, input) + "." + format
}

// runRender resolves one viewport of the scene at input and writes every
// requested format.
func (c *CLI) runRender(ctx context.Context, input string, adjust func(*config.Config), opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	ws, err := c.loadWorkspace(ctx, input, adjust)
	if err != nil {
		return err
	}
	st := ws.canvas.State()
	if opts.x != 0 || opts.y != 0 {
		s := st.Scale()
		st.Pan(geom.Pt(-opts.x*s, -opts.y*s))
	}
	logger.Debugf("Viewport: %v", st.ViewportLogicRect())

	pass, err := ws.model.Frame(ctx, ws.canvas)
	if err != nil {
		return err
	}
	prog.pass(pass)

	sinkOpts := []sink.Option{sink.WithLabels(scene.Label)}
	if opts.cells {
		res := ws.canvas.Resolver()
		sinkOpts = append(sinkOpts, sink.WithCells(res.Buckets(), res.CellSize()))
	}
	if opts.showOverscan {
		sinkOpts = append(sinkOpts, sink.WithOverscan())
	}
	if slices.Contains(opts.formats, formatPNG) {
		if src, err := fonts.Default(); err == nil {
			sinkOpts = append(sinkOpts, sink.WithFont(src))
		} else {
			logger.Warn("PNG labels disabled", "err", err)
		}
	}

	sp := startSpinner(ctx, os.Stderr, "Encoding "+opts.formats[0])
	defer sp.Stop()

	var written []string
	sizes := make([]any, 0, 2*len(opts.formats))
	for _, format := range opts.formats {
		sp.Stage("Encoding " + format)
		data, err := renderPass(ctx, pass, format, opts.ratio, sinkOpts)
		if err != nil {
			return fmt.Errorf("%s: %w", format, err)
		}
		sizes = append(sizes, format, len(data))

		path := outputPath(opts, input, format)
		if err := writeOutput(path, data); err != nil {
			return err
		}
		if path != "-" {
			written = append(written, path)
		}
	}
	logger.Debug("Encoded", append(sizes, "took", sp.Stop().Round(time.Millisecond))...)

	for _, path := range written {
		printFile(path)
	}
	if opts.output != "-" {
		printStats(pass)
	}
	return nil
}

// renderPass encodes a pass in one format.
func renderPass(ctx context.Context, p *visibility.Pass, format string, ratio float64, opts []sink.Option) ([]byte, error) {
	switch format {
	case formatSVG:
		return sink.RenderSVG(p, opts...), nil
	case formatPNG:
		return sink.RenderPNG(p, ratio, opts...)
	case formatJSON:
		return sink.RenderJSON(p)
	case formatPDF:
		return render.ToPDF(ctx, sink.RenderSVG(p, opts...))
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format: %s", format)
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path. "-" is stdout.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

// writeOutput writes data to path.
func writeOutput(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
