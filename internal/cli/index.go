package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/infinicanvas/pkg/cache"
	"github.com/matzehuels/infinicanvas/pkg/errors"
	"github.com/matzehuels/infinicanvas/pkg/render/cellmap"
)

const formatDOT = "dot"

// indexFormats is the set of supported index diagram formats.
var indexFormats = []string{formatDOT, formatSVG, formatPDF}

// indexOpts holds the command-line flags for the index command.
type indexOpts struct {
	output   string
	format   string
	detailed bool
	maxItems int
	noCache  bool
}

// indexCommand creates the index command, which draws the spatial index cells
// built for a scene as a Graphviz diagram.
func (c *CLI) indexCommand() *cobra.Command {
	opts := indexOpts{format: formatSVG}

	cmd := &cobra.Command{
		Use:   "index [scene]",
		Short: "Draw the spatial index of a scene",
		Long: `Index registers every item of a scene, builds the spatial index and draws its occupied cells with Graphviz.

Rendered diagrams are cached by their DOT source; use --no-cache to bypass.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeScenes(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateFormats([]string{opts.format}, indexFormats...); err != nil {
				return err
			}
			return c.runIndex(cmd.Context(), sceneArg(args), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <scene>_index.<format>)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg (default), dot, pdf")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "list item indices per cell")
	cmd.Flags().IntVar(&opts.maxItems, "max-items", 0, "maximum indices listed per cell (0 means 8)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the diagram cache")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats(false, indexFormats...))

	return cmd
}

// runIndex resolves a pass, so the index is built, and writes its diagram.
func (c *CLI) runIndex(ctx context.Context, input string, opts *indexOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	ws, err := c.loadWorkspace(ctx, input, nil)
	if err != nil {
		return err
	}
	pass, err := ws.model.Frame(ctx, ws.canvas)
	if err != nil {
		return err
	}
	prog.pass(pass)
	if ws.cfg.Index.FullScan {
		return errors.New(errors.ErrCodeUnsupported, "index.full_scan is set; there is no index to draw")
	}

	res := ws.canvas.Resolver()
	cells := res.Buckets()
	logger.Infof("Index: %d cells of %g units", len(cells), res.CellSize())

	dot := cellmap.ToDOT(cells, cellmap.Options{
		CellSize: res.CellSize(),
		Detailed: opts.detailed,
		MaxItems: opts.maxItems,
	})

	path := opts.output
	if path == "" {
		path = basePath("", input) + "_index." + opts.format
	}

	if opts.format == formatDOT {
		if err := writeOutput(path, []byte(dot)); err != nil {
			return err
		}
		printFile(path)
		return nil
	}

	store := newCache(opts.noCache)
	defer store.Close()

	sp := startSpinner(ctx, os.Stderr, fmt.Sprintf("Drawing %d cells as %s with Graphviz", len(cells), opts.format))
	data, hit, err := cache.GetOrSet(ctx, store, cache.Key("cellmap", dot, opts.format), 0, func() ([]byte, error) {
		if opts.format == formatPDF {
			return cellmap.RenderPDF(ctx, dot)
		}
		return cellmap.RenderSVG(ctx, dot)
	})
	took := sp.Stop()
	if err != nil {
		return err
	}
	logger.Debug("Index diagram", "format", opts.format, "bytes", len(data), "cached", hit, "took", took.Round(time.Millisecond))

	if err := writeOutput(path, data); err != nil {
		return err
	}
	printFile(path)
	printCacheStatus(hit)
	return nil
}
