package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/infinicanvas/pkg/cache"
	"github.com/matzehuels/infinicanvas/pkg/httpapi"
)

const (
	defaultAddr     = "localhost:8080"
	shutdownTimeout = 5 * time.Second
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr         string
	cacheEntries int
}

// serveCommand creates the serve command, which exposes one canvas over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: defaultAddr, cacheEntries: 16}

	cmd := &cobra.Command{
		Use:   "serve [scene]",
		Short: "Serve a canvas over HTTP",
		Long: `Serve loads a scene onto one canvas and exposes its viewport, visible items and spatial index over HTTP.

Pan, zoom and fling with POST /pan, /zoom and /fling; read the visible items
from GET /visible, /visible.svg or /visible.png.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeScenes(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), sceneArg(args), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().IntVar(&opts.cacheEntries, "cache-entries", opts.cacheEntries, "diagrams kept in memory")

	return cmd
}

// runServe serves until ctx is cancelled, then shuts down gracefully.
func (c *CLI) runServe(ctx context.Context, input string, opts *serveOpts) error {
	logger := loggerFromContext(ctx)

	ws, err := c.loadWorkspace(ctx, input, nil)
	if err != nil {
		return err
	}

	api := httpapi.New(ctx, ws.canvas, ws.model,
		httpapi.WithLogger(logger),
		httpapi.WithCache(cache.NewMemoryCache(opts.cacheEntries)),
	)
	srv := &http.Server{
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", opts.addr)
	if err != nil {
		return err
	}
	printSuccess("Serving %d items", ws.model.Len())
	printKeyValue("Address", StyleLink.Render("http://"+ln.Addr().String()))

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
