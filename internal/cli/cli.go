// Package cli implements the infinicanvas command-line interface.
//
// The commands load a scene and a canvas configuration and drive a canvas
// the way an embedding surface would:
//   - render: draw the visible items of one viewport as SVG, PNG, JSON or PDF
//   - index: draw the spatial index as a Graphviz diagram
//   - explore: pan, zoom and fling a canvas interactively in the terminal
//   - serve: expose a canvas over HTTP
//   - scene: write and check scene files
//   - cache: manage the diagram cache
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// passed through context.Context.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/infinicanvas/pkg/buildinfo"
	"github.com/matzehuels/infinicanvas/pkg/cache"
	"github.com/matzehuels/infinicanvas/pkg/canvas"
	"github.com/matzehuels/infinicanvas/pkg/config"
	"github.com/matzehuels/infinicanvas/pkg/scene"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "infinicanvas"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Infinicanvas virtualizes items on an infinite, pannable canvas",
		Long:         `Infinicanvas places items on an unbounded 2D plane and only resolves the ones inside the viewport, with pan, anchored zoom and inertial fling.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "canvas configuration file (TOML)")
	_ = root.RegisterFlagCompletionFunc("config", completeConfig)

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.indexCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.sceneCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Canvas Setup
// =============================================================================

// workspace is a loaded configuration, scene and canvas.
type workspace struct {
	cfg    *config.Config
	scene  *scene.Scene
	model  *scene.Model
	canvas *canvas.Canvas
}

// loadWorkspace reads the configuration and the scene at path. An empty path
// uses the demo grid. adjust, when set, overrides configuration values from
// flags before the canvas is built.
func (c *CLI) loadWorkspace(ctx context.Context, path string, adjust func(*config.Config)) (*workspace, error) {
	logger := loggerFromContext(ctx)

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if adjust != nil {
		adjust(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	s := &scene.Scene{}
	if path == "" {
		grid := scene.DemoGrid()
		s.Grid = &grid
		logger.Debug("Using demo grid", "items", grid.Count)
	} else if s, err = scene.Load(path); err != nil {
		return nil, err
	}

	m := scene.NewModel(s)
	logger.Debugf("Loaded scene: %d items", m.Len())
	return &workspace{
		cfg:    cfg,
		scene:  s,
		model:  m,
		canvas: canvas.New(cfg.Canvas(), logger),
	}, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/infinicanvas/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// newCache opens the diagram cache, falling back to no caching when the
// cache directory is unusable.
func newCache(noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return cache.NewNullCache()
	}
	return fc
}

// sceneArg returns the optional scene path argument.
func sceneArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
