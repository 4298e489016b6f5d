package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/infinicanvas/pkg/scene"
)

// sceneCommand creates the scene command group.
func (c *CLI) sceneCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scene",
		Short: "Write and check scene files",
	}

	cmd.AddCommand(c.sceneGridCommand())
	cmd.AddCommand(c.sceneValidateCommand())

	return cmd
}

// sceneGridCommand creates the "scene grid" subcommand, which writes a
// generated grid as a scene file.
func (c *CLI) sceneGridCommand() *cobra.Command {
	var output string
	grid := scene.DemoGrid()

	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Write a scene with a generated grid of items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSceneGrid(cmd.Context(), grid, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file; .json writes JSON, anything else TOML")
	cmd.Flags().IntVar(&grid.Count, "count", grid.Count, "number of items")
	cmd.Flags().IntVar(&grid.Cols, "cols", grid.Cols, "items per row")
	cmd.Flags().Float64Var(&grid.CellW, "cell-width", grid.CellW, "cell width in logic units")
	cmd.Flags().Float64Var(&grid.CellH, "cell-height", grid.CellH, "cell height in logic units")
	cmd.Flags().Float64Var(&grid.ItemW, "item-width", grid.ItemW, "item width in logic units")
	cmd.Flags().Float64Var(&grid.ItemH, "item-height", grid.ItemH, "item height in logic units")

	return cmd
}

func runSceneGrid(ctx context.Context, grid scene.Grid, output string) error {
	if err := grid.Validate(); err != nil {
		return err
	}
	s := &scene.Scene{Grid: &grid}

	out, err := openOutput(output)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := s.Encode(out, scene.FormatOf(output)); err != nil {
		return err
	}

	loggerFromContext(ctx).Debugf("Wrote grid of %d items", grid.Count)
	if output != "-" {
		printSuccess("Wrote %d items to %s", grid.Count, output)
		printNextStep("Render it", fmt.Sprintf("%s render %s", appName, output))
	}
	return nil
}

// sceneValidateCommand creates the "scene validate" subcommand.
func (c *CLI) sceneValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "validate <scene>...",
		Short:             "Check scene files for errors",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completeScenes(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				s, err := scene.Load(path)
				if err != nil {
					printError("%s: %v", path, err)
					failed++
					continue
				}
				printSuccess("%s", path)
				printDetail("%d items", scene.NewModel(s).Len())
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d scene files are invalid", failed, len(args))
			}
			return nil
		},
	}
}
