package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogpu/stave"
	"github.com/gogpu/stave/integration/ggback"
	"github.com/gogpu/stave/scene"
)

func newRenderCmd() *cobra.Command {
	var (
		projectPath string
		outPath     string
		width       int
		height      int
		zoom        float64
		xDays       float64
		yPixels     float64
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one frame of a project to a PNG file",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := LoadProject(projectPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("width") {
				p.Width = width
			}
			if cmd.Flags().Changed("height") {
				p.Height = height
			}
			if cmd.Flags().Changed("zoom") {
				p.View.Zoom = zoom
			}
			if cmd.Flags().Changed("x") {
				p.View.XDays = xDays
			}
			if cmd.Flags().Changed("y") {
				p.View.YPixels = yPixels
			}

			eng, err := stave.New(stave.WithBackendName(ggback.Name))
			if err != nil {
				return err
			}
			defer eng.Close()

			stats := eng.Render(p.Snapshot, p.View, p.Width, p.Height)
			if !stats.BackendOK {
				return fmt.Errorf("rendering %s: backend rejected the frame", projectPath)
			}
			fb, ok := eng.Backend().(scene.FileBackend)
			if !ok {
				return fmt.Errorf("backend %q cannot write files", ggback.Name)
			}
			if err := fb.WriteFile(outPath); err != nil {
				return fmt.Errorf("writing %s: %w", outPath, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%dx%d, %d of %d items visible, %d links)\n",
				outPath, p.Width, p.Height, stats.Cull.Visible, stats.Placed, stats.Links)
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectPath, "project", "p", "", "Project YAML file")
	cmd.Flags().StringVarP(&outPath, "out", "o", "schedule.png", "Output PNG path")
	cmd.Flags().IntVar(&width, "width", 0, "Frame width in pixels (overrides the project file)")
	cmd.Flags().IntVar(&height, "height", 0, "Frame height in pixels (overrides the project file)")
	cmd.Flags().Float64Var(&zoom, "zoom", 0, "Zoom factor (overrides the project file)")
	cmd.Flags().Float64Var(&xDays, "x", 0, "Horizontal scroll in days (overrides the project file)")
	cmd.Flags().Float64Var(&yPixels, "y", 0, "Vertical scroll in pixels (overrides the project file)")
	cmd.MarkFlagRequired("project")

	return cmd
}
