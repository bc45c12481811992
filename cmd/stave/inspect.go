package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogpu/stave"
	"github.com/gogpu/stave/scene"
)

func newInspectCmd() *cobra.Command {
	var projectPath string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the canonical frame dump of a project",
		Long: `inspect renders one frame through the recording backend and prints
the project summary, the frame's node-by-node dump, and the culling and
scene-cache statistics. The dump is deterministic for a given project
and viewport, which makes it diffable across runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := LoadProject(projectPath)
			if err != nil {
				return err
			}

			eng, err := stave.New()
			if err != nil {
				return err
			}
			defer eng.Close()

			stats := eng.Render(p.Snapshot, p.View, p.Width, p.Height)
			rec, ok := eng.Backend().(*scene.Recorder)
			if !ok {
				return fmt.Errorf("default backend is %T, not a recorder", eng.Backend())
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, p.Summary())
			fmt.Fprintln(out)
			fmt.Fprint(out, rec.Dump())
			fmt.Fprintln(out)
			fmt.Fprintf(out, "placed=%d dropped=%d links=%d\n",
				stats.Placed, stats.Dropped, stats.Links)
			fmt.Fprintf(out, "cull: tested=%d visible=%d culled=%d capped=%d grid=%v parallel=%v\n",
				stats.Cull.Tested, stats.Cull.Visible, stats.Cull.Culled,
				stats.Cull.Capped, stats.Cull.GridUsed, stats.Cull.Parallel)
			fmt.Fprintf(out, "scene: nodes=%d created=%d updated=%d reuse=%.0f%%\n",
				stats.Scene.Nodes, stats.Scene.Created, stats.Scene.Updated,
				stats.Scene.ReuseRate()*100)
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectPath, "project", "p", "", "Project YAML file")
	cmd.MarkFlagRequired("project")

	return cmd
}
