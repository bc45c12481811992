package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/stave"
	"github.com/gogpu/stave/interact"
	"github.com/gogpu/stave/scene"
	"github.com/gogpu/stave/schedule"
)

// scriptFile is the YAML schema of a pointer trace. Each step is one
// engine entry point; coordinates are screen pixels.
type scriptFile struct {
	Steps []scriptStep `yaml:"steps"`
}

type scriptStep struct {
	// Do is the action: down, move, up, wheel, abort, or render.
	Do string `yaml:"do"`

	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`

	// DX and DY are wheel deltas.
	DX float64 `yaml:"dx"`
	DY float64 `yaml:"dy"`

	Ctrl  bool `yaml:"ctrl"`
	Shift bool `yaml:"shift"`
	Alt   bool `yaml:"alt"`
	// Right presses the secondary button instead of the primary one.
	Right bool `yaml:"right"`
}

func (s scriptStep) buttons() interact.Buttons {
	if s.Right {
		return interact.ButtonRight
	}
	return interact.ButtonLeft
}

func (s scriptStep) mods() interact.Modifiers {
	var m interact.Modifiers
	if s.Ctrl {
		m |= interact.ModCtrl
	}
	if s.Shift {
		m |= interact.ModShift
	}
	if s.Alt {
		m |= interact.ModAlt
	}
	return m
}

func loadScript(path string) (*scriptFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading script: %w", err)
	}
	var s scriptFile
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("loading script %s: %w", path, err)
	}
	return &s, nil
}

func newSimulateCmd() *cobra.Command {
	var (
		projectPath string
		scriptPath  string
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Replay a scripted pointer trace and print emitted commands",
		Long: `simulate loads a project, renders it, and feeds a scripted sequence
of pointer events to the engine. Every command the engine emits is
printed and then applied to the in-memory project, the way a host
application would apply it to its store. Aborted gestures emit nothing,
which makes the commit/cancel contract visible in the output.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := LoadProject(projectPath)
			if err != nil {
				return err
			}
			script, err := loadScript(scriptPath)
			if err != nil {
				return err
			}

			eng, err := stave.New()
			if err != nil {
				return err
			}
			defer eng.Close()

			n, err := runScript(eng, p, script, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			frames := 0
			if rec, ok := eng.Backend().(*scene.Recorder); ok {
				frames = rec.Frames()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "done: %d commands over %d frames\n", n, frames)
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectPath, "project", "p", "", "Project YAML file")
	cmd.Flags().StringVarP(&scriptPath, "script", "s", "", "Pointer trace YAML file")
	cmd.MarkFlagRequired("project")
	cmd.MarkFlagRequired("script")

	return cmd
}

// runScript replays the script against the engine, printing and applying
// each emitted command, and returns how many commands were emitted. The
// project plays the host store: commands mutate it, nothing else does.
func runScript(eng *stave.Engine, p *Project, script *scriptFile, out io.Writer) (int, error) {
	eng.Render(p.Snapshot, p.View, p.Width, p.Height)

	total := 0
	for i, step := range script.Steps {
		switch step.Do {
		case "down":
			eng.PointerDown(step.X, step.Y, step.buttons(), step.mods())
		case "move":
			eng.PointerMove(step.X, step.Y)
		case "up":
			eng.PointerUp(step.X, step.Y, step.buttons(), step.mods())
		case "wheel":
			eng.Wheel(step.DX, step.DY, step.Ctrl)
		case "abort":
			eng.AbortGesture()
		case "render":
			eng.Invalidate()
		default:
			return total, fmt.Errorf("script step %d: unknown action %q", i+1, step.Do)
		}

		for _, c := range eng.DrainCommands() {
			fmt.Fprintf(out, "step %d %s: %s\n", i+1, step.Do, describeCommand(c))
			applyCommand(p, c)
			total++
		}
		if eng.NeedsFrame() {
			eng.Render(p.Snapshot, p.View, p.Width, p.Height)
		}
	}
	return total, nil
}

// applyCommand is the simulate host's store: it accepts every proposal.
// Structural edits bump the snapshot revision so the engine drops its
// derived indexes; selection is per-frame state and does not.
func applyCommand(p *Project, cmd schedule.Command) {
	snap := p.Snapshot
	switch c := cmd.(type) {
	case schedule.MoveItemCommand:
		for i := range snap.Items {
			if snap.Items[i].ID == c.Item {
				snap.Items[i].StartDay = c.StartDay
				snap.Items[i].Lane = c.Lane
				snap.Items[i].LineIndex = c.LineIndex
			}
		}
		snap.Revision++
	case schedule.ResizeItemCommand:
		for i := range snap.Items {
			if snap.Items[i].ID == c.Item {
				snap.Items[i].DurationDays = c.DurationDays
			}
		}
		snap.Revision++
	case schedule.CreateLinkCommand:
		snap.Links = append(snap.Links, schedule.Link{
			ID:   schedule.LinkID(newID()),
			Src:  c.Src,
			Dst:  c.Dst,
			Kind: c.Kind,
		})
		snap.Revision++
	case schedule.SetSelectionCommand:
		sel := make(map[schedule.ItemID]struct{}, len(c.Items))
		for _, id := range c.Items {
			sel[id] = struct{}{}
		}
		snap.Selection = sel
	case schedule.SetViewportCommand:
		p.View = c.Viewport
	}
}

func describeCommand(cmd schedule.Command) string {
	switch c := cmd.(type) {
	case schedule.MoveItemCommand:
		return fmt.Sprintf("MoveItem item=%s day=%d lane=%s line=%d",
			c.Item, c.StartDay, c.Lane, c.LineIndex)
	case schedule.ResizeItemCommand:
		return fmt.Sprintf("ResizeItem item=%s days=%d", c.Item, c.DurationDays)
	case schedule.CreateLinkCommand:
		return fmt.Sprintf("CreateLink src=%s dst=%s kind=%s", c.Src, c.Dst, c.Kind)
	case schedule.SetSelectionCommand:
		ids := make([]string, len(c.Items))
		for i, id := range c.Items {
			ids[i] = string(id)
		}
		return fmt.Sprintf("SetSelection items=[%s]", strings.Join(ids, " "))
	case schedule.SetViewportCommand:
		v := c.Viewport
		return fmt.Sprintf("SetViewport x=%.2f y=%.1f zoom=%.2f vscale=%.2f",
			v.XDays, v.YPixels, v.Zoom, v.VerticalScale)
	default:
		return cmd.Type().String()
	}
}
