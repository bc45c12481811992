package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gogpu/stave"
)

// newRootCmd creates the top-level "stave" command and registers the
// demo subcommands.
func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "stave",
		Short: "Date-indexed schedule canvas demo host",
		Long: `stave renders YAML project files through the schedule canvas engine.

A project file declares lanes, items, and dependency links against a
calendar epoch. The render command paints one frame to a PNG, inspect
prints the canonical frame dump of the recording backend, and simulate
replays a scripted pointer trace and prints every command the engine
emits.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			stave.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: level,
			})))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log engine internals to stderr")

	root.AddCommand(
		newRenderCmd(),
		newInspectCmd(),
		newSimulateCmd(),
	)

	return root
}
