// Package stave renders date-indexed, lane-based schedules as a musical staff.
//
// # Overview
//
// stave is a Pure Go schedule canvas engine. Lanes are drawn as staves,
// items as notes placed on half-line positions, and per-lane capacity
// rules play the role of time signatures. The host application owns the
// data: each frame it hands the engine an immutable snapshot plus a
// viewport, and the engine lays out, culls, reconciles a retained scene,
// and paints through a pluggable backend. Input flows the other way:
// pointer and wheel events drive gesture recognizers that emit commands,
// and the host applies whichever commands it accepts.
//
// # Quick Start
//
//	import "github.com/gogpu/stave"
//
//	// Create an engine (records frames as text by default)
//	eng, err := stave.New()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer eng.Close()
//
//	// Render a snapshot
//	eng.Render(snap, schedule.DefaultViewport(), 1280, 720)
//
//	// Feed input, apply the commands it produces
//	eng.PointerDown(x, y, interact.ButtonLeft, 0)
//	for _, cmd := range eng.DrainCommands() {
//		store.Apply(cmd)
//	}
//
// # Architecture
//
// The engine is organized into:
//   - Domain model: schedule (snapshots, viewport, command union)
//   - Geometry: timescale (day/pixel quantization), lanes (staff
//     layout), layout (item placement), capacity (free-day search)
//   - Frame passes: cull (visibility and level of detail), route
//     (dependency connectors), scene (retained nodes, backends)
//   - Input: interact (gesture state machines)
//
// # Backends
//
// Backends register themselves with the scene package. The built-in
// "record" backend captures frames as text and is always available;
// integration/ggback rasterizes frames through the gg canvas.
//
// # Coordinate System
//
// Uses standard computer graphics coordinates:
//   - Origin (0,0) at top-left, in screen pixels
//   - X increases right and maps to time, one day = DayWidth pixels
//   - Y increases down; lane geometry is computed in world space and
//     shifted by the vertical scroll when painted
//
// # Determinism
//
// Rendering the same snapshot through the same viewport always produces
// the same frame. The retained scene cache and the spatial grid are
// pure optimizations: resetting them and re-rendering yields identical
// output.
package stave

// Version information
const (
	// Version is the current version of the library
	Version = "0.3.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 3

	// VersionPatch is the patch version
	VersionPatch = 0
)
