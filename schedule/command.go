package schedule

// CommandType identifies the type of a command.
// Each command type corresponds to one host-store mutation.
type CommandType uint8

const (
	// CmdMoveItem reschedules an item to a new day, lane, and line.
	CmdMoveItem CommandType = iota
	// CmdResizeItem changes an item's duration.
	CmdResizeItem
	// CmdCreateLink creates a dependency link between two items.
	CmdCreateLink
	// CmdSetSelection replaces the selection set.
	CmdSetSelection
	// CmdSetViewport moves the camera.
	CmdSetViewport
)

// commandTypeNames maps CommandType values to their string representation.
var commandTypeNames = [...]string{
	CmdMoveItem:     "MoveItem",
	CmdResizeItem:   "ResizeItem",
	CmdCreateLink:   "CreateLink",
	CmdSetSelection: "SetSelection",
	CmdSetViewport:  "SetViewport",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// Command is the interface implemented by all command types. The engine
// never applies a command itself: it emits them and the host store decides.
// Gestures that cancel emit nothing, so a dropped command is always safe.
type Command interface {
	// Type returns the CommandType for this command.
	Type() CommandType
}

// MoveItemCommand proposes rescheduling an item. All three placement
// fields are absolute, not deltas, so replaying the command is idempotent.
type MoveItemCommand struct {
	// Item is the id of the item to move.
	Item ItemID
	// StartDay is the proposed start in days from the epoch.
	StartDay int64
	// Lane is the destination lane.
	Lane LaneID
	// LineIndex is the destination half-line slot within the lane.
	LineIndex uint32
}

// Type implements Command.
func (MoveItemCommand) Type() CommandType { return CmdMoveItem }

// ResizeItemCommand proposes a new duration for an item.
type ResizeItemCommand struct {
	// Item is the id of the item to resize.
	Item ItemID
	// DurationDays is the proposed duration, at least 1.
	DurationDays uint32
}

// Type implements Command.
func (ResizeItemCommand) Type() CommandType { return CmdResizeItem }

// CreateLinkCommand proposes a dependency link. Src and Dst are already
// normalized so the earlier-starting item is the source; the host assigns
// the link id.
type CreateLinkCommand struct {
	Src  ItemID
	Dst  ItemID
	Kind LinkKind
}

// Type implements Command.
func (CreateLinkCommand) Type() CommandType { return CmdCreateLink }

// SetSelectionCommand proposes the complete new selection set. Toggle
// semantics are resolved by the controller before emission: the host
// replaces its selection with Items as given.
type SetSelectionCommand struct {
	// Items is the new selection, sorted by id for determinism.
	Items []ItemID
}

// Type implements Command.
func (SetSelectionCommand) Type() CommandType { return CmdSetSelection }

// SetViewportCommand proposes a new camera. The viewport is already
// clamped to its legal ranges.
type SetViewportCommand struct {
	Viewport Viewport
}

// Type implements Command.
func (SetViewportCommand) Type() CommandType { return CmdSetViewport }
