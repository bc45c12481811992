// Package lanes computes the vertical staff geometry of the canvas.
//
// Each lane is drawn as a staff: LineCount horizontal lines spaced
// LineSpacingBase pixels apart (scaled by the viewport's vertical scale).
// Items sit on or between those lines, addressed in half-line steps.
// Geometry is computed in world-space Y; callers subtract the vertical
// scroll when painting and add it back when hit testing.
package lanes

import (
	"sort"

	"github.com/gogpu/stave/schedule"
)

// DefaultLineSpacing replaces a non-positive LineSpacingBase.
const DefaultLineSpacing = 12.0

// Metrics are the fixed vertical constants of the canvas.
type Metrics struct {
	// TopMargin is the world-space Y of the first lane's top line at
	// vertical scale 1. It scales with the rest of the geometry.
	TopMargin float64

	// StaffSpacing is the per-line advance between consecutive lanes:
	// a lane with N lines pushes the next lane down by N*StaffSpacing
	// (scaled). Using the global constant here, not the lane's own line
	// spacing, keeps inter-lane gaps uniform across dense and sparse
	// staves.
	StaffSpacing float64
}

// DefaultMetrics returns the standard canvas constants.
func DefaultMetrics() Metrics {
	return Metrics{TopMargin: 40, StaffSpacing: 90}
}

// Block is the resolved geometry of one lane.
type Block struct {
	Lane schedule.Lane

	// YTop is the world-space Y of the first staff line.
	YTop float64

	// YBottom is the world-space Y of the last staff line. Equal to
	// YTop for single-line lanes.
	YBottom float64

	// LineSpacing is the scaled distance between adjacent staff lines.
	LineSpacing float64

	// LineCount is the effective number of staff lines, at least 1.
	LineCount uint32
}

// LineY returns the world-space Y for a half-line index: 0 is the top
// line, odd indexes sit between lines, 2*(LineCount-1) is the bottom
// line. Indexes past the staff keep extrapolating downward.
func (b Block) LineY(halfIndex uint32) float64 {
	return b.YTop + float64(halfIndex)*b.LineSpacing/2
}

// Height returns the staff's line span.
func (b Block) Height() float64 {
	return b.YBottom - b.YTop
}

// Staves is the computed geometry for all lanes of a snapshot, ordered
// top to bottom.
type Staves struct {
	Blocks []Block

	// slack is how far above the first and below the last staff a hit
	// still counts, half a scaled staff advance.
	slack float64
}

// Compute resolves lane geometry for one frame. Lanes are laid out in
// Position order; the input slice is not modified. Zero line counts are
// treated as one line, non-positive spacings as DefaultLineSpacing.
func Compute(ls []schedule.Lane, verticalScale float64, m Metrics) Staves {
	ordered := make([]schedule.Lane, len(ls))
	copy(ordered, ls)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	blocks := make([]Block, 0, len(ordered))
	y := m.TopMargin * verticalScale
	for _, lane := range ordered {
		lineCount := lane.LineCount
		if lineCount == 0 {
			lineCount = 1
		}
		spacing := lane.LineSpacingBase
		if spacing <= 0 {
			spacing = DefaultLineSpacing
		}
		spacing *= verticalScale

		blocks = append(blocks, Block{
			Lane:        lane,
			YTop:        y,
			YBottom:     y + float64(lineCount-1)*spacing,
			LineSpacing: spacing,
			LineCount:   lineCount,
		})
		y += float64(lineCount) * m.StaffSpacing * verticalScale
	}

	return Staves{
		Blocks: blocks,
		slack:  m.StaffSpacing * verticalScale / 2,
	}
}

// ByID returns the block for a lane id.
func (s Staves) ByID(id schedule.LaneID) (Block, bool) {
	for _, b := range s.Blocks {
		if b.Lane.ID == id {
			return b, true
		}
	}
	return Block{}, false
}

// HitTest returns the lane under a world-space Y. Gaps between staves
// belong to the nearer neighbor; above the first and below the last
// staff a hit counts within half a staff advance.
func (s Staves) HitTest(y float64) (Block, bool) {
	if len(s.Blocks) == 0 {
		return Block{}, false
	}
	first, last := s.Blocks[0], s.Blocks[len(s.Blocks)-1]
	if y < first.YTop-s.slack || y > last.YBottom+s.slack {
		return Block{}, false
	}
	for i := 0; i < len(s.Blocks)-1; i++ {
		boundary := (s.Blocks[i].YBottom + s.Blocks[i+1].YTop) / 2
		if y < boundary {
			return s.Blocks[i], true
		}
	}
	return last, true
}

// NearestHalfLine returns the half-line index closest to a world-space
// Y, clamped to the staff, and the snapped Y for that index.
func (b Block) NearestHalfLine(y float64) (uint32, float64) {
	if b.LineSpacing <= 0 || b.LineCount == 0 {
		return 0, b.YTop
	}
	idx := (y - b.YTop) / (b.LineSpacing / 2)
	if idx < 0 {
		idx = 0
	}
	half := int64(idx + 0.5)
	maxHalf := int64(2 * (b.LineCount - 1))
	if half > maxHalf {
		half = maxHalf
	}
	return uint32(half), b.LineY(uint32(half))
}

// Bottom returns the world-space Y just below the last staff, for
// content-height queries. Zero lanes yield zero.
func (s Staves) Bottom() float64 {
	if len(s.Blocks) == 0 {
		return 0
	}
	return s.Blocks[len(s.Blocks)-1].YBottom + s.slack
}
