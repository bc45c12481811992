package scene

import (
	"fmt"
	"strings"

	"github.com/gogpu/stave/geom"
)

func init() {
	Register("record", func() Backend {
		return NewRecorder()
	})
}

// Recorder is a backend that captures frames as canonical text instead
// of pixels. Golden tests diff its dump; the inspect command prints it.
//
// The dump format is line oriented: a frame header, one line per node,
// and one indented line per op. Floats use the shortest representation
// that round-trips, so dumps are stable across runs.
type Recorder struct {
	lines  []string
	frames int
	nodes  int
	ops    int
	began  bool
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Begin implements Backend. It starts a new capture, discarding any
// previous frame.
func (r *Recorder) Begin(width, height int) error {
	r.lines = r.lines[:0]
	r.nodes = 0
	r.ops = 0
	r.began = true
	r.lines = append(r.lines, fmt.Sprintf("frame %dx%d", width, height))
	return nil
}

// Paint implements Backend.
func (r *Recorder) Paint(nodes []*Node) error {
	if !r.began {
		return fmt.Errorf("scene: recorder Paint outside Begin/End")
	}
	for _, n := range nodes {
		if n == nil {
			continue
		}
		r.nodes++
		r.lines = append(r.lines, fmt.Sprintf("%s z=%d ops=%d", n.Key, n.Z, len(n.Ops)))
		for _, op := range n.Ops {
			r.ops++
			r.lines = append(r.lines, "  "+formatOp(op))
		}
	}
	return nil
}

// End implements Backend.
func (r *Recorder) End() error {
	if !r.began {
		return fmt.Errorf("scene: recorder End outside Begin")
	}
	r.began = false
	r.frames++
	return nil
}

// Dump returns the captured frame as text. The result ends with a
// newline when anything was captured.
func (r *Recorder) Dump() string {
	if len(r.lines) == 0 {
		return ""
	}
	return strings.Join(r.lines, "\n") + "\n"
}

// Frames returns the number of completed frames.
func (r *Recorder) Frames() int {
	return r.frames
}

// NodeCount returns the number of nodes painted in the current capture.
func (r *Recorder) NodeCount() int {
	return r.nodes
}

// OpCount returns the number of ops painted in the current capture.
func (r *Recorder) OpCount() int {
	return r.ops
}

// formatOp renders one op as a canonical line.
func formatOp(op Op) string {
	switch o := op.(type) {
	case FillRectOp:
		return fmt.Sprintf("fillrect %s %s", formatRect(o.Rect), formatColor(o.Color))
	case StrokeRectOp:
		return fmt.Sprintf("strokerect %s %s w=%g%s",
			formatRect(o.Rect), formatColor(o.Color), o.Width, formatDash(o.Dash))
	case LineOp:
		return fmt.Sprintf("line %s-%s %s w=%g%s",
			formatPoint(o.From), formatPoint(o.To), formatColor(o.Color), o.Width, formatDash(o.Dash))
	case CubicOp:
		return fmt.Sprintf("cubic %s %s %s %s %s w=%g%s",
			formatPoint(o.From), formatPoint(o.C1), formatPoint(o.C2), formatPoint(o.To),
			formatColor(o.Color), o.Width, formatDash(o.Dash))
	case FillPolyOp:
		var b strings.Builder
		b.WriteString("fillpoly")
		for _, p := range o.Points {
			b.WriteByte(' ')
			b.WriteString(formatPoint(p))
		}
		b.WriteByte(' ')
		b.WriteString(formatColor(o.Color))
		return b.String()
	case TextOp:
		return fmt.Sprintf("text %s %q size=%g %s",
			formatPoint(o.Pos), o.Text, o.Size, formatColor(o.Color))
	default:
		return fmt.Sprintf("unknown kind=%s", op.Kind())
	}
}

func formatPoint(p geom.Point) string {
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}

func formatRect(r geom.Rect) string {
	return fmt.Sprintf("(%g,%g %g,%g)", r.MinX, r.MinY, r.MaxX, r.MaxY)
}

func formatColor(c Color) string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func formatDash(dash []float64) string {
	if len(dash) == 0 {
		return ""
	}
	parts := make([]string, len(dash))
	for i, d := range dash {
		parts[i] = fmt.Sprintf("%g", d)
	}
	return " dash=[" + strings.Join(parts, " ") + "]"
}
