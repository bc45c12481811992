// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ggback

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/stave/scene"
)

// Name is the backend's registry name.
const Name = "gg"

func init() {
	scene.Register(Name, func() scene.Backend { return New() })
}

// Common errors returned by Backend operations.
var (
	// ErrOutsideFrame is returned when Paint or End run without Begin.
	ErrOutsideFrame = errors.New("ggback: call outside Begin/End")

	// ErrNoFrame is returned when pixels are requested before any frame
	// was rendered.
	ErrNoFrame = errors.New("ggback: no frame rendered")
)

// Backend rasterizes scene nodes into a software gg context.
// It implements scene.Backend, scene.ImageBackend, and
// scene.FileBackend.
type Backend struct {
	dc     *gg.Context
	source *text.FontSource
	faces  map[float64]text.Face
	began  bool
}

var (
	_ scene.ImageBackend = (*Backend)(nil)
	_ scene.FileBackend  = (*Backend)(nil)
)

// New creates a backend with the bundled Go Regular font.
func New() *Backend {
	b := &Backend{faces: make(map[float64]text.Face)}
	if source, err := text.NewFontSource(goregular.TTF); err == nil {
		b.source = source
	}
	return b
}

// SetFontSource replaces the font used for text ops and drops the face
// cache. A nil source disables text rendering.
func (b *Backend) SetFontSource(source *text.FontSource) {
	b.source = source
	b.faces = make(map[float64]text.Face)
}

// Begin implements scene.Backend. The drawing context is created on
// the first frame and resized in place afterwards.
func (b *Backend) Begin(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("ggback: invalid frame size %dx%d", width, height)
	}
	if b.dc == nil {
		b.dc = gg.NewContext(width, height)
	} else if err := b.dc.Resize(width, height); err != nil {
		return fmt.Errorf("ggback: resize: %w", err)
	}
	b.dc.Clear()
	b.began = true
	return nil
}

// Paint implements scene.Backend. Nodes are drawn in slice order, ops
// within a node in append order. The first op error is remembered and
// returned after the frame finishes, so one degenerate op does not
// blank the rest of the frame.
func (b *Backend) Paint(nodes []*scene.Node) error {
	if !b.began {
		return ErrOutsideFrame
	}
	var first error
	for _, n := range nodes {
		if n == nil {
			continue
		}
		for _, op := range n.Ops {
			if err := b.draw(op); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}

// End implements scene.Backend.
func (b *Backend) End() error {
	if !b.began {
		return ErrOutsideFrame
	}
	b.began = false
	return nil
}

// Image implements scene.ImageBackend. It returns nil before the first
// frame.
func (b *Backend) Image() image.Image {
	if b.dc == nil {
		return nil
	}
	return b.dc.Image()
}

// WriteFile implements scene.FileBackend. The output format is PNG.
func (b *Backend) WriteFile(path string) error {
	if b.dc == nil {
		return ErrNoFrame
	}
	return b.dc.SavePNG(path)
}

func (b *Backend) draw(op scene.Op) error {
	switch o := op.(type) {
	case scene.FillRectOp:
		b.setColor(o.Color)
		b.dc.DrawRectangle(o.Rect.MinX, o.Rect.MinY, o.Rect.Width(), o.Rect.Height())
		return b.dc.Fill()

	case scene.StrokeRectOp:
		b.setColor(o.Color)
		b.dc.DrawRectangle(o.Rect.MinX, o.Rect.MinY, o.Rect.Width(), o.Rect.Height())
		return b.strokePath(o.Width, o.Dash)

	case scene.LineOp:
		b.setColor(o.Color)
		b.dc.DrawLine(o.From.X, o.From.Y, o.To.X, o.To.Y)
		return b.strokePath(o.Width, o.Dash)

	case scene.CubicOp:
		b.setColor(o.Color)
		b.dc.MoveTo(o.From.X, o.From.Y)
		b.dc.CubicTo(o.C1.X, o.C1.Y, o.C2.X, o.C2.Y, o.To.X, o.To.Y)
		return b.strokePath(o.Width, o.Dash)

	case scene.FillPolyOp:
		if len(o.Points) < 3 {
			return nil
		}
		b.setColor(o.Color)
		b.dc.MoveTo(o.Points[0].X, o.Points[0].Y)
		for _, p := range o.Points[1:] {
			b.dc.LineTo(p.X, p.Y)
		}
		b.dc.ClosePath()
		return b.dc.Fill()

	case scene.TextOp:
		face := b.face(o.Size)
		if face == nil {
			return nil
		}
		b.dc.SetFont(face)
		b.setColor(o.Color)
		b.dc.DrawString(o.Text, o.Pos.X, o.Pos.Y)
		return nil

	default:
		return fmt.Errorf("ggback: unknown op kind %s", op.Kind())
	}
}

func (b *Backend) setColor(c scene.Color) {
	b.dc.SetRGBA(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, float64(c.A)/255)
}

// strokePath strokes the current path with a width and optional dash
// pattern, restoring solid strokes afterwards.
func (b *Backend) strokePath(width float64, dash []float64) error {
	if width <= 0 {
		width = 1
	}
	b.dc.SetLineWidth(width)
	if len(dash) > 0 {
		b.dc.SetDash(dash...)
	}
	err := b.dc.Stroke()
	if len(dash) > 0 {
		b.dc.ClearDash()
	}
	return err
}

// face returns the cached face for a size, or nil without a source.
func (b *Backend) face(size float64) text.Face {
	if b.source == nil {
		return nil
	}
	if size <= 0 {
		size = 11
	}
	if f, ok := b.faces[size]; ok {
		return f
	}
	f := b.source.Face(size)
	b.faces[size] = f
	return f
}
