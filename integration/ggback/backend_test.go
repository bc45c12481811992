// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ggback

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/stave/geom"
	"github.com/gogpu/stave/scene"
)

func testNodes() []*scene.Node {
	body := &scene.Node{Key: scene.Key{Kind: scene.KindGrid}}
	body.Append(
		scene.FillRectOp{Rect: geom.RectXYWH(0, 0, 64, 64), Color: scene.RGB(200, 30, 30)},
		scene.LineOp{From: geom.Pt(0, 32), To: geom.Pt(64, 32), Color: scene.RGB(0, 0, 0), Width: 1},
	)
	item := &scene.Node{Key: scene.Key{Kind: scene.KindItem, ID: "a"}, Z: 10}
	item.Append(
		scene.StrokeRectOp{Rect: geom.RectXYWH(8, 8, 24, 12), Color: scene.RGB(10, 10, 10), Width: 1, Dash: []float64{4, 2}},
		scene.CubicOp{From: geom.Pt(8, 40), C1: geom.Pt(16, 30), C2: geom.Pt(24, 50), To: geom.Pt(32, 40), Color: scene.RGB(0, 0, 200), Width: 1.5},
		scene.FillPolyOp{Points: []geom.Point{geom.Pt(40, 40), geom.Pt(48, 36), geom.Pt(48, 44)}, Color: scene.RGB(0, 120, 0)},
		scene.TextOp{Pos: geom.Pt(10, 20), Text: "a", Size: 11, Color: scene.RGB(0, 0, 0)},
	)
	return []*scene.Node{body, item}
}

func renderFrame(t *testing.T, b *Backend) {
	t.Helper()
	if err := b.Begin(64, 64); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := b.Paint(testNodes()); err != nil {
		t.Fatalf("Paint: %v", err)
	}
	if err := b.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
}

func TestBackendRegistered(t *testing.T) {
	be, err := scene.NewBackend(Name)
	if err != nil {
		t.Fatalf("NewBackend(%q): %v", Name, err)
	}
	if _, ok := be.(*Backend); !ok {
		t.Errorf("registered backend is %T, want *Backend", be)
	}
}

func TestBackendPaintsFrame(t *testing.T) {
	b := New()
	renderFrame(t, b)

	img := b.Image()
	if img == nil {
		t.Fatal("Image() = nil after a frame")
	}
	bounds := img.Bounds()
	if bounds.Dx() != 64 || bounds.Dy() != 64 {
		t.Fatalf("bounds = %v, want 64x64", bounds)
	}

	// The background fill must show through where nothing else painted.
	r, g, _, a := img.At(5, 5).RGBA()
	if r>>8 < 150 || g>>8 > 80 || a>>8 < 200 {
		t.Errorf("pixel (5,5) = %v, want the red background fill", img.At(5, 5))
	}
}

func TestBackendFrameBracketing(t *testing.T) {
	b := New()
	if err := b.Paint(testNodes()); err == nil {
		t.Error("Paint before Begin did not fail")
	}
	if err := b.End(); err == nil {
		t.Error("End before Begin did not fail")
	}
	if err := b.Begin(0, 10); err == nil {
		t.Error("Begin with zero width did not fail")
	}
}

func TestBackendResizesAcrossFrames(t *testing.T) {
	b := New()
	renderFrame(t, b)

	if err := b.Begin(128, 32); err != nil {
		t.Fatalf("second Begin: %v", err)
	}
	if err := b.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
	bounds := b.Image().Bounds()
	if bounds.Dx() != 128 || bounds.Dy() != 32 {
		t.Errorf("bounds = %v, want 128x32 after resize", bounds)
	}
}

func TestBackendWriteFile(t *testing.T) {
	b := New()
	if err := b.WriteFile(filepath.Join(t.TempDir(), "x.png")); err == nil {
		t.Error("WriteFile before any frame did not fail")
	}

	renderFrame(t, b)
	path := filepath.Join(t.TempDir(), "frame.png")
	if err := b.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != 64 || cfg.Height != 64 {
		t.Errorf("png is %dx%d, want 64x64", cfg.Width, cfg.Height)
	}
}

func TestBackendSkipsTextWithoutFont(t *testing.T) {
	b := New()
	b.SetFontSource(nil)

	if err := b.Begin(32, 32); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	n := &scene.Node{Key: scene.Key{Kind: scene.KindLane, ID: "l"}}
	n.Append(scene.TextOp{Pos: geom.Pt(4, 16), Text: "quiet", Size: 11, Color: scene.RGB(0, 0, 0)})
	if err := b.Paint([]*scene.Node{n}); err != nil {
		t.Errorf("Paint with disabled text failed: %v", err)
	}
	if err := b.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
}

func TestBackendFaceCache(t *testing.T) {
	b := New()
	if b.source == nil {
		t.Skip("bundled font failed to parse")
	}
	f1 := b.face(11)
	f2 := b.face(11)
	if f1 == nil || f2 == nil {
		t.Fatal("face(11) = nil with a valid source")
	}
	if f1 != f2 {
		t.Error("face cache returned distinct faces for one size")
	}
	if b.face(14) == f1 {
		t.Error("distinct sizes share a face")
	}
}
