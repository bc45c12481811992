// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package ggback rasterizes stave scenes through the gg 2D canvas.
//
// The backend registers itself under the name "gg": importing this
// package for side effects makes stave.WithBackendName("gg") work.
// The data flow is:
//
//	scene.Node ops -> gg.Context (software raster) -> image / PNG
//
// # Usage
//
//	import _ "github.com/gogpu/stave/integration/ggback"
//
//	eng, err := stave.New(stave.WithBackendName("gg"))
//	...
//	eng.Render(snap, vp, 1280, 720)
//	img := eng.Backend().(scene.ImageBackend).Image()
//
// # Text
//
// Text ops need a font. The backend bundles Go Regular by default;
// hosts with their own typography call SetFontSource. Without a usable
// font, text ops are skipped, mirroring the gg convention of ignoring
// DrawString when no font is set.
//
// # Thread Safety
//
// Backend is NOT safe for concurrent use. The engine drives it from
// its frame goroutine.
package ggback
