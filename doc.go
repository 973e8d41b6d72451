// Package layerforge is the compositing and interaction core of a layered
// image canvas editor.
//
// # Overview
//
// Raster layers are placed on an infinite world plane, transformed (move,
// resize, rotate, flip, crop), blended with one of twelve blend modes and
// flattened into a fixed output area together with a paintable mask. The
// result is exported as a PNG image plus a white-with-alpha PNG mask.
//
// # Architecture
//
// The module is organized leaf-first:
//   - geom: vectors, rectangles, rotation and grid snapping
//   - layer: layer records, blend modes and the z-ordered Store
//   - feather: distance-field edge feathering with a content-keyed cache
//   - mask: chunked world-space alpha mask with a paint brush
//   - composite: renders layers into pixel buffers and flattens exports
//   - selection: selected set and the two-tier clipboard
//   - interaction: the pointer/keyboard gesture state machine
//   - history: snapshot undo/redo
//   - canvas: the editor aggregate tying the above together
//   - host: collaborators at the host boundary (storage, upload, mask editor)
//
// The layerforge command in cmd/layerforge renders saved documents to PNG.
//
// # Logging
//
// Nothing is logged by default. Call [SetLogger] to route diagnostics from
// every sub-package to a [log/slog] logger.
package layerforge
