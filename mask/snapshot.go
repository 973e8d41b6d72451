package mask

import "image"

// Snapshot is an immutable record of a mask's content and position. It
// shares chunk storage with the engine it came from; the engine copies a
// chunk before changing it.
type Snapshot struct {
	x, y   float64
	chunks map[chunkKey][]byte
}

// Snapshot records the current state. Chunks unchanged since the last
// Snapshot or Restore are not copied.
func (e *Engine) Snapshot() *Snapshot {
	s := &Snapshot{x: e.X, y: e.Y, chunks: make(map[chunkKey][]byte, len(e.chunks))}
	for k, c := range e.chunks {
		s.chunks[k] = c.Pix
		e.shared[k] = true
	}
	return s
}

// Restore replaces the current state with s. A nil snapshot clears the
// mask.
func (e *Engine) Restore(s *Snapshot) {
	e.Clear()
	e.stroke = nil
	if s == nil {
		return
	}
	e.X, e.Y = s.x, s.y
	for k, pix := range s.chunks {
		e.chunks[k] = &image.Alpha{Pix: pix, Stride: ChunkSize, Rect: chunkRect(k)}
		e.shared[k] = true
	}
}
