package host

import (
	"context"
	"fmt"
	"sync"

	"github.com/gogpu/layerforge"
)

// ImageStore persists images as data URLs under caller-chosen ids.
type ImageStore interface {
	SaveImage(ctx context.Context, id, dataURL string) error
	RemoveImage(ctx context.Context, id string) error
	// LoadImage returns an error matching layerforge.ErrIO when id is unknown.
	LoadImage(ctx context.Context, id string) (string, error)
}

// MemoryStore is an ImageStore held in process memory. The zero value is
// ready to use.
type MemoryStore struct {
	mu     sync.RWMutex
	images map[string]string
}

var _ ImageStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) SaveImage(ctx context.Context, id, dataURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return layerforge.Wrap("host: save image", layerforge.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.images == nil {
		s.images = make(map[string]string)
	}
	s.images[id] = dataURL
	return nil
}

func (s *MemoryStore) RemoveImage(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.images, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) LoadImage(ctx context.Context, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.images[id]
	if !ok {
		return "", fmt.Errorf("host: image %q not found: %w", id, layerforge.ErrIO)
	}
	return v, nil
}

// Len returns the number of stored images.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.images)
}
