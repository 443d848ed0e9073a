package memory

import (
	"context"
	"sync"

	"tilecast/internal/core/domain"
	"tilecast/internal/core/ports"
)

type MemoryFrameRepository struct {
	mu     sync.RWMutex
	frames map[domain.CallID]domain.Frame
}

func NewMemoryFrameRepository() ports.FrameRepository {
	return &MemoryFrameRepository{
		frames: make(map[domain.CallID]domain.Frame),
	}
}

func (r *MemoryFrameRepository) Save(ctx context.Context, callID domain.CallID, frame domain.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames[callID] = frame
	return nil
}

func (r *MemoryFrameRepository) Latest(ctx context.Context, callID domain.CallID) (domain.Frame, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	frame, ok := r.frames[callID]
	if !ok {
		return domain.Frame{}, domain.ErrFrameNotFound
	}
	return frame, nil
}

func (r *MemoryFrameRepository) Delete(ctx context.Context, callID domain.CallID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.frames, callID)
	return nil
}
