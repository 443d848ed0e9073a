package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tilecast/internal/core/domain"
	"tilecast/internal/core/ports"
)

type callState struct {
	grid *Grid

	mu          sync.Mutex
	subscribers map[string]func(domain.Frame)
}

// callService owns one mounted grid per active call, persists the latest
// frame for reconnecting clients and fans new frames out to feed
// subscribers.
type callService struct {
	cfg     GridConfig
	frames  ports.FrameRepository
	binders func() ports.TrackBinder
	metrics ports.MetricsSink
	logger  *zap.SugaredLogger

	mu    sync.RWMutex
	calls map[domain.CallID]*callState
}

// NewCallService builds the call service. binders is a factory producing
// one track binder per grid, since binders own per-call render targets.
func NewCallService(
	cfg GridConfig,
	frames ports.FrameRepository,
	binders func() ports.TrackBinder,
	metrics ports.MetricsSink,
	logger *zap.SugaredLogger,
) ports.CallService {
	return &callService{
		cfg:     cfg,
		frames:  frames,
		binders: binders,
		metrics: metrics,
		logger:  logger,
		calls:   make(map[domain.CallID]*callState),
	}
}

func (s *callService) state(callID domain.CallID, create bool) (*callState, bool) {
	s.mu.RLock()
	st, ok := s.calls[callID]
	s.mu.RUnlock()
	if ok || !create {
		return st, ok
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok = s.calls[callID]; ok {
		return st, true
	}

	st = &callState{
		grid:        NewGrid(s.cfg, s.binders(), s.logger),
		subscribers: make(map[string]func(domain.Frame)),
	}
	st.grid.OnFrame(func(frame domain.Frame) {
		st.mu.Lock()
		fns := make([]func(domain.Frame), 0, len(st.subscribers))
		for _, fn := range st.subscribers {
			fns = append(fns, fn)
		}
		st.mu.Unlock()
		for _, fn := range fns {
			fn(frame)
		}
	})
	st.grid.Mount()
	s.calls[callID] = st

	s.logger.Infow("call grid mounted", "call_id", callID)
	return st, true
}

// Reconcile runs one pass for the call, creating and mounting its grid on
// first use, and persists the resulting frame.
func (s *callService) Reconcile(ctx context.Context, callID domain.CallID, props ports.GridProps) domain.Frame {
	st, _ := s.state(callID, true)
	frame := st.grid.Reconcile(props)

	if s.metrics != nil {
		speaking := 0
		for _, tile := range frame.Tiles {
			if tile.Audio == domain.AudioSpeaking {
				speaking++
			}
		}
		s.metrics.RecordReconcile(callID, len(frame.Tiles), speaking, frame.Overflow)
	}

	if err := s.frames.Save(ctx, callID, frame); err != nil {
		s.logger.Warnw("failed to persist frame snapshot",
			"call_id", callID,
			"error", err,
		)
	}
	return frame
}

func (s *callService) TogglePin(ctx context.Context, callID domain.CallID, uid domain.UID) (domain.Frame, error) {
	st, ok := s.state(callID, false)
	if !ok {
		return domain.Frame{}, domain.ErrCallNotFound
	}

	frame := st.grid.TogglePin(uid)
	if err := s.frames.Save(ctx, callID, frame); err != nil {
		s.logger.Warnw("failed to persist frame snapshot",
			"call_id", callID,
			"error", err,
		)
	}
	return frame, nil
}

// Frame returns the live frame when the call is active, falling back to
// the persisted snapshot for calls this instance no longer holds.
func (s *callService) Frame(ctx context.Context, callID domain.CallID) (domain.Frame, error) {
	if st, ok := s.state(callID, false); ok {
		return st.grid.Frame(), nil
	}

	frame, err := s.frames.Latest(ctx, callID)
	if err != nil {
		return domain.Frame{}, domain.ErrCallNotFound
	}
	return frame, nil
}

func (s *callService) SetRenderTarget(ctx context.Context, callID domain.CallID, uid domain.UID, target domain.RenderTarget) error {
	st, ok := s.state(callID, false)
	if !ok {
		return domain.ErrCallNotFound
	}
	st.grid.SetRenderTarget(uid, target)
	return nil
}

// Subscribe registers fn for every new frame of the call. The returned
// cancel must be called when the subscriber goes away.
func (s *callService) Subscribe(callID domain.CallID, fn func(domain.Frame)) (func(), error) {
	st, ok := s.state(callID, false)
	if !ok {
		return nil, domain.ErrCallNotFound
	}

	id := uuid.NewString()
	st.mu.Lock()
	st.subscribers[id] = fn
	st.mu.Unlock()

	return func() {
		st.mu.Lock()
		delete(st.subscribers, id)
		st.mu.Unlock()
	}, nil
}

// End unmounts the call's grid, releasing its bindings and timers, and
// drops the persisted snapshot.
func (s *callService) End(ctx context.Context, callID domain.CallID) error {
	s.mu.Lock()
	st, ok := s.calls[callID]
	if ok {
		delete(s.calls, callID)
	}
	s.mu.Unlock()

	if !ok {
		return domain.ErrCallNotFound
	}

	st.grid.Unmount()
	if s.metrics != nil {
		s.metrics.RecordCallEnded(callID)
	}
	if err := s.frames.Delete(ctx, callID); err != nil {
		s.logger.Warnw("failed to delete frame snapshot",
			"call_id", callID,
			"error", err,
		)
	}

	s.logger.Infow("call grid unmounted", "call_id", callID)
	return nil
}
