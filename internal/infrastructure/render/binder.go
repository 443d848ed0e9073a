package render

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"tilecast/internal/core/domain"
	"tilecast/internal/core/ports"
)

type binding struct {
	track  domain.Track
	uid    domain.UID
	target domain.RenderTarget
}

// Binder is the owned registry from participant uid to render target, and
// the only mutator of track bindings. Bind is idempotent; replacing a
// track tears the previous one down first; UnbindAll releases everything
// on teardown. After teardown the unbind count equals the bind count.
type Binder struct {
	logger  *zap.SugaredLogger
	metrics ports.MetricsSink

	mu      sync.Mutex
	targets map[domain.UID]domain.RenderTarget
	byTrack map[domain.TrackID]*binding
	byUID   map[domain.UID]domain.TrackID
	binds   uint64
	unbinds uint64
}

func NewBinder(metrics ports.MetricsSink, logger *zap.SugaredLogger) *Binder {
	return &Binder{
		logger:  logger,
		metrics: metrics,
		targets: make(map[domain.UID]domain.RenderTarget),
		byTrack: make(map[domain.TrackID]*binding),
		byUID:   make(map[domain.UID]domain.TrackID),
	}
}

var _ ports.TrackBinder = (*Binder)(nil)

// SetTarget registers or replaces the render target for a tile. Replacing
// the surface under a live binding releases the binding; the next pass
// rebinds into the new surface.
func (b *Binder) SetTarget(uid domain.UID, target domain.RenderTarget) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if prev, ok := b.targets[uid]; ok && target != nil && prev.ID() == target.ID() {
		b.targets[uid] = target
		return
	}
	b.unbindUIDLocked(uid)
	if target == nil {
		delete(b.targets, uid)
		return
	}
	b.targets[uid] = target
}

func (b *Binder) RemoveTarget(uid domain.UID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unbindUIDLocked(uid)
	delete(b.targets, uid)
}

// Bind plays track into uid's registered target. Same track, same target
// is a no-op. A different track already on the target, or the same track
// on a different target, is torn down before the new binding starts so two
// tracks never write to one surface.
func (b *Binder) Bind(uid domain.UID, track domain.Track) error {
	if track == nil {
		return domain.ErrTrackNotBound
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	target, ok := b.targets[uid]
	if !ok {
		return domain.ErrTargetNotMounted
	}

	if cur, ok := b.byTrack[track.ID()]; ok {
		if cur.uid == uid && cur.target.ID() == target.ID() {
			return nil
		}
		b.releaseLocked(cur)
	}
	if curID, ok := b.byUID[uid]; ok {
		if cur, ok := b.byTrack[curID]; ok {
			b.releaseLocked(cur)
		}
	}

	if err := track.Play(target); err != nil {
		return fmt.Errorf("play track %s: %w", track.ID(), err)
	}

	b.byTrack[track.ID()] = &binding{track: track, uid: uid, target: target}
	b.byUID[uid] = track.ID()
	b.binds++
	if b.metrics != nil {
		b.metrics.RecordBind()
	}

	b.logger.Debugw("track bound",
		"uid", uid,
		"track_id", track.ID(),
		"target", target.ID(),
	)
	return nil
}

func (b *Binder) Unbind(track domain.Track) {
	if track == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if cur, ok := b.byTrack[track.ID()]; ok {
		b.releaseLocked(cur)
	}
}

func (b *Binder) UnbindUID(uid domain.UID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unbindUIDLocked(uid)
}

func (b *Binder) UnbindAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, cur := range b.byTrack {
		b.releaseLocked(cur)
	}
}

func (b *Binder) BoundUIDs() []domain.UID {
	b.mu.Lock()
	defer b.mu.Unlock()
	uids := make([]domain.UID, 0, len(b.byUID))
	for uid := range b.byUID {
		uids = append(uids, uid)
	}
	return uids
}

func (b *Binder) BindCount() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.binds
}

func (b *Binder) UnbindCount() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.unbinds
}

func (b *Binder) unbindUIDLocked(uid domain.UID) {
	trackID, ok := b.byUID[uid]
	if !ok {
		return
	}
	if cur, ok := b.byTrack[trackID]; ok {
		b.releaseLocked(cur)
	}
}

func (b *Binder) releaseLocked(cur *binding) {
	cur.track.Stop()
	delete(b.byTrack, cur.track.ID())
	delete(b.byUID, cur.uid)
	b.unbinds++
	if b.metrics != nil {
		b.metrics.RecordUnbind()
	}

	b.logger.Debugw("track unbound",
		"uid", cur.uid,
		"track_id", cur.track.ID(),
	)
}
