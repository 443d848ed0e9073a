package ports

import (
	"context"

	"tilecast/internal/core/domain"
)

// TrackBinder attaches live tracks to render targets. It is the only
// mutator of the uid -> render target registry, so the idempotent-bind /
// always-unbind contract holds without exposing mutable aliasing.
type TrackBinder interface {
	// SetTarget registers (or replaces) the render target for a tile.
	SetTarget(uid domain.UID, target domain.RenderTarget)
	// RemoveTarget unbinds whatever renders into the tile and drops it.
	RemoveTarget(uid domain.UID)

	// Bind plays track into the tile's target. Binding the same track to
	// the same target twice is a no-op; a replaced track is torn down
	// before the new one starts.
	Bind(uid domain.UID, track domain.Track) error
	// Unbind stops the track and releases its binding.
	Unbind(track domain.Track)
	// UnbindUID releases whatever track is bound to the tile.
	UnbindUID(uid domain.UID)
	// UnbindAll releases every current binding. Called on grid teardown.
	UnbindAll()

	// BoundUIDs lists tiles that currently have a track bound.
	BoundUIDs() []domain.UID
	// BindCount and UnbindCount expose lifetime accounting; after
	// teardown the two must be equal.
	BindCount() uint64
	UnbindCount() uint64
}

// CallService manages one grid per active call.
type CallService interface {
	Reconcile(ctx context.Context, callID domain.CallID, props GridProps) domain.Frame
	TogglePin(ctx context.Context, callID domain.CallID, uid domain.UID) (domain.Frame, error)
	Frame(ctx context.Context, callID domain.CallID) (domain.Frame, error)
	SetRenderTarget(ctx context.Context, callID domain.CallID, uid domain.UID, target domain.RenderTarget) error
	Subscribe(callID domain.CallID, fn func(domain.Frame)) (cancel func(), err error)
	End(ctx context.Context, callID domain.CallID) error
}

// LocalTracks carries the local feed's handles; either may be nil.
type LocalTracks struct {
	Video domain.Track
	Audio domain.Track
}

// GridProps is the external input of one reconciliation pass.
type GridProps struct {
	LocalUser       domain.Participant
	LocalTracks     LocalTracks
	RemoteUsers     []domain.Participant
	IsStreaming     bool
	CreatorID       string
	MaxVisibleUsers int
}

// MetricsSink receives grid observability signals. Implemented by the
// prometheus collector; nil-safe wrappers live at the call sites.
type MetricsSink interface {
	RecordReconcile(callID domain.CallID, participants, speaking, overflow int)
	RecordBind()
	RecordUnbind()
	RecordCallEnded(callID domain.CallID)
}
