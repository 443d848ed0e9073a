package render

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"tilecast/internal/core/domain"
)

type stubTarget struct {
	id string
}

func (t stubTarget) ID() string { return t.id }

type stubTrack struct {
	id domain.TrackID

	mu        sync.Mutex
	playErr   error
	playCalls int
	stopCalls int
}

func (t *stubTrack) ID() domain.TrackID     { return t.id }
func (t *stubTrack) Kind() domain.TrackKind { return domain.TrackKindVideo }
func (t *stubTrack) Enabled() bool          { return true }
func (t *stubTrack) VolumeLevel() float64   { return 0 }

func (t *stubTrack) Play(target domain.RenderTarget) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.playErr != nil {
		return t.playErr
	}
	t.playCalls++
	return nil
}

func (t *stubTrack) Stop() {
	t.mu.Lock()
	t.stopCalls++
	t.mu.Unlock()
}

func newTestBinder(t *testing.T) *Binder {
	return NewBinder(nil, zaptest.NewLogger(t).Sugar())
}

func TestBinder_BindIsIdempotent(t *testing.T) {
	binder := newTestBinder(t)
	track := &stubTrack{id: "cam"}
	binder.SetTarget("a", stubTarget{id: "tile-a"})

	require.NoError(t, binder.Bind("a", track))
	require.NoError(t, binder.Bind("a", track))

	assert.Equal(t, 1, track.playCalls)
	assert.Equal(t, uint64(1), binder.BindCount())
}

func TestBinder_BindWithoutTargetFails(t *testing.T) {
	binder := newTestBinder(t)
	err := binder.Bind("a", &stubTrack{id: "cam"})
	assert.ErrorIs(t, err, domain.ErrTargetNotMounted)
	assert.Empty(t, binder.BoundUIDs())
}

func TestBinder_ReplacingTrackTearsDownPrevious(t *testing.T) {
	binder := newTestBinder(t)
	binder.SetTarget("a", stubTarget{id: "tile-a"})

	oldTrack := &stubTrack{id: "cam-old"}
	newTrack := &stubTrack{id: "cam-new"}
	require.NoError(t, binder.Bind("a", oldTrack))
	require.NoError(t, binder.Bind("a", newTrack))

	assert.Equal(t, 1, oldTrack.stopCalls)
	assert.Equal(t, 1, newTrack.playCalls)
	assert.Equal(t, uint64(2), binder.BindCount())
	assert.Equal(t, uint64(1), binder.UnbindCount())
}

func TestBinder_TrackMovingTilesReleasesOldBinding(t *testing.T) {
	binder := newTestBinder(t)
	binder.SetTarget("a", stubTarget{id: "tile-a"})
	binder.SetTarget("b", stubTarget{id: "tile-b"})

	track := &stubTrack{id: "cam"}
	require.NoError(t, binder.Bind("a", track))
	require.NoError(t, binder.Bind("b", track))

	assert.Equal(t, 1, track.stopCalls)
	assert.Equal(t, []domain.UID{"b"}, binder.BoundUIDs())
}

func TestBinder_PlayFailureLeavesNothingBound(t *testing.T) {
	binder := newTestBinder(t)
	binder.SetTarget("a", stubTarget{id: "tile-a"})

	track := &stubTrack{id: "cam", playErr: errors.New("not ready")}
	err := binder.Bind("a", track)
	require.Error(t, err)

	assert.Empty(t, binder.BoundUIDs())
	assert.Zero(t, binder.BindCount())
	assert.Zero(t, binder.UnbindCount())
}

func TestBinder_ReplacingTargetUnbinds(t *testing.T) {
	binder := newTestBinder(t)
	binder.SetTarget("a", stubTarget{id: "tile-a"})

	track := &stubTrack{id: "cam"}
	require.NoError(t, binder.Bind("a", track))

	binder.SetTarget("a", stubTarget{id: "tile-a-v2"})
	assert.Equal(t, 1, track.stopCalls)
	assert.Empty(t, binder.BoundUIDs())

	// The new surface accepts the next bind.
	require.NoError(t, binder.Bind("a", track))
	assert.Equal(t, 2, track.playCalls)
}

func TestBinder_RemoveTargetUnbinds(t *testing.T) {
	binder := newTestBinder(t)
	binder.SetTarget("a", stubTarget{id: "tile-a"})

	track := &stubTrack{id: "cam"}
	require.NoError(t, binder.Bind("a", track))

	binder.RemoveTarget("a")
	assert.Equal(t, 1, track.stopCalls)
	assert.ErrorIs(t, binder.Bind("a", track), domain.ErrTargetNotMounted)
}

func TestBinder_UnbindAllBalancesTheBooks(t *testing.T) {
	binder := newTestBinder(t)
	tracks := []*stubTrack{{id: "cam-a"}, {id: "cam-b"}, {id: "cam-c"}}
	for i, track := range tracks {
		uid := domain.UID(string(rune('a' + i)))
		binder.SetTarget(uid, stubTarget{id: "tile-" + string(uid)})
		require.NoError(t, binder.Bind(uid, track))
	}

	binder.UnbindAll()

	for _, track := range tracks {
		assert.Equal(t, 1, track.stopCalls)
	}
	assert.Empty(t, binder.BoundUIDs())
	assert.Equal(t, binder.BindCount(), binder.UnbindCount())
}

func TestBinder_NilTrackIsRejected(t *testing.T) {
	binder := newTestBinder(t)
	binder.SetTarget("a", stubTarget{id: "tile-a"})
	assert.ErrorIs(t, binder.Bind("a", nil), domain.ErrTrackNotBound)
}
