package services

import (
	"sync"

	"tilecast/internal/core/domain"
)

type fakeTarget struct {
	id string
}

func (t fakeTarget) ID() string { return t.id }

// fakeTrack is a controllable stand-in for a live media session handle.
type fakeTrack struct {
	id   domain.TrackID
	kind domain.TrackKind

	mu        sync.Mutex
	enabled   bool
	level     float64
	playErr   error
	playCalls int
	stopCalls int
	reads     int
}

func newFakeVideoTrack(id string) *fakeTrack {
	return &fakeTrack{id: domain.TrackID(id), kind: domain.TrackKindVideo, enabled: true}
}

func newFakeAudioTrack(id string, level float64) *fakeTrack {
	return &fakeTrack{id: domain.TrackID(id), kind: domain.TrackKindAudio, enabled: true, level: level}
}

func (t *fakeTrack) ID() domain.TrackID { return t.id }

func (t *fakeTrack) Kind() domain.TrackKind { return t.kind }

func (t *fakeTrack) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

func (t *fakeTrack) Play(target domain.RenderTarget) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.playErr != nil {
		return t.playErr
	}
	t.playCalls++
	return nil
}

func (t *fakeTrack) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopCalls++
}

func (t *fakeTrack) VolumeLevel() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reads++
	return t.level
}

func (t *fakeTrack) setLevel(level float64) {
	t.mu.Lock()
	t.level = level
	t.mu.Unlock()
}

func (t *fakeTrack) setEnabled(enabled bool) {
	t.mu.Lock()
	t.enabled = enabled
	t.mu.Unlock()
}

func (t *fakeTrack) setPlayErr(err error) {
	t.mu.Lock()
	t.playErr = err
	t.mu.Unlock()
}

func (t *fakeTrack) playCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.playCalls
}

func (t *fakeTrack) stopCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopCalls
}

func (t *fakeTrack) readCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reads
}

func remoteUser(uid string, role domain.Role) domain.Participant {
	return domain.Participant{
		UID:  domain.UID(uid),
		Name: uid,
		Role: role,
	}
}
