package services

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"tilecast/internal/core/domain"
)

const (
	// DefaultSpeakingInterval is how often audio energy is sampled while
	// tracks are present.
	DefaultSpeakingInterval = 200 * time.Millisecond
	// DefaultSpeakingThreshold is the energy level above which a
	// participant counts as speaking for the current tick.
	DefaultSpeakingThreshold = 0.1
)

// SpeakingDetector polls the volume level of every known audio track on a
// fixed interval and replaces the speaking set wholesale each tick. The
// sampling goroutine runs only while at least one audio track is present
// and the detector has not been stopped; no timer outlives either
// condition.
type SpeakingDetector struct {
	interval  time.Duration
	threshold float64
	logger    *zap.SugaredLogger

	mu       sync.Mutex
	tracks   map[domain.UID]domain.Track
	speaking domain.SpeakingSet
	onChange func(domain.SpeakingSet)
	stopCh   chan struct{}
	stopped  bool
}

func NewSpeakingDetector(interval time.Duration, threshold float64, logger *zap.SugaredLogger) *SpeakingDetector {
	if interval <= 0 {
		interval = DefaultSpeakingInterval
	}
	if threshold <= 0 {
		threshold = DefaultSpeakingThreshold
	}
	return &SpeakingDetector{
		interval:  interval,
		threshold: threshold,
		logger:    logger,
		speaking:  domain.SpeakingSet{},
	}
}

// OnChange registers the callback invoked whenever the speaking set
// differs from the previous tick. Unchanged ticks stay silent so callers
// only re-render on actual transitions.
func (d *SpeakingDetector) OnChange(fn func(domain.SpeakingSet)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onChange = fn
}

// SetTracks replaces the sampled audio track set. The loop starts when the
// set becomes non-empty and stops as soon as it is empty, which also
// clears any lingering speaking state.
func (d *SpeakingDetector) SetTracks(tracks map[domain.UID]domain.Track) {
	var notify func(domain.SpeakingSet)
	var cleared domain.SpeakingSet

	d.mu.Lock()
	d.tracks = make(map[domain.UID]domain.Track, len(tracks))
	for uid, track := range tracks {
		if track != nil {
			d.tracks[uid] = track
		}
	}

	if len(d.tracks) == 0 {
		d.haltLocked()
		if len(d.speaking) != 0 {
			d.speaking = domain.SpeakingSet{}
			notify = d.onChange
			cleared = domain.SpeakingSet{}
		}
	} else if d.stopCh == nil && !d.stopped {
		d.stopCh = make(chan struct{})
		go d.loop(d.stopCh)
	}
	d.mu.Unlock()

	if notify != nil {
		notify(cleared)
	}
}

// Speaking returns a copy of the current speaking set.
func (d *SpeakingDetector) Speaking() domain.SpeakingSet {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.speaking.Clone()
}

func (d *SpeakingDetector) IsSpeaking(uid domain.UID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.speaking.Has(uid)
}

// Resume lifts a previous Stop so the next SetTracks call may start the
// sampling loop again. Called on grid mount.
func (d *SpeakingDetector) Resume() {
	d.mu.Lock()
	d.stopped = false
	d.mu.Unlock()
}

// Stop halts sampling until Resume. Called on grid unmount.
func (d *SpeakingDetector) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.haltLocked()
	d.speaking = domain.SpeakingSet{}
	d.mu.Unlock()
}

func (d *SpeakingDetector) haltLocked() {
	if d.stopCh != nil {
		close(d.stopCh)
		d.stopCh = nil
	}
}

func (d *SpeakingDetector) loop(stop chan struct{}) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			d.sample()
		}
	}
}

// sample reads one instantaneous level per audio track and replaces the
// speaking set. A participant leaves the set the moment a tick reads at or
// below the threshold.
func (d *SpeakingDetector) sample() {
	d.mu.Lock()
	tracks := make(map[domain.UID]domain.Track, len(d.tracks))
	for uid, track := range d.tracks {
		tracks[uid] = track
	}
	d.mu.Unlock()

	next := make(domain.SpeakingSet, len(tracks))
	for uid, track := range tracks {
		if track.VolumeLevel() > d.threshold {
			next[uid] = struct{}{}
		}
	}

	d.mu.Lock()
	changed := !next.Equal(d.speaking)
	d.speaking = next
	fn := d.onChange
	d.mu.Unlock()

	if changed && fn != nil {
		fn(next.Clone())
	}
}
