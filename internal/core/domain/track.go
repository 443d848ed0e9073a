package domain

type TrackID string
type CallID string

type TrackKind string

const (
	TrackKindAudio TrackKind = "audio"
	TrackKindVideo TrackKind = "video"
)

// RenderTarget is an opaque surface a video track renders into. The UI
// layer registers one per visible tile.
type RenderTarget interface {
	ID() string
}

// Track is a handle to a live media source negotiated by an external media
// session layer. tilecast never creates or destroys tracks; it only plays,
// stops and reads them.
type Track interface {
	ID() TrackID
	Kind() TrackKind
	Enabled() bool
	Play(target RenderTarget) error
	Stop()
	// VolumeLevel reports the instantaneous audio energy in [0, 1].
	// Video tracks report 0.
	VolumeLevel() float64
}
