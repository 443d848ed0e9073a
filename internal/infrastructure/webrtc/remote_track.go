package webrtc

import (
	"sync"

	"github.com/pion/rtcp"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v3"
	"go.uber.org/zap"

	"tilecast/internal/core/domain"
)

// DefaultAudioLevelExtensionID is the usual negotiated id of the
// urn:ietf:params:rtp-hdrext:ssrc-audio-level header extension.
const DefaultAudioLevelExtensionID uint8 = 1

// RTCPWriter sends RTCP feedback toward the publisher, typically
// PeerConnection.WriteRTCP.
type RTCPWriter func(pkts []rtcp.Packet) error

type rtpSource interface {
	ReadRTP() (*rtp.Packet, error)
}

type remoteSource struct {
	track *webrtc.TrackRemote
}

func (s remoteSource) ReadRTP() (*rtp.Packet, error) {
	pkt, _, err := s.track.ReadRTP()
	return pkt, err
}

// RemoteTrack adapts a negotiated pion remote track to the grid's track
// handle. Audio energy comes from the ssrc-audio-level RTP header
// extension; Play on a video track requests a keyframe so the fresh
// surface paints without waiting for the next natural one.
type RemoteTrack struct {
	id            domain.TrackID
	kind          domain.TrackKind
	ssrc          uint32
	source        rtpSource
	rtcpWriter    RTCPWriter
	audioLevelExt uint8
	logger        *zap.SugaredLogger

	mu      sync.Mutex
	enabled bool
	level   float64
	playing bool
	stopCh  chan struct{}
}

func NewRemoteTrack(track *webrtc.TrackRemote, rtcpWriter RTCPWriter, audioLevelExt uint8, logger *zap.SugaredLogger) *RemoteTrack {
	kind := domain.TrackKindVideo
	if track.Kind() == webrtc.RTPCodecTypeAudio {
		kind = domain.TrackKindAudio
	}
	return newRemoteTrack(
		domain.TrackID(track.ID()),
		kind,
		uint32(track.SSRC()),
		remoteSource{track: track},
		rtcpWriter,
		audioLevelExt,
		logger,
	)
}

func newRemoteTrack(
	id domain.TrackID,
	kind domain.TrackKind,
	ssrc uint32,
	source rtpSource,
	rtcpWriter RTCPWriter,
	audioLevelExt uint8,
	logger *zap.SugaredLogger,
) *RemoteTrack {
	if audioLevelExt == 0 {
		audioLevelExt = DefaultAudioLevelExtensionID
	}
	return &RemoteTrack{
		id:            id,
		kind:          kind,
		ssrc:          ssrc,
		source:        source,
		rtcpWriter:    rtcpWriter,
		audioLevelExt: audioLevelExt,
		logger:        logger,
		enabled:       true,
	}
}

var _ domain.Track = (*RemoteTrack)(nil)

func (t *RemoteTrack) ID() domain.TrackID {
	return t.id
}

func (t *RemoteTrack) Kind() domain.TrackKind {
	return t.kind
}

func (t *RemoteTrack) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

// SetEnabled reflects the publisher's mute state, forwarded by the session
// layer out of band.
func (t *RemoteTrack) SetEnabled(enabled bool) {
	t.mu.Lock()
	t.enabled = enabled
	if !enabled {
		t.level = 0
	}
	t.mu.Unlock()
}

func (t *RemoteTrack) VolumeLevel() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.level
}

// Play starts consuming the track. Playing an already-playing track is a
// no-op; the binder owns target exclusivity.
func (t *RemoteTrack) Play(target domain.RenderTarget) error {
	t.mu.Lock()
	if t.playing {
		t.mu.Unlock()
		return nil
	}
	t.playing = true
	t.stopCh = make(chan struct{})
	stop := t.stopCh
	t.mu.Unlock()

	if t.kind == domain.TrackKindVideo {
		t.requestKeyframe()
	}

	t.logger.Debugw("remote track playing",
		"track_id", t.id,
		"kind", t.kind,
		"target", target.ID(),
	)

	go t.readLoop(stop)
	return nil
}

func (t *RemoteTrack) Stop() {
	t.mu.Lock()
	if t.stopCh != nil {
		close(t.stopCh)
		t.stopCh = nil
	}
	t.playing = false
	t.level = 0
	t.mu.Unlock()
}

func (t *RemoteTrack) requestKeyframe() {
	if t.rtcpWriter == nil {
		return
	}
	err := t.rtcpWriter([]rtcp.Packet{
		&rtcp.PictureLossIndication{MediaSSRC: t.ssrc},
	})
	if err != nil {
		t.logger.Debugw("keyframe request failed",
			"track_id", t.id,
			"error", err,
		)
	}
}

func (t *RemoteTrack) readLoop(stop chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}

		pkt, err := t.source.ReadRTP()
		if err != nil {
			t.logger.Debugw("remote track read ended",
				"track_id", t.id,
				"error", err,
			)
			return
		}

		if t.kind == domain.TrackKindAudio {
			t.updateLevel(pkt)
		}
	}
}

// updateLevel derives the instantaneous energy from the audio-level header
// extension. The extension reports -dBov in [0, 127] with 127 meaning
// silence; it maps linearly onto [0, 1].
func (t *RemoteTrack) updateLevel(pkt *rtp.Packet) {
	raw := pkt.GetExtension(t.audioLevelExt)
	if raw == nil {
		return
	}

	var ext rtp.AudioLevelExtension
	if err := ext.Unmarshal(raw); err != nil {
		return
	}

	level := 1 - float64(ext.Level)/127
	t.mu.Lock()
	t.level = level
	t.mu.Unlock()
}
