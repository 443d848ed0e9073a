package services

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"tilecast/internal/core/domain"
	"tilecast/internal/core/ports"
)

// GridConfig carries the presentation knobs of one grid instance.
type GridConfig struct {
	MaxVisibleUsers   int
	SpeakingInterval  time.Duration
	SpeakingThreshold float64
}

func DefaultGridConfig() GridConfig {
	return GridConfig{
		MaxVisibleUsers:   DefaultMaxVisibleUsers,
		SpeakingInterval:  DefaultSpeakingInterval,
		SpeakingThreshold: DefaultSpeakingThreshold,
	}
}

// Grid composes the participant registry, layout planner, pin controller,
// speaking detector and track binder into one presentation pipeline. Data
// flows one direction per pass: props -> roster -> (layout, pin, speaking)
// -> tile set. User interaction flows back only into the pin controller.
//
// Reconciliation is synchronous; the speaking sampler is the only
// recurring goroutine and it is scoped strictly between Mount and Unmount.
type Grid struct {
	cfg      GridConfig
	logger   *zap.SugaredLogger
	registry *ParticipantRegistry
	pin      *PinController
	speaking *SpeakingDetector
	binder   ports.TrackBinder

	mu       sync.RWMutex
	mounted  bool
	hasProps bool
	props    ports.GridProps
	frame    domain.Frame
	onFrame  func(domain.Frame)
}

func NewGrid(cfg GridConfig, binder ports.TrackBinder, logger *zap.SugaredLogger) *Grid {
	if cfg.MaxVisibleUsers < 1 {
		cfg.MaxVisibleUsers = DefaultMaxVisibleUsers
	}
	g := &Grid{
		cfg:      cfg,
		logger:   logger,
		registry: NewParticipantRegistry(),
		pin:      NewPinController(),
		speaking: NewSpeakingDetector(cfg.SpeakingInterval, cfg.SpeakingThreshold, logger),
		binder:   binder,
	}
	g.speaking.OnChange(g.handleSpeakingChange)
	return g
}

// OnFrame registers the callback invoked with a copy of every new frame.
func (g *Grid) OnFrame(fn func(domain.Frame)) {
	g.mu.Lock()
	g.onFrame = fn
	g.mu.Unlock()
}

// Mount activates the grid. Sampling starts lazily on the first pass that
// carries audio tracks.
func (g *Grid) Mount() {
	g.mu.Lock()
	g.mounted = true
	g.mu.Unlock()
	g.speaking.Resume()
}

// Unmount deactivates the grid: the sampling loop halts and every bound
// track is released. No timer or binding survives this call.
func (g *Grid) Unmount() {
	g.mu.Lock()
	g.mounted = false
	g.mu.Unlock()

	g.speaking.Stop()
	g.binder.UnbindAll()
}

// Mounted reports whether the grid is active.
func (g *Grid) Mounted() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.mounted
}

// Frame returns the latest rendered frame.
func (g *Grid) Frame() domain.Frame {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.frame
}

// TogglePin flips the focus state for uid and reflows immediately using
// the latest props.
func (g *Grid) TogglePin(uid domain.UID) domain.Frame {
	g.pin.Toggle(uid)

	g.mu.RLock()
	hasProps, props := g.hasProps, g.props
	g.mu.RUnlock()
	if !hasProps {
		return g.Frame()
	}
	return g.Reconcile(props)
}

// HandleTileClick is the tile-body click path; it performs the same pin
// transition as the explicit pin icon.
func (g *Grid) HandleTileClick(uid domain.UID) domain.Frame {
	return g.TogglePin(uid)
}

// SetRenderTarget registers the render surface for a tile, then re-runs
// the pass so a track waiting on the target binds right away. A bind that
// failed earlier is retried here and on every later pass; binding is
// idempotent, so the retry costs nothing once it sticks.
func (g *Grid) SetRenderTarget(uid domain.UID, target domain.RenderTarget) {
	g.binder.SetTarget(uid, target)

	g.mu.RLock()
	hasProps, props, mounted := g.hasProps, g.props, g.mounted
	g.mu.RUnlock()
	if mounted && hasProps {
		g.Reconcile(props)
	}
}

// RemoveRenderTarget drops a tile's surface, unbinding whatever rendered
// into it.
func (g *Grid) RemoveRenderTarget(uid domain.UID) {
	g.binder.RemoveTarget(uid)
}

// Reconcile runs one synchronous pass: normalize participants, heal the
// pin, rebuild bindings, plan the layout and emit the tile set. It never
// fails; every degraded input resolves to a placeholder tile state.
func (g *Grid) Reconcile(props ports.GridProps) domain.Frame {
	g.mu.Lock()
	if !g.mounted {
		g.mu.Unlock()
		return domain.Frame{}
	}
	g.props = props
	g.hasProps = true
	g.mu.Unlock()

	maxVisible := props.MaxVisibleUsers
	if maxVisible < 1 {
		maxVisible = g.cfg.MaxVisibleUsers
	}

	all := g.registry.BuildAll(props)
	g.pin.Heal(all)
	pinned := g.pin.Pinned()
	roster := g.registry.Arrange(all, pinned, maxVisible)

	audio := make(map[domain.UID]domain.Track, len(roster.All))
	for _, p := range roster.All {
		if p.AudioTrack != nil {
			audio[p.UID] = p.AudioTrack
		}
	}
	g.speaking.SetTracks(audio)

	bound := g.rebind(roster.Display)

	solo := props.IsStreaming && len(props.RemoteUsers) == 0
	layout := PlanLayout(len(roster.Display), pinned, solo)

	frame := domain.Frame{
		Tiles:         g.buildTiles(roster.Display, pinned, bound),
		Layout:        layout,
		Overflow:      roster.Overflow,
		OverflowLabel: domain.OverflowLabelFor(roster.Overflow),
	}

	g.publish(frame)
	return frame
}

// rebind reconciles track bindings against the displayed set and reports
// which tiles actually render video this pass. Bind failures are swallowed
// into the placeholder path and retried next pass.
func (g *Grid) rebind(display []domain.Participant) map[domain.UID]bool {
	wanted := make(map[domain.UID]bool, len(display))
	bound := make(map[domain.UID]bool, len(display))

	for _, p := range display {
		if !p.HasVideo() {
			continue
		}
		wanted[p.UID] = true
		if err := g.binder.Bind(p.UID, p.VideoTrack); err != nil {
			g.logger.Warnw("video bind degraded to placeholder",
				"uid", p.UID,
				"track_id", p.VideoTrack.ID(),
				"error", err,
			)
			continue
		}
		bound[p.UID] = true
	}

	for _, uid := range g.binder.BoundUIDs() {
		if !wanted[uid] {
			g.binder.UnbindUID(uid)
		}
	}
	return bound
}

func (g *Grid) buildTiles(display []domain.Participant, pinned domain.UID, bound map[domain.UID]bool) []domain.Tile {
	speaking := g.speaking.Speaking()
	tiles := make([]domain.Tile, 0, len(display))

	for _, p := range display {
		audio := domain.AudioLive
		switch {
		case !p.HasAudio():
			audio = domain.AudioMuted
		case speaking.Has(p.UID):
			audio = domain.AudioSpeaking
		}

		badge := false
		if !p.IsLocal {
			switch p.Role {
			case domain.RoleCreator, domain.RoleCohost:
				badge = true
			case domain.RoleViewer:
			}
		}

		tiles = append(tiles, domain.Tile{
			UID:           p.UID,
			Name:          p.Name,
			AvatarURL:     p.AvatarURL,
			Initials:      p.Initials(),
			Role:          p.Role,
			IsLocal:       p.IsLocal,
			ShowVideo:     p.HasVideo() && bound[p.UID],
			Audio:         audio,
			ShowRoleBadge: badge,
			Pinnable:      !p.IsLocal,
			Pinned:        p.UID == pinned,
		})
	}
	return tiles
}

// handleSpeakingChange refreshes the indicator facts without rebuilding
// bindings; only the audio states can have changed between ticks.
func (g *Grid) handleSpeakingChange(set domain.SpeakingSet) {
	g.mu.Lock()
	if !g.mounted || len(g.frame.Tiles) == 0 {
		g.mu.Unlock()
		return
	}
	frame := g.frame
	frame.Tiles = make([]domain.Tile, len(g.frame.Tiles))
	copy(frame.Tiles, g.frame.Tiles)
	for i := range frame.Tiles {
		if frame.Tiles[i].Audio == domain.AudioMuted {
			continue
		}
		if set.Has(frame.Tiles[i].UID) {
			frame.Tiles[i].Audio = domain.AudioSpeaking
		} else {
			frame.Tiles[i].Audio = domain.AudioLive
		}
	}
	g.frame = frame
	fn := g.onFrame
	g.mu.Unlock()

	if fn != nil {
		fn(frame)
	}
}

func (g *Grid) publish(frame domain.Frame) {
	g.mu.Lock()
	g.frame = frame
	fn := g.onFrame
	g.mu.Unlock()

	if fn != nil {
		fn(frame)
	}
}
