package domain

type LayoutMode string

const (
	// LayoutGrid tiles all displayed participants by the column table.
	LayoutGrid LayoutMode = "grid"
	// LayoutFullscreen gives a solo broadcaster the whole area.
	LayoutFullscreen LayoutMode = "fullscreen"
	// LayoutFocus enlarges the pinned participant and demotes the rest to
	// a horizontally scrollable strip.
	LayoutFocus LayoutMode = "focus"
)

// LayoutSpec describes how the displayed tiles are arranged. Column counts
// are given for narrow and wide viewports; the client picks one.
type LayoutSpec struct {
	Mode          LayoutMode `json:"mode"`
	ColumnsNarrow int        `json:"columns_narrow"`
	ColumnsWide   int        `json:"columns_wide"`
	PrimaryUID    UID        `json:"primary_uid,omitempty"`
}

// AudioState is the tile's audio indicator. The three states are mutually
// exclusive; muted takes precedence over speaking.
type AudioState string

const (
	AudioMuted    AudioState = "muted"
	AudioSpeaking AudioState = "speaking"
	AudioLive     AudioState = "live"
)
