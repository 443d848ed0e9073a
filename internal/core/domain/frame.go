package domain

import "fmt"

// Tile is the render contract for one displayed participant: four
// independent display facts, each with an explicit fallback.
type Tile struct {
	UID       UID    `json:"uid"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Initials  string `json:"initials"`
	Role      Role   `json:"role"`
	IsLocal   bool   `json:"is_local"`

	// ShowVideo is true only when a live video track is bound to the
	// tile's render target; otherwise the client renders the initials
	// placeholder.
	ShowVideo bool       `json:"show_video"`
	Audio     AudioState `json:"audio"`
	// ShowRoleBadge is set for non-local creators and co-hosts only.
	ShowRoleBadge bool `json:"show_role_badge"`
	// Pinnable is set on remote tiles; clicking one toggles its pin.
	Pinnable bool `json:"pinnable"`
	Pinned   bool `json:"pinned"`
}

// Frame is the output of one reconciliation pass: the ordered tile set,
// its layout, and the overflow summary. It is the shape served over the
// API and persisted between passes.
type Frame struct {
	Tiles    []Tile     `json:"tiles"`
	Layout   LayoutSpec `json:"layout"`
	Overflow int        `json:"overflow"`
	// OverflowLabel summarizes the hidden remote participants, for
	// example "+2 more". Empty when nothing overflows.
	OverflowLabel string `json:"overflow_label,omitempty"`
}

// OverflowLabelFor renders the summary text for n hidden participants.
func OverflowLabelFor(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("+%d more", n)
}
