package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

type UID string

// LocalUID is the reserved identifier of the caller's own feed. Exactly one
// participant in the active set carries it.
const LocalUID UID = "local"

// Role tags a participant for badge rendering. It is a closed set so that
// rendering code can switch over it exhaustively.
type Role int

const (
	RoleViewer Role = iota
	RoleCreator
	RoleCohost
)

func (r Role) String() string {
	switch r {
	case RoleCreator:
		return "creator"
	case RoleCohost:
		return "cohost"
	default:
		return "viewer"
	}
}

func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "viewer":
		*r = RoleViewer
	case "creator":
		*r = RoleCreator
	case "cohost":
		*r = RoleCohost
	default:
		return fmt.Errorf("unknown role %q", s)
	}
	return nil
}

// Participant is one call/stream member as seen by the grid. Entries are
// derived fresh on every reconciliation pass; they are a view over external
// inputs, not a store. Track handles are owned by the media session layer
// and may be nil.
type Participant struct {
	UID       UID
	Name      string
	AvatarURL string
	Role      Role
	IsLocal   bool

	VideoTrack Track
	AudioTrack Track
}

// HasVideo reports whether a live, enabled video track is present.
func (p Participant) HasVideo() bool {
	return p.VideoTrack != nil && p.VideoTrack.Enabled()
}

// HasAudio reports whether a live, enabled audio track is present.
func (p Participant) HasAudio() bool {
	return p.AudioTrack != nil && p.AudioTrack.Enabled()
}

// Initials derives the placeholder text shown when no video renders.
func (p Participant) Initials() string {
	fields := strings.Fields(p.Name)
	if len(fields) == 0 {
		return "?"
	}
	initials := string([]rune(fields[0])[0])
	if len(fields) > 1 {
		initials += string([]rune(fields[len(fields)-1])[0])
	}
	return strings.ToUpper(initials)
}
