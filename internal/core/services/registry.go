package services

import (
	"tilecast/internal/core/domain"
	"tilecast/internal/core/ports"
)

// DefaultMaxVisibleUsers caps how many tiles render before the remainder
// collapses into the overflow summary.
const DefaultMaxVisibleUsers = 4

// Roster is the normalized participant view for one reconciliation pass.
type Roster struct {
	// All is every participant, local first, in arrival order.
	All []domain.Participant
	// Display is All reordered by pin and truncated to the visibility
	// cap. The local participant is always included; the cap only trims
	// remote participants.
	Display []domain.Participant
	// Overflow counts the remote participants hidden by the cap.
	Overflow int
}

// ParticipantRegistry reconciles external props into an ordered participant
// list. It holds no state of its own; entries are derived fresh each pass.
type ParticipantRegistry struct{}

func NewParticipantRegistry() *ParticipantRegistry {
	return &ParticipantRegistry{}
}

// BuildAll normalizes props into the full ordered list. The local
// participant always carries the reserved uid and leads the order;
// malformed or missing tracks degrade to the placeholder state, never an
// error.
func (r *ParticipantRegistry) BuildAll(props ports.GridProps) []domain.Participant {
	local := props.LocalUser
	local.UID = domain.LocalUID
	local.IsLocal = true
	local.VideoTrack = props.LocalTracks.Video
	local.AudioTrack = props.LocalTracks.Audio

	all := make([]domain.Participant, 0, len(props.RemoteUsers)+1)
	all = append(all, local)
	for _, remote := range props.RemoteUsers {
		remote.IsLocal = false
		all = append(all, remote)
	}
	return all
}

// Arrange reorders by pin (pinned participant first, remaining relative
// order preserved) and truncates to maxVisible tiles.
func (r *ParticipantRegistry) Arrange(all []domain.Participant, pinned domain.UID, maxVisible int) Roster {
	if maxVisible < 1 {
		maxVisible = DefaultMaxVisibleUsers
	}

	ordered := all
	if pinned != "" {
		ordered = make([]domain.Participant, 0, len(all))
		for _, p := range all {
			if p.UID == pinned {
				ordered = append(ordered, p)
			}
		}
		for _, p := range all {
			if p.UID != pinned {
				ordered = append(ordered, p)
			}
		}
	}

	display := make([]domain.Participant, 0, maxVisible)
	remoteBudget := maxVisible - 1
	for _, p := range ordered {
		if p.IsLocal {
			display = append(display, p)
			continue
		}
		if remoteBudget > 0 {
			display = append(display, p)
			remoteBudget--
		}
	}

	overflow := len(all) - 1 - (maxVisible - 1)
	if overflow < 0 {
		overflow = 0
	}

	return Roster{All: all, Display: display, Overflow: overflow}
}
