package services

import (
	"sync"

	"tilecast/internal/core/domain"
)

// PinController tracks which participant, if any, is focused. Pinning
// applies to remote participants only; the local tile is never a pin
// target.
type PinController struct {
	mu     sync.Mutex
	pinned domain.UID
}

func NewPinController() *PinController {
	return &PinController{}
}

// Toggle pins uid, or clears the pin when uid is already pinned. Toggling
// the local uid is a no-op.
func (p *PinController) Toggle(uid domain.UID) {
	if uid == domain.LocalUID || uid == "" {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pinned == uid {
		p.pinned = ""
	} else {
		p.pinned = uid
	}
}

func (p *PinController) Pinned() domain.UID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pinned
}

// Heal clears the pin when the pinned participant is absent from the
// latest participant set, so the focus reference never dangles.
func (p *PinController) Heal(all []domain.Participant) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pinned == "" {
		return
	}
	for _, participant := range all {
		if participant.UID == p.pinned {
			return
		}
	}
	p.pinned = ""
}
