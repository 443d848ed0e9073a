package domain

// SpeakingSet holds the participants whose most recently sampled audio
// energy exceeded the speaking threshold. It is replaced wholesale every
// sampling tick.
type SpeakingSet map[UID]struct{}

func (s SpeakingSet) Has(uid UID) bool {
	_, ok := s[uid]
	return ok
}

// Equal reports whether both sets hold the same uids. Change notification
// is driven off this comparison so unchanged ticks do not re-render.
func (s SpeakingSet) Equal(other SpeakingSet) bool {
	if len(s) != len(other) {
		return false
	}
	for uid := range s {
		if _, ok := other[uid]; !ok {
			return false
		}
	}
	return true
}

func (s SpeakingSet) Clone() SpeakingSet {
	out := make(SpeakingSet, len(s))
	for uid := range s {
		out[uid] = struct{}{}
	}
	return out
}
