package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tilecast/internal/core/domain"
	"tilecast/internal/core/ports"
)

func propsWithRemotes(remotes ...domain.Participant) ports.GridProps {
	return ports.GridProps{
		LocalUser:       domain.Participant{Name: "Me"},
		RemoteUsers:     remotes,
		MaxVisibleUsers: 4,
	}
}

func TestBuildAll_LocalIsNormalizedAndFirst(t *testing.T) {
	registry := NewParticipantRegistry()
	video := newFakeVideoTrack("cam")
	audio := newFakeAudioTrack("mic", 0)

	props := propsWithRemotes(remoteUser("a", domain.RoleViewer))
	props.LocalUser.UID = "something-else"
	props.LocalTracks = ports.LocalTracks{Video: video, Audio: audio}

	all := registry.BuildAll(props)
	require.Len(t, all, 2)
	assert.Equal(t, domain.LocalUID, all[0].UID)
	assert.True(t, all[0].IsLocal)
	assert.Equal(t, video, all[0].VideoTrack.(*fakeTrack))
	assert.Equal(t, audio, all[0].AudioTrack.(*fakeTrack))
	assert.False(t, all[1].IsLocal)
}

func TestBuildAll_MissingTracksAreNotAnError(t *testing.T) {
	registry := NewParticipantRegistry()
	all := registry.BuildAll(propsWithRemotes())
	require.Len(t, all, 1)
	assert.Nil(t, all[0].VideoTrack)
	assert.False(t, all[0].HasVideo())
	assert.False(t, all[0].HasAudio())
}

func TestArrange_OverflowCount(t *testing.T) {
	registry := NewParticipantRegistry()

	tests := []struct {
		name       string
		remotes    int
		maxVisible int
		overflow   int
		displayed  int
	}{
		{"no remotes", 0, 4, 0, 1},
		{"under cap", 2, 4, 0, 3},
		{"exactly at cap", 3, 4, 0, 4},
		{"one over cap", 4, 4, 1, 4},
		{"five remotes cap four", 5, 4, 2, 4},
		{"cap of one shows local only", 3, 1, 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remotes := make([]domain.Participant, tt.remotes)
			for i := range remotes {
				remotes[i] = remoteUser(string(rune('a'+i)), domain.RoleViewer)
			}
			props := propsWithRemotes(remotes...)
			props.MaxVisibleUsers = tt.maxVisible

			roster := registry.Arrange(registry.BuildAll(props), "", tt.maxVisible)
			assert.Equal(t, tt.overflow, roster.Overflow)
			assert.Len(t, roster.Display, tt.displayed)

			remoteTiles := 0
			for _, p := range roster.Display {
				if !p.IsLocal {
					remoteTiles++
				}
			}
			assert.LessOrEqual(t, remoteTiles, tt.maxVisible-1,
				"displayed remote tiles must never exceed maxVisible-1")
		})
	}
}

func TestArrange_PinnedMovesFirstRelativeOrderKept(t *testing.T) {
	registry := NewParticipantRegistry()
	props := propsWithRemotes(
		remoteUser("a", domain.RoleViewer),
		remoteUser("b", domain.RoleCreator),
		remoteUser("c", domain.RoleViewer),
	)

	roster := registry.Arrange(registry.BuildAll(props), "b", 4)

	got := make([]domain.UID, 0, len(roster.Display))
	for _, p := range roster.Display {
		got = append(got, p.UID)
	}
	assert.Equal(t, []domain.UID{"b", domain.LocalUID, "a", "c"}, got)
}

func TestArrange_LocalSurvivesCapEvenBehindPin(t *testing.T) {
	registry := NewParticipantRegistry()
	props := propsWithRemotes(
		remoteUser("a", domain.RoleViewer),
		remoteUser("b", domain.RoleViewer),
	)

	roster := registry.Arrange(registry.BuildAll(props), "b", 2)
	require.Len(t, roster.Display, 2)
	assert.Equal(t, domain.UID("b"), roster.Display[0].UID)
	assert.Equal(t, domain.LocalUID, roster.Display[1].UID)
}

func TestArrange_InvalidCapFallsBackToDefault(t *testing.T) {
	registry := NewParticipantRegistry()
	props := propsWithRemotes(
		remoteUser("a", domain.RoleViewer),
		remoteUser("b", domain.RoleViewer),
		remoteUser("c", domain.RoleViewer),
		remoteUser("d", domain.RoleViewer),
	)

	roster := registry.Arrange(registry.BuildAll(props), "", 0)
	assert.Len(t, roster.Display, DefaultMaxVisibleUsers)
}
