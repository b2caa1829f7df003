package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessPlayerStartStop(t *testing.T) {
	// sh -c receives the appended stream url as $0 and ignores it.
	player := NewProcessPlayer(`sh -c "sleep 60"`)

	require.NoError(t, player.Start("http://stream.example/1"))
	assert.True(t, player.IsRunning())

	err := player.Start("http://stream.example/2")
	require.Error(t, err, "one process at a time")
	assert.Equal(t, ErrPlayback, ErrorCode(err))

	require.NoError(t, player.Stop())
	assert.False(t, player.IsRunning())

	require.NoError(t, player.Stop(), "stop while stopped is a no-op")
}

func TestProcessPlayerNoticesExit(t *testing.T) {
	player := NewProcessPlayer("true")

	require.NoError(t, player.Start("http://stream.example/1"))
	assert.Eventually(t, func() bool { return !player.IsRunning() },
		2*time.Second, 10*time.Millisecond)
	require.NoError(t, player.Stop())
}

func TestProcessPlayerLaunchFailure(t *testing.T) {
	player := NewProcessPlayer("/no/such/binary")

	err := player.Start("http://stream.example/1")
	require.Error(t, err)
	assert.Equal(t, ErrPlayback, ErrorCode(err))
	assert.False(t, player.IsRunning())
}

func TestProcessPlayerBadCommand(t *testing.T) {
	for _, command := range []string{"", `sh -c "unterminated`} {
		player := NewProcessPlayer(command)
		err := player.Start("http://stream.example/1")
		require.Error(t, err)
		assert.Equal(t, ErrPlayback, ErrorCode(err))
	}
}
