package storage

import (
	"testing"

	"Connectify/module/user/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresenceLifecycle(t *testing.T) {
	p := NewPresence()

	assert.False(t, p.Online("u1"))
	assert.Nil(t, p.Get("u1"))

	p.Connect("u1", "c1")
	require.True(t, p.Online("u1"))
	e := p.Get("u1")
	require.NotNil(t, e)
	assert.Equal(t, "c1", e.ConnID)
	assert.Equal(t, model.StatusOnline, e.Status)
	assert.NotZero(t, e.LastSeen)

	assert.True(t, p.SetStatus("u1", model.StatusAway))
	assert.Equal(t, model.StatusAway, p.Get("u1").Status)

	assert.True(t, p.Disconnect("u1", "c1"))
	assert.False(t, p.Online("u1"))
	assert.False(t, p.SetStatus("u1", model.StatusOnline))
}

func TestPresenceStaleDisconnectIgnored(t *testing.T) {
	p := NewPresence()

	p.Connect("u1", "c1")
	// Reconnect replaces the slot before the old socket closes.
	p.Connect("u1", "c2")

	assert.False(t, p.Disconnect("u1", "c1"))
	require.True(t, p.Online("u1"))
	assert.Equal(t, "c2", p.Get("u1").ConnID)

	assert.True(t, p.Disconnect("u1", "c2"))
	assert.False(t, p.Online("u1"))
}

func TestPresenceOnlineUsers(t *testing.T) {
	p := NewPresence()
	p.Connect("u1", "c1")
	p.Connect("u2", "c2")

	assert.ElementsMatch(t, []string{"u1", "u2"}, p.OnlineUsers())
}

func TestTypingStartStop(t *testing.T) {
	ty := NewTyping()

	ty.Start("ch1", "u1")
	ty.Start("ch1", "u2")
	assert.ElementsMatch(t, []string{"u1", "u2"}, ty.In("ch1"))

	ty.Stop("ch1", "u1")
	assert.ElementsMatch(t, []string{"u2"}, ty.In("ch1"))

	// Stopping twice or in an unknown channel is harmless.
	ty.Stop("ch1", "u1")
	ty.Stop("nope", "u1")
}

func TestTypingStopAll(t *testing.T) {
	ty := NewTyping()

	ty.Start("ch1", "u1")
	ty.Start("ch2", "u1")
	ty.Start("ch2", "u2")

	affected := ty.StopAll("u1")
	assert.ElementsMatch(t, []string{"ch1", "ch2"}, affected)
	assert.Empty(t, ty.In("ch1"))
	assert.ElementsMatch(t, []string{"u2"}, ty.In("ch2"))

	assert.Empty(t, ty.StopAll("u1"))
}
