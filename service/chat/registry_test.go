package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(connID, userID string) *Client {
	return NewClient(connID, userID, userID, nil, 8)
}

func drain(c *Client) [][]byte {
	var out [][]byte
	for {
		select {
		case f, ok := <-c.Send:
			if !ok {
				return out
			}
			out = append(out, f)
		default:
			return out
		}
	}
}

func TestRegistrySubscribeFanout(t *testing.T) {
	r := NewRegistry()
	a := testClient("c1", "alice")
	b := testClient("c2", "bob")
	outsider := testClient("c3", "carol")
	for _, c := range []*Client{a, b, outsider} {
		r.Add(c)
	}
	r.Subscribe(a, "ch1")
	r.Subscribe(b, "ch1")

	r.BroadcastChannel("ch1", []byte("x"), "")

	assert.Len(t, drain(a), 1)
	assert.Len(t, drain(b), 1)
	assert.Empty(t, drain(outsider))
}

func TestRegistryBroadcastExceptSender(t *testing.T) {
	r := NewRegistry()
	a := testClient("c1", "alice")
	b := testClient("c2", "bob")
	r.Add(a)
	r.Add(b)
	r.Subscribe(a, "ch1")
	r.Subscribe(b, "ch1")

	r.BroadcastChannel("ch1", []byte("typing"), a.ConnID)

	assert.Empty(t, drain(a))
	assert.Len(t, drain(b), 1)
}

func TestRegistryUnsubscribe(t *testing.T) {
	r := NewRegistry()
	a := testClient("c1", "alice")
	r.Add(a)
	r.Subscribe(a, "ch1")
	require.True(t, r.Subscribed(a.ConnID, "ch1"))

	r.Unsubscribe(a, "ch1")
	assert.False(t, r.Subscribed(a.ConnID, "ch1"))

	r.BroadcastChannel("ch1", []byte("x"), "")
	assert.Empty(t, drain(a))
}

func TestRegistryRemoveDropsSubscriptions(t *testing.T) {
	r := NewRegistry()
	a := testClient("c1", "alice")
	r.Add(a)
	r.Subscribe(a, "ch1")
	r.Subscribe(a, "ch2")

	r.Remove(a)

	assert.False(t, r.Subscribed(a.ConnID, "ch1"))
	assert.False(t, r.Subscribed(a.ConnID, "ch2"))
	assert.Empty(t, r.ListByUser("alice"))

	r.BroadcastChannel("ch1", []byte("x"), "")
	r.BroadcastAll([]byte("y"), "")
	assert.Empty(t, drain(a))
}

func TestRegistryMultipleConnectionsPerUser(t *testing.T) {
	r := NewRegistry()
	phone := testClient("c1", "alice")
	laptop := testClient("c2", "alice")
	r.Add(phone)
	r.Add(laptop)

	assert.Len(t, r.ListByUser("alice"), 2)

	r.Remove(phone)
	got := r.ListByUser("alice")
	require.Len(t, got, 1)
	assert.Equal(t, "c2", got[0].ConnID)
}

// A fanout snapshots subscribers before enqueueing, so it can still
// hold a client whose connection tore down in between. The frame must
// be dropped for that client and delivery must continue to the rest.
func TestBroadcastToClosedClientDropsFrame(t *testing.T) {
	r := NewRegistry()
	a := testClient("c1", "alice")
	b := testClient("c2", "bob")
	r.Add(a)
	r.Add(b)
	r.Subscribe(a, "ch1")
	r.Subscribe(b, "ch1")

	a.Close()

	r.BroadcastChannel("ch1", []byte("x"), "")
	r.BroadcastAll([]byte("y"), "")

	assert.Empty(t, drain(a))
	assert.Len(t, drain(b), 2)
}

func TestClientCloseIdempotent(t *testing.T) {
	c := testClient("c1", "alice")
	c.Close()
	c.Close()
	c.enqueue([]byte("late"))
	assert.Empty(t, drain(c))
}

func TestClientEnqueueDropsWhenFull(t *testing.T) {
	c := NewClient("c1", "alice", "alice", nil, 1)
	c.enqueue([]byte("a"))
	c.enqueue([]byte("b")) // dropped, queue full
	assert.Len(t, drain(c), 1)
}
