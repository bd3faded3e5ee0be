package gamehub_test

import (
	"testing"

	"flashfrenzy/backend/internal/gamehub"
	"flashfrenzy/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestRoomManager_JoinIsIdempotent(t *testing.T) {
	rooms := gamehub.NewRoomManager()
	c := newMockClient("conn_1")

	rooms.Join("M1", c)
	rooms.Join("M1", c)

	assert.Len(t, rooms.Members("M1"), 1, "duplicate join must not duplicate membership")

	rooms.Broadcast("M1", models.NewEvent("test-event", nil), "")
	assert.Len(t, c.drain(), 1, "one broadcast must deliver exactly once per connection")
}

func TestRoomManager_BroadcastExcludesSender(t *testing.T) {
	rooms := gamehub.NewRoomManager()
	a := newMockClient("conn_a")
	b := newMockClient("conn_b")
	rooms.Join("M1", a)
	rooms.Join("M1", b)

	rooms.Broadcast("M1", models.NewEvent("test-event", nil), a.ConnID())

	assert.Empty(t, a.drain(), "excluded sender must not receive the event")
	assert.Len(t, b.drain(), 1)
}

func TestRoomManager_LeaveStopsDelivery(t *testing.T) {
	rooms := gamehub.NewRoomManager()
	a := newMockClient("conn_a")
	b := newMockClient("conn_b")
	rooms.Join("M1", a)
	rooms.Join("M1", b)

	rooms.Leave("M1", a)
	rooms.Broadcast("M1", models.NewEvent("test-event", nil), "")

	assert.Empty(t, a.drain(), "departed connection must not receive broadcasts")
	assert.Len(t, b.drain(), 1)
}

func TestRoomManager_EmptyRoomIsPruned(t *testing.T) {
	rooms := gamehub.NewRoomManager()
	c := newMockClient("conn_1")

	rooms.Join("M1", c)
	rooms.Leave("M1", c)

	assert.Empty(t, rooms.Members("M1"))
	// Broadcasting to a gone room is a no-op, not an error.
	rooms.Broadcast("M1", models.NewEvent("test-event", nil), "")
}

func TestRoomManager_DropConnectionRemovesFromAllRooms(t *testing.T) {
	rooms := gamehub.NewRoomManager()
	c := newMockClient("conn_1")
	other := newMockClient("conn_2")

	rooms.Join("M1", c)
	rooms.Join("M2", c)
	rooms.Join("M1", other)

	rooms.DropConnection(c)

	assert.Len(t, rooms.Members("M1"), 1)
	assert.Empty(t, rooms.Members("M2"))
	// Dropping emits nothing to the peers still in the room.
	assert.Empty(t, other.drain())
}

func TestPresenceRegistry_MultipleConnectionsPerIdentity(t *testing.T) {
	presence := gamehub.NewPresenceRegistry()
	tab1 := newMockClient("conn_1")
	tab2 := newMockClient("conn_2")
	tab1.SetUserID("a@x.com")
	tab2.SetUserID("a@x.com")

	presence.Join("a@x.com", tab1)
	presence.Join("a@x.com", tab2)

	assert.Len(t, presence.Resolve("a@x.com"), 2)

	remaining := presence.Drop(tab1)
	assert.True(t, remaining, "identity keeps its other connection")
	assert.Len(t, presence.Resolve("a@x.com"), 1)

	remaining = presence.Drop(tab2)
	assert.False(t, remaining)
	assert.Empty(t, presence.Resolve("a@x.com"), "offline identity resolves to nothing")
}

func TestPresenceRegistry_ResolveUnknownIdentity(t *testing.T) {
	presence := gamehub.NewPresenceRegistry()
	assert.Empty(t, presence.Resolve("nobody@x.com"))
}
