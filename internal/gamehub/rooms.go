package gamehub

import (
	"log"

	"flashfrenzy/backend/internal/models"
)

// RoomManager tracks match-room membership: match identifier -> the set of
// connections that joined it. Like the presence registry it is owned by the
// hub goroutine; the size cap for a match (two players) is the match REST
// endpoint's business, not enforced here.
type RoomManager struct {
	rooms map[string]map[string]Client
}

func NewRoomManager() *RoomManager {
	return &RoomManager{
		rooms: make(map[string]map[string]Client),
	}
}

// Join adds the connection to the room. Idempotent: a connection already in
// the room stays a single member and will not see duplicate broadcasts.
func (m *RoomManager) Join(matchID string, c Client) {
	members, ok := m.rooms[matchID]
	if !ok {
		members = make(map[string]Client)
		m.rooms[matchID] = members
	}
	members[c.ConnID()] = c
}

// Leave removes the connection from the room. The room record itself is
// pruned only when its member set becomes empty.
func (m *RoomManager) Leave(matchID string, c Client) {
	members, ok := m.rooms[matchID]
	if !ok {
		return
	}
	delete(members, c.ConnID())
	if len(members) == 0 {
		delete(m.rooms, matchID)
	}
}

// DropConnection removes the connection from every room it joined. Used on
// disconnect; deliberately emits nothing to the remaining members.
func (m *RoomManager) DropConnection(c Client) {
	for matchID, members := range m.rooms {
		if _, ok := members[c.ConnID()]; !ok {
			continue
		}
		delete(members, c.ConnID())
		if len(members) == 0 {
			delete(m.rooms, matchID)
		}
	}
}

// Members returns the connections currently in the room.
func (m *RoomManager) Members(matchID string) []Client {
	members := m.rooms[matchID]
	out := make([]Client, 0, len(members))
	for _, c := range members {
		out = append(out, c)
	}
	return out
}

// Broadcast delivers the event to every member of the room, once each.
// excludeConnID, when non-empty, skips the originating connection ("to the
// others" events). Broadcasting to an empty or unknown room is a no-op.
func (m *RoomManager) Broadcast(matchID string, ev models.Event, excludeConnID string) {
	for connID, c := range m.rooms[matchID] {
		if connID == excludeConnID {
			continue
		}
		deliver(c, ev)
	}
}

// deliver pushes the event to one connection without blocking the hub loop.
// A connection whose send buffer is full simply misses the event; the
// protocol is fire-and-forget and receivers reconcile from later traffic.
func deliver(c Client, ev models.Event) {
	select {
	case c.SendChannel() <- ev:
	default:
		log.Printf("Dropping %s event for slow connection %s", ev.Name, c.ConnID())
	}
}
