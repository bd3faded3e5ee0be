package gamehub

import (
	"encoding/json"
	"log"
	"time"

	"flashfrenzy/backend/internal/models"
	"flashfrenzy/backend/internal/storage"
)

// InboundEvent is one event arriving at the relay. From is the originating
// connection, or nil when the event came in through the polling emulation.
type InboundEvent struct {
	From  Client
	Event models.Event
}

// Hub is the relay process: one goroutine owns every piece of shared mutable
// state (connection table, presence registry, room membership) and handlers
// run to completion per event, so no locking is needed anywhere below it.
type Hub struct {
	RegisterCh   chan Client
	UnregisterCh chan Client
	IncomingCh   chan InboundEvent

	Presence    *PresenceRegistry
	Rooms       *RoomManager
	Coordinator *ChallengeCoordinator

	Storage storage.Storage

	// clients holds every live connection by connection ID, identified or not.
	clients map[string]Client
}

func NewHub(s storage.Storage, n Notifier) *Hub {
	presence := NewPresenceRegistry()
	rooms := NewRoomManager()
	return &Hub{
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		IncomingCh:   make(chan InboundEvent),
		Presence:     presence,
		Rooms:        rooms,
		Coordinator:  NewChallengeCoordinator(presence, rooms, s, n),
		Storage:      s,
		clients:      make(map[string]Client),
	}
}

// Run is the hub's main loop. Must run in exactly one goroutine.
func (h *Hub) Run() {
	log.Println("Game hub started.")
	for {
		select {
		case c := <-h.RegisterCh:
			h.clients[c.ConnID()] = c
			log.Printf("Connection %s registered (%d total)", c.ConnID(), len(h.clients))

		case c := <-h.UnregisterCh:
			h.unregister(c)

		case ev := <-h.IncomingCh:
			h.dispatch(ev)
		}
	}
}

// unregister tears down every trace of a connection: the connection table,
// its personal room, and every match room. No player-left is emitted for a
// bare disconnect; only an explicit leave-match does that. Peers of a
// silently vanished player see nothing, which the clients are built around.
func (h *Hub) unregister(c Client) {
	if _, ok := h.clients[c.ConnID()]; !ok {
		return
	}
	delete(h.clients, c.ConnID())

	remaining := h.Presence.Drop(c)
	h.Rooms.DropConnection(c)

	if !remaining && c.UserID() != "" && h.Storage != nil {
		if err := h.Storage.RemovePresence(c.UserID()); err != nil {
			log.Printf("ERROR: Failed to clear lobby presence for %s: %v", c.UserID(), err)
		}
	}

	c.Close()
	log.Printf("Connection %s unregistered (%d total)", c.ConnID(), len(h.clients))
}

// allClients snapshots the live connection set, for the degraded challenge
// broadcast.
func (h *Hub) allClients() []Client {
	out := make([]Client, 0, len(h.clients))
	for _, c := range h.clients {
		out = append(out, c)
	}
	return out
}

// dispatch routes one inbound event. Malformed payloads are dropped with a
// log line and no reply; the protocol has no acknowledgements.
func (h *Hub) dispatch(in InboundEvent) {
	switch in.Event.Name {
	case models.EventJoinUserRoom:
		var p models.JoinUserRoomPayload
		if !h.decode(in, &p) {
			return
		}
		h.handleJoinUserRoom(in.From, p)

	case models.EventJoinMatch:
		var p models.JoinMatchPayload
		if !h.decode(in, &p) {
			return
		}
		h.handleJoinMatch(in.From, p)

	case models.EventAnswer:
		var p models.AnswerPayload
		if !h.decode(in, &p) {
			return
		}
		h.handleAnswer(in.From, p)

	case models.EventChallengePlayer:
		var p models.ChallengePlayerPayload
		if !h.decode(in, &p) {
			return
		}
		h.Coordinator.HandleChallenge(in.From, p, h.allClients())

	case models.EventChallengeResponse:
		var p models.ChallengeResponsePayload
		if !h.decode(in, &p) {
			return
		}
		h.Coordinator.HandleResponse(in.From, p)

	case models.EventLeaveMatch:
		var p models.LeaveMatchPayload
		if !h.decode(in, &p) {
			return
		}
		h.handleLeaveMatch(in.From, p)

	default:
		log.Printf("Dropping unknown event %q", in.Event.Name)
	}
}

// decode unmarshals and validates an inbound payload in one step.
func (h *Hub) decode(in InboundEvent, dst interface{}) bool {
	if err := json.Unmarshal(in.Event.Data, dst); err != nil {
		log.Printf("Dropping malformed %s event: %v", in.Event.Name, err)
		return false
	}
	if v, ok := dst.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			log.Printf("Dropping invalid %s event: %v", in.Event.Name, err)
			return false
		}
	}
	return true
}

func (h *Hub) handleJoinUserRoom(from Client, p models.JoinUserRoomPayload) {
	if from == nil {
		return
	}
	from.SetUserID(p.UserID)
	h.Presence.Join(p.UserID, from)

	if h.Storage != nil {
		if err := h.Storage.TouchPresence(p.UserID); err != nil {
			log.Printf("ERROR: Failed to record lobby presence for %s: %v", p.UserID, err)
		}
	}
	log.Printf("Connection %s joined personal room %s", from.ConnID(), p.UserID)
}

func (h *Hub) handleJoinMatch(from Client, p models.JoinMatchPayload) {
	excludeConnID := ""
	if from != nil {
		h.Rooms.Join(p.MatchID, from)
		excludeConnID = from.ConnID()
	}

	h.Rooms.Broadcast(p.MatchID, models.NewEvent(models.EventPlayerJoined, models.PlayerJoinedPayload{
		UserID:  p.UserID,
		MatchID: p.MatchID,
	}), excludeConnID)

	log.Printf("User %s joined match %s", p.UserID, p.MatchID)
}

// handleAnswer stamps the event with the relay's wall clock and fans it out
// to the whole room, sender included: every client, the answerer's too,
// scores from the canonical broadcast rather than its optimistic local state.
func (h *Hub) handleAnswer(_ Client, p models.AnswerPayload) {
	h.Rooms.Broadcast(p.MatchID, models.NewEvent(models.EventPlayerAnswered, models.PlayerAnsweredPayload{
		UserID:     p.UserID,
		Answer:     p.Answer,
		QuestionID: p.QuestionID,
		Timestamp:  time.Now().UnixMilli(),
	}), "")

	log.Printf("Answer from %s in match %s for question %s", p.UserID, p.MatchID, p.QuestionID)
}

func (h *Hub) handleLeaveMatch(from Client, p models.LeaveMatchPayload) {
	excludeConnID := ""
	if from != nil {
		h.Rooms.Leave(p.MatchID, from)
		excludeConnID = from.ConnID()
	}

	h.Rooms.Broadcast(p.MatchID, models.NewEvent(models.EventPlayerLeft, models.PlayerLeftPayload{
		UserID:  p.UserID,
		MatchID: p.MatchID,
	}), excludeConnID)

	log.Printf("User %s left match %s", p.UserID, p.MatchID)
}
