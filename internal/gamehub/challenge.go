package gamehub

import (
	"log"
	"time"

	"flashfrenzy/backend/internal/models"
	"flashfrenzy/backend/internal/storage"
)

// Challenge states. A challenge is SENT when delivered and terminal on any of
// the other three; timeouts are enforced by the receiving client, never here.
const (
	ChallengeSent     = "sent"
	ChallengeAccepted = "accepted"
	ChallengeDeclined = "declined"
	ChallengeTimedOut = "timed_out"
)

// Challenge is the short-lived record of one pending challenge.
type Challenge struct {
	ChallengerID   string
	ChallengerName string
	TargetID       string
	MatchID        string
	Status         string
	CreatedAt      time.Time
}

// Notifier is an out-of-band channel for reaching a player who has no live
// connections. May be nil.
type Notifier interface {
	NotifyChallenge(targetID, challengerName, matchID string) error
}

// ChallengeCoordinator runs the challenge/response handshake. It keeps at
// most one pending challenge per target: a second challenge for the same
// target overwrites the first (last write wins). All methods are called from
// the hub goroutine only.
type ChallengeCoordinator struct {
	presence *PresenceRegistry
	rooms    *RoomManager
	storage  storage.Storage
	notifier Notifier

	pending map[string]Challenge
}

func NewChallengeCoordinator(p *PresenceRegistry, r *RoomManager, s storage.Storage, n Notifier) *ChallengeCoordinator {
	return &ChallengeCoordinator{
		presence: p,
		rooms:    r,
		storage:  s,
		notifier: n,
		pending:  make(map[string]Challenge),
	}
}

// HandleChallenge delivers a challenge-received event to the target's
// personal room. If presence resolution finds no connection the delivery
// degrades to a broadcast to every other live connection, each of which
// self-filters by target identity; imprecise, but the challenge still lands
// if the target is connected without having announced itself.
func (cc *ChallengeCoordinator) HandleChallenge(from Client, p models.ChallengePlayerPayload, everyone []Client) {
	now := time.Now()

	cc.pending[p.TargetID] = Challenge{
		ChallengerID:   p.ChallengerID,
		ChallengerName: p.ChallengerName,
		TargetID:       p.TargetID,
		MatchID:        p.MatchID,
		Status:         ChallengeSent,
		CreatedAt:      now,
	}

	received := models.ChallengeReceivedPayload{
		ChallengerID:   p.ChallengerID,
		ChallengerName: p.ChallengerName,
		MatchID:        p.MatchID,
		Timestamp:      now.UnixMilli(),
	}

	// Mirror into the redis mailbox so a polling target picks it up too.
	if cc.storage != nil {
		if err := cc.storage.StorePendingChallenge(p.TargetID, received); err != nil {
			log.Printf("ERROR: Failed to store pending challenge for %s: %v", p.TargetID, err)
		}
	}

	ev := models.NewEvent(models.EventChallengeReceived, received)

	targets := cc.presence.Resolve(p.TargetID)
	if len(targets) > 0 {
		for _, c := range targets {
			deliver(c, ev)
		}
		log.Printf("Challenge from %s delivered to %d connection(s) of %s", p.ChallengerID, len(targets), p.TargetID)
		return
	}

	// Degraded fallback: no personal room for the target.
	fromID := ""
	if from != nil {
		fromID = from.ConnID()
	}
	for _, c := range everyone {
		if c.ConnID() == fromID {
			continue
		}
		deliver(c, ev)
	}
	log.Printf("Challenge target %s not in a personal room, broadcast to %d connection(s)", p.TargetID, len(everyone))

	if cc.notifier != nil {
		if err := cc.notifier.NotifyChallenge(p.TargetID, p.ChallengerName, p.MatchID); err != nil {
			log.Printf("WARNING: Offline nudge for %s failed: %v", p.TargetID, err)
		}
	}
}

// HandleResponse finishes the handshake. On accept the responder's own
// connection joins the match room immediately and the challenger is told,
// on its personal room, both that the challenge was accepted and to join
// the same room itself: a two-sided join, since neither endpoint can reach
// the other synchronously. On decline only a notice reaches the challenger.
func (cc *ChallengeCoordinator) HandleResponse(from Client, p models.ChallengeResponsePayload) {
	now := time.Now().UnixMilli()

	if ch, ok := cc.pending[p.TargetID]; ok && ch.ChallengerID == p.ChallengerID {
		delete(cc.pending, p.TargetID)
	}

	challengerConns := cc.presence.Resolve(p.ChallengerID)

	if !p.Accepted {
		declined := models.NewEvent(models.EventChallengeDeclined, models.ChallengeDeclinedPayload{
			TargetID:  p.TargetID,
			Timestamp: now,
		})
		for _, c := range challengerConns {
			deliver(c, declined)
		}
		log.Printf("Challenge declined by %s", p.TargetID)
		return
	}

	accepted := models.NewEvent(models.EventChallengeAccepted, models.ChallengeAcceptedPayload{
		TargetID:  p.TargetID,
		MatchID:   p.MatchID,
		Timestamp: now,
	})

	for _, c := range challengerConns {
		deliver(c, accepted)
	}

	// The accepter observes the canonical event too, on its own connection.
	if from != nil {
		deliver(from, accepted)
		cc.rooms.Join(p.MatchID, from)
	}

	// Instruct the challenger's client to join the shared room.
	joinInstruction := models.NewEvent(models.EventJoinMatch, models.JoinMatchPayload{
		MatchID: p.MatchID,
		UserID:  p.ChallengerID,
	})
	for _, c := range challengerConns {
		deliver(c, joinInstruction)
	}

	log.Printf("Challenge accepted: %s vs %s in match %s", p.ChallengerID, p.TargetID, p.MatchID)
}

// PendingFor returns the challenge currently tracked for the target, if any.
func (cc *ChallengeCoordinator) PendingFor(targetID string) (Challenge, bool) {
	ch, ok := cc.pending[targetID]
	return ch, ok
}
