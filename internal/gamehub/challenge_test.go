package gamehub_test

import (
	"testing"

	"flashfrenzy/backend/internal/gamehub"
	"flashfrenzy/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newCoordinator(storageMock *MockStorage) (*gamehub.ChallengeCoordinator, *gamehub.PresenceRegistry, *gamehub.RoomManager) {
	presence := gamehub.NewPresenceRegistry()
	rooms := gamehub.NewRoomManager()
	return gamehub.NewChallengeCoordinator(presence, rooms, storageMock, nil), presence, rooms
}

func TestChallenge_DeliveredToTargetPersonalRoom(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("StorePendingChallenge", "b@x.com", mock.AnythingOfType("models.ChallengeReceivedPayload")).Return(nil)

	cc, presence, _ := newCoordinator(storageMock)

	challenger := newMockClient("conn_a")
	target := newMockClient("conn_b")
	bystander := newMockClient("conn_c")
	presence.Join("a@x.com", challenger)
	presence.Join("b@x.com", target)
	presence.Join("c@x.com", bystander)

	cc.HandleChallenge(challenger, models.ChallengePlayerPayload{
		ChallengerID:   "a@x.com",
		ChallengerName: "Alice",
		TargetID:       "b@x.com",
		MatchID:        "M1",
	}, []gamehub.Client{challenger, target, bystander})

	received := target.drainByName()[models.EventChallengeReceived]
	assert.Len(t, received, 1)

	var p models.ChallengeReceivedPayload
	assert.NoError(t, received[0].Decode(&p))
	assert.Equal(t, "a@x.com", p.ChallengerID)
	assert.Equal(t, "Alice", p.ChallengerName)
	assert.Equal(t, "M1", p.MatchID)
	assert.NotZero(t, p.Timestamp)

	// Precise delivery: nobody else sees the challenge.
	assert.Empty(t, bystander.drain())
	assert.Empty(t, challenger.drain())

	storageMock.AssertCalled(t, "StorePendingChallenge", "b@x.com", mock.AnythingOfType("models.ChallengeReceivedPayload"))
}

func TestChallenge_OfflineTargetDegradesToBroadcast(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("StorePendingChallenge", mock.Anything, mock.Anything).Return(nil)

	cc, presence, _ := newCoordinator(storageMock)

	challenger := newMockClient("conn_a")
	bystander := newMockClient("conn_c")
	presence.Join("a@x.com", challenger)
	presence.Join("c@x.com", bystander)
	// b@x.com never joined a personal room.

	cc.HandleChallenge(challenger, models.ChallengePlayerPayload{
		ChallengerID: "a@x.com",
		TargetID:     "b@x.com",
		MatchID:      "M1",
	}, []gamehub.Client{challenger, bystander})

	// Every connection except the sender gets the payload and must
	// self-filter by target identity.
	assert.Len(t, bystander.drainByName()[models.EventChallengeReceived], 1)
	assert.Empty(t, challenger.drain())
}

func TestChallenge_AcceptedReachesBothSidesAndJoinsRoom(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("StorePendingChallenge", mock.Anything, mock.Anything).Return(nil)

	cc, presence, rooms := newCoordinator(storageMock)

	challenger := newMockClient("conn_a")
	target := newMockClient("conn_b")
	presence.Join("a@x.com", challenger)
	presence.Join("b@x.com", target)

	cc.HandleChallenge(challenger, models.ChallengePlayerPayload{
		ChallengerID: "a@x.com",
		TargetID:     "b@x.com",
		MatchID:      "M1",
	}, []gamehub.Client{challenger, target})
	target.drain()

	cc.HandleResponse(target, models.ChallengeResponsePayload{
		ChallengerID: "a@x.com",
		TargetID:     "b@x.com",
		Accepted:     true,
		MatchID:      "M1",
	})

	challengerEvents := challenger.drainByName()
	accepted := challengerEvents[models.EventChallengeAccepted]
	assert.Len(t, accepted, 1, "challenger must observe exactly one accept")

	var ap models.ChallengeAcceptedPayload
	assert.NoError(t, accepted[0].Decode(&ap))
	assert.Equal(t, "b@x.com", ap.TargetID)
	assert.Equal(t, "M1", ap.MatchID)

	// The challenger is instructed to join the shared room itself.
	joins := challengerEvents[models.EventJoinMatch]
	assert.Len(t, joins, 1)
	var jp models.JoinMatchPayload
	assert.NoError(t, joins[0].Decode(&jp))
	assert.Equal(t, "M1", jp.MatchID)
	assert.Equal(t, "a@x.com", jp.UserID)

	// The accepter sees the same canonical accept on its own connection
	// and is already in the room.
	assert.Len(t, target.drainByName()[models.EventChallengeAccepted], 1)
	assert.Len(t, rooms.Members("M1"), 1)

	// Terminal: the pending record is gone.
	_, pending := cc.PendingFor("b@x.com")
	assert.False(t, pending)
}

func TestChallenge_DeclinedReachesChallengerOnly(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("StorePendingChallenge", mock.Anything, mock.Anything).Return(nil)

	cc, presence, rooms := newCoordinator(storageMock)

	challenger := newMockClient("conn_a")
	target := newMockClient("conn_b")
	presence.Join("a@x.com", challenger)
	presence.Join("b@x.com", target)

	cc.HandleChallenge(challenger, models.ChallengePlayerPayload{
		ChallengerID: "a@x.com",
		TargetID:     "b@x.com",
		MatchID:      "M1",
	}, []gamehub.Client{challenger, target})
	target.drain()

	cc.HandleResponse(target, models.ChallengeResponsePayload{
		ChallengerID: "a@x.com",
		TargetID:     "b@x.com",
		Accepted:     false,
		MatchID:      "M1",
	})

	events := challenger.drainByName()
	assert.Len(t, events[models.EventChallengeDeclined], 1)
	assert.Empty(t, events[models.EventChallengeAccepted], "never both outcomes for one challenge")
	assert.Empty(t, events[models.EventJoinMatch], "no room join on decline")
	assert.Empty(t, rooms.Members("M1"))
}

func TestChallenge_SecondChallengeOverwritesFirst(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("StorePendingChallenge", mock.Anything, mock.Anything).Return(nil)

	cc, presence, _ := newCoordinator(storageMock)

	target := newMockClient("conn_b")
	presence.Join("b@x.com", target)

	cc.HandleChallenge(nil, models.ChallengePlayerPayload{
		ChallengerID: "a@x.com", TargetID: "b@x.com", MatchID: "M1",
	}, nil)
	cc.HandleChallenge(nil, models.ChallengePlayerPayload{
		ChallengerID: "c@x.com", TargetID: "b@x.com", MatchID: "M2",
	}, nil)

	ch, ok := cc.PendingFor("b@x.com")
	assert.True(t, ok)
	assert.Equal(t, "c@x.com", ch.ChallengerID, "last write wins")
	assert.Equal(t, "M2", ch.MatchID)
}

func TestChallenge_MultipleChallengerConnections(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("StorePendingChallenge", mock.Anything, mock.Anything).Return(nil)

	cc, presence, _ := newCoordinator(storageMock)

	tab1 := newMockClient("conn_a1")
	tab2 := newMockClient("conn_a2")
	target := newMockClient("conn_b")
	presence.Join("a@x.com", tab1)
	presence.Join("a@x.com", tab2)
	presence.Join("b@x.com", target)

	cc.HandleChallenge(tab1, models.ChallengePlayerPayload{
		ChallengerID: "a@x.com", TargetID: "b@x.com", MatchID: "M1",
	}, []gamehub.Client{tab1, tab2, target})
	target.drain()

	cc.HandleResponse(target, models.ChallengeResponsePayload{
		ChallengerID: "a@x.com", TargetID: "b@x.com", Accepted: true, MatchID: "M1",
	})

	// Every connection in the challenger's personal room hears the accept.
	assert.Len(t, tab1.drainByName()[models.EventChallengeAccepted], 1)
	assert.Len(t, tab2.drainByName()[models.EventChallengeAccepted], 1)
}
