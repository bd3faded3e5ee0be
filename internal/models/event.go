package models

import (
	"encoding/json"
	"errors"
)

// Event names accepted from clients.
const (
	EventJoinUserRoom      = "join-user-room"
	EventJoinMatch         = "join-match"
	EventAnswer            = "answer"
	EventChallengePlayer   = "challenge-player"
	EventChallengeResponse = "challenge-response"
	EventLeaveMatch        = "leave-match"
)

// Event names emitted to clients.
const (
	EventPlayerJoined      = "player-joined"
	EventPlayerAnswered    = "player-answered"
	EventChallengeReceived = "challenge-received"
	EventChallengeAccepted = "challenge-accepted"
	EventChallengeDeclined = "challenge-declined"
	EventPlayerLeft        = "player-left"
)

// Event is the wire envelope for every message on the realtime surface,
// in both directions. Data holds the event-specific payload.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

// NewEvent wraps a payload struct into an envelope. Marshalling a payload
// defined in this package cannot fail; errors are swallowed deliberately.
func NewEvent(name string, payload interface{}) Event {
	data, _ := json.Marshal(payload)
	return Event{Name: name, Data: data}
}

// Decode unmarshals the envelope's payload into dst.
func (e Event) Decode(dst interface{}) error {
	return json.Unmarshal(e.Data, dst)
}

var ErrMissingField = errors.New("event payload missing required field")

// JoinUserRoomPayload announces which identity owns the connection.
type JoinUserRoomPayload struct {
	UserID string `json:"userId"`
}

func (p JoinUserRoomPayload) Validate() error {
	if p.UserID == "" {
		return ErrMissingField
	}
	return nil
}

type JoinMatchPayload struct {
	MatchID string `json:"matchId"`
	UserID  string `json:"userId"`
}

func (p JoinMatchPayload) Validate() error {
	if p.MatchID == "" || p.UserID == "" {
		return ErrMissingField
	}
	return nil
}

type AnswerPayload struct {
	MatchID    string `json:"matchId"`
	UserID     string `json:"userId"`
	Answer     string `json:"answer"`
	QuestionID string `json:"questionId"`
}

func (p AnswerPayload) Validate() error {
	// An empty Answer is legal: it is how a client reports "time up".
	if p.MatchID == "" || p.UserID == "" || p.QuestionID == "" {
		return ErrMissingField
	}
	return nil
}

type ChallengePlayerPayload struct {
	ChallengerID   string `json:"challengerId"`
	ChallengerName string `json:"challengerName"`
	TargetID       string `json:"targetId"`
	MatchID        string `json:"matchId"`
}

func (p ChallengePlayerPayload) Validate() error {
	if p.ChallengerID == "" || p.TargetID == "" || p.MatchID == "" {
		return ErrMissingField
	}
	return nil
}

type ChallengeResponsePayload struct {
	ChallengerID string `json:"challengerId"`
	TargetID     string `json:"targetId"`
	Accepted     bool   `json:"accepted"`
	MatchID      string `json:"matchId"`
}

func (p ChallengeResponsePayload) Validate() error {
	if p.ChallengerID == "" || p.TargetID == "" || p.MatchID == "" {
		return ErrMissingField
	}
	return nil
}

type LeaveMatchPayload struct {
	MatchID string `json:"matchId"`
	UserID  string `json:"userId"`
}

func (p LeaveMatchPayload) Validate() error {
	if p.MatchID == "" || p.UserID == "" {
		return ErrMissingField
	}
	return nil
}

// Outbound payloads. Timestamps are server wall-clock milliseconds and are
// attached by the relay, never trusted from the sender.

type PlayerJoinedPayload struct {
	UserID  string `json:"userId"`
	MatchID string `json:"matchId"`
}

type PlayerAnsweredPayload struct {
	UserID     string `json:"userId"`
	Answer     string `json:"answer"`
	QuestionID string `json:"questionId"`
	Timestamp  int64  `json:"timestamp"`
}

type ChallengeReceivedPayload struct {
	ChallengerID   string `json:"challengerId"`
	ChallengerName string `json:"challengerName"`
	MatchID        string `json:"matchId"`
	Timestamp      int64  `json:"timestamp"`
}

type ChallengeAcceptedPayload struct {
	TargetID  string `json:"targetId"`
	MatchID   string `json:"matchId"`
	Timestamp int64  `json:"timestamp"`
}

type ChallengeDeclinedPayload struct {
	TargetID  string `json:"targetId"`
	Timestamp int64  `json:"timestamp"`
}

type PlayerLeftPayload struct {
	UserID  string `json:"userId"`
	MatchID string `json:"matchId"`
}
