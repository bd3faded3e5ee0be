package models

import (
	"time"

	"github.com/lib/pq"
)

// Match represents one head-to-head quiz match. It is created by the match
// REST endpoint before any realtime traffic; the relay treats the MatchID
// as an opaque room name and never enforces the two-player cap itself.
type Match struct {
	// MatchID is the unique identifier for the match (UUID).
	MatchID string `gorm:"primaryKey" json:"matchId"`
	// Players holds the identities of the participants.
	Players pq.StringArray `gorm:"type:text[]" json:"players"`
	// IsActive indicates whether the match is still being played.
	IsActive bool `json:"isActive"`
	// StartedAt is the timestamp when the match was created.
	StartedAt time.Time `json:"startedAt"`
	// EndedAt is the timestamp when the match was closed.
	EndedAt time.Time `json:"endedAt"`
}
