package models

import "gorm.io/gorm"

// MatchHistory is one player's record of a finished match. Two rows are
// written per match, one from each player's point of view, because each
// client derives its own final scores from the event stream.
type MatchHistory struct {
	gorm.Model
	MatchID       string `gorm:"index" json:"matchId"`
	UserID        string `gorm:"index" json:"userId"`
	OpponentID    string `json:"opponentId"`
	Score         int    `json:"score"`
	OpponentScore int    `json:"opponentScore"`
	// Result is "won", "lost" or "tie" as seen by UserID.
	Result string `json:"result"`
}
