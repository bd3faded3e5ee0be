package quizclient

import (
	"strings"
	"sync"

	"flashfrenzy/backend/internal/models"
)

// Question is one flashcard as the scoring side needs it: the expected
// answer and its worth. The content itself ships with the game, not here.
type Question struct {
	ID     string
	Prompt string
	Answer string
	Points int
}

// QuestionSet indexes questions by ID.
type QuestionSet map[string]Question

// Scoreboard is each client's independent view of the match score, derived
// entirely from the player-answered stream. The relay re-broadcasts on
// reconnect and guarantees no idempotence, so Apply is the single place
// deduplication happens: one scored answer per (player, question), ever.
type Scoreboard struct {
	mu        sync.Mutex
	questions QuestionSet
	players   map[string]*PlayerScore
}

// PlayerScore is one player's accumulated state.
type PlayerScore struct {
	Name    string
	Score   int
	Answers map[string]bool // questionID -> answered correctly
}

func NewScoreboard(questions QuestionSet) *Scoreboard {
	return &Scoreboard{
		questions: questions,
		players:   make(map[string]*PlayerScore),
	}
}

// EnsurePlayer registers a participant with a zero score. Safe to call for
// a player already present.
func (b *Scoreboard) EnsurePlayer(userID, name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensureLocked(userID, name)
}

func (b *Scoreboard) ensureLocked(userID, name string) *PlayerScore {
	if ps, ok := b.players[userID]; ok {
		if name != "" && ps.Name == "" {
			ps.Name = name
		}
		return ps
	}
	ps := &PlayerScore{Name: name, Answers: make(map[string]bool)}
	b.players[userID] = ps
	return ps
}

// Apply folds one player-answered event into the board. Idempotent per
// (player, question): replays and re-deliveries change nothing. An empty
// answer burns the question with no points (the client's "time up" report).
// Returns whether the event changed state and whether the answer scored.
func (b *Scoreboard) Apply(p models.PlayerAnsweredPayload) (applied, correct bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ps := b.ensureLocked(p.UserID, "")
	if _, done := ps.Answers[p.QuestionID]; done {
		return false, false
	}

	answer := strings.TrimSpace(p.Answer)
	if answer == "" {
		ps.Answers[p.QuestionID] = false
		return true, false
	}

	q, known := b.questions[p.QuestionID]
	correct = known && strings.EqualFold(answer, strings.TrimSpace(q.Answer))
	if correct {
		ps.Score += q.Points
	}
	ps.Answers[p.QuestionID] = correct
	return true, correct
}

// Score returns a player's current total.
func (b *Scoreboard) Score(userID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ps, ok := b.players[userID]; ok {
		return ps.Score
	}
	return 0
}

// Standings returns a copy of every player's state.
func (b *Scoreboard) Standings() map[string]PlayerScore {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]PlayerScore, len(b.players))
	for id, ps := range b.players {
		answers := make(map[string]bool, len(ps.Answers))
		for k, v := range ps.Answers {
			answers[k] = v
		}
		out[id] = PlayerScore{Name: ps.Name, Score: ps.Score, Answers: answers}
	}
	return out
}

// Winner returns the current leader. decisive is false on a tie or an empty
// board. Each client computes this locally; with no server-side tie-break
// authority two peers can briefly disagree, which the game accepts.
func (b *Scoreboard) Winner() (userID string, decisive bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	best := -1
	for id, ps := range b.players {
		switch {
		case ps.Score > best:
			best = ps.Score
			userID = id
			decisive = true
		case ps.Score == best:
			decisive = false
		}
	}
	return userID, decisive
}
