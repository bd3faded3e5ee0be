package handler

import (
	"net/http"
	"time"

	"flashfrenzy/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Collaborator REST endpoints. The relay itself only ever needs the opaque
// match ID and the two identities these endpoints hand out.

type createMatchRequest struct {
	Players []string `json:"players" binding:"required"`
}

// CreateMatch handles POST /api/match. The exactly-two-players cap lives
// here, not in the room manager.
func (h *Handler) CreateMatch(c *gin.Context) {
	var req createMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Players) != 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Exactly two players required"})
		return
	}

	match := &models.Match{
		MatchID:   uuid.New().String(),
		Players:   pq.StringArray(req.Players),
		IsActive:  true,
		StartedAt: time.Now(),
	}

	if err := h.Storage.SaveMatch(match); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create match"})
		return
	}

	c.JSON(http.StatusCreated, match)
}

// GetMatch handles GET /api/match/:id.
func (h *Handler) GetMatch(c *gin.Context) {
	match, err := h.Storage.GetMatchByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Match not found"})
		return
	}
	c.JSON(http.StatusOK, match)
}

type cleanupMatchesRequest struct {
	PlayerID string `json:"playerId" binding:"required"`
}

// CleanupMatches handles DELETE /api/match: drops the caller's stale active
// matches so abandoned games do not clutter the lobby.
func (h *Handler) CleanupMatches(c *gin.Context) {
	var req cleanupMatchesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Player ID required"})
		return
	}

	if err := h.Storage.DeleteMatchesForPlayer(req.PlayerID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clean up matches"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListPlayers handles GET /api/players: the online lobby, from redis presence.
func (h *Handler) ListPlayers(c *gin.Context) {
	players, err := h.Storage.GetOnlinePlayers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list players"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"players": players})
}

type syncUserRequest struct {
	Email       string `json:"email" binding:"required"`
	DisplayName string `json:"displayName"`
}

// SyncUser handles POST /api/users/sync.
func (h *Handler) SyncUser(c *gin.Context) {
	var req syncUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email required"})
		return
	}

	user, err := h.Storage.SyncUser(req.Email, req.DisplayName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sync user"})
		return
	}
	c.JSON(http.StatusOK, user)
}

type saveHistoryRequest struct {
	MatchID       string `json:"matchId" binding:"required"`
	UserID        string `json:"userId" binding:"required"`
	OpponentID    string `json:"opponentId"`
	Score         int    `json:"score"`
	OpponentScore int    `json:"opponentScore"`
	Result        string `json:"result"`
}

// SaveMatchHistory handles POST /api/match-history. Each client reports its
// own locally reconciled view; two rows per match is expected.
func (h *Handler) SaveMatchHistory(c *gin.Context) {
	var req saveHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	entry := &models.MatchHistory{
		MatchID:       req.MatchID,
		UserID:        req.UserID,
		OpponentID:    req.OpponentID,
		Score:         req.Score,
		OpponentScore: req.OpponentScore,
		Result:        req.Result,
	}

	if err := h.Storage.SaveMatchHistory(entry); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save match history"})
		return
	}

	// A finished report also closes the match.
	if err := h.Storage.CloseMatch(req.MatchID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to close match"})
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// GetMatchHistory handles GET /api/match-history?userId=...
func (h *Handler) GetMatchHistory(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID required"})
		return
	}

	history, err := h.Storage.GetMatchHistoryForUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load match history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}
