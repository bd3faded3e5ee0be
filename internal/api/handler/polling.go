package handler

import (
	"net/http"
	"time"

	"flashfrenzy/backend/internal/gamehub"
	"flashfrenzy/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// The polling emulation: the same event surface as the websocket, driven by
// request/response. Submits inject events into the hub loop with a nil
// source connection; the poll endpoint drains the redis challenge mailbox.

// inject hands an event to the hub as if it came off a connection.
func (h *Handler) inject(name string, payload interface{}) {
	h.Hub.IncomingCh <- gamehub.InboundEvent{
		From:  nil,
		Event: models.NewEvent(name, payload),
	}
}

// SubmitChallenge handles POST /api/polling/challenge.
func (h *Handler) SubmitChallenge(c *gin.Context) {
	var p models.ChallengePlayerPayload
	if err := c.ShouldBindJSON(&p); err != nil || p.Validate() != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	h.inject(models.EventChallengePlayer, p)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Challenge sent successfully"})
}

// SubmitChallengeResponse handles POST /api/polling/challenge-response.
func (h *Handler) SubmitChallengeResponse(c *gin.Context) {
	var p models.ChallengeResponsePayload
	if err := c.ShouldBindJSON(&p); err != nil || p.Validate() != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	h.inject(models.EventChallengeResponse, p)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SubmitAnswer handles POST /api/polling/answer.
func (h *Handler) SubmitAnswer(c *gin.Context) {
	var p models.AnswerPayload
	if err := c.ShouldBindJSON(&p); err != nil || p.Validate() != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	h.inject(models.EventAnswer, p)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SubmitJoinMatch handles POST /api/polling/join-match.
func (h *Handler) SubmitJoinMatch(c *gin.Context) {
	var p models.JoinMatchPayload
	if err := c.ShouldBindJSON(&p); err != nil || p.Validate() != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	h.inject(models.EventJoinMatch, p)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SubmitLeaveMatch handles POST /api/polling/leave-match.
func (h *Handler) SubmitLeaveMatch(c *gin.Context) {
	var p models.LeaveMatchPayload
	if err := c.ShouldBindJSON(&p); err != nil || p.Validate() != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	h.inject(models.EventLeaveMatch, p)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type pollRequest struct {
	UserID   string `json:"userId"`
	LastPoll int64  `json:"lastPoll"`
}

// PollForUpdates handles POST /api/polling/updates. Returns at most one
// pending challenge newer than the client's watermark, plus a timestamp the
// client uses as its next watermark.
func (h *Handler) PollForUpdates(c *gin.Context) {
	var req pollRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID required"})
		return
	}

	if err := h.Storage.TouchPresence(req.UserID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	challenge, err := h.Storage.TakePendingChallenge(req.UserID, req.LastPoll)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if challenge != nil {
		c.JSON(http.StatusOK, gin.H{
			"challenge": challenge,
			"timestamp": time.Now().UnixMilli(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UnixMilli(),
	})
}
