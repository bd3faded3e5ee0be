package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	jwt "github.com/golang-jwt/jwt/v5"
)

// generateJWT issues a session token carrying the player's identity. The real
// identity lives with the external auth provider; this token is only the shim
// that lets the ws handshake and REST calls name a user.
func (h *Handler) generateJWT(identity string) (string, error) {
	claims := jwt.MapClaims{
		"sub": identity,
		"exp": time.Now().Add(time.Hour * 72).Unix(),
		"iss": "flashfrenzy-service",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.JWTSecret)
}

// validateAndGetIdentity checks the token and extracts the identity claim.
func (h *Handler) validateAndGetIdentity(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return h.JWTSecret, nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	identity, ok := claims["sub"].(string)
	if !ok || identity == "" {
		return "", errors.New("missing identity claim")
	}
	return identity, nil
}

type tokenRequest struct {
	Email       string `json:"email" binding:"required"`
	DisplayName string `json:"displayName"`
}

// IssueToken syncs the user row and returns a JWT for the identity.
func (h *Handler) IssueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email required"})
		return
	}

	user, err := h.Storage.SyncUser(req.Email, req.DisplayName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sync user"})
		return
	}

	token, err := h.generateJWT(req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "userId": user.Email, "displayName": user.DisplayName})
}
