package handler

import (
	"flashfrenzy/backend/internal/gamehub"
	"flashfrenzy/backend/internal/storage"
)

// Handler carries the hub and storage into the gin routes.
type Handler struct {
	Hub       *gamehub.Hub
	Storage   storage.Storage
	JWTSecret []byte
}

func NewHandler(hub *gamehub.Hub, s storage.Storage, jwtSecret []byte) *Handler {
	return &Handler{Hub: hub, Storage: s, JWTSecret: jwtSecret}
}
