package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a player known to the system. The Email doubles as the personal-room
// key on the realtime surface; everything else is lobby decoration. The
// identity itself is owned by the external auth provider, we only mirror it.
type User struct {
	ID          string `gorm:"primaryKey" json:"id"`
	Email       string `gorm:"uniqueIndex" json:"email"`
	DisplayName string `json:"displayName"`
	// TelegramChatID, when linked, lets us nudge an offline player about a
	// pending challenge. May be empty.
	TelegramChatID string `json:"-"`
	Wins           int    `json:"wins"`
	Losses         int    `json:"losses"`
}

// BeforeCreate is a GORM hook that assigns a UUID when no ID is set.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}
