package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"time"

	"flashfrenzy/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	// pendingChallengeTTL bounds how long an undelivered challenge survives in
	// the mailbox. Comfortably longer than the 30s client-side auto-decline.
	pendingChallengeTTL = 60 * time.Second

	// presenceWindow is how recently a player must have been seen to count as
	// online in the lobby.
	presenceWindow = 30 * time.Second
)

type Storage interface {
	SyncUser(email, displayName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	SaveUser(user *models.User) error

	SaveMatch(match *models.Match) error
	GetMatchByID(matchID string) (*models.Match, error)
	CloseMatch(matchID string) error
	GetActiveMatchIDs() ([]string, error)
	DeleteMatchesForPlayer(playerID string) error

	SaveMatchHistory(entry *models.MatchHistory) error
	GetMatchHistoryForUser(userID string) ([]models.MatchHistory, error)

	StorePendingChallenge(targetID string, ch models.ChallengeReceivedPayload) error
	TakePendingChallenge(targetID string, lastPoll int64) (*models.ChallengeReceivedPayload, error)

	TouchPresence(userID string) error
	RemovePresence(userID string) error
	GetOnlinePlayers() ([]string, error)
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// SyncUser upserts a user by email. Called from the users/sync endpoint every
// time a client session starts, so it must be cheap when the row exists.
func (s *Service) SyncUser(email, displayName string) (*models.User, error) {
	var user models.User
	defaults := models.User{
		Email:       email,
		DisplayName: displayName,
	}

	result := s.DB.Where("email = ?", email).FirstOrCreate(&user, defaults)
	if result.Error != nil {
		log.Printf("ERROR: Failed to sync user %s: %v", email, result.Error)
		return nil, result.Error
	}

	if result.RowsAffected > 0 {
		log.Printf("INFO: New user %s saved to database (ID: %s).", email, user.ID)
	}

	// Keep the display name current for returning users.
	if displayName != "" && user.DisplayName != displayName {
		user.DisplayName = displayName
		if err := s.DB.Save(&user).Error; err != nil {
			return nil, err
		}
	}

	return &user, nil
}

func (s *Service) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) SaveUser(user *models.User) error {
	return s.DB.Save(user).Error
}

// SaveMatch persists a match in PostgreSQL.
func (s *Service) SaveMatch(match *models.Match) error {
	return s.DB.Save(match).Error
}

func (s *Service) GetMatchByID(matchID string) (*models.Match, error) {
	var match models.Match

	err := s.DB.Where("match_id = ?", matchID).First(&match).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New("match not found")
	}
	if err != nil {
		log.Printf("ERROR: Failed to get match %s: %v", matchID, err)
		return nil, err
	}
	return &match, nil
}

// CloseMatch marks a match finished, setting IsActive = false and EndedAt = NOW().
func (s *Service) CloseMatch(matchID string) error {
	return s.DB.Model(&models.Match{}).
		Where("match_id = ?", matchID).
		Updates(map[string]interface{}{
			"is_active": false,
			"ended_at":  gorm.Expr("NOW()"),
		}).Error
}

// GetActiveMatchIDs returns the IDs of every match still marked active.
func (s *Service) GetActiveMatchIDs() ([]string, error) {
	var matchIDs []string

	if err := s.DB.Model(&models.Match{}).
		Where("is_active = ?", true).
		Pluck("match_id", &matchIDs).Error; err != nil {

		log.Printf("ERROR: Failed to retrieve active match IDs: %v", err)
		return nil, err
	}
	return matchIDs, nil
}

// DeleteMatchesForPlayer removes stale active matches involving the player.
// Clients call this on leaving the game page so abandoned matches do not
// pile up in the lobby.
func (s *Service) DeleteMatchesForPlayer(playerID string) error {
	return s.DB.
		Where("is_active = ?", true).
		Where("? = ANY(players)", playerID).
		Delete(&models.Match{}).Error
}

func (s *Service) SaveMatchHistory(entry *models.MatchHistory) error {
	if err := s.DB.Create(entry).Error; err != nil {
		log.Printf("ERROR: Failed to save match history for %s: %v", entry.UserID, err)
		return err
	}
	return nil
}

func (s *Service) GetMatchHistoryForUser(userID string) ([]models.MatchHistory, error) {
	var history []models.MatchHistory
	if err := s.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&history).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return history, nil
		}
		log.Printf("ERROR: Failed to get match history for %s: %v", userID, err)
		return nil, err
	}
	return history, nil
}

// StorePendingChallenge writes the challenge into the target's redis mailbox.
// A plain SET: a newer challenge for the same target overwrites the old one
// (last write wins, mirroring the coordinator's in-memory table).
func (s *Service) StorePendingChallenge(targetID string, ch models.ChallengeReceivedPayload) error {
	payload, err := json.Marshal(ch)
	if err != nil {
		return err
	}
	return s.Redis.Set(s.Ctx, "challenge:"+targetID, payload, pendingChallengeTTL).Err()
}

// TakePendingChallenge pops the target's mailbox if it holds a challenge newer
// than the caller's lastPoll watermark. Delete-on-read: a challenge is handed
// to a polling client at most once.
func (s *Service) TakePendingChallenge(targetID string, lastPoll int64) (*models.ChallengeReceivedPayload, error) {
	key := "challenge:" + targetID

	raw, err := s.Redis.Get(s.Ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var ch models.ChallengeReceivedPayload
	if err := json.Unmarshal([]byte(raw), &ch); err != nil {
		log.Printf("ERROR: Corrupt pending challenge for %s: %v", targetID, err)
		s.Redis.Del(s.Ctx, key)
		return nil, nil
	}

	if ch.Timestamp <= lastPoll {
		// Already observed by an earlier poll; leave it for the TTL to reap.
		return nil, nil
	}

	s.Redis.Del(s.Ctx, key)
	return &ch, nil
}

// TouchPresence records that the player was seen just now.
func (s *Service) TouchPresence(userID string) error {
	return s.Redis.ZAdd(s.Ctx, "lobby:online", redis.Z{
		Score:  float64(time.Now().UnixMilli()),
		Member: userID,
	}).Err()
}

func (s *Service) RemovePresence(userID string) error {
	return s.Redis.ZRem(s.Ctx, "lobby:online", userID).Err()
}

// GetOnlinePlayers returns players seen within the presence window and prunes
// entries that have aged out.
func (s *Service) GetOnlinePlayers() ([]string, error) {
	cutoff := time.Now().Add(-presenceWindow).UnixMilli()

	s.Redis.ZRemRangeByScore(s.Ctx, "lobby:online", "0", strconv.FormatInt(cutoff-1, 10))

	return s.Redis.ZRangeByScore(s.Ctx, "lobby:online", &redis.ZRangeBy{
		Min: strconv.FormatInt(cutoff, 10),
		Max: "+inf",
	}).Result()
}
