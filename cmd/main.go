package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"flashfrenzy/backend/internal/api/handler"
	"flashfrenzy/backend/internal/gamehub"
	"flashfrenzy/backend/internal/models"
	"flashfrenzy/backend/internal/notify"
	"flashfrenzy/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setupDependencies() (*gorm.DB, *redis.Client) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		envOr("DB_HOST", "localhost"),
		envOr("DB_USER", "user"),
		envOr("DB_PASSWORD", "password"),
		envOr("DB_NAME", "flashfrenzydb"),
		envOr("DB_PORT", "5432"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     envOr("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Match{},
		&models.MatchHistory{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting Flashcard Frenzy backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	db, rdb := setupDependencies()
	s := storage.NewStorageService(db, rdb)

	// The Telegram nudge is optional; without a token challenges for offline
	// players simply rely on the degraded broadcast.
	var notifier gamehub.Notifier
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		tn, err := notify.NewTelegramNotifier(token, s)
		if err != nil {
			log.Printf("Warning: Telegram notifier disabled: %v", err)
		} else {
			notifier = tn
		}
	}

	hub := gamehub.NewHub(s, notifier)
	go hub.Run()

	jwtSecret := []byte(envOr("JWT_SECRET", "dev-only-secret"))

	r := gin.Default()
	h := handler.NewHandler(hub, s, jwtSecret)

	r.POST("/auth/token", h.IssueToken)
	r.GET("/ws", h.ServeWebSocket)

	// Polling emulation of the realtime surface.
	r.POST("/api/polling/challenge", h.SubmitChallenge)
	r.POST("/api/polling/challenge-response", h.SubmitChallengeResponse)
	r.POST("/api/polling/answer", h.SubmitAnswer)
	r.POST("/api/polling/join-match", h.SubmitJoinMatch)
	r.POST("/api/polling/leave-match", h.SubmitLeaveMatch)
	r.POST("/api/polling/updates", h.PollForUpdates)

	// Collaborator REST.
	r.POST("/api/match", h.CreateMatch)
	r.GET("/api/match/:id", h.GetMatch)
	r.DELETE("/api/match", h.CleanupMatches)
	r.GET("/api/players", h.ListPlayers)
	r.POST("/api/users/sync", h.SyncUser)
	r.POST("/api/match-history", h.SaveMatchHistory)
	r.GET("/api/match-history", h.GetMatchHistory)

	server := &http.Server{
		Addr:           ":" + envOr("PORT", "8080"),
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
