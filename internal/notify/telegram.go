// Package notify delivers out-of-band nudges to players the relay cannot
// reach over any live connection.
package notify

import (
	"fmt"
	"log"
	"strconv"

	"flashfrenzy/backend/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramNotifier sends a one-line Telegram message to a player who linked
// a chat ID. Send-only: the bot never reads updates.
type TelegramNotifier struct {
	BotAPI  *tgbotapi.BotAPI
	Storage storage.Storage
}

func NewTelegramNotifier(token string, s storage.Storage) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	log.Printf("Telegram notifier authorized as @%s", bot.Self.UserName)
	return &TelegramNotifier{BotAPI: bot, Storage: s}, nil
}

// NotifyChallenge tells an offline player they were challenged. Players
// without a linked chat ID are skipped silently; this is a best-effort
// side channel, not a delivery guarantee.
func (n *TelegramNotifier) NotifyChallenge(targetID, challengerName, matchID string) error {
	user, err := n.Storage.GetUserByEmail(targetID)
	if err != nil {
		return err
	}
	if user == nil || user.TelegramChatID == "" {
		return nil
	}

	chatID, err := strconv.ParseInt(user.TelegramChatID, 10, 64)
	if err != nil {
		return fmt.Errorf("bad telegram chat id for %s: %w", targetID, err)
	}

	text := fmt.Sprintf("%s challenged you to a flashcard match! Open the lobby to accept.", challengerName)
	if challengerName == "" {
		text = "You were challenged to a flashcard match! Open the lobby to accept."
	}

	_, err = n.BotAPI.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
