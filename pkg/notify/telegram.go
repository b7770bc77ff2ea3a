package notify

import (
	"context"
	"fmt"

	"ecoverse_backend/internal/model"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier messages users in their private chat with the bot. Mini app users are
// addressed by their Telegram id, which doubles as the private chat id.
type TelegramNotifier struct {
	bot sender
}

func NewTelegramNotifier(botToken string, debug bool) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bot: %w", err)
	}

	bot.Debug = debug

	return &TelegramNotifier{
		bot: bot,
	}, nil
}

func (t *TelegramNotifier) Notify(_ context.Context, event model.Event) error {
	text, ok := telegramText(event)
	if !ok {
		return nil
	}

	msg := tgbotapi.NewMessage(event.UserID, text)
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	return nil
}

// telegramText renders the events worth a chat message. Point awards are only streamed
// over the websocket.
func telegramText(event model.Event) (string, bool) {
	switch event.Type {
	case model.EventSubmissionApproved:
		text := fmt.Sprintf("Your submission for \"%v\" was approved. +%v eco points!",
			event.Payload["task_title"], event.Payload["awarded_points"])
		if notes, _ := event.Payload["reviewer_notes"].(string); notes != "" {
			text += "\nReviewer: " + notes
		}
		return text, true

	case model.EventSubmissionRejected:
		text := fmt.Sprintf("Your submission for \"%v\" was not accepted.", event.Payload["task_title"])
		if notes, _ := event.Payload["reviewer_notes"].(string); notes != "" {
			text += "\nReviewer: " + notes
		}
		return text, true

	case model.EventLevelUp:
		return fmt.Sprintf("Level up! You are now %v.", event.Payload["level_name"]), true
	}

	return "", false
}
