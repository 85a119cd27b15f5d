// internal/infra/telegram/client.go
package telegram

import (
	"errors"
	"fmt"

	domainTelegram "kyk_meal_bot/internal/domain/telegram"

	"gopkg.in/telebot.v3"
)

// TelebotAdapter implements the domain Client interface using the
// gopkg.in/telebot.v3 library and translates its errors into the domain
// taxonomy.
type TelebotAdapter struct {
	bot *telebot.Bot
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// SendText sends a plain text message to the specified recipient.
func (tba *TelebotAdapter) SendText(recipientChatID int64, text string) error {
	recipient := &telebot.User{ID: recipientChatID}
	_, err := tba.bot.Send(recipient, text)
	if err == nil {
		return nil
	}
	return classifySendError(err)
}

func classifySendError(err error) error {
	switch {
	case errors.Is(err, telebot.ErrUnauthorized) || errors.Is(err, telebot.ErrNotFound):
		// The API rejected the bot itself; skipping to the next recipient
		// cannot help.
		return fmt.Errorf("%w: %v", domainTelegram.ErrTransportMisconfigured, err)
	default:
		// Blocked bots, deleted accounts, missing chats and the rest are all
		// recipient-level failures.
		return fmt.Errorf("%w: %v", domainTelegram.ErrRecipientUnreachable, err)
	}
}
