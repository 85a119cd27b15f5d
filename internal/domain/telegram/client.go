package telegram

import "errors"

// Sentinel errors for outbound sends. Adapters translate transport-specific
// failures into these so the dispatch layer can decide between skipping one
// recipient and aborting the whole tick.
var (
	// ErrRecipientUnreachable covers per-recipient failures: the user
	// blocked the bot, deleted their account, or the chat no longer exists.
	ErrRecipientUnreachable = errors.New("recipient unreachable")
	// ErrTransportMisconfigured covers credential or configuration failures
	// that no amount of skipping recipients can fix.
	ErrTransportMisconfigured = errors.New("telegram transport misconfigured")
)

// Client defines an interface for sending messages via a Telegram bot.
// This helps in decoupling the application logic from the specific bot library.
type Client interface {
	SendText(recipientChatID int64, text string) error
}
