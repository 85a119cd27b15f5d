package subscriber

import (
	"database/sql"
	"time"
)

// Subscriber is a Telegram user known to the bot. ChatID is the only stable
// key; display fields are refreshed from the latest interaction, while the
// notification and admin flags keep their first-contact defaults until
// explicitly changed.
type Subscriber struct {
	ChatID               int64
	Username             sql.NullString // Telegram handle, optional
	FirstName            string
	LastName             sql.NullString
	NotificationsEnabled bool
	IsAdmin              bool
	LastSeenAt           time.Time
	LastActivityAt       time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// FullName joins the display name fields for human-facing listings.
func (s *Subscriber) FullName() string {
	if s.LastName.Valid && s.LastName.String != "" {
		return s.FirstName + " " + s.LastName.String
	}
	return s.FirstName
}
