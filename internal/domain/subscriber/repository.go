package subscriber

import (
	"context"
	"time"
)

// Repository defines the operations for persisting and querying the
// subscriber registry.
type Repository interface {
	// UpsertOnInteraction creates the subscriber with default flags
	// (notifications on, not admin) on first contact; on later contacts it
	// refreshes display info and timestamps and leaves both flags untouched.
	// The stored row is scanned back into s.
	UpsertOnInteraction(ctx context.Context, s *Subscriber) error
	GetByChatID(ctx context.Context, chatID int64) (*Subscriber, error)
	// SetNotificationsEnabled and SetAdmin mutate existing records only; an
	// unknown chat id surfaces as ErrSubscriberNotFound.
	SetNotificationsEnabled(ctx context.Context, chatID int64, enabled bool) error
	SetAdmin(ctx context.Context, chatID int64, isAdmin bool) error
	// ListActive returns subscribers with notifications enabled.
	ListActive(ctx context.Context) ([]*Subscriber, error)
	ListAll(ctx context.Context) ([]*Subscriber, error)
	// ListPage returns one page of subscribers ordered by creation, for
	// admin listings.
	ListPage(ctx context.Context, offset, limit int) ([]*Subscriber, error)

	// Aggregate queries for operational reporting.
	Count(ctx context.Context) (int64, error)
	CountActiveNotifications(ctx context.Context) (int64, error)
	CountActiveSince(ctx context.Context, since time.Time) (int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
}
