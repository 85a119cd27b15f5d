package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"kyk_meal_bot/internal/domain/subscriber"
)

// Custom errors
var ErrSubscriberNotFound = errors.New("subscriber not found")

const subscriberColumns = `chat_id, username, first_name, last_name,
               notifications_enabled, is_admin,
               last_seen_at, last_activity_at, created_at, updated_at`

type PostgresSubscriberRepository struct {
	db *sql.DB
}

func NewPostgresSubscriberRepository(db *sql.DB) *PostgresSubscriberRepository {
	return &PostgresSubscriberRepository{db: db}
}

// UpsertOnInteraction records an inbound interaction. The create path sets
// the first-contact defaults (notifications on, not admin); the refresh path
// deliberately lists only display fields and timestamps, so the flags are
// never reset by later interactions.
func (r *PostgresSubscriberRepository) UpsertOnInteraction(ctx context.Context, s *subscriber.Subscriber) error {
	query := `INSERT INTO subscribers (chat_id, username, first_name, last_name,
                   notifications_enabled, is_admin, last_seen_at, last_activity_at)
               VALUES ($1, $2, $3, $4, TRUE, FALSE, NOW(), NOW())
               ON CONFLICT (chat_id) DO UPDATE
               SET username = EXCLUDED.username,
                   first_name = EXCLUDED.first_name,
                   last_name = EXCLUDED.last_name,
                   last_seen_at = NOW(),
                   last_activity_at = NOW(),
                   updated_at = NOW()
               RETURNING ` + subscriberColumns

	err := scanSubscriber(r.db.QueryRowContext(ctx, query, s.ChatID, s.Username, s.FirstName, s.LastName), s)
	if err != nil {
		return fmt.Errorf("error upserting subscriber on interaction: %w", err)
	}
	return nil
}

func (r *PostgresSubscriberRepository) GetByChatID(ctx context.Context, chatID int64) (*subscriber.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers WHERE chat_id = $1`

	s := &subscriber.Subscriber{}
	err := scanSubscriber(r.db.QueryRowContext(ctx, query, chatID), s)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubscriberNotFound
		}
		return nil, fmt.Errorf("error getting subscriber by chat ID: %w", err)
	}
	return s, nil
}

func (r *PostgresSubscriberRepository) SetNotificationsEnabled(ctx context.Context, chatID int64, enabled bool) error {
	query := `UPDATE subscribers
               SET notifications_enabled = $1, updated_at = NOW()
               WHERE chat_id = $2
               RETURNING updated_at`

	var updatedAt time.Time
	err := r.db.QueryRowContext(ctx, query, enabled, chatID).Scan(&updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSubscriberNotFound
		}
		return fmt.Errorf("error updating notification flag: %w", err)
	}
	return nil
}

func (r *PostgresSubscriberRepository) SetAdmin(ctx context.Context, chatID int64, isAdmin bool) error {
	query := `UPDATE subscribers
               SET is_admin = $1, updated_at = NOW()
               WHERE chat_id = $2
               RETURNING updated_at`

	var updatedAt time.Time
	err := r.db.QueryRowContext(ctx, query, isAdmin, chatID).Scan(&updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSubscriberNotFound
		}
		return fmt.Errorf("error updating admin flag: %w", err)
	}
	return nil
}

func (r *PostgresSubscriberRepository) ListActive(ctx context.Context) ([]*subscriber.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + `
               FROM subscribers WHERE notifications_enabled = TRUE ORDER BY chat_id`
	return r.list(ctx, query)
}

func (r *PostgresSubscriberRepository) ListAll(ctx context.Context) ([]*subscriber.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers ORDER BY chat_id`
	return r.list(ctx, query)
}

func (r *PostgresSubscriberRepository) ListPage(ctx context.Context, offset, limit int) ([]*subscriber.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + `
               FROM subscribers ORDER BY created_at, chat_id OFFSET $1 LIMIT $2`
	return r.list(ctx, query, offset, limit)
}

func (r *PostgresSubscriberRepository) list(ctx context.Context, query string, args ...any) ([]*subscriber.Subscriber, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing subscribers: %w", err)
	}
	defer rows.Close()

	subscribers := make([]*subscriber.Subscriber, 0)
	for rows.Next() {
		s := &subscriber.Subscriber{}
		if err := scanSubscriber(rows, s); err != nil {
			return nil, fmt.Errorf("error scanning subscriber: %w", err)
		}
		subscribers = append(subscribers, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscribers: %w", err)
	}
	return subscribers, nil
}

func (r *PostgresSubscriberRepository) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM subscribers`)
}

func (r *PostgresSubscriberRepository) CountActiveNotifications(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM subscribers WHERE notifications_enabled = TRUE`)
}

func (r *PostgresSubscriberRepository) CountActiveSince(ctx context.Context, since time.Time) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM subscribers WHERE last_activity_at > $1`, since)
}

func (r *PostgresSubscriberRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM subscribers WHERE created_at > $1`, since)
}

func (r *PostgresSubscriberRepository) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting subscribers: %w", err)
	}
	return n, nil
}

func scanSubscriber(row scanTarget, s *subscriber.Subscriber) error {
	return row.Scan(
		&s.ChatID, &s.Username, &s.FirstName, &s.LastName,
		&s.NotificationsEnabled, &s.IsAdmin,
		&s.LastSeenAt, &s.LastActivityAt, &s.CreatedAt, &s.UpdatedAt,
	)
}
