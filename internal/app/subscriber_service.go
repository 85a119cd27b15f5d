package app

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"kyk_meal_bot/internal/domain/subscriber"

	"github.com/sirupsen/logrus"
)

// SubscriberService maintains the registry from inbound interactions and
// handles the notification opt-in toggles.
type SubscriberService struct {
	subscriberRepo subscriber.Repository
	logger         *logrus.Entry
}

func NewSubscriberService(sr subscriber.Repository, logger *logrus.Entry) *SubscriberService {
	return &SubscriberService{subscriberRepo: sr, logger: logger}
}

// RegisterInteraction creates or refreshes the subscriber row for an inbound
// message. First contact gets notifications enabled and no admin privilege;
// later contacts only refresh display info and timestamps.
func (s *SubscriberService) RegisterInteraction(ctx context.Context, chatID int64, username, firstName, lastName string) (*subscriber.Subscriber, error) {
	sub := &subscriber.Subscriber{
		ChatID:    chatID,
		Username:  nullString(username),
		FirstName: firstName,
		LastName:  nullString(lastName),
	}
	if err := s.subscriberRepo.UpsertOnInteraction(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to register interaction for chat %d: %w", chatID, err)
	}
	return sub, nil
}

func (s *SubscriberService) EnableNotifications(ctx context.Context, chatID int64) error {
	if err := s.subscriberRepo.SetNotificationsEnabled(ctx, chatID, true); err != nil {
		return fmt.Errorf("failed to enable notifications for chat %d: %w", chatID, err)
	}
	s.logger.WithField("chat_id", chatID).Info("Notifications enabled")
	return nil
}

func (s *SubscriberService) DisableNotifications(ctx context.Context, chatID int64) error {
	if err := s.subscriberRepo.SetNotificationsEnabled(ctx, chatID, false); err != nil {
		return fmt.Errorf("failed to disable notifications for chat %d: %w", chatID, err)
	}
	s.logger.WithField("chat_id", chatID).Info("Notifications disabled")
	return nil
}

func nullString(v string) sql.NullString {
	v = strings.TrimSpace(v)
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}
