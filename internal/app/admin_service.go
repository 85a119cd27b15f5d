package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kyk_meal_bot/internal/domain/subscriber"
	"kyk_meal_bot/internal/infra/clock"
	idb "kyk_meal_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
)

// Custom application-level errors for admin service
var (
	ErrAdminNotAuthorized = errors.New("performing user is not authorized as an admin")
	ErrAlreadyAdmin       = errors.New("subscriber already has admin privilege")
	ErrNotAnAdmin         = errors.New("subscriber does not have admin privilege")
	ErrSelfDemotion       = errors.New("admins cannot revoke their own privilege")
)

const subscribersPerPage = 10

// BotStats is the aggregate report behind /admin_stats.
type BotStats struct {
	TotalSubscribers    int64
	ActiveNotifications int64
	ActiveLast24h       int64
	NewLast24h          int64
}

// AdminService backs the administrative commands: statistics, subscriber
// listing and privilege management. The bootstrap admin chat id from
// configuration is treated as an admin even before any database flag is set.
type AdminService struct {
	subscriberRepo   subscriber.Repository
	clock            clock.Clock
	bootstrapAdminID int64
	logger           *logrus.Entry
}

func NewAdminService(sr subscriber.Repository, clk clock.Clock, bootstrapAdminID int64, logger *logrus.Entry) *AdminService {
	return &AdminService{
		subscriberRepo:   sr,
		clock:            clk,
		bootstrapAdminID: bootstrapAdminID,
		logger:           logger,
	}
}

// IsAdmin reports whether the chat id carries admin privilege. Lookup
// failures are logged and treated as "not an admin".
func (s *AdminService) IsAdmin(ctx context.Context, chatID int64) bool {
	if s.bootstrapAdminID != 0 && chatID == s.bootstrapAdminID {
		return true
	}
	sub, err := s.subscriberRepo.GetByChatID(ctx, chatID)
	if err != nil {
		if !errors.Is(err, idb.ErrSubscriberNotFound) {
			s.logger.WithError(err).WithField("chat_id", chatID).Error("Failed to check admin privilege")
		}
		return false
	}
	return sub.IsAdmin
}

func (s *AdminService) Stats(ctx context.Context) (*BotStats, error) {
	total, err := s.subscriberRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count subscribers: %w", err)
	}
	active, err := s.subscriberRepo.CountActiveNotifications(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count active notifications: %w", err)
	}

	dayAgo := s.clock.Now().Add(-24 * time.Hour)
	activeLast24h, err := s.subscriberRepo.CountActiveSince(ctx, dayAgo)
	if err != nil {
		return nil, fmt.Errorf("failed to count recently active subscribers: %w", err)
	}
	newLast24h, err := s.subscriberRepo.CountCreatedSince(ctx, dayAgo)
	if err != nil {
		return nil, fmt.Errorf("failed to count new subscribers: %w", err)
	}

	return &BotStats{
		TotalSubscribers:    total,
		ActiveNotifications: active,
		ActiveLast24h:       activeLast24h,
		NewLast24h:          newLast24h,
	}, nil
}

// ListSubscribers returns one zero-based page of subscribers plus the total
// page count.
func (s *AdminService) ListSubscribers(ctx context.Context, page int) ([]*subscriber.Subscriber, int, error) {
	if page < 0 {
		page = 0
	}
	total, err := s.subscriberRepo.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count subscribers: %w", err)
	}
	totalPages := int((total + subscribersPerPage - 1) / subscribersPerPage)
	if totalPages == 0 {
		totalPages = 1
	}

	subs, err := s.subscriberRepo.ListPage(ctx, page*subscribersPerPage, subscribersPerPage)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list subscribers: %w", err)
	}
	return subs, totalPages, nil
}

func (s *AdminService) GrantAdmin(ctx context.Context, targetChatID int64) (*subscriber.Subscriber, error) {
	target, err := s.subscriberRepo.GetByChatID(ctx, targetChatID)
	if err != nil {
		return nil, err
	}
	if target.IsAdmin {
		return target, ErrAlreadyAdmin
	}
	if err := s.subscriberRepo.SetAdmin(ctx, targetChatID, true); err != nil {
		return nil, fmt.Errorf("failed to grant admin privilege: %w", err)
	}
	target.IsAdmin = true
	s.logger.WithField("chat_id", targetChatID).Info("Admin privilege granted")
	return target, nil
}

func (s *AdminService) RevokeAdmin(ctx context.Context, requestorChatID, targetChatID int64) (*subscriber.Subscriber, error) {
	if requestorChatID == targetChatID {
		return nil, ErrSelfDemotion
	}
	target, err := s.subscriberRepo.GetByChatID(ctx, targetChatID)
	if err != nil {
		return nil, err
	}
	if !target.IsAdmin {
		return target, ErrNotAnAdmin
	}
	if err := s.subscriberRepo.SetAdmin(ctx, targetChatID, false); err != nil {
		return nil, fmt.Errorf("failed to revoke admin privilege: %w", err)
	}
	target.IsAdmin = false
	s.logger.WithField("chat_id", targetChatID).Info("Admin privilege revoked")
	return target, nil
}
