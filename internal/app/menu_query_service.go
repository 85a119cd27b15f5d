package app

import (
	"context"
	"fmt"
	"time"

	"kyk_meal_bot/internal/domain/menu"

	"github.com/sirupsen/logrus"
)

// MenuQueryService serves the interactive /bugun and /yarin reads.
type MenuQueryService struct {
	menuRepo  menu.Repository
	validator *menu.Validator
	logger    *logrus.Entry
}

func NewMenuQueryService(mr menu.Repository, validator *menu.Validator, logger *logrus.Entry) *MenuQueryService {
	return &MenuQueryService{menuRepo: mr, validator: validator, logger: logger}
}

// MenusFor returns the stored menus for a date, re-filtered through the
// validator. Rows stored before a noise-phrase list update may no longer
// pass, and those must not reach users.
func (s *MenuQueryService) MenusFor(ctx context.Context, date time.Time) ([]*menu.Menu, error) {
	stored, err := s.menuRepo.GetByDate(ctx, menu.Day(date))
	if err != nil {
		return nil, fmt.Errorf("failed to load menus for %s: %w", date.Format("2006-01-02"), err)
	}

	genuine := make([]*menu.Menu, 0, len(stored))
	for _, m := range stored {
		if s.validator.IsGenuine(m) {
			genuine = append(genuine, m)
			continue
		}
		s.logger.WithFields(logrus.Fields{
			"date": m.Date.Format("2006-01-02"),
			"slot": m.Slot.String(),
		}).Warn("Stored menu no longer passes validation; hiding from display")
	}
	return genuine, nil
}
