package menu

import (
	"context"
	"time"
)

// Repository defines the operations for persisting and retrieving Menu entities.
type Repository interface {
	// Upsert inserts the menu if its natural key (date, slot, city) is
	// unknown, otherwise overwrites the stored row in place when the content
	// differs. The stored row's identity is preserved across updates and a
	// duplicate-key conflict never surfaces to callers.
	Upsert(ctx context.Context, m *Menu) error
	// GetByDate returns the stored menus for a calendar date: zero, one, or
	// two records (at most one per slot). Order is unspecified.
	GetByDate(ctx context.Context, date time.Time) ([]*Menu, error)
	GetByDateAndSlot(ctx context.Context, date time.Time, slot Slot) (*Menu, error)
}
