package menu

import "time"

// Slot identifies one of the two daily meal periods. Values match the
// provider's mealType query parameter.
type Slot int

const (
	SlotBreakfast Slot = 0
	SlotDinner    Slot = 1
)

func (s Slot) String() string {
	switch s {
	case SlotBreakfast:
		return "breakfast"
	case SlotDinner:
		return "dinner"
	default:
		return "unknown"
	}
}

// Item is a single dish on a menu. Calories is 0 when the provider did not
// publish a usable value.
type Item struct {
	Name     string
	Calories int
}

// Menu represents one cafeteria menu for a date, slot and city.
// Natural key: (Date, Slot, CityID). At most one stored row per key.
type Menu struct {
	ID            int64
	Date          time.Time // date component only, anchored at UTC midnight
	Slot          Slot
	CityID        int
	Items         [4]Item
	TotalCalories int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SameContent reports whether two menus carry identical data, ignoring
// storage identity and timestamps.
func (m *Menu) SameContent(other *Menu) bool {
	return m.Date.Equal(other.Date) &&
		m.Slot == other.Slot &&
		m.CityID == other.CityID &&
		m.Items == other.Items &&
		m.TotalCalories == other.TotalCalories
}

// Day strips the time-of-day component, anchoring the date at UTC midnight so
// values compare equal regardless of the zone they were observed in.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
