package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"kyk_meal_bot/internal/domain/menu"
	"kyk_meal_bot/internal/domain/subscriber"
	idb "kyk_meal_bot/internal/infra/database"
	"kyk_meal_bot/internal/infra/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func testCollector() *metrics.Collector {
	return metrics.NewCollector(prometheus.NewRegistry())
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func genuineMenu(date time.Time, slot menu.Slot) *menu.Menu {
	return &menu.Menu{
		Date:   menu.Day(date),
		Slot:   slot,
		CityID: 1,
		Items: [4]menu.Item{
			{Name: "Mercimek Çorbası", Calories: 150},
			{Name: "Izgara Köfte", Calories: 420},
			{Name: "Pilav", Calories: 300},
			{Name: "Ayran", Calories: 90},
		},
		TotalCalories: 960,
	}
}

func noiseMenu(date time.Time, slot menu.Slot) *menu.Menu {
	m := genuineMenu(date, slot)
	m.Items[1] = menu.Item{Name: "menüleri mail@provider.com adresine gönderin"}
	return m
}

// fakeMenuRepo is an in-memory menu.Repository keyed by natural key.
type fakeMenuRepo struct {
	mu          sync.Mutex
	nextID      int64
	menus       map[string]*menu.Menu
	upsertCalls int
	failUpsert  error
}

func newFakeMenuRepo() *fakeMenuRepo {
	return &fakeMenuRepo{menus: make(map[string]*menu.Menu)}
}

func naturalKey(date time.Time, slot menu.Slot, cityID int) string {
	return fmt.Sprintf("%s|%d|%d", date.Format("2006-01-02"), slot, cityID)
}

func (r *fakeMenuRepo) Upsert(_ context.Context, m *menu.Menu) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upsertCalls++
	if r.failUpsert != nil {
		return r.failUpsert
	}
	key := naturalKey(m.Date, m.Slot, m.CityID)
	if existing, ok := r.menus[key]; ok {
		m.ID = existing.ID
		if m.SameContent(existing) {
			return nil
		}
	} else {
		r.nextID++
		m.ID = r.nextID
	}
	stored := *m
	r.menus[key] = &stored
	return nil
}

func (r *fakeMenuRepo) GetByDate(_ context.Context, date time.Time) ([]*menu.Menu, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*menu.Menu, 0, 2)
	for _, m := range r.menus {
		if m.Date.Equal(menu.Day(date)) {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeMenuRepo) GetByDateAndSlot(_ context.Context, date time.Time, slot menu.Slot) (*menu.Menu, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.menus {
		if m.Date.Equal(menu.Day(date)) && m.Slot == slot {
			copied := *m
			return &copied, nil
		}
	}
	return nil, idb.ErrMenuNotFound
}

func (r *fakeMenuRepo) stored() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.menus)
}

// fakeFeed serves canned candidates or errors per slot.
type fakeFeed struct {
	bySlot     map[menu.Slot][]*menu.Menu
	errBySlot  map[menu.Slot]error
	fetchCalls int
}

func (f *fakeFeed) Fetch(_ context.Context, _ int, slot menu.Slot) ([]*menu.Menu, error) {
	f.fetchCalls++
	if err := f.errBySlot[slot]; err != nil {
		return nil, err
	}
	// Fresh copies: the service mutates candidates via the repository.
	out := make([]*menu.Menu, 0, len(f.bySlot[slot]))
	for _, m := range f.bySlot[slot] {
		copied := *m
		out = append(out, &copied)
	}
	return out, nil
}

// fakeSubscriberRepo is an in-memory subscriber.Repository honoring the
// create-vs-refresh contract.
type fakeSubscriberRepo struct {
	mu    sync.Mutex
	subs  map[int64]*subscriber.Subscriber
	order []int64
	now   func() time.Time
}

func newFakeSubscriberRepo(now func() time.Time) *fakeSubscriberRepo {
	return &fakeSubscriberRepo{subs: make(map[int64]*subscriber.Subscriber), now: now}
}

func (r *fakeSubscriberRepo) UpsertOnInteraction(_ context.Context, s *subscriber.Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if existing, ok := r.subs[s.ChatID]; ok {
		existing.Username = s.Username
		existing.FirstName = s.FirstName
		existing.LastName = s.LastName
		existing.LastSeenAt = now
		existing.LastActivityAt = now
		existing.UpdatedAt = now
		*s = *existing
		return nil
	}
	stored := *s
	stored.NotificationsEnabled = true
	stored.IsAdmin = false
	stored.LastSeenAt = now
	stored.LastActivityAt = now
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.subs[s.ChatID] = &stored
	r.order = append(r.order, s.ChatID)
	*s = stored
	return nil
}

func (r *fakeSubscriberRepo) GetByChatID(_ context.Context, chatID int64) (*subscriber.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[chatID]
	if !ok {
		return nil, idb.ErrSubscriberNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSubscriberRepo) SetNotificationsEnabled(_ context.Context, chatID int64, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[chatID]
	if !ok {
		return idb.ErrSubscriberNotFound
	}
	s.NotificationsEnabled = enabled
	s.UpdatedAt = r.now()
	return nil
}

func (r *fakeSubscriberRepo) SetAdmin(_ context.Context, chatID int64, isAdmin bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[chatID]
	if !ok {
		return idb.ErrSubscriberNotFound
	}
	s.IsAdmin = isAdmin
	s.UpdatedAt = r.now()
	return nil
}

func (r *fakeSubscriberRepo) ListActive(_ context.Context) ([]*subscriber.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*subscriber.Subscriber, 0, len(r.order))
	for _, id := range r.order {
		if s := r.subs[id]; s.NotificationsEnabled {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeSubscriberRepo) ListAll(_ context.Context) ([]*subscriber.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*subscriber.Subscriber, 0, len(r.order))
	for _, id := range r.order {
		copied := *r.subs[id]
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeSubscriberRepo) ListPage(ctx context.Context, offset, limit int) ([]*subscriber.Subscriber, error) {
	all, _ := r.ListAll(ctx)
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *fakeSubscriberRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.subs)), nil
}

func (r *fakeSubscriberRepo) CountActiveNotifications(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.subs {
		if s.NotificationsEnabled {
			n++
		}
	}
	return n, nil
}

func (r *fakeSubscriberRepo) CountActiveSince(_ context.Context, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.subs {
		if s.LastActivityAt.After(since) {
			n++
		}
	}
	return n, nil
}

func (r *fakeSubscriberRepo) CountCreatedSince(_ context.Context, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.subs {
		if s.CreatedAt.After(since) {
			n++
		}
	}
	return n, nil
}

// fakeTelegramClient records sends and fails for configured recipients.
type fakeTelegramClient struct {
	mu      sync.Mutex
	sentTo  []int64
	texts   []string
	failFor map[int64]error
}

func newFakeTelegramClient() *fakeTelegramClient {
	return &fakeTelegramClient{failFor: make(map[int64]error)}
}

func (c *fakeTelegramClient) SendText(recipientChatID int64, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err, ok := c.failFor[recipientChatID]; ok {
		return err
	}
	c.sentTo = append(c.sentTo, recipientChatID)
	c.texts = append(c.texts, text)
	return nil
}
