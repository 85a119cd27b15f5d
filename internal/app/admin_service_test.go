package app

import (
	"context"
	"fmt"
	"testing"
	"time"

	"kyk_meal_bot/internal/domain/subscriber"
	idb "kyk_meal_bot/internal/infra/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdminFixture(now time.Time, bootstrapID int64) (*AdminService, *fakeSubscriberRepo) {
	repo := newFakeSubscriberRepo(func() time.Time { return now })
	svc := NewAdminService(repo, fixedClock{now: now}, bootstrapID, testLogger())
	return svc, repo
}

func TestIsAdmin(t *testing.T) {
	now := time.Date(2025, time.March, 5, 12, 0, 0, 0, time.UTC)
	svc, repo := newAdminFixture(now, 999)

	addSubscriber(t, repo, 100)
	addSubscriber(t, repo, 200)
	require.NoError(t, repo.SetAdmin(context.Background(), 200, true))

	assert.True(t, svc.IsAdmin(context.Background(), 999), "bootstrap id needs no database row")
	assert.True(t, svc.IsAdmin(context.Background(), 200))
	assert.False(t, svc.IsAdmin(context.Background(), 100))
	assert.False(t, svc.IsAdmin(context.Background(), 12345), "unknown chat id")
}

func TestStats(t *testing.T) {
	now := time.Date(2025, time.March, 5, 12, 0, 0, 0, time.UTC)
	svc, repo := newAdminFixture(now, 0)

	// Two old subscribers, one of them opted out.
	repo.now = func() time.Time { return now.Add(-48 * time.Hour) }
	addSubscriber(t, repo, 100)
	addSubscriber(t, repo, 200)
	require.NoError(t, repo.SetNotificationsEnabled(context.Background(), 200, false))

	// One fresh subscriber inside the 24h window.
	repo.now = func() time.Time { return now.Add(-time.Hour) }
	addSubscriber(t, repo, 300)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalSubscribers)
	assert.Equal(t, int64(2), stats.ActiveNotifications)
	assert.Equal(t, int64(1), stats.ActiveLast24h)
	assert.Equal(t, int64(1), stats.NewLast24h)
}

func TestListSubscribers_Pagination(t *testing.T) {
	now := time.Date(2025, time.March, 5, 12, 0, 0, 0, time.UTC)
	svc, repo := newAdminFixture(now, 0)

	for i := int64(1); i <= 12; i++ {
		addSubscriber(t, repo, i)
	}

	first, totalPages, err := svc.ListSubscribers(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, totalPages)
	assert.Len(t, first, 10)

	second, _, err := svc.ListSubscribers(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, second, 2)

	beyond, _, err := svc.ListSubscribers(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, beyond)
}

func TestListSubscribers_EmptyRegistryHasOnePage(t *testing.T) {
	svc, _ := newAdminFixture(time.Now(), 0)

	subs, totalPages, err := svc.ListSubscribers(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, subs)
	assert.Equal(t, 1, totalPages)
}

func TestGrantAdmin(t *testing.T) {
	now := time.Date(2025, time.March, 5, 12, 0, 0, 0, time.UTC)
	svc, repo := newAdminFixture(now, 0)
	addSubscriber(t, repo, 100)

	granted, err := svc.GrantAdmin(context.Background(), 100)
	require.NoError(t, err)
	assert.True(t, granted.IsAdmin)

	_, err = svc.GrantAdmin(context.Background(), 100)
	assert.ErrorIs(t, err, ErrAlreadyAdmin)

	_, err = svc.GrantAdmin(context.Background(), 555)
	assert.ErrorIs(t, err, idb.ErrSubscriberNotFound)
}

func TestRevokeAdmin(t *testing.T) {
	now := time.Date(2025, time.March, 5, 12, 0, 0, 0, time.UTC)
	svc, repo := newAdminFixture(now, 0)
	addSubscriber(t, repo, 100)
	addSubscriber(t, repo, 200)
	require.NoError(t, repo.SetAdmin(context.Background(), 100, true))
	require.NoError(t, repo.SetAdmin(context.Background(), 200, true))

	_, err := svc.RevokeAdmin(context.Background(), 100, 100)
	assert.ErrorIs(t, err, ErrSelfDemotion)

	revoked, err := svc.RevokeAdmin(context.Background(), 100, 200)
	require.NoError(t, err)
	assert.False(t, revoked.IsAdmin)

	_, err = svc.RevokeAdmin(context.Background(), 100, 200)
	assert.ErrorIs(t, err, ErrNotAnAdmin)
}

func TestRegisterInteraction_FirstContactDefaults(t *testing.T) {
	now := time.Date(2025, time.March, 5, 12, 0, 0, 0, time.UTC)
	repo := newFakeSubscriberRepo(func() time.Time { return now })
	svc := NewSubscriberService(repo, testLogger())

	sub, err := svc.RegisterInteraction(context.Background(), 100, "ayse", "Ayşe", "Yılmaz")
	require.NoError(t, err)
	assert.True(t, sub.NotificationsEnabled)
	assert.False(t, sub.IsAdmin)
	assert.Equal(t, "ayse", sub.Username.String)
	assert.Equal(t, "Ayşe Yılmaz", sub.FullName())
}

func TestRegisterInteraction_RefreshKeepsFlags(t *testing.T) {
	now := time.Date(2025, time.March, 5, 12, 0, 0, 0, time.UTC)
	repo := newFakeSubscriberRepo(func() time.Time { return now })
	svc := NewSubscriberService(repo, testLogger())

	_, err := svc.RegisterInteraction(context.Background(), 100, "ayse", "Ayşe", "")
	require.NoError(t, err)
	require.NoError(t, svc.DisableNotifications(context.Background(), 100))
	require.NoError(t, repo.SetAdmin(context.Background(), 100, true))

	refreshed, err := svc.RegisterInteraction(context.Background(), 100, "ayse_new", "Ayşe", "")
	require.NoError(t, err)
	assert.False(t, refreshed.NotificationsEnabled, "opt-out must survive later interactions")
	assert.True(t, refreshed.IsAdmin)
	assert.Equal(t, "ayse_new", refreshed.Username.String)
}

func TestRegisterInteraction_BlankOptionalFieldsStayNull(t *testing.T) {
	repo := newFakeSubscriberRepo(time.Now)
	svc := NewSubscriberService(repo, testLogger())

	sub, err := svc.RegisterInteraction(context.Background(), 100, "  ", "Mehmet", "")
	require.NoError(t, err)
	assert.False(t, sub.Username.Valid)
	assert.False(t, sub.LastName.Valid)
	assert.Equal(t, "Mehmet", sub.FullName())
}

func TestNotificationToggles(t *testing.T) {
	repo := newFakeSubscriberRepo(time.Now)
	svc := NewSubscriberService(repo, testLogger())

	err := svc.EnableNotifications(context.Background(), 42)
	assert.ErrorIs(t, err, idb.ErrSubscriberNotFound)

	var s subscriber.Subscriber
	s.ChatID = 42
	require.NoError(t, repo.UpsertOnInteraction(context.Background(), &s))

	require.NoError(t, svc.DisableNotifications(context.Background(), 42))
	stored, err := repo.GetByChatID(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, stored.NotificationsEnabled)

	require.NoError(t, svc.EnableNotifications(context.Background(), 42))
	stored, err = repo.GetByChatID(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, stored.NotificationsEnabled)
}

func TestListActiveOrderIsStable(t *testing.T) {
	repo := newFakeSubscriberRepo(time.Now)
	for i := int64(1); i <= 5; i++ {
		require.NoError(t, repo.UpsertOnInteraction(context.Background(), &subscriber.Subscriber{
			ChatID:    i,
			FirstName: fmt.Sprintf("User %d", i),
		}))
	}
	require.NoError(t, repo.SetNotificationsEnabled(context.Background(), 3, false))

	active, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	ids := make([]int64, 0, len(active))
	for _, s := range active {
		ids = append(ids, s.ChatID)
	}
	assert.Equal(t, []int64{1, 2, 4, 5}, ids)
}
