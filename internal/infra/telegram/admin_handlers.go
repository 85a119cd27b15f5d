package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"kyk_meal_bot/internal/app"
	idb "kyk_meal_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const notAuthorizedReply = "🚫 Bu komutu kullanma yetkiniz bulunmuyor."

// RegisterAdminHandlers registers handlers for the administrative commands.
// Authorization is checked per command against the admin flag in the
// registry (plus the bootstrap admin from configuration).
func RegisterAdminHandlers(
	ctx context.Context,
	b *telebot.Bot,
	adminService *app.AdminService,
	subscriberService *app.SubscriberService,
	dispatchService *app.DispatchService,
	baseLogger *logrus.Entry,
) {
	authorize := func(c telebot.Context, logCtx *logrus.Entry) bool {
		sender := c.Sender()
		if _, err := subscriberService.RegisterInteraction(ctx, sender.ID, sender.Username, sender.FirstName, sender.LastName); err != nil {
			logCtx.WithError(err).Error("Failed to register interaction")
		}
		if !adminService.IsAdmin(ctx, sender.ID) {
			logCtx.Warn("Unauthorized access attempt")
			_ = c.Send(notAuthorizedReply)
			return false
		}
		return true
	}

	b.Handle("/admin_list", func(c telebot.Context) error {
		logCtx := baseLogger.WithFields(logrus.Fields{"handler": "/admin_list", "sender_id": c.Sender().ID})
		logCtx.Info("Command received")
		if !authorize(c, logCtx) {
			return nil
		}

		page := 0
		if args := c.Args(); len(args) > 0 {
			if parsed, err := strconv.Atoi(args[0]); err == nil && parsed > 0 {
				page = parsed - 1 // shown 1-based, stored 0-based
			}
		}

		subs, totalPages, err := adminService.ListSubscribers(ctx, page)
		if err != nil {
			logCtx.WithError(err).Error("Failed to list subscribers")
			return c.Send(genericErrorReply)
		}
		if len(subs) == 0 {
			return c.Send("👥 Bu sayfada kullanıcı yok.")
		}

		var response strings.Builder
		response.WriteString("👥 Kullanıcı Listesi:\n\n")
		for _, s := range subs {
			adminBadge := ""
			if s.IsAdmin {
				adminBadge = "🔧 "
			}
			username := "isimsiz"
			if s.Username.Valid {
				username = s.Username.String
			}
			notifState := "Kapalı ❌"
			if s.NotificationsEnabled {
				notifState = "Açık ✅"
			}
			fmt.Fprintf(&response, "%s%s (@%s)\n📱 Chat ID: %d\n🔔 Bildirim: %s\n\n",
				adminBadge, s.FullName(), username, s.ChatID, notifState)
		}
		fmt.Fprintf(&response, "Sayfa %d/%d", page+1, totalPages)
		return c.Send(response.String())
	})

	b.Handle("/admin_stats", func(c telebot.Context) error {
		logCtx := baseLogger.WithFields(logrus.Fields{"handler": "/admin_stats", "sender_id": c.Sender().ID})
		logCtx.Info("Command received")
		if !authorize(c, logCtx) {
			return nil
		}

		stats, err := adminService.Stats(ctx)
		if err != nil {
			logCtx.WithError(err).Error("Failed to collect stats")
			return c.Send(genericErrorReply)
		}

		text := fmt.Sprintf(`📊 Bot İstatistikleri:

👥 Toplam Kullanıcı: %d
🔔 Bildirim Alan Kullanıcı: %d
🔕 Bildirimi Kapalı Kullanıcı: %d

📅 Son 24 Saat:
- Aktif Kullanıcı: %d
- Yeni Kayıt: %d`,
			stats.TotalSubscribers,
			stats.ActiveNotifications,
			stats.TotalSubscribers-stats.ActiveNotifications,
			stats.ActiveLast24h,
			stats.NewLast24h)
		return c.Send(text)
	})

	b.Handle("/admin_broadcast", func(c telebot.Context) error {
		logCtx := baseLogger.WithFields(logrus.Fields{"handler": "/admin_broadcast", "sender_id": c.Sender().ID})
		logCtx.Info("Command received")
		if !authorize(c, logCtx) {
			return nil
		}

		text := strings.TrimSpace(c.Message().Payload)
		if text == "" {
			return c.Send("⚠️ Kullanım: /admin_broadcast [mesaj]\n\nÖrnek:\n/admin_broadcast Bugün yemekhanede bakım çalışması yapılacaktır.")
		}

		successCount, err := dispatchService.BroadcastAdminMessage(ctx, text)
		if err != nil {
			logCtx.WithError(err).WithField("sent", successCount).Error("Broadcast aborted")
			return c.Send(genericErrorReply)
		}
		logCtx.WithField("sent", successCount).Info("Broadcast finished")
		return c.Send(fmt.Sprintf("✅ Mesaj başarıyla gönderildi!\n👥 Toplam %d kullanıcıya ulaştırıldı.", successCount))
	})

	b.Handle("/admin_add", func(c telebot.Context) error {
		logCtx := baseLogger.WithFields(logrus.Fields{"handler": "/admin_add", "sender_id": c.Sender().ID})
		logCtx.Info("Command received")
		if !authorize(c, logCtx) {
			return nil
		}

		args := c.Args()
		if len(args) != 1 {
			return c.Send("⚠️ Kullanım: /admin_add [chatId]\n\nÖrnek:\n/admin_add 123456789")
		}
		targetChatID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return c.Send("❌ Geçersiz Chat ID formatı!")
		}

		target, err := adminService.GrantAdmin(ctx, targetChatID)
		if err != nil {
			logWithError := logCtx.WithError(err).WithField("target_chat_id", targetChatID)
			switch {
			case errors.Is(err, idb.ErrSubscriberNotFound):
				logWithError.Warn("Target subscriber not found")
				return c.Send("❌ Bu ID'ye sahip kullanıcı bulunamadı.")
			case errors.Is(err, app.ErrAlreadyAdmin):
				logWithError.Warn("Target already admin")
				return c.Send("⚠️ Bu kullanıcı zaten admin!")
			default:
				logWithError.Error("Failed to grant admin privilege")
				return c.Send(genericErrorReply)
			}
		}

		logCtx.WithField("target_chat_id", targetChatID).Info("Admin privilege granted")
		_ = c.Send(fmt.Sprintf("✅ %s artık admin!", target.FirstName))
		return notifyTarget(c, b, targetChatID, "🔧 Size admin yetkisi verildi!", logCtx)
	})

	b.Handle("/admin_remove", func(c telebot.Context) error {
		logCtx := baseLogger.WithFields(logrus.Fields{"handler": "/admin_remove", "sender_id": c.Sender().ID})
		logCtx.Info("Command received")
		if !authorize(c, logCtx) {
			return nil
		}

		args := c.Args()
		if len(args) != 1 {
			return c.Send("⚠️ Kullanım: /admin_remove [chatId]\n\nÖrnek:\n/admin_remove 123456789")
		}
		targetChatID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return c.Send("❌ Geçersiz Chat ID formatı!")
		}

		target, err := adminService.RevokeAdmin(ctx, c.Sender().ID, targetChatID)
		if err != nil {
			logWithError := logCtx.WithError(err).WithField("target_chat_id", targetChatID)
			switch {
			case errors.Is(err, app.ErrSelfDemotion):
				logWithError.Warn("Self-demotion refused")
				return c.Send("❌ Kendinizi admin'likten çıkaramazsınız!")
			case errors.Is(err, idb.ErrSubscriberNotFound):
				logWithError.Warn("Target subscriber not found")
				return c.Send("❌ Bu ID'ye sahip kullanıcı bulunamadı.")
			case errors.Is(err, app.ErrNotAnAdmin):
				logWithError.Warn("Target not an admin")
				return c.Send("⚠️ Bu kullanıcı zaten admin değil!")
			default:
				logWithError.Error("Failed to revoke admin privilege")
				return c.Send(genericErrorReply)
			}
		}

		logCtx.WithField("target_chat_id", targetChatID).Info("Admin privilege revoked")
		_ = c.Send(fmt.Sprintf("✅ %s artık admin değil!", target.FirstName))
		return notifyTarget(c, b, targetChatID, "⚠️ Admin yetkiniz kaldırıldı.", logCtx)
	})
}

// notifyTarget best-effort informs the affected user; a failure is logged but
// never surfaces to the admin.
func notifyTarget(c telebot.Context, b *telebot.Bot, targetChatID int64, text string, logCtx *logrus.Entry) error {
	if _, err := b.Send(&telebot.User{ID: targetChatID}, text); err != nil {
		logCtx.WithError(err).WithField("target_chat_id", targetChatID).Warn("Could not notify target user")
	}
	return nil
}
