// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"context"

	"kyk_meal_bot/internal/app"
	"kyk_meal_bot/internal/infra/clock"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const genericErrorReply = "⚠️ Bir hata oluştu. Lütfen daha sonra tekrar deneyin."

const welcomeMessage = `👋 KYK Yemek Menüsü Botuna Hoş Geldiniz!

Bu bot ile günlük yemek menülerini takip edebilir ve bildirim alabilirsiniz.

🔹 Komutlar:
/bugun - Bugünün menüsü
/yarin - Yarının menüsü
/bildirim_ac - Günlük bildirimleri aç
/bildirim_kapat - Bildirimleri kapat
/yardim - Komut listesi

💡 İpucu: Bildirimler varsayılan olarak açıktır.`

const helpMessage = `ℹ️ Komut Listesi

📱 Menü Komutları:
/bugun - Bugünkü menüyü göster
/yarin - Yarınki menüyü göster

🔔 Bildirim Ayarları:
/bildirim_ac - Günlük bildirimleri aktif et
/bildirim_kapat - Bildirimleri kapat

❓ Diğer:
/yardim - Bu listeyi göster`

const adminHelpAppendix = `

🔧 Yönetici Komutları:
/admin_list [sayfa] - Kullanıcı listesi (Chat ID'ler ile)
/admin_add [chatId] - Admin yetkisi ver
/admin_remove [chatId] - Admin yetkisini al
/admin_broadcast [mesaj] - Toplu mesaj gönder
/admin_stats - Detaylı analiz`

// RegisterBotCommands wires the user-facing commands. Every inbound message
// creates or refreshes the sender's subscriber row before the command itself
// runs.
func RegisterBotCommands(
	ctx context.Context,
	b *telebot.Bot,
	subscriberService *app.SubscriberService,
	menuQueries *app.MenuQueryService,
	adminService *app.AdminService,
	clk clock.Clock,
	baseLogger *logrus.Entry,
) {
	registerSender := func(c telebot.Context, logCtx *logrus.Entry) bool {
		sender := c.Sender()
		_, err := subscriberService.RegisterInteraction(ctx, sender.ID, sender.Username, sender.FirstName, sender.LastName)
		if err != nil {
			logCtx.WithError(err).Error("Failed to register interaction")
			_ = c.Send(genericErrorReply)
			return false
		}
		return true
	}

	b.Handle("/start", func(c telebot.Context) error {
		logCtx := baseLogger.WithField("command", "/start").WithField("sender_id", c.Sender().ID)
		logCtx.Info("Processing command")
		if !registerSender(c, logCtx) {
			return nil
		}
		return c.Send(welcomeMessage)
	})

	b.Handle("/yardim", func(c telebot.Context) error {
		logCtx := baseLogger.WithField("command", "/yardim").WithField("sender_id", c.Sender().ID)
		logCtx.Info("Processing command")
		if !registerSender(c, logCtx) {
			return nil
		}
		text := helpMessage
		if adminService.IsAdmin(ctx, c.Sender().ID) {
			text += adminHelpAppendix
		}
		return c.Send(text)
	})

	sendMenusFor := func(c telebot.Context, logCtx *logrus.Entry, dayOffset int) error {
		if !registerSender(c, logCtx) {
			return nil
		}
		date := clk.Now().AddDate(0, 0, dayOffset)
		menus, err := menuQueries.MenusFor(ctx, date)
		if err != nil {
			logCtx.WithError(err).Error("Failed to load menus")
			return c.Send(genericErrorReply)
		}
		if len(menus) == 0 {
			return c.Send(app.FormatMenuMissing(date))
		}
		return c.Send(app.FormatDailyMenu(date, menus))
	}

	b.Handle("/bugun", func(c telebot.Context) error {
		logCtx := baseLogger.WithField("command", "/bugun").WithField("sender_id", c.Sender().ID)
		logCtx.Info("Processing command")
		return sendMenusFor(c, logCtx, 0)
	})

	b.Handle("/yarin", func(c telebot.Context) error {
		logCtx := baseLogger.WithField("command", "/yarin").WithField("sender_id", c.Sender().ID)
		logCtx.Info("Processing command")
		return sendMenusFor(c, logCtx, 1)
	})

	b.Handle("/bildirim_ac", func(c telebot.Context) error {
		logCtx := baseLogger.WithField("command", "/bildirim_ac").WithField("sender_id", c.Sender().ID)
		logCtx.Info("Processing command")
		if !registerSender(c, logCtx) {
			return nil
		}
		if err := subscriberService.EnableNotifications(ctx, c.Sender().ID); err != nil {
			logCtx.WithError(err).Error("Failed to enable notifications")
			return c.Send(genericErrorReply)
		}
		return c.Send("🔔 Bildirimler aktif edildi!\nHer gün sabah 06:30'da kahvaltı ve öğleden sonra 14:00'te akşam yemeği menüsünü size ileteceğim.")
	})

	b.Handle("/bildirim_kapat", func(c telebot.Context) error {
		logCtx := baseLogger.WithField("command", "/bildirim_kapat").WithField("sender_id", c.Sender().ID)
		logCtx.Info("Processing command")
		if !registerSender(c, logCtx) {
			return nil
		}
		if err := subscriberService.DisableNotifications(ctx, c.Sender().ID); err != nil {
			logCtx.WithError(err).Error("Failed to disable notifications")
			return c.Send(genericErrorReply)
		}
		return c.Send("🔕 Bildirimler kapatıldı.")
	})

	b.Handle(telebot.OnText, func(c telebot.Context) error {
		logCtx := baseLogger.WithField("command", "unknown").WithField("sender_id", c.Sender().ID)
		logCtx.Info("Unrecognized message")
		if !registerSender(c, logCtx) {
			return nil
		}
		return c.Send("❓ Komut anlaşılamadı. Yardım için /yardim yazabilirsiniz.")
	})
}
