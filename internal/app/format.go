package app

import (
	"fmt"
	"strings"
	"time"

	"kyk_meal_bot/internal/domain/menu"
)

// User-facing dates are rendered in Turkish ("02 Ocak 2025"); the standard
// library has no locale data, so the month names are spelled out here.
var turkishMonths = [...]string{
	"Ocak", "Şubat", "Mart", "Nisan", "Mayıs", "Haziran",
	"Temmuz", "Ağustos", "Eylül", "Ekim", "Kasım", "Aralık",
}

func FormatDate(date time.Time) string {
	return fmt.Sprintf("%02d %s %d", date.Day(), turkishMonths[date.Month()-1], date.Year())
}

func slotTitle(slot menu.Slot) string {
	if slot == menu.SlotBreakfast {
		return "🌅 KAHVALTI"
	}
	return "🍽️ AKŞAM YEMEĞİ"
}

// FormatSlotNotification renders the scheduled per-slot notification message.
func FormatSlotNotification(date time.Time, m *menu.Menu) string {
	var b strings.Builder
	if m.Slot == menu.SlotBreakfast {
		b.WriteString("🌟 Günaydın! İşte bugünün kahvaltı menüsü:\n\n")
	} else {
		b.WriteString("🌟 Afiyet olsun! İşte bugünün akşam yemeği menüsü:\n\n")
	}
	b.WriteString("📅 ")
	b.WriteString(FormatDate(date))
	b.WriteString("\n\n")
	appendMenu(&b, m)
	return b.String()
}

// FormatDailyMenu renders the /bugun and /yarin reply covering both slots.
func FormatDailyMenu(date time.Time, menus []*menu.Menu) string {
	var b strings.Builder
	b.WriteString("📅 ")
	b.WriteString(FormatDate(date))
	b.WriteString("\n━━━━━━━━━━━━━━━━━━\n\n")

	for _, slot := range []menu.Slot{menu.SlotBreakfast, menu.SlotDinner} {
		for _, m := range menus {
			if m.Slot == slot {
				appendMenu(&b, m)
				b.WriteString("\n")
				break
			}
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// FormatMenuMissing renders the reply for a date without a published menu.
func FormatMenuMissing(date time.Time) string {
	return "📅 " + FormatDate(date) + " tarihine ait menü henüz yayınlanmamış.\n\n" +
		"Menü yayınlandığında bildirim almak için /bildirim_ac komutunu kullanabilirsiniz."
}

func appendMenu(b *strings.Builder, m *menu.Menu) {
	b.WriteString(slotTitle(m.Slot))
	if m.TotalCalories > 0 {
		fmt.Fprintf(b, " (%d kcal)", m.TotalCalories)
	}
	b.WriteString("\n━━━━━━━━━━━━━━━━━━\n")

	for _, item := range m.Items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}
		b.WriteString("✓ ")
		b.WriteString(name)
		if item.Calories > 0 {
			fmt.Fprintf(b, " (%d kcal)", item.Calories)
		}
		b.WriteString("\n")
	}
}
