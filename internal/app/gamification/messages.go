package gamification

import (
	"fmt"
	"strconv"
)

// FormatXP renders XP compactly: values of 1000 and above as "1.5K".
func FormatXP(xp int64) string {
	if xp >= 1000 {
		return fmt.Sprintf("%.1fK", float64(xp)/1000)
	}
	return strconv.FormatInt(xp, 10)
}

// StreakMessage returns the motivational line shown next to a streak.
func StreakMessage(streak int) string {
	switch {
	case streak <= 0:
		return "Mulai streak hari ini! 🌱"
	case streak == 1:
		return "Langkah pertama yang hebat! 🎯"
	case streak < 7:
		return fmt.Sprintf("%d hari berturut-turut! Terus semangat! 🔥", streak)
	case streak < 30:
		return fmt.Sprintf("Luar biasa! %d hari istiqomah! 🌟", streak)
	case streak < 100:
		return fmt.Sprintf("Masya Allah! %d hari konsisten! 🌙", streak)
	default:
		return fmt.Sprintf("Subhanallah! %d hari streak! Anda luar biasa! 👑", streak)
	}
}

var levelUpTemplates = []func(level int, name string) string{
	func(l int, n string) string { return fmt.Sprintf("Selamat! Anda naik ke level %d: %s! 🎉", l, n) },
	func(l int, _ string) string { return fmt.Sprintf("Masya Allah! Level %d tercapai! 🌟", l) },
	func(_ int, n string) string { return fmt.Sprintf("Luar biasa! Anda sekarang %s! 💫", n) },
	func(l int, _ string) string { return fmt.Sprintf("Subhanallah! Naik ke level %d! 🎊", l) },
}

// LevelUpMessage returns the celebration line for reaching level. The
// variant rotates with the level so the same level always reads the same.
func LevelUpMessage(level int) string {
	tier := TierFor(level)
	idx := (level - 1) % len(levelUpTemplates)
	if idx < 0 {
		idx = 0
	}
	return levelUpTemplates[idx](tier.Level, tier.Name)
}

func readingDescription(pages int) string {
	return fmt.Sprintf("Membaca %d halaman", pages)
}

func audioDescription(surahID int) string {
	return fmt.Sprintf("Mendengarkan Surah %d", surahID)
}

func streakBonusDescription(streak int) string {
	return fmt.Sprintf("%d hari streak!", streak)
}
