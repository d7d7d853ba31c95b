package gamification

import (
	"github.com/lifequran/lifequran/internal/domain"
)

// Catalog returns the static badge catalog in display order.
func Catalog() []domain.Badge {
	return []domain.Badge{
		// ── Reading ────────────────────────────────────────────────────
		{
			ID: "first_page", Name: "Langkah Pertama", Description: "Baca 1 halaman pertama",
			Icon: "🌱", Category: domain.BadgeReading,
			RequirementType: domain.ReqPagesRead, RequirementValue: 1, XPReward: 10,
		},
		{
			ID: "pages_10", Name: "Pembaca Rajin", Description: "Baca 10 halaman",
			Icon: "📖", Category: domain.BadgeReading,
			RequirementType: domain.ReqPagesRead, RequirementValue: 10, XPReward: 50,
		},
		{
			ID: "pages_50", Name: "Pencinta Al-Quran", Description: "Baca 50 halaman",
			Icon: "💚", Category: domain.BadgeReading,
			RequirementType: domain.ReqPagesRead, RequirementValue: 50, XPReward: 100,
		},
		{
			ID: "juz_1", Name: "Khatam Pertama", Description: "Selesaikan 1 Juz",
			Icon: "⭐", Category: domain.BadgeReading,
			RequirementType: domain.ReqJuzCompleted, RequirementValue: 1, XPReward: 500,
		},
		{
			ID: "juz_10", Name: "Hafizh Muda", Description: "Selesaikan 10 Juz",
			Icon: "💎", Category: domain.BadgeReading,
			RequirementType: domain.ReqJuzCompleted, RequirementValue: 10, XPReward: 2000,
		},
		{
			ID: "juz_30", Name: "Khatam 30 Juz", Description: "Selesaikan seluruh Al-Quran",
			Icon: "👑", Category: domain.BadgeReading,
			RequirementType: domain.ReqJuzCompleted, RequirementValue: 30, XPReward: 5000,
		},

		// ── Streaks ────────────────────────────────────────────────────
		{
			ID: "streak_3", Name: "Konsisten 3 Hari", Description: "Baca 3 hari berturut-turut",
			Icon: "🔥", Category: domain.BadgeStreak,
			RequirementType: domain.ReqStreak, RequirementValue: 3, XPReward: 30,
		},
		{
			ID: "streak_7", Name: "Istiqomah 7 Hari", Description: "Baca 7 hari berturut-turut",
			Icon: "🌟", Category: domain.BadgeStreak,
			RequirementType: domain.ReqStreak, RequirementValue: 7, XPReward: 100,
		},
		{
			ID: "streak_30", Name: "Istiqomah 30 Hari", Description: "Baca 30 hari berturut-turut",
			Icon: "🌙", Category: domain.BadgeStreak,
			RequirementType: domain.ReqStreak, RequirementValue: 30, XPReward: 500,
		},
		{
			ID: "streak_100", Name: "Istiqomah 100 Hari", Description: "Baca 100 hari berturut-turut",
			Icon: "💫", Category: domain.BadgeStreak,
			RequirementType: domain.ReqStreak, RequirementValue: 100, XPReward: 2000,
		},

		// ── Challenges ─────────────────────────────────────────────────
		{
			ID: "challenges_10", Name: "Penakluk Tantangan", Description: "Selesaikan 10 daily challenge",
			Icon: "🎯", Category: domain.BadgeChallenge,
			RequirementType: domain.ReqChallengesCompleted, RequirementValue: 10, XPReward: 200,
		},
		{
			ID: "challenges_50", Name: "Master Tantangan", Description: "Selesaikan 50 daily challenge",
			Icon: "🏆", Category: domain.BadgeChallenge,
			RequirementType: domain.ReqChallengesCompleted, RequirementValue: 50, XPReward: 1000,
		},
	}
}

// SeedCatalog stores the catalog if the badge table is still empty.
func SeedCatalog(s domain.Store) error {
	return s.SeedBadges(Catalog())
}

// MeetsRequirement reports whether stats satisfy b's threshold.
// Unknown requirement types never unlock.
func MeetsRequirement(b domain.Badge, stats domain.UserStats) bool {
	var have int
	switch b.RequirementType {
	case domain.ReqPagesRead:
		have = stats.TotalPagesRead
	case domain.ReqStreak:
		have = stats.CurrentStreak
	case domain.ReqJuzCompleted:
		have = stats.JuzCompleted()
	case domain.ReqChallengesCompleted:
		have = stats.ChallengesCompleted
	default:
		return false
	}
	return have >= b.RequirementValue
}

// BadgeUnlock is one badge flipped by EvaluateUnlocks, with the XP award it
// produced (zero XPResult when the badge carries no reward).
type BadgeUnlock struct {
	Badge  domain.Badge
	Reward domain.XPResult
}

// EvaluateUnlocks checks every locked badge against stats. A badge is
// rewarded only if this call flipped it; already-unlocked badges are skipped.
func EvaluateUnlocks(s domain.Store, stats domain.UserStats, act Activity) ([]BadgeUnlock, error) {
	badges, err := s.GetAllBadges()
	if err != nil {
		return nil, err
	}

	var unlocked []BadgeUnlock
	for _, b := range badges {
		if b.Unlocked || !MeetsRequirement(b, stats) {
			continue
		}
		flipped, err := s.SetBadgeUnlocked(b.ID, act.At)
		if err != nil {
			return nil, err
		}
		if !flipped {
			continue
		}
		b.Unlocked = true
		b.UnlockedAt = act.At

		u := BadgeUnlock{Badge: b}
		if b.XPReward > 0 {
			u.Reward, err = AwardXP(s, act, b.XPReward, domain.XPBadgeUnlock, b.Name)
			if err != nil {
				return nil, err
			}
		}
		unlocked = append(unlocked, u)
	}
	return unlocked, nil
}
