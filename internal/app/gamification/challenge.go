package gamification

import (
	"fmt"
	"math/rand"

	"github.com/lifequran/lifequran/internal/domain"
)

// challengePool is the set of daily challenge templates, weighted equally.
var challengePool = []domain.ChallengeTemplate{
	{Title: "Baca 1 Halaman", Description: "Baca minimal 1 halaman Al-Quran hari ini", Type: domain.ChallengePages, Target: 1, XPReward: 25},
	{Title: "Baca 2 Halaman", Description: "Baca minimal 2 halaman Al-Quran hari ini", Type: domain.ChallengePages, Target: 2, XPReward: 50},
	{Title: "Baca 5 Menit", Description: "Habiskan 5 menit membaca Al-Quran", Type: domain.ChallengeMinutes, Target: 5, XPReward: 30},
	{Title: "Baca 1 Surah Pendek", Description: "Selesaikan membaca 1 surah pendek", Type: domain.ChallengeSurah, Target: 1, XPReward: 40},
	{Title: "Dengarkan Murottal", Description: "Dengarkan 1 surah murottal", Type: domain.ChallengeAudio, Target: 1, XPReward: 20},
}

// ChallengePool returns a copy of the template pool.
func ChallengePool() []domain.ChallengeTemplate {
	out := make([]domain.ChallengeTemplate, len(challengePool))
	copy(out, challengePool)
	return out
}

// PickTemplate draws one template uniformly from pool using rng.
// It is pure given rng, so a seeded source makes it deterministic.
func PickTemplate(pool []domain.ChallengeTemplate, rng *rand.Rand) domain.ChallengeTemplate {
	return pool[rng.Intn(len(pool))]
}

// GetOrCreateChallenge returns the challenge of date, materializing one from
// a random template on first access. A date never gets a second row.
func GetOrCreateChallenge(s domain.Store, date string, rng *rand.Rand) (domain.DailyChallenge, error) {
	existing, err := s.GetChallengeForDate(date)
	if err != nil {
		return domain.DailyChallenge{}, err
	}
	if existing != nil {
		return *existing, nil
	}
	return s.CreateChallenge(date, PickTemplate(challengePool, rng))
}

// ChallengeProgress is the outcome of UpdateProgress.
type ChallengeProgress struct {
	Challenge    domain.DailyChallenge
	CompletedNow bool
	Reward       domain.XPResult
}

// UpdateProgress adds delta to the challenge of date, clamped to its target.
// Reaching the target completes the challenge, bumps the completed-challenge
// counter and awards the challenge XP, all exactly once. Completed
// challenges are terminal: later calls change nothing.
func UpdateProgress(s domain.Store, date string, delta int, act Activity) (ChallengeProgress, error) {
	if delta < 0 {
		return ChallengeProgress{}, fmt.Errorf("%w, got %d", domain.ErrInvalidProgress, delta)
	}

	c, err := s.GetChallengeForDate(date)
	if err != nil {
		return ChallengeProgress{}, err
	}
	if c == nil {
		return ChallengeProgress{}, fmt.Errorf("%w %s", domain.ErrNoChallenge, date)
	}
	if c.Completed || delta == 0 {
		return ChallengeProgress{Challenge: *c}, nil
	}

	progress := min(c.CurrentProgress+delta, c.TargetValue)
	completed := progress >= c.TargetValue
	if err := s.SetChallengeProgress(date, progress, completed, act.At); err != nil {
		return ChallengeProgress{}, err
	}
	c.CurrentProgress = progress

	out := ChallengeProgress{Challenge: *c}
	if !completed {
		return out, nil
	}

	out.CompletedNow = true
	out.Challenge.Completed = true
	out.Challenge.CompletedAt = act.At

	stats, err := s.GetUserStats()
	if err != nil {
		return ChallengeProgress{}, err
	}
	done := stats.ChallengesCompleted + 1
	if err := s.UpdateUserStats(domain.StatsUpdate{ChallengesCompleted: &done}); err != nil {
		return ChallengeProgress{}, err
	}

	if c.XPReward > 0 {
		out.Reward, err = AwardXP(s, act, c.XPReward, domain.XPDailyChallenge, c.Title)
		if err != nil {
			return ChallengeProgress{}, err
		}
	}
	return out, nil
}

// feedsChallenge reports whether an activity kind advances a challenge type.
// Reading pages advances every non-audio challenge; audio and minutes only
// advance their own type.
func feedsChallenge(kind ActivityKind, t domain.ChallengeType) bool {
	switch kind {
	case KindReading:
		return t != domain.ChallengeAudio
	case KindAudio:
		return t == domain.ChallengeAudio
	case KindMinutes:
		return t == domain.ChallengeMinutes
	}
	return false
}
