package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure, no infrastructure dependency.

var (
	// Input validation errors
	ErrInvalidAmount   = errors.New("xp amount must be positive")
	ErrInvalidPages    = errors.New("pages must be positive")
	ErrInvalidMinutes  = errors.New("minutes must be positive")
	ErrInvalidProgress = errors.New("challenge progress delta must not be negative")
	ErrInvalidSurah    = errors.New("surah id must be between 1 and 114")
	ErrInvalidTarget   = errors.New("daily target must be between 1 and 604 pages")
	ErrInvalidSource   = errors.New("unknown xp source")

	// Lookup errors
	ErrNoChallenge          = errors.New("no daily challenge for date")
	ErrNotificationNotFound = errors.New("notification not found")

	// Persistence errors
	ErrStoreUnavailable = errors.New("gamification store unavailable")
)

// IsValidation reports whether err stems from rejected caller input.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidAmount, ErrInvalidPages, ErrInvalidMinutes,
		ErrInvalidProgress, ErrInvalidSurah, ErrInvalidTarget, ErrInvalidSource,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err is a lookup miss.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNoChallenge) ||
		errors.Is(err, ErrNotificationNotFound)
}
