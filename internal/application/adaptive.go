package application

import (
	"time"

	"github.com/ericfisherdev/threadpanel/internal/domain/model"
)

// ActivityTier classifies a thread by how recently its comments changed. It
// drives the adaptive refresh interval.
type ActivityTier int

const (
	// TierHot indicates activity within the last hour.
	TierHot ActivityTier = iota
	// TierActive indicates activity within the last day.
	TierActive
	// TierWarm indicates activity within the last 7 days.
	TierWarm
	// TierStale indicates no activity for 7+ days.
	TierStale
)

// Refresh intervals per activity tier.
const (
	intervalHot    = 30 * time.Second
	intervalActive = 2 * time.Minute
	intervalWarm   = 10 * time.Minute
	intervalStale  = 30 * time.Minute
)

// String returns a human-readable name for the activity tier.
func (t ActivityTier) String() string {
	switch t {
	case TierHot:
		return "hot"
	case TierActive:
		return "active"
	case TierWarm:
		return "warm"
	case TierStale:
		return "stale"
	default:
		return "unknown"
	}
}

// tierInterval returns the refresh interval for the given activity tier.
func tierInterval(tier ActivityTier) time.Duration {
	switch tier {
	case TierHot:
		return intervalHot
	case TierActive:
		return intervalActive
	case TierWarm:
		return intervalWarm
	case TierStale:
		return intervalStale
	default:
		return intervalActive
	}
}

// classifyActivity determines the activity tier from the time of the last
// activity, relative to now. A zero-value time is TierStale.
func classifyActivity(lastActivity, now time.Time) ActivityTier {
	if lastActivity.IsZero() {
		return TierStale
	}

	elapsed := now.Sub(lastActivity)

	switch {
	case elapsed < 1*time.Hour:
		return TierHot
	case elapsed < 24*time.Hour:
		return TierActive
	case elapsed < 7*24*time.Hour:
		return TierWarm
	default:
		return TierStale
	}
}

// freshestActivity finds the most recent creation or modification time
// across the thread. Returns the zero time for an empty thread.
func freshestActivity(detail *model.ThreadDetail) time.Time {
	var newest time.Time
	if detail == nil {
		return newest
	}
	for _, c := range detail.Flatten() {
		if c.CreatedAt.After(newest) {
			newest = c.CreatedAt
		}
		if c.ModifiedAt != nil && c.ModifiedAt.After(newest) {
			newest = *c.ModifiedAt
		}
	}
	return newest
}

// AdaptiveInterval returns how long to wait before refreshing detail again.
func AdaptiveInterval(detail *model.ThreadDetail, now time.Time) time.Duration {
	return tierInterval(classifyActivity(freshestActivity(detail), now))
}
