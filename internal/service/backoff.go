package service

import (
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/models"
)

// Backoff delays the resend of queue items that failed before. A zero base
// disables it and every item is sent on every cycle.
type Backoff struct {
	base     time.Duration
	maxDelay time.Duration
}

// NewBackoff returns an exponential backoff starting at base and capped at
// maxDelay. A non-positive maxDelay falls back to config.DefaultBackoffMax.
func NewBackoff(base, maxDelay time.Duration) Backoff {
	if base > 0 && maxDelay <= 0 {
		maxDelay = config.DefaultBackoffMax
	}
	return Backoff{base: base, maxDelay: maxDelay}
}

// Delay returns the wait imposed after the given number of failed sends.
func (b Backoff) Delay(attempts int) time.Duration {
	if b.base <= 0 || attempts <= 0 {
		return 0
	}

	next := retry.WithCappedDuration(b.maxDelay, retry.NewExponential(b.base))

	var d time.Duration
	for i := 0; i < attempts; i++ {
		var stop bool
		if d, stop = next.Next(); stop {
			break
		}
	}
	return d
}

// Ready reports whether item may be sent at now.
func (b Backoff) Ready(item models.QueueItem, now time.Time) bool {
	if item.LastAttemptAt == nil {
		return true
	}
	return !now.Before(item.LastAttemptAt.Add(b.Delay(item.Attempts)))
}
