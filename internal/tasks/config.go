package tasks

import "time"

const (
	// normalizeAppointmentTimeout covers both completion calls for one appointment.
	normalizeAppointmentTimeout = 2 * time.Minute
	normalizePendingTimeout     = 5 * time.Minute
)

// Config sizes the normalization queue. Each worker runs at most one
// completion call at a time, so Workers also caps concurrent load on the
// completion API.
type Config struct {
	Workers int

	// ReleaseAfter returns tasks held by a crashed worker to the queue. It is
	// never shorter than the longest task timeout.
	ReleaseAfter time.Duration

	// CleanupInterval is how often finished tasks past their retention are purged.
	CleanupInterval time.Duration
}

// DefaultConfig returns the queue settings used when TASKS_* is unset.
func DefaultConfig() Config {
	return Config{
		Workers:         2,
		ReleaseAfter:    15 * time.Minute,
		CleanupInterval: time.Hour,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.Workers <= 0 {
		c.Workers = defaults.Workers
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = defaults.CleanupInterval
	}
	if c.ReleaseAfter <= 0 {
		c.ReleaseAfter = defaults.ReleaseAfter
	}
	if c.ReleaseAfter < normalizePendingTimeout {
		c.ReleaseAfter = normalizePendingTimeout
	}
	return c
}
