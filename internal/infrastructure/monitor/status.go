package monitor

import "time"

// Status is a point-in-time snapshot of dependency health.
type Status struct {
	PostgreSQL bool
	Redis      bool
	Identity   bool
	LastCheck  time.Time
}
