package service

import "time"

// SetNow overrides the tracker clock from external test packages.
func (t *AttemptTracker) SetNow(now func() time.Time) { t.now = now }
