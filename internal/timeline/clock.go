package timeline

import "time"

// Clock is the subset of Scheduler used by animation components.
type Clock interface {
	Now() time.Duration
	After(d time.Duration, fn func())
}

var _ Clock = (*Scheduler)(nil)
