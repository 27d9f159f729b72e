package queue

import (
	"strings"
	"time"

	"sortline/internal/figure"
)

// Status represents the lifecycle of a queue item.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConveying Status = "conveying"
	StatusAtPickup  Status = "at_pickup"
	StatusSorting   Status = "sorting"
	StatusSorted    Status = "sorted"
	StatusFailed    Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusConveying,
	StatusAtPickup,
	StatusSorting,
	StatusSorted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusConveying: {},
	StatusAtPickup:  {},
	StatusSorting:   {},
}

// Item is one dropped figure travelling through the line.
type Item struct {
	ID           int64
	Handle       figure.Handle
	Kind         figure.Kind
	Status       Status
	RequestID    string
	ErrorMessage string
	Stage        string
	TargetX      float64
	CounterValue int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing returns true when the status reflects an in-flight figure.
func (i Item) IsProcessing() bool {
	_, ok := processingStatuses[i.Status]
	return ok
}

// IsTerminal reports whether the item has left the line.
func (i Item) IsTerminal() bool {
	return i.Status == StatusSorted || i.Status == StatusFailed
}

// SetFailed marks the item as failed with the given error message.
func (i *Item) SetFailed(message string) {
	i.Status = StatusFailed
	i.ErrorMessage = message
}
