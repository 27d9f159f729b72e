package workflow

import (
	"context"
	"strings"
	"time"
	"unicode"

	"sortline/internal/faults"
	"sortline/internal/figure"
	"sortline/internal/journal"
	"sortline/internal/queue"
	"sortline/internal/stage"
)

// StatusSummary represents lightweight workflow diagnostics.
type StatusSummary struct {
	State       State
	Runs        int
	Completed   int
	Failed      int
	Queue       []queue.Item
	QueueStats  map[queue.Status]int
	LastError   string
	LastItem    *queue.Item
	Counters    map[figure.Kind]int
	StageHealth map[string]stage.Health
}

// Status returns the latest workflow information. Safe for concurrent use:
// queue and stage health are the snapshots last published by the scheduler
// goroutine.
func (m *Manager) Status(context.Context) StatusSummary {
	m.mu.RLock()
	summary := StatusSummary{
		State:     m.state,
		Runs:      m.runs,
		Completed: m.completed,
		Failed:    m.failed,
		Queue:     append([]queue.Item(nil), m.pending...),
	}
	if m.lastErr != nil {
		summary.LastError = m.lastErr.Error()
	}
	if m.lastItem != nil {
		copy := *m.lastItem
		summary.LastItem = &copy
	}
	summary.StageHealth = make(map[string]stage.Health, len(m.health))
	for name, health := range m.health {
		summary.StageHealth[name] = health
	}
	m.mu.RUnlock()

	summary.QueueStats = make(map[queue.Status]int)
	for _, item := range summary.Queue {
		summary.QueueStats[item.Status]++
	}
	if m.counters != nil {
		summary.Counters = m.counters.Snapshot()
	}
	return summary
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) setLastItem(item *queue.Item) {
	m.mu.Lock()
	if item != nil {
		copy := *item
		m.lastItem = &copy
	} else {
		m.lastItem = nil
	}
	m.mu.Unlock()
}

// publishQueue mirrors the queue and stage health for Status readers. It
// must run on the scheduler goroutine.
func (m *Manager) publishQueue() {
	snapshot := m.queue.List()
	ctx := m.runCtx
	if ctx == nil {
		ctx = context.Background()
	}
	health := make(map[string]stage.Health, len(m.stages))
	for _, stg := range m.stages {
		if stg.handler == nil {
			continue
		}
		health[stg.name] = stg.handler.HealthCheck(ctx)
	}
	m.mu.Lock()
	m.pending = snapshot
	m.health = health
	m.mu.Unlock()
}

func newJournalEntry(item *queue.Item, droppedAt, finishedAt time.Duration, stageErr error) journal.Entry {
	entry := journal.Entry{
		ItemID:       item.ID,
		RequestID:    item.RequestID,
		Kind:         item.Kind,
		Status:       item.Status,
		Stage:        item.Stage,
		TargetX:      item.TargetX,
		CounterValue: item.CounterValue,
		ErrorMessage: item.ErrorMessage,
		DroppedAt:    droppedAt,
		FinishedAt:   finishedAt,
	}
	if stageErr != nil {
		entry.ErrorKind = string(faults.Details(stageErr).Kind)
	}
	return entry
}

// StatusLabel renders a status as a title, e.g. "At Pickup".
func StatusLabel(status queue.Status) string {
	if status == "" {
		return ""
	}
	parts := strings.Fields(strings.ReplaceAll(string(status), "_", " "))
	for i, part := range parts {
		runes := []rune(strings.ToLower(part))
		runes[0] = unicode.ToUpper(runes[0])
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}
