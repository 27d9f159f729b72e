package workflow

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"sortline/internal/faults"
	"sortline/internal/figure"
	"sortline/internal/logging"
	"sortline/internal/queue"
)

// Drop enqueues a dropped figure and starts draining when the line is idle.
// It must be called on the scheduler goroutine.
func (m *Manager) Drop(ctx context.Context, handle figure.Handle, kind figure.Kind) (*queue.Item, error) {
	if !handle.Valid() {
		return nil, faults.Wrap(faults.ErrValidation, "drop", "enqueue figure", "figure handle is not valid", nil)
	}
	if len(m.stages) == 0 {
		return nil, faults.Wrap(faults.ErrConfiguration, "drop", "enqueue figure", "workflow stages not configured", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	item := m.queue.Enqueue(handle, kind)
	m.droppedAt[item.ID] = m.clock.Now()
	m.publishQueue()

	logger := logging.WithContext(logging.WithItemID(ctx, item.ID), m.logger)
	logger.Info(
		"figure dropped",
		logging.String(logging.FieldEventType, "drop_accepted"),
		logging.String(logging.FieldKind, kind.String()),
		logging.Int64("figure_id", handle.ID),
		logging.Int("queue_length", m.queue.Len()),
	)

	if m.isProcessing {
		if m.State() == StateHalted {
			logger.Warn(
				"figure queued behind halted item",
				logging.String(logging.FieldEventType, "drop_queued_halted"),
				logging.String(logging.FieldErrorHint, "restart the line; halted runs do not retry"),
			)
		}
		return item, nil
	}

	m.isProcessing = true
	m.runCtx = ctx
	m.mu.Lock()
	m.state = StateDraining
	m.runs++
	runs := m.runs
	m.mu.Unlock()
	m.logger.Info(
		"runner started",
		logging.String(logging.FieldEventType, "runner_started"),
		logging.Int("run", runs),
		logging.Int("queue_length", m.queue.Len()),
	)
	m.processNext()
	return item, nil
}

// processNext starts the head item or returns the runner to idle.
func (m *Manager) processNext() {
	item, ok := m.queue.PeekHead()
	if !ok {
		m.isProcessing = false
		m.setState(StateIdle)
		m.logger.Info(
			"queue drained",
			logging.String(logging.FieldEventType, "runner_idle"),
			logging.Int("completed", m.Completed()),
		)
		return
	}
	item.RequestID = uuid.NewString()
	m.runStage(0, item)
}

// completeItem removes a sorted head item and moves on.
func (m *Manager) completeItem(ctx context.Context, item *queue.Item) {
	if _, ok := m.queue.DequeueHead(); !ok {
		m.setLastError(errors.New("completed item missing from queue head"))
	}
	m.mu.Lock()
	m.completed++
	m.mu.Unlock()
	m.finishItem(ctx, item, nil)
	m.processNext()
}

func (m *Manager) finishItem(ctx context.Context, item *queue.Item, stageErr error) {
	m.setLastItem(item)
	m.publishQueue()
	m.recordOutcome(ctx, item, stageErr)
	delete(m.droppedAt, item.ID)
	if m.observer != nil {
		m.observer(*item)
	}
}

func (m *Manager) recordOutcome(ctx context.Context, item *queue.Item, stageErr error) {
	if m.journal == nil {
		return
	}
	entry := newJournalEntry(item, m.droppedAt[item.ID], m.clock.Now(), stageErr)
	if _, err := m.journal.Record(ctx, entry); err != nil {
		logging.WithContext(ctx, m.logger).Warn("failed to journal outcome", logging.Error(err))
	}
}

// Completed returns the number of sorted items.
func (m *Manager) Completed() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.completed
}

// Failed returns the number of failed items.
func (m *Manager) Failed() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.failed
}

// Runs returns how many draining runs have started.
func (m *Manager) Runs() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.runs
}
