package linerun

import (
	"context"
	"fmt"
	"io"
	"time"

	"sortline/internal/figure"
	"sortline/internal/input"
	"sortline/internal/journal"
	"sortline/internal/logging"
	"sortline/internal/workflow"
)

// Script drops figures at fixed intervals of line time.
type Script struct {
	Kinds    []figure.Kind
	Interval time.Duration
}

// Report describes a finished run.
type Report struct {
	Status  workflow.StatusSummary
	Entries []journal.Entry
	Summary []journal.KindSummary
	Elapsed time.Duration
}

// Schedule queues the scripted drops, each wrapped in drag start and end as a
// pointer user would produce them.
func (l *Line) Schedule(ctx context.Context, script Script) {
	for i, kind := range script.Kinds {
		l.Scheduler.After(time.Duration(i)*script.Interval, func() {
			l.HandleEvent(ctx, input.Event{Type: input.DragStart, Kind: kind})
			l.HandleEvent(ctx, input.Event{Type: input.DragOver})
			l.HandleEvent(ctx, input.Event{Type: input.Drop, Kind: kind})
			l.HandleEvent(ctx, input.Event{Type: input.DragEnd, Kind: kind})
		})
	}
}

// Run executes the line until all input is consumed and the queue has
// drained or halted. Events read from events are posted to the scheduler.
func (l *Line) Run(ctx context.Context, script Script, events io.Reader) (Report, error) {
	l.Schedule(ctx, script)

	readErr := make(chan error, 1)
	if events == nil {
		l.Scheduler.CloseInput()
		readErr <- nil
	} else {
		go func() {
			err := input.ReadEvents(ctx, events, func(ev input.Event) error {
				return l.Post(ctx, ev)
			}, func(line int, err error) {
				l.logger.Warn("ignoring input line",
					logging.Int("line", line),
					logging.Error(err),
					logging.String(logging.FieldEventType, "input_parse_error"),
				)
			})
			l.Scheduler.CloseInput()
			readErr <- err
		}()
	}

	l.logger.Info("sorting line started",
		logging.String(logging.FieldEventType, "line_started"),
		logging.Int("scripted_drops", len(script.Kinds)),
		logging.Bool("realtime", l.Scheduler.Realtime()),
		logging.Float64("pickup_offset", l.Config.Layout.PickupPoint()),
	)

	runErr := l.Scheduler.Run(ctx)
	if runErr == nil {
		// input is closed, so the reader has already reported
		if err := <-readErr; err != nil {
			runErr = fmt.Errorf("read input: %w", err)
		}
	}

	report, err := l.Report(context.WithoutCancel(ctx))
	if err != nil && runErr == nil {
		runErr = err
	}
	l.logger.Info("sorting line stopped",
		logging.String(logging.FieldEventType, "line_stopped"),
		logging.String("state", string(report.Status.State)),
		logging.Int("sorted", report.Status.Completed),
		logging.Int("failed", report.Status.Failed),
		logging.Duration("line_time", report.Elapsed),
	)
	return report, runErr
}

// Report collects the current status and journal contents.
func (l *Line) Report(ctx context.Context) (Report, error) {
	report := Report{
		Status:  l.Manager.Status(ctx),
		Elapsed: l.Scheduler.Now(),
	}
	if l.Journal == nil {
		return report, nil
	}
	entries, err := l.Journal.List(ctx, journal.Filter{})
	if err != nil {
		return report, err
	}
	summary, err := l.Journal.Summary(ctx)
	if err != nil {
		return report, err
	}
	report.Entries = entries
	report.Summary = summary
	return report, nil
}
