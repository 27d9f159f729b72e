package linerun

import (
	"context"
	"fmt"
	"log/slog"

	"sortline/internal/classify"
	"sortline/internal/config"
	"sortline/internal/counters"
	"sortline/internal/display"
	"sortline/internal/figure"
	"sortline/internal/input"
	"sortline/internal/journal"
	"sortline/internal/layout"
	"sortline/internal/logging"
	"sortline/internal/motion"
	"sortline/internal/queue"
	"sortline/internal/timeline"
	"sortline/internal/workflow"
)

// BuildOptions configures Build.
type BuildOptions struct {
	// Sink receives visual events in addition to the line's own Scene.
	Sink   display.Sink
	Logger *slog.Logger
	// Instant forces a virtual clock regardless of workflow.speed.
	Instant bool
	// Journal enables the in-memory outcome journal.
	Journal bool
	// Observer is called when an item is sorted or fails.
	Observer func(queue.Item)
}

// Line is a fully wired sorting line.
type Line struct {
	Config    *config.Config
	Scheduler *timeline.Scheduler
	Queue     *queue.Queue
	Catalog   *figure.Catalog
	Layout    *layout.Static
	Scene     *display.Scene
	Counters  *counters.Store
	Motion    *motion.Controller
	Sequencer *classify.Sequencer
	Manager   *workflow.Manager
	Input     *input.Adapter
	Journal   *journal.Journal

	logger *slog.Logger
}

// Build constructs a line from cfg.
func Build(ctx context.Context, cfg *config.Config, opts BuildOptions) (*Line, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	var schedOpts []timeline.Option
	if !opts.Instant && cfg.Workflow.Realtime() {
		schedOpts = append(schedOpts, timeline.WithSpeed(cfg.Workflow.Speed))
	}
	sched := timeline.New(schedOpts...)

	scene := display.NewScene()
	sink := display.Tee{scene, opts.Sink}

	l := &Line{
		Config:    cfg,
		Scheduler: sched,
		Queue:     queue.New(),
		Catalog:   figure.NewCatalog(),
		Layout:    layout.FromConfig(cfg.Layout),
		Scene:     scene,
		logger:    logging.NewComponentLogger(logger, "line"),
	}
	l.Counters = counters.New(sink, counters.WithPulse(sched, cfg.Timing.CounterPulse()))
	l.Motion = motion.New(sched, sink, motion.Options{
		Step:   cfg.Timing.Step,
		Tick:   cfg.Timing.Tick(),
		StartX: cfg.Layout.FigureStartX,
		StartY: cfg.Layout.FigureStartY,
	})
	l.Sequencer = classify.New(sched, sink, l.Layout, l.Counters, classify.Options{
		Timing:    SequencerTiming(cfg.Timing),
		PickupX:   cfg.Layout.PickupPoint(),
		HalfWidth: cfg.Layout.FigureHalfWidth,
	})

	managerOpts := []workflow.ManagerOption{workflow.WithCounters(l.Counters)}
	if opts.Observer != nil {
		managerOpts = append(managerOpts, workflow.WithItemObserver(opts.Observer))
	}
	if opts.Journal {
		j, err := journal.Open(ctx)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		l.Journal = j
		managerOpts = append(managerOpts, workflow.WithJournal(j))
	}
	l.Manager = workflow.NewManager(cfg, sched, l.Queue, logger, managerOpts...)
	registerStages(l)
	l.Input = input.NewAdapter(l.Catalog, l.Manager, sink, sched, logger)

	l.Counters.Publish()
	return l, nil
}

func registerStages(l *Line) {
	l.Manager.ConfigureStages(workflow.StageSet{
		Conveyor: workflow.NewConveyorStage(l.Motion, l.Config.Layout.PickupPoint()),
		Sorter:   workflow.NewSorterStage(l.Sequencer, l.Layout, l.Config.Layout.FigureHalfWidth),
	})
}

// SequencerTiming converts the timing section to claw delays.
func SequencerTiming(t config.Timing) classify.Timing {
	return classify.Timing{
		PositionDelay:  t.PositionDelay(),
		GripDelay:      t.GripDelay(),
		TransferDelay:  t.TransferDelay(),
		ReleaseDelay:   t.ReleaseDelay(),
		ResetDelay:     t.ResetDelay(),
		GripTransition: t.GripTransition(),
		ClawTransition: t.ClawTransition(),
	}
}

// Close releases the journal.
func (l *Line) Close() error {
	if l == nil || l.Journal == nil {
		return nil
	}
	return l.Journal.Close()
}

// HandleEvent applies an input event. It must run on the scheduler goroutine.
func (l *Line) HandleEvent(ctx context.Context, ev input.Event) {
	if _, err := l.Input.Handle(ctx, ev); err != nil {
		l.logger.Warn("input event rejected",
			logging.String("event", ev.String()),
			logging.Error(err),
			logging.String(logging.FieldEventType, "input_rejected"),
		)
	}
}

// Post hands an input event to the scheduler goroutine.
func (l *Line) Post(ctx context.Context, ev input.Event) error {
	return l.Scheduler.Post(func() { l.HandleEvent(ctx, ev) })
}
