package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"sortline/internal/classify"
	"sortline/internal/faults"
	"sortline/internal/figure"
	"sortline/internal/layout"
	"sortline/internal/logging"
	"sortline/internal/motion"
	"sortline/internal/queue"
	"sortline/internal/stage"
)

// ConveyorStage moves the head figure to the pickup point.
type ConveyorStage struct {
	ctrl   *motion.Controller
	target float64
	logger *slog.Logger
}

// NewConveyorStage wraps a motion controller. target is the pickup offset.
func NewConveyorStage(ctrl *motion.Controller, target float64) *ConveyorStage {
	return &ConveyorStage{ctrl: ctrl, target: target, logger: logging.NewNop()}
}

// SetLogger implements loggerAware.
func (s *ConveyorStage) SetLogger(logger *slog.Logger) { s.logger = logger }

// Start implements stage.Handler.
func (s *ConveyorStage) Start(_ context.Context, item *queue.Item, done func(error)) error {
	return s.ctrl.Start(item.Handle, s.target, func(res motion.Result) {
		s.logger.Debug(
			"figure reached pickup point",
			logging.Int("ticks", res.Ticks),
			logging.Float64("position", res.Position),
			logging.Float64("target", res.Target),
		)
		done(nil)
	})
}

// HealthCheck implements stage.Handler.
func (s *ConveyorStage) HealthCheck(context.Context) stage.Health {
	const name = "conveying"
	if s.ctrl == nil {
		return stage.Unhealthy(name, "motion controller unavailable")
	}
	if s.target <= 0 {
		return stage.Unhealthy(name, fmt.Sprintf("pickup offset %g is not positive", s.target))
	}
	if s.ctrl.InFlight() {
		return stage.Working(name, "figure on the track")
	}
	return stage.Healthy(name)
}

// SorterStage runs the claw sequence for the head figure.
type SorterStage struct {
	seq       *classify.Sequencer
	layout    layout.Provider
	halfWidth float64
	logger    *slog.Logger
}

// NewSorterStage wraps a sequencer. The layout provider is only consulted
// for health checks.
func NewSorterStage(seq *classify.Sequencer, provider layout.Provider, halfWidth float64) *SorterStage {
	return &SorterStage{seq: seq, layout: provider, halfWidth: halfWidth, logger: logging.NewNop()}
}

// SetLogger implements loggerAware.
func (s *SorterStage) SetLogger(logger *slog.Logger) { s.logger = logger }

// Start implements stage.Handler.
func (s *SorterStage) Start(_ context.Context, item *queue.Item, done func(error)) error {
	logger := s.logger
	hooks := classify.Hooks{
		OnStage: func(step classify.Stage) {
			item.Stage = step.String()
			logger.Debug("claw step", logging.String("step", step.String()))
		},
	}
	return s.seq.Run(item.Handle, item.Kind, hooks, func(out classify.Outcome) {
		item.TargetX = out.TargetX
		if out.Err != nil {
			item.Stage = out.FailedStage.String()
			done(out.Err)
			return
		}
		item.CounterValue = out.Count
		logger.Info(
			"figure sorted",
			logging.String(logging.FieldKind, out.Kind.String()),
			logging.Int("counter", out.Count),
			logging.Float64("target_x", out.TargetX),
			logging.Duration("sequence_duration", out.Elapsed),
		)
		done(nil)
	})
}

// HealthCheck implements stage.Handler.
func (s *SorterStage) HealthCheck(context.Context) stage.Health {
	const name = "sorting"
	if s.seq == nil {
		return stage.Unhealthy(name, "sequencer unavailable")
	}
	for _, kind := range figure.Kinds() {
		if _, err := layout.BinTarget(s.layout, kind, s.halfWidth); err != nil {
			return stage.Unhealthy(name, faults.Details(err).Message)
		}
	}
	if current := s.seq.Current(); current != classify.StageIdle {
		return stage.Working(name, current.String())
	}
	return stage.Healthy(name)
}
