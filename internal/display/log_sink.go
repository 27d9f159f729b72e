package display

import (
	"context"
	"log/slog"

	"sortline/internal/logging"
)

// LogSink writes events to a structured logger. Motion ticks are logged at
// debug level; everything else at info.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink wraps logger; a nil logger discards.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &LogSink{logger: logging.NewComponentLogger(logger, "display")}
}

// Apply implements Sink.
func (s *LogSink) Apply(e Event) {
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, string(e.Type)),
		logging.Duration("at", e.At),
	}
	if e.Handle.Valid() {
		attrs = append(attrs, logging.Int64("figure_id", e.Handle.ID))
	}
	if e.Kind != "" {
		attrs = append(attrs, logging.String(logging.FieldKind, e.Kind.String()))
	}
	switch e.Type {
	case FigurePlaced:
		attrs = append(attrs, logging.Float64("x", e.X), logging.Float64("y", e.Y))
	case FigureMoved, ClawShown, ClawMoved, ClawReset:
		attrs = append(attrs, logging.Float64("x", e.X))
	case CounterSet:
		attrs = append(attrs, logging.Int("value", e.Value))
	case CounterPulse:
		attrs = append(attrs, logging.Float64("scale", e.Scale))
	case DragMarker:
		attrs = append(attrs, logging.Bool("on", e.On))
	}
	if e.Transition > 0 {
		attrs = append(attrs, logging.Duration("transition", e.Transition))
	}
	level := slog.LevelInfo
	if e.Type == FigureMoved {
		level = slog.LevelDebug
	}
	s.logger.Log(context.Background(), level, "display event", logging.Args(attrs...)...)
}
