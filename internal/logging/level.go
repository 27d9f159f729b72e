package logging

import (
	"context"
	"log/slog"
	"strings"
)

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel maps a config level name to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level { return parseLevel(level) }

// minLevelHandler drops records below level before delegating; the wrapped
// handler should be configured with the most verbose level needed globally.
type minLevelHandler struct {
	next  slog.Handler
	level slog.Level
}

func (h *minLevelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level && h.next.Enabled(ctx, level)
}

func (h *minLevelHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level < h.level {
		return nil
	}
	return h.next.Handle(ctx, record)
}

func (h *minLevelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &minLevelHandler{next: h.next.WithAttrs(attrs), level: h.level}
}

func (h *minLevelHandler) WithGroup(name string) slog.Handler {
	return &minLevelHandler{next: h.next.WithGroup(name), level: h.level}
}

// WithLevelOverride returns a logger that enforces the provided minimum level
// while preserving existing attributes. Overrides replace each other rather
// than stacking.
func WithLevelOverride(logger *slog.Logger, level slog.Level) *slog.Logger {
	if logger == nil {
		return NewNop()
	}
	next := logger.Handler()
	if existing, ok := next.(*minLevelHandler); ok {
		next = existing.next
	}
	return slog.New(&minLevelHandler{next: next, level: level})
}

// StageOverride looks up a per-stage level override, matching stage names case-insensitively.
func StageOverride(overrides map[string]string, stage string) (slog.Level, bool) {
	stage = strings.ToLower(strings.TrimSpace(stage))
	if stage == "" || len(overrides) == 0 {
		return slog.LevelInfo, false
	}
	for key, value := range overrides {
		if strings.ToLower(strings.TrimSpace(key)) == stage && strings.TrimSpace(value) != "" {
			return parseLevel(value), true
		}
	}
	return slog.LevelInfo, false
}
