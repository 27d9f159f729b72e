package workflow

import (
	"context"
	"log/slog"

	"sortline/internal/logging"
	"sortline/internal/queue"
)

type loggerAware interface {
	SetLogger(*slog.Logger)
}

func (m *Manager) runStage(index int, item *queue.Item) {
	stg := m.stages[index]
	stageCtx := withStageContext(m.runCtx, stg.name, item)
	stageLogger := m.stageLogger(stageCtx)
	if aware, ok := stg.handler.(loggerAware); ok {
		aware.SetLogger(stageLogger)
	}

	m.queue.Touch(item, stg.processingStatus, stg.name)
	item.ErrorMessage = ""
	m.setLastItem(item)
	m.publishQueue()

	stageStart := m.clock.Now()
	stageLogger.Info(
		"stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("processing_status", string(stg.processingStatus)),
		logging.String(logging.FieldKind, item.Kind.String()),
	)

	err := stg.handler.Start(stageCtx, item, func(stageErr error) {
		if stageErr != nil {
			m.handleStageFailure(stageCtx, stg, item, stageErr)
			return
		}
		m.queue.Touch(item, stg.doneStatus, item.Stage)
		m.publishQueue()
		stageLogger.Info(
			"stage completed",
			logging.String(logging.FieldEventType, "stage_complete"),
			logging.String("next_status", string(item.Status)),
			logging.Duration("stage_duration", m.clock.Now()-stageStart),
		)
		if index+1 < len(m.stages) {
			m.runStage(index+1, item)
			return
		}
		m.completeItem(stageCtx, item)
	})
	if err != nil {
		m.handleStageFailure(stageCtx, stg, item, err)
		return
	}
	m.publishQueue()
}

func withStageContext(ctx context.Context, stageName string, item *queue.Item) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if item != nil {
		ctx = logging.WithItemID(ctx, item.ID)
		if item.RequestID != "" {
			ctx = logging.WithRequestID(ctx, item.RequestID)
		}
	}
	if stageName != "" {
		ctx = logging.WithStage(ctx, stageName)
	}
	return ctx
}

func (m *Manager) stageLogger(ctx context.Context) *slog.Logger {
	logger := logging.WithContext(ctx, m.logger)
	if stageName, ok := logging.StageFromContext(ctx); ok {
		if level, ok := logging.StageOverride(m.cfg.Logging.StageOverrides, stageName); ok {
			logger = logging.WithLevelOverride(logger, level)
		}
	}
	return logger
}
