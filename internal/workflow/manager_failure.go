package workflow

import (
	"context"
	"fmt"
	"strings"

	"sortline/internal/faults"
	"sortline/internal/logging"
	"sortline/internal/queue"
)

func (m *Manager) handleStageFailure(ctx context.Context, stg pipelineStage, item *queue.Item, stageErr error) {
	logger := m.stageLogger(ctx)

	message := classifyStageFailure(stg.name, stageErr)
	item.SetFailed(message)
	m.queue.Touch(item, queue.StatusFailed, item.Stage)

	details := faults.Details(stageErr)
	attrs := []logging.Attr{
		logging.String("resolved_status", string(queue.StatusFailed)),
		logging.String("error_message", message),
		logging.String("failed_step", item.Stage),
		logging.String(logging.FieldErrorKind, string(details.Kind)),
		logging.String(logging.FieldErrorHint, details.Hint),
		logging.String("on_failure", m.cfg.Workflow.OnFailure),
	}
	if details.Cause != nil {
		attrs = append(attrs, logging.Error(details.Cause))
	} else {
		attrs = append(attrs, logging.Error(stageErr))
	}
	attrs = append(attrs, logging.String(logging.FieldEventType, "stage_failure"))
	logger.Error("stage failed", logging.Args(attrs...)...)

	m.setLastError(stageErr)
	m.mu.Lock()
	m.failed++
	m.mu.Unlock()

	if m.cfg.Workflow.HaltOnFailure() {
		m.setState(StateHalted)
		m.finishItem(ctx, item, stageErr)
		logger.Warn(
			"runner halted",
			logging.String(logging.FieldEventType, "runner_halted"),
			logging.Int("queued_behind", m.queue.Len()-1),
			logging.String(logging.FieldErrorHint, "restart the line; halted runs do not retry"),
		)
		return
	}

	m.queue.DequeueHead()
	m.finishItem(ctx, item, stageErr)
	m.processNext()
}

func classifyStageFailure(stageName string, stageErr error) string {
	if stageErr == nil {
		return stageFailureMessage(stageName, "failed without error detail")
	}
	details := faults.Details(stageErr)
	message := strings.TrimSpace(details.Message)
	if message == "" {
		message = strings.TrimSpace(stageErr.Error())
	}
	if message == "" {
		message = stageFailureMessage(stageName, "failed")
	}
	return message
}

func stageFailureMessage(stageName, defaultMsg string) string {
	if stageName != "" {
		return fmt.Sprintf("%s %s", stageName, defaultMsg)
	}
	return fmt.Sprintf("workflow %s", defaultMsg)
}
