package workflow

import (
	"sortline/internal/queue"
	"sortline/internal/stage"
)

// State is the runner state.
type State string

const (
	StateIdle     State = "idle"
	StateDraining State = "draining"
	StateHalted   State = "halted"
)

// StageSet bundles the concrete stage handlers the manager orchestrates.
type StageSet struct {
	Conveyor stage.Handler
	Sorter   stage.Handler
}

type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      queue.Status
	processingStatus queue.Status
	doneStatus       queue.Status
}
