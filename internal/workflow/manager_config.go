package workflow

import "sortline/internal/queue"

// ConfigureStages registers the concrete stage handlers the workflow will run.
// Call it before the scheduler starts.
func (m *Manager) ConfigureStages(set StageSet) {
	m.stages = m.stages[:0]
	if set.Conveyor != nil {
		m.stages = append(m.stages, pipelineStage{
			name:             "conveying",
			handler:          set.Conveyor,
			startStatus:      queue.StatusPending,
			processingStatus: queue.StatusConveying,
			doneStatus:       queue.StatusAtPickup,
		})
	}
	if set.Sorter != nil {
		m.stages = append(m.stages, pipelineStage{
			name:             "sorting",
			handler:          set.Sorter,
			startStatus:      queue.StatusAtPickup,
			processingStatus: queue.StatusSorting,
			doneStatus:       queue.StatusSorted,
		})
	}
	m.publishQueue()
}
