package stage

import (
	"context"

	"sortline/internal/queue"
)

// Handler describes the contract the workflow manager needs from each stage.
//
// Start begins the stage for item and returns immediately. done is invoked
// exactly once on the scheduler goroutine when the stage finishes; a non-nil
// error marks the stage as failed. A non-nil return from Start means the stage
// never began and done will not be called.
type Handler interface {
	Start(ctx context.Context, item *queue.Item, done func(error)) error
	HealthCheck(context.Context) Health
}
