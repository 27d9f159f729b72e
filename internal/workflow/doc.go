// Package workflow drains the figure queue through the sorting line.
//
// The Manager owns the processing flag. A drop enqueues the figure and, when
// the line is idle, starts a draining run: the head item is conveyed to the
// pickup point, sorted by the claw, and removed, then the next head is
// started. Later drops only enqueue; the running drain picks them up.
//
// Stages are asynchronous. Each registered stage.Handler reports completion
// through a callback on the scheduler goroutine, which is also where Drop must
// be called, so the queue and the flag need no locking. Status snapshots are
// mirrored under a mutex for readers on other goroutines.
//
// A failed stage either halts the line with the failed item still at the head
// (the default) or drops the item and continues, per workflow.on_failure.
package workflow
