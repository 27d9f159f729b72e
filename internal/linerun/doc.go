// Package linerun assembles a sorting line from configuration and drives it.
//
// Build wires the scheduler, queue, catalog, layout, counters, motion
// controller, claw sequencer, workflow manager, input adapter and optional
// journal. Run feeds scripted drops and/or a stream of text events into the
// line and blocks until every figure has left it, the line halts with nothing
// more to read, or the context is cancelled.
package linerun
