// Package classify runs the claw sequence that sorts one figure into its bin.
//
// A Sequencer walks a fixed list of stages (position, grip, transfer, release,
// tally, reset). Each stage publishes its visual changes and schedules the
// next one after a fixed delay. The bin offset is resolved from the layout
// provider when the transfer stage starts, so geometry changes between
// figures are honoured.
//
// When a stage fails the figure is discarded and the claw is put back at the
// pickup point before the outcome is reported, leaving the display in a
// consistent state.
package classify
