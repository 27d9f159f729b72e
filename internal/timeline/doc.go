// Package timeline is the delay primitive behind every suspension point of the
// sorting line.
//
// A Scheduler owns a virtual clock and a queue of timed callbacks. All
// callbacks run on the goroutine that calls Run (or the test helpers), so the
// queue runner, motion ticks and claw stages never execute concurrently.
// Inputs produced on other goroutines (a stdin reader, a signal handler) are
// handed over with Post and run on that same goroutine.
//
// With speed 0 the clock is purely virtual and Run drains events as fast as
// possible; with a positive speed each delay is paced against the wall clock
// (speed 2 runs twice as fast as real time).
package timeline
