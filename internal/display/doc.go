// Package display carries the visual side effects of the sorting line.
//
// Animation components never touch a screen. They publish Events (figure
// moved, claw shown, grip closed, counter changed, ...) to a Sink. Scene folds
// events into the current visual state, Recorder keeps them for assertions,
// Terminal draws the scene as a single status line, and LogSink writes them to
// a structured logger. Tee fans events out to several sinks.
//
// Sinks are invoked on the scheduler goroutine; implementations that are read
// from elsewhere guard their state.
package display
