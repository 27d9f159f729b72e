// Package queue holds figures waiting for the sorting line in drop order.
//
// The Queue is a plain FIFO: drops append at the tail, the workflow manager
// peeks the head while it animates and removes it once the figure has been
// sorted. Items are never persisted. All mutation happens on the scheduler
// goroutine, so the queue itself carries no locking.
package queue
