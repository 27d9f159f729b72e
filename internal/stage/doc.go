// Package stage defines the contract between the workflow manager and the
// animation steps it drives.
package stage
