// Package faults defines the error markers shared by the sorting stages and
// the helpers that attach stage context to them.
//
// Stage code wraps failures with Wrap so the workflow manager can log a
// consistent set of fields (kind, operation, hint) and decide whether the
// runner halts or skips the failed figure.
package faults
