// Package journal records the outcome of every figure that leaves the line.
//
// Entries live in an in-memory SQLite database for the lifetime of the
// process and back the end-of-run summary and the journal table in the CLI.
// Nothing is written to disk; closing the Journal discards it.
package journal
