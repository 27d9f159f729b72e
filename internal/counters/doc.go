// Package counters keeps the per-kind tally of sorted figures.
//
// The Store holds a fixed entry for each sortable kind, starting at zero and
// only ever incremented. Every increment is published to the display sink,
// followed by a short pulse on the counter label.
package counters
