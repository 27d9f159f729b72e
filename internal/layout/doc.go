// Package layout answers bounding-box queries for the rendered line.
//
// The sorting sequencer never reads geometry directly; it asks a Provider for
// the box of the track or of a bin by identifier and derives claw offsets from
// the result. Static is the in-memory provider built from configuration.
package layout
