// Package motion conveys a dropped figure along the track to the pickup point.
//
// The Controller places the figure at its start position and then advances it
// by a fixed step on every tick until the offset reaches the target. Only one
// figure may be conveyed at a time.
package motion
