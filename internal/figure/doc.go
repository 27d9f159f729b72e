// Package figure defines the shapes that travel through the sorting line.
//
// A Kind is the opaque identifier carried by drag data ("square", "circle",
// "triangle"). A Handle is the cloned visual element that rides the conveyor
// and claw; handles are minted by a Catalog so every dropped figure has its
// own identity even when many figures share a kind.
package figure
