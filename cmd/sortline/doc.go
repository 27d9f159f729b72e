// Package main hosts the sortline CLI entrypoint and command graph.
//
// The Cobra command tree runs the sorting line headlessly: `run` drops a
// scripted list of figures, `play` reads drag-and-drop events from stdin,
// `layout` prints the claw offsets derived from the configured geometry, and
// `config` scaffolds, validates and prints configuration. Configuration
// resolution and logger setup are centralized in commandContext so each
// subcommand only wires its flags to the internal packages.
package main
