// Package config loads, normalizes, and validates sortline configuration.
//
// It supplies repository defaults for stage timing, track and bin geometry,
// runner failure policy, display and logging, reads TOML files, and expands
// user paths (including tilde shortcuts). Always obtain settings through this
// package so downstream code receives sanitized values and clear validation
// errors.
package config
