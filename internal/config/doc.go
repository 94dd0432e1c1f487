// Package config loads, normalizes, and validates Tessera configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// pipeline and CLI need, allowing upload/derivative directories, external tool
// paths, and derivative recipes to be discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
