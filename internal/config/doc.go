// Package config loads, normalizes, and validates shellbeats configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob
// the player and CLI need, and derives the on-disk layout of the state
// directory: the settings document, playlist index, playlist files, queue
// snapshot, and managed yt-dlp binary all live under paths.config_root.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
