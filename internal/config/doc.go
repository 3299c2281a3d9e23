// Package config loads, normalizes, and validates signalgen configuration.
//
// Configuration lives in a TOML file (default ~/.config/signalgen/config.toml,
// falling back to ./signalgen.toml) with environment overrides for the
// service URLs and download directory. A .env file in the working directory
// is applied to the environment before overrides are read. Load expands
// paths, fills defaults, and rejects unusable values so callers can rely on
// a complete Config.
package config
