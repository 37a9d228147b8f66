// Package config loads, normalizes, and validates bcfkit configuration data.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours environment overrides from the process or a .env
// file in the working directory. Always obtain settings through this package
// so downstream code receives canonical policy names, log formats and worker
// counts together with clear validation errors.
package config
