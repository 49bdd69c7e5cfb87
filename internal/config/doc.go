// Package config loads, normalizes, and validates filesort configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours the FILESORT_SOURCE and FILESORT_DEST environment
// fallbacks. The [categories] table lets users add extensions to built-in
// buckets or declare new ones; CategoryTable merges those into the default
// table and rejects extensions claimed twice.
//
// Always obtain settings through this package so the CLI receives absolute
// paths, canonical enum values, and clear validation errors.
package config
