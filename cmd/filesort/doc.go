// Package main hosts the filesort CLI entrypoint and command graph.
//
// The Cobra-based command tree resolves configuration, builds the category
// table and logger, and hands a source and destination to the sorter. Output
// meant for people goes to the terminal as tables and a progress bar; --json
// switches the sort summary to a machine-readable document on stdout while
// logs stay on stderr.
//
// Keep this package lean: behaviour belongs in the internal packages, and the
// commands here only translate flags into their options.
package main
