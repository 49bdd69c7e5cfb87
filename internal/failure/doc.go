// Package failure defines the error markers shared by the sorter and its
// callers.
//
// Markers split failures into two groups. Fatal markers (missing or unreadable
// source, bucket creation, a locked destination) abort a run before any file is
// touched. Everything else is a per-file failure: it is classified into a Kind
// for reporting and the run moves on to the next file. Name collisions are not
// failures and never reach this package.
package failure
