// Package preflight provides readiness checks for the directories a sort run
// touches.
//
// "filesort check" renders every result as a table without moving anything.
// The checks are advisory: the sorter enforces its own fatal preconditions,
// while these also look ahead at write access and free space on the
// destination volume.
package preflight
