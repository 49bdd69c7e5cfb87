// Package sorter walks a source tree and relocates every regular file into a
// category bucket under a destination root.
//
// A run happens in two phases. Discovery lists every candidate file before
// anything is touched, so files relocated into a destination nested inside the
// source are never seen twice. Processing then handles one file at a time:
// classify, resolve a collision-free name, move or copy. A failure on one file
// is recorded in the Result and the run continues; only problems with the
// source root or the bucket directories abort the run.
package sorter
