// Package snapshot builds consolidated ProjectInfo snapshots of a
// repository's social metadata and persists them to a JSON snapshot file.
//
// A snapshot combines base repository metadata with concurrently fetched
// stargazer, watcher, fork, issue, and Pages data, applies the operator
// account filters, and gathers per-issue comments in a second fan-out round.
package snapshot
