// Package batch implements the repos command: it resolves the repository name
// list, applies the selected operation (snapshot display, snapshot persist,
// snapshot file display, import, revert) to every name with per-repository
// failure isolation, and presents ordered results.
package batch
