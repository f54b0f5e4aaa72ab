// Package transfer drives cross-account repository migrations: it creates the
// destination clone shell, runs the asynchronous GitHub Source Import job to a
// terminal state via polling, reconciles the settings the import does not
// carry over, and provides the inverse revert operation that deletes a
// previously created clone.
package transfer
