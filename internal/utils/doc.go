// Package utils hosts shared infrastructure for the repomove CLI: the Viper
// configuration loader and the zap logger factory used by every command.
package utils
