// Package app wires configuration into a running download coordinator and
// holds the session-level steps shared by the musicq binaries: checking for
// external tools before starting and writing the session playlist after the
// coordinator has stopped.
package app
