// Package client implements the async-button command line flows.
//
// Press triggers the remote button, retrying until the server answers, and
// follows the cycle until it settles. State prints one snapshot and Watch
// follows snapshots until interrupted.
package client
