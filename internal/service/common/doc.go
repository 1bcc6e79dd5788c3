// Package common holds helpers shared by the command line services.
//
// It provides a gRPC client for ButtonService with per-call timeouts and a
// helper that detects the current system actor (hostname/username).
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
