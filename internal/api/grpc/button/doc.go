// Package button implements the gRPC transport for the async button service.
//
// It converts domain snapshots and actors to the Struct documents of
// ButtonService and exposes a server that calls into a provided
// business-service interface.
package button
