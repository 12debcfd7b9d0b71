// Package server wires and runs the transports of the reference cloud
// server.
//
// It owns listener setup and the lifecycle of the HTTP and gRPC servers:
// both run under one errgroup and are shut down together when the caller's
// context ends.
package server
