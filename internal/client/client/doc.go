// Package client talks to the cycle login gRPC service.
//
// # Overview
//
// Client is the transport-agnostic contract the CLI depends on. GRPCClient
// implements it over a grpc.ClientConn that speaks the JSON codec registered
// by package api, attaches the dev token to every call through a unary
// interceptor and maps gRPC status codes onto the sentinel errors below.
//
// # Error Handling
//
// Callers match errors with errors.Is: ErrUnavailable, ErrUnauthorized,
// ErrNotFound, ErrAlreadyExists, ErrInvalidInput.
package client
