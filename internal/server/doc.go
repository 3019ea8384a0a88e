// ABOUTME: Package server runs the library HTTP server
// ABOUTME: Store selection, route assembly, health endpoints and graceful shutdown

// Package server assembles the library service from a loaded config and
// runs it until its context is canceled.
package server
