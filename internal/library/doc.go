// ABOUTME: Package library serves the library HTTP API
// ABOUTME: Accounts, authors, books, rentals, readers and the caller's profile

// Package library implements the HTTP endpoints of the library service.
//
// Every protected route runs behind the auth gate. Admin routes manage
// authors, books, rentals and readers; any signed-in user may read a single
// book and manage their own profile. Responses are JSON objects of the form
// {"status": "Ok", "detail": "..."} unless the route returns a resource.
package library
