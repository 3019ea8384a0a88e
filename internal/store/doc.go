// Package store provides persistent storage for library-api.
//
// # Architecture
//
// The store package uses an interface-driven architecture with one interface
// per resource:
//
//   - UserStore: accounts, readers and the admin role
//   - AuthorStore: authors
//   - BookStore: books and the reader-facing BookSummary
//   - RentStore: issuing and returning copies
//
// Store composes them with Ping and Close. SQLStore implements all of them over
// database/sql and runs on either backend:
//
//   - SQLite through modernc.org/sqlite (NewSQLiteStore), the default
//   - PostgreSQL through a pgx pool wrapped by pgx's stdlib adapter (NewPostgresStore)
//
// Queries are written with ? placeholders and rebound to $n for Postgres.
// Both schemas store dates as YYYY-MM-DD text.
//
// # Uniqueness
//
// Authors are unique by AuthorHash(name, birth date) and books by
// BookHash(name, publication date). Both are truncated BLAKE3 digests.
//
// # Rentals
//
// RentBook counts the reader's active rents and asks the configured
// RentLimiter whether another is allowed before taking a copy off the shelf.
// The limit rule is supplied by the caller; MaxActiveRents implements the
// books_limit_for_reader setting.
//
// # Errors
//
// Lookups return entity-specific errors (ErrUserNotFound, ErrBookNotFound, ...)
// that all match ErrNotFound with errors.Is. Constraint violations map to
// ErrUsernameExists, ErrDuplicateAuthor, ErrDuplicateBook, ErrAuthorInUse and
// ErrBookInUse.
//
// # Testing
//
// MockStore is an in-memory implementation with the same semantics. Setting
// MockStore.Err makes every call fail, which simulates an unreachable database.
package store
