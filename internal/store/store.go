// ABOUTME: Store interfaces and data types for library-api persistence
// ABOUTME: Defines User, Author, Book, Rent and the per-resource store interfaces

package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used for every date column.
const DateLayout = "2006-01-02"

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// Entity-specific not-found errors. Each also matches ErrNotFound.
var (
	ErrUserNotFound   = fmt.Errorf("user %w", ErrNotFound)
	ErrAuthorNotFound = fmt.Errorf("author %w", ErrNotFound)
	ErrBookNotFound   = fmt.Errorf("book %w", ErrNotFound)
	ErrRentNotFound   = fmt.Errorf("rent %w", ErrNotFound)
)

// ErrUsernameExists is returned when trying to create a user with an existing username.
var ErrUsernameExists = errors.New("username already exists")

// ErrDuplicateAuthor is returned when an author with the same name and birth date exists.
var ErrDuplicateAuthor = errors.New("author already exists")

// ErrDuplicateBook is returned when a book with the same name and publication date exists.
var ErrDuplicateBook = errors.New("book already exists")

// ErrAuthorInUse is returned when deleting an author that still has books.
var ErrAuthorInUse = errors.New("author still has books")

// ErrBookInUse is returned when deleting a book that is currently rented.
var ErrBookInUse = errors.New("book has active rents")

// ErrOutOfStock is returned when renting a book with no copies left.
var ErrOutOfStock = errors.New("no copies left")

// User is a registered account. Readers are users with IsAdmin false.
type User struct {
	ID           int64
	FirstName    string
	SecondName   string
	BirthDate    time.Time
	Username     string
	PasswordHash string // bcrypt hash
	IsAdmin      bool
}

// FullName returns "first second".
func (u *User) FullName() string {
	return u.FirstName + " " + u.SecondName
}

// Author is a book author. Hash identifies the (name, birth date) pair.
type Author struct {
	ID        int64
	Name      string
	Bio       string
	BirthDate time.Time
	Hash      string
}

// Book is a title held by the library with Quantity copies on the shelf.
type Book struct {
	ID              int64
	Name            string
	Description     string
	PublicationDate time.Time
	AuthorID        int64
	Genre           string
	Quantity        int
	Hash            string
}

// BookSummary is the reader-facing view of a book.
type BookSummary struct {
	ID              int64
	Name            string
	Description     string
	Genre           string
	PublicationDate time.Time
	AuthorName      string
}

// Rent is one copy of a book issued to a reader.
type Rent struct {
	ID         int64
	ReaderID   int64
	BookID     int64
	IssueDate  time.Time
	ReturnDate time.Time
}

// UserStore persists accounts. GetUserByID and GetUserByUsername are the only
// methods the authorization layer calls.
type UserStore interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id int64) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	UpdateUserProfile(ctx context.Context, user *User) error
	SetUserAdmin(ctx context.Context, id int64, isAdmin bool) error
	ListReaders(ctx context.Context) ([]*User, error)
	GetReader(ctx context.Context, id int64) (*User, error)
	CountAdmins(ctx context.Context) (int, error)
}

// AuthorStore persists authors.
type AuthorStore interface {
	CreateAuthor(ctx context.Context, author *Author) error
	GetAuthor(ctx context.Context, id int64) (*Author, error)
	ListAuthors(ctx context.Context) ([]*Author, error)
	UpdateAuthor(ctx context.Context, author *Author) error
	DeleteAuthor(ctx context.Context, id int64) error
}

// BookStore persists books.
type BookStore interface {
	CreateBook(ctx context.Context, book *Book) error
	GetBook(ctx context.Context, id int64) (*Book, error)
	GetBookSummary(ctx context.Context, id int64) (*BookSummary, error)
	ListBooks(ctx context.Context) ([]*Book, error)
	UpdateBook(ctx context.Context, book *Book) error
	DeleteBook(ctx context.Context, id int64) error
}

// RentStore issues and returns copies.
type RentStore interface {
	// RentBook records rent, takes one copy off the shelf and sets rent.ID.
	// The configured RentLimiter is consulted first.
	RentBook(ctx context.Context, rent *Rent) error
	// ReturnBook deletes the rent and puts the copy back.
	ReturnBook(ctx context.Context, rentID int64) error
	GetRent(ctx context.Context, id int64) (*Rent, error)
	CountActiveRents(ctx context.Context, readerID int64) (int, error)
}

// Store is the full persistence surface used by the service.
type Store interface {
	UserStore
	AuthorStore
	BookStore
	RentStore

	// Ping checks that the backing database is reachable
	Ping(ctx context.Context) error

	// Close releases any resources held by the store
	Close() error
}

func formatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func parseDate(s string) (time.Time, error) {
	// Postgres drivers may hand back a full timestamp for TEXT written by other tools.
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}
