// ABOUTME: Behavioral tests shared by the SQLite store and MockStore
// ABOUTME: Covers users, authors, books, rents, limits and content hashes

package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T, opts ...Option) *SQLStore {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath, opts...)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

// forEachStore runs fn against SQLite and MockStore so both stay in step.
func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("sqlite", func(t *testing.T) { fn(t, setupTestStore(t)) })
	t.Run("mock", func(t *testing.T) { fn(t, NewMockStore()) })
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newReader(username string) *User {
	return &User{
		FirstName:    "Ada",
		SecondName:   "Lovelace",
		BirthDate:    date(1990, time.December, 10),
		Username:     username,
		PasswordHash: "$2a$10$hash",
	}
}

func seedBook(t *testing.T, s Store, quantity int) (*Author, *Book) {
	t.Helper()
	ctx := context.Background()

	author := &Author{Name: "Leo Tolstoy", Bio: "Russian writer", BirthDate: date(1828, time.September, 9)}
	require.NoError(t, s.CreateAuthor(ctx, author))

	book := &Book{
		Name:            "War and Peace",
		Description:     "A novel",
		PublicationDate: date(1869, time.January, 1),
		AuthorID:        author.ID,
		Genre:           "novel",
		Quantity:        quantity,
	}
	require.NoError(t, s.CreateBook(ctx, book))
	return author, book
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "nested", "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "database file was not created in nested directory")
	assert.Equal(t, DialectSQLite, store.Dialect())
	assert.NoError(t, store.Ping(context.Background()))
}

func TestNewSQLiteStore_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s1, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	u := newReader("persisted")
	require.NoError(t, s1.CreateUser(ctx, u))
	require.NoError(t, s1.Close())

	s2, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "persisted", got.Username)
}

func TestRebind(t *testing.T) {
	sqlite := &SQLStore{dialect: DialectSQLite}
	pg := &SQLStore{dialect: DialectPostgres}

	q := `SELECT * FROM t WHERE a = ? AND b = ? AND c = ?`
	assert.Equal(t, q, sqlite.rebind(q))
	assert.Equal(t, `SELECT * FROM t WHERE a = $1 AND b = $2 AND c = $3`, pg.rebind(q))
	assert.Equal(t, `SELECT 1`, pg.rebind(`SELECT 1`))
}

func TestStore_Users(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		u := newReader("ada")
		require.NoError(t, s.CreateUser(ctx, u))
		require.NotZero(t, u.ID)

		byID, err := s.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "ada", byID.Username)
		assert.Equal(t, "$2a$10$hash", byID.PasswordHash)
		assert.True(t, byID.BirthDate.Equal(u.BirthDate))
		assert.False(t, byID.IsAdmin)
		assert.Equal(t, "Ada Lovelace", byID.FullName())

		byName, err := s.GetUserByUsername(ctx, "ada")
		require.NoError(t, err)
		assert.Equal(t, u.ID, byName.ID)

		_, err = s.GetUserByID(ctx, u.ID+1000)
		assert.ErrorIs(t, err, ErrUserNotFound)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.GetUserByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, ErrUserNotFound)

		err = s.CreateUser(ctx, newReader("ada"))
		assert.ErrorIs(t, err, ErrUsernameExists)
	})
}

func TestStore_UpdateUserProfile(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		u := newReader("grace")
		require.NoError(t, s.CreateUser(ctx, u))

		update := &User{ID: u.ID, FirstName: "Grace", SecondName: "Hopper", BirthDate: date(1906, time.December, 9), Username: "ignored", IsAdmin: true}
		require.NoError(t, s.UpdateUserProfile(ctx, update))

		got, err := s.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "Grace", got.FirstName)
		assert.Equal(t, "Hopper", got.SecondName)
		assert.True(t, got.BirthDate.Equal(date(1906, time.December, 9)))
		assert.Equal(t, "grace", got.Username, "username is not a profile field")
		assert.False(t, got.IsAdmin, "role is not a profile field")

		err = s.UpdateUserProfile(ctx, &User{ID: u.ID + 1000, BirthDate: date(2000, 1, 1)})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestStore_ReadersAndAdmins(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		r1 := newReader("reader1")
		r2 := newReader("reader2")
		admin := newReader("admin")
		admin.IsAdmin = true
		for _, u := range []*User{r1, admin, r2} {
			require.NoError(t, s.CreateUser(ctx, u))
		}

		readers, err := s.ListReaders(ctx)
		require.NoError(t, err)
		require.Len(t, readers, 2)
		assert.Equal(t, r1.ID, readers[0].ID)
		assert.Equal(t, r2.ID, readers[1].ID)

		got, err := s.GetReader(ctx, r2.ID)
		require.NoError(t, err)
		assert.Equal(t, "reader2", got.Username)

		_, err = s.GetReader(ctx, admin.ID)
		assert.ErrorIs(t, err, ErrUserNotFound, "admins are not readers")

		n, err := s.CountAdmins(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		require.NoError(t, s.SetUserAdmin(ctx, r1.ID, true))
		n, err = s.CountAdmins(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		assert.ErrorIs(t, s.SetUserAdmin(ctx, 9999, true), ErrUserNotFound)
	})
}

func TestStore_Authors(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		a := &Author{Name: "Anton Chekhov", Bio: "Playwright", BirthDate: date(1860, time.January, 29)}
		require.NoError(t, s.CreateAuthor(ctx, a))
		assert.Equal(t, AuthorHash(a.Name, a.BirthDate), a.Hash)

		got, err := s.GetAuthor(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "Anton Chekhov", got.Name)
		assert.True(t, got.BirthDate.Equal(a.BirthDate))

		// Same name, different birth date is a different author
		namesake := &Author{Name: "Anton Chekhov", Bio: "Someone else", BirthDate: date(1950, time.May, 1)}
		require.NoError(t, s.CreateAuthor(ctx, namesake))

		dup := &Author{Name: "Anton Chekhov", Bio: "Again", BirthDate: date(1860, time.January, 29)}
		assert.ErrorIs(t, s.CreateAuthor(ctx, dup), ErrDuplicateAuthor)

		all, err := s.ListAuthors(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		a.Bio = "Russian playwright"
		require.NoError(t, s.UpdateAuthor(ctx, a))
		got, err = s.GetAuthor(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "Russian playwright", got.Bio)

		namesake.BirthDate = a.BirthDate
		assert.ErrorIs(t, s.UpdateAuthor(ctx, namesake), ErrDuplicateAuthor)

		require.NoError(t, s.DeleteAuthor(ctx, a.ID))
		_, err = s.GetAuthor(ctx, a.ID)
		assert.ErrorIs(t, err, ErrAuthorNotFound)
		assert.ErrorIs(t, s.DeleteAuthor(ctx, a.ID), ErrAuthorNotFound)
		assert.ErrorIs(t, s.UpdateAuthor(ctx, a), ErrAuthorNotFound)
	})
}

func TestStore_Books(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		author, book := seedBook(t, s, 3)

		got, err := s.GetBook(ctx, book.ID)
		require.NoError(t, err)
		assert.Equal(t, "War and Peace", got.Name)
		assert.Equal(t, 3, got.Quantity)
		assert.Equal(t, author.ID, got.AuthorID)
		assert.Len(t, got.Hash, 32)

		summary, err := s.GetBookSummary(ctx, book.ID)
		require.NoError(t, err)
		assert.Equal(t, "Leo Tolstoy", summary.AuthorName)
		assert.Equal(t, "novel", summary.Genre)
		assert.True(t, summary.PublicationDate.Equal(book.PublicationDate))

		dup := *book
		dup.ID = 0
		assert.ErrorIs(t, s.CreateBook(ctx, &dup), ErrDuplicateBook)

		orphan := &Book{Name: "Orphan", Description: "x", PublicationDate: date(2000, 1, 1), AuthorID: 9999, Genre: "g", Quantity: 1}
		assert.ErrorIs(t, s.CreateBook(ctx, orphan), ErrAuthorNotFound)

		book.Quantity = 10
		book.Genre = "epic"
		require.NoError(t, s.UpdateBook(ctx, book))
		got, err = s.GetBook(ctx, book.ID)
		require.NoError(t, err)
		assert.Equal(t, 10, got.Quantity)
		assert.Equal(t, "epic", got.Genre)

		assert.ErrorIs(t, s.DeleteAuthor(ctx, author.ID), ErrAuthorInUse)

		books, err := s.ListBooks(ctx)
		require.NoError(t, err)
		assert.Len(t, books, 1)

		require.NoError(t, s.DeleteBook(ctx, book.ID))
		_, err = s.GetBookSummary(ctx, book.ID)
		assert.ErrorIs(t, err, ErrBookNotFound)
		assert.ErrorIs(t, s.DeleteBook(ctx, book.ID), ErrBookNotFound)
	})
}

func TestStore_RentAndReturn(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		_, book := seedBook(t, s, 1)

		reader := newReader("reader")
		require.NoError(t, s.CreateUser(ctx, reader))

		rent := &Rent{ReaderID: reader.ID, BookID: book.ID, IssueDate: date(2025, 1, 1), ReturnDate: date(2025, 2, 1)}
		require.NoError(t, s.RentBook(ctx, rent))
		require.NotZero(t, rent.ID)

		got, err := s.GetBook(ctx, book.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Quantity)

		n, err := s.CountActiveRents(ctx, reader.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		stored, err := s.GetRent(ctx, rent.ID)
		require.NoError(t, err)
		assert.True(t, stored.ReturnDate.Equal(date(2025, 2, 1)))

		// No copies left
		again := &Rent{ReaderID: reader.ID, BookID: book.ID, IssueDate: date(2025, 1, 1), ReturnDate: date(2025, 2, 1)}
		assert.ErrorIs(t, s.RentBook(ctx, again), ErrOutOfStock)

		assert.ErrorIs(t, s.DeleteBook(ctx, book.ID), ErrBookInUse)

		require.NoError(t, s.ReturnBook(ctx, rent.ID))
		got, err = s.GetBook(ctx, book.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.Quantity)

		assert.ErrorIs(t, s.ReturnBook(ctx, rent.ID), ErrRentNotFound)
		_, err = s.GetRent(ctx, rent.ID)
		assert.ErrorIs(t, err, ErrRentNotFound)
	})
}

func TestStore_RentUnknownReaderOrBook(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		_, book := seedBook(t, s, 5)
		reader := newReader("reader")
		require.NoError(t, s.CreateUser(ctx, reader))

		err := s.RentBook(ctx, &Rent{ReaderID: 9999, BookID: book.ID, IssueDate: date(2025, 1, 1), ReturnDate: date(2025, 1, 2)})
		assert.ErrorIs(t, err, ErrUserNotFound)

		err = s.RentBook(ctx, &Rent{ReaderID: reader.ID, BookID: 9999, IssueDate: date(2025, 1, 1), ReturnDate: date(2025, 1, 2)})
		assert.ErrorIs(t, err, ErrBookNotFound)
	})
}

func TestStore_RentLimiter(t *testing.T) {
	ctx := context.Background()

	run := func(t *testing.T, s Store) {
		_, book := seedBook(t, s, 10)
		reader := newReader("reader")
		require.NoError(t, s.CreateUser(ctx, reader))

		for i := range 2 {
			err := s.RentBook(ctx, &Rent{ReaderID: reader.ID, BookID: book.ID, IssueDate: date(2025, 1, 1), ReturnDate: date(2025, 1, 2)})
			require.NoError(t, err, "rent %d", i)
		}

		err := s.RentBook(ctx, &Rent{ReaderID: reader.ID, BookID: book.ID, IssueDate: date(2025, 1, 1), ReturnDate: date(2025, 1, 2)})
		require.ErrorIs(t, err, ErrRentLimitExceeded)
		assert.True(t, strings.Contains(err.Error(), "2 rented books"))

		got, err := s.GetBook(ctx, book.ID)
		require.NoError(t, err)
		assert.Equal(t, 8, got.Quantity, "refused rent must not take a copy")
	}

	t.Run("sqlite", func(t *testing.T) {
		run(t, setupTestStore(t, WithRentLimiter(MaxActiveRents(2))))
	})
	t.Run("mock", func(t *testing.T) {
		m := NewMockStore()
		m.SetRentLimiter(MaxActiveRents(2))
		run(t, m)
	})
}

func TestMaxActiveRents(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, MaxActiveRents(0).AllowRent(ctx, 1, 100), "zero disables the limit")
	assert.NoError(t, MaxActiveRents(3).AllowRent(ctx, 1, 2))
	assert.ErrorIs(t, MaxActiveRents(3).AllowRent(ctx, 1, 3), ErrRentLimitExceeded)
	assert.NoError(t, Unlimited().AllowRent(ctx, 1, 1_000_000))
}

func TestMockStore_Err(t *testing.T) {
	m := NewMockStore()
	m.Err = assert.AnError
	ctx := context.Background()

	_, err := m.GetUserByID(ctx, 1)
	assert.ErrorIs(t, err, assert.AnError)
	assert.ErrorIs(t, m.Ping(ctx), assert.AnError)
}

func TestContentHash(t *testing.T) {
	h1 := AuthorHash("Name", date(1900, 1, 1))
	h2 := AuthorHash("Name", date(1900, 1, 2))
	h3 := AuthorHash("Name", date(1900, 1, 1))

	assert.Len(t, h1, 32)
	assert.NotEqual(t, h1, h2)
	assert.Equal(t, h1, h3)

	// Field boundaries are part of the hash input
	assert.NotEqual(t, contentHash("ab", "c"), contentHash("a", "bc"))
	assert.Equal(t, BookHash("Name", date(1900, 1, 1)), h1, "same inputs, same digest")
}
