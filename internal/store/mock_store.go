// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without a database

package store

import (
	"context"
	"sort"
	"sync"
)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu      sync.RWMutex
	users   map[int64]*User
	authors map[int64]*Author
	books   map[int64]*Book
	rents   map[int64]*Rent
	nextID  int64
	limiter RentLimiter

	// Err, when set, is returned by every method. Used to simulate outages.
	Err error
}

// Ensure MockStore implements Store.
var _ Store = (*MockStore)(nil)

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		users:   make(map[int64]*User),
		authors: make(map[int64]*Author),
		books:   make(map[int64]*Book),
		rents:   make(map[int64]*Rent),
		limiter: Unlimited(),
	}
}

// SetRentLimiter replaces the rent limit hook.
func (m *MockStore) SetRentLimiter(l RentLimiter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limiter = l
}

func (m *MockStore) newID() int64 {
	m.nextID++
	return m.nextID
}

// CreateUser stores a new user and assigns its ID.
func (m *MockStore) CreateUser(ctx context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	for _, u := range m.users {
		if u.Username == user.Username {
			return ErrUsernameExists
		}
	}

	user.ID = m.newID()
	u := *user
	m.users[u.ID] = &u
	return nil
}

// GetUserByID retrieves a user by ID.
func (m *MockStore) GetUserByID(ctx context.Context, id int64) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	result := *u
	return &result, nil
}

// GetUserByUsername retrieves a user by username.
func (m *MockStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	for _, u := range m.users {
		if u.Username == username {
			result := *u
			return &result, nil
		}
	}
	return nil, ErrUserNotFound
}

// UpdateUserProfile updates the personal fields of a user.
func (m *MockStore) UpdateUserProfile(ctx context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	u, ok := m.users[user.ID]
	if !ok {
		return ErrUserNotFound
	}
	u.FirstName = user.FirstName
	u.SecondName = user.SecondName
	u.BirthDate = user.BirthDate
	return nil
}

// SetUserAdmin grants or revokes the admin role.
func (m *MockStore) SetUserAdmin(ctx context.Context, id int64, isAdmin bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	u, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.IsAdmin = isAdmin
	return nil
}

// DeleteUser removes a user. Only the mock supports this; tests use it to
// simulate accounts that vanish while tokens are still valid.
func (m *MockStore) DeleteUser(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
}

// ListReaders returns all non-admin users ordered by ID.
func (m *MockStore) ListReaders(ctx context.Context) ([]*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	var readers []*User
	for _, u := range m.users {
		if !u.IsAdmin {
			c := *u
			readers = append(readers, &c)
		}
	}
	sort.Slice(readers, func(i, j int) bool { return readers[i].ID < readers[j].ID })
	return readers, nil
}

// GetReader retrieves a non-admin user by ID.
func (m *MockStore) GetReader(ctx context.Context, id int64) (*User, error) {
	u, err := m.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.IsAdmin {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// CountAdmins returns the number of admin users.
func (m *MockStore) CountAdmins(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return 0, m.Err
	}

	n := 0
	for _, u := range m.users {
		if u.IsAdmin {
			n++
		}
	}
	return n, nil
}

// CreateAuthor stores a new author and assigns its ID.
func (m *MockStore) CreateAuthor(ctx context.Context, author *Author) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	author.Hash = AuthorHash(author.Name, author.BirthDate)
	for _, a := range m.authors {
		if a.Hash == author.Hash {
			return ErrDuplicateAuthor
		}
	}

	author.ID = m.newID()
	a := *author
	m.authors[a.ID] = &a
	return nil
}

// GetAuthor retrieves an author by ID.
func (m *MockStore) GetAuthor(ctx context.Context, id int64) (*Author, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	a, ok := m.authors[id]
	if !ok {
		return nil, ErrAuthorNotFound
	}
	result := *a
	return &result, nil
}

// ListAuthors returns all authors ordered by ID.
func (m *MockStore) ListAuthors(ctx context.Context) ([]*Author, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	authors := make([]*Author, 0, len(m.authors))
	for _, a := range m.authors {
		c := *a
		authors = append(authors, &c)
	}
	sort.Slice(authors, func(i, j int) bool { return authors[i].ID < authors[j].ID })
	return authors, nil
}

// UpdateAuthor replaces the author's fields.
func (m *MockStore) UpdateAuthor(ctx context.Context, author *Author) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	if _, ok := m.authors[author.ID]; !ok {
		return ErrAuthorNotFound
	}
	author.Hash = AuthorHash(author.Name, author.BirthDate)
	for _, a := range m.authors {
		if a.ID != author.ID && a.Hash == author.Hash {
			return ErrDuplicateAuthor
		}
	}
	a := *author
	m.authors[a.ID] = &a
	return nil
}

// DeleteAuthor removes an author that has no books.
func (m *MockStore) DeleteAuthor(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	if _, ok := m.authors[id]; !ok {
		return ErrAuthorNotFound
	}
	for _, b := range m.books {
		if b.AuthorID == id {
			return ErrAuthorInUse
		}
	}
	delete(m.authors, id)
	return nil
}

// CreateBook stores a new book and assigns its ID.
func (m *MockStore) CreateBook(ctx context.Context, book *Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	if _, ok := m.authors[book.AuthorID]; !ok {
		return ErrAuthorNotFound
	}
	book.Hash = BookHash(book.Name, book.PublicationDate)
	for _, b := range m.books {
		if b.Hash == book.Hash {
			return ErrDuplicateBook
		}
	}

	book.ID = m.newID()
	b := *book
	m.books[b.ID] = &b
	return nil
}

// GetBook retrieves a book by ID.
func (m *MockStore) GetBook(ctx context.Context, id int64) (*Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	b, ok := m.books[id]
	if !ok {
		return nil, ErrBookNotFound
	}
	result := *b
	return &result, nil
}

// GetBookSummary retrieves the reader-facing view of a book.
func (m *MockStore) GetBookSummary(ctx context.Context, id int64) (*BookSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	b, ok := m.books[id]
	if !ok {
		return nil, ErrBookNotFound
	}
	a, ok := m.authors[b.AuthorID]
	if !ok {
		return nil, ErrBookNotFound
	}
	return &BookSummary{
		ID:              b.ID,
		Name:            b.Name,
		Description:     b.Description,
		Genre:           b.Genre,
		PublicationDate: b.PublicationDate,
		AuthorName:      a.Name,
	}, nil
}

// ListBooks returns all books ordered by ID.
func (m *MockStore) ListBooks(ctx context.Context) ([]*Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	books := make([]*Book, 0, len(m.books))
	for _, b := range m.books {
		c := *b
		books = append(books, &c)
	}
	sort.Slice(books, func(i, j int) bool { return books[i].ID < books[j].ID })
	return books, nil
}

// UpdateBook replaces the book's fields.
func (m *MockStore) UpdateBook(ctx context.Context, book *Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	if _, ok := m.books[book.ID]; !ok {
		return ErrBookNotFound
	}
	if _, ok := m.authors[book.AuthorID]; !ok {
		return ErrAuthorNotFound
	}
	book.Hash = BookHash(book.Name, book.PublicationDate)
	for _, b := range m.books {
		if b.ID != book.ID && b.Hash == book.Hash {
			return ErrDuplicateBook
		}
	}
	b := *book
	m.books[b.ID] = &b
	return nil
}

// DeleteBook removes a book with no active rents.
func (m *MockStore) DeleteBook(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	if _, ok := m.books[id]; !ok {
		return ErrBookNotFound
	}
	for _, r := range m.rents {
		if r.BookID == id {
			return ErrBookInUse
		}
	}
	delete(m.books, id)
	return nil
}

// RentBook issues one copy of a book.
func (m *MockStore) RentBook(ctx context.Context, rent *Rent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	if _, ok := m.users[rent.ReaderID]; !ok {
		return ErrUserNotFound
	}
	active := 0
	for _, r := range m.rents {
		if r.ReaderID == rent.ReaderID {
			active++
		}
	}
	if err := m.limiter.AllowRent(ctx, rent.ReaderID, active); err != nil {
		return err
	}

	b, ok := m.books[rent.BookID]
	if !ok {
		return ErrBookNotFound
	}
	if b.Quantity <= 0 {
		return ErrOutOfStock
	}
	b.Quantity--

	rent.ID = m.newID()
	r := *rent
	m.rents[r.ID] = &r
	return nil
}

// ReturnBook closes a rent and puts the copy back.
func (m *MockStore) ReturnBook(ctx context.Context, rentID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	r, ok := m.rents[rentID]
	if !ok {
		return ErrRentNotFound
	}
	if b, ok := m.books[r.BookID]; ok {
		b.Quantity++
	}
	delete(m.rents, rentID)
	return nil
}

// GetRent retrieves a rent by ID.
func (m *MockStore) GetRent(ctx context.Context, id int64) (*Rent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	r, ok := m.rents[id]
	if !ok {
		return nil, ErrRentNotFound
	}
	result := *r
	return &result, nil
}

// CountActiveRents returns how many books the reader currently holds.
func (m *MockStore) CountActiveRents(ctx context.Context, readerID int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return 0, m.Err
	}

	n := 0
	for _, r := range m.rents {
		if r.ReaderID == readerID {
			n++
		}
	}
	return n, nil
}

// Ping reports Err, if set.
func (m *MockStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Err
}

// Close is a no-op for MockStore.
func (m *MockStore) Close() error {
	return nil
}
