// ABOUTME: Book persistence for SQLStore
// ABOUTME: Books are unique by the hash of name and publication date

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const bookColumns = `id, name, description, publication_date, author_id, genre, quantity, book_hash`

// CreateBook inserts book, computing its hash, and sets book.ID.
// Returns ErrAuthorNotFound if the author does not exist.
func (s *SQLStore) CreateBook(ctx context.Context, book *Book) error {
	book.Hash = BookHash(book.Name, book.PublicationDate)

	id, err := s.insert(ctx, s.db, `
		INSERT INTO book_table (name, description, publication_date, author_id, genre, quantity, book_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, "id",
		book.Name, book.Description, formatDate(book.PublicationDate),
		book.AuthorID, book.Genre, book.Quantity, book.Hash,
	)
	if err != nil {
		switch {
		case isUniqueConstraintError(err):
			return ErrDuplicateBook
		case isForeignKeyError(err):
			return ErrAuthorNotFound
		}
		return fmt.Errorf("inserting book: %w", err)
	}

	book.ID = id
	s.logger.Debug("created book", "id", id, "name", book.Name, "author_id", book.AuthorID)
	return nil
}

// GetBook retrieves a book by ID.
func (s *SQLStore) GetBook(ctx context.Context, id int64) (*Book, error) {
	row := s.queryRow(ctx, s.db, `SELECT `+bookColumns+` FROM book_table WHERE id = ?`, id)
	return scanBook(row)
}

// GetBookSummary retrieves the reader-facing view of a book with its author's name.
func (s *SQLStore) GetBookSummary(ctx context.Context, id int64) (*BookSummary, error) {
	var b BookSummary
	var published string
	err := s.queryRow(ctx, s.db, `
		SELECT b.id, b.name, b.description, b.genre, b.publication_date, a.name
		FROM book_table b
		JOIN author_table a ON a.id = b.author_id
		WHERE b.id = ?`, id,
	).Scan(&b.ID, &b.Name, &b.Description, &b.Genre, &published, &b.AuthorName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying book summary: %w", err)
	}
	if b.PublicationDate, err = parseDate(published); err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBooks returns all books ordered by ID.
func (s *SQLStore) ListBooks(ctx context.Context) ([]*Book, error) {
	rows, err := s.query(ctx, s.db, `SELECT `+bookColumns+` FROM book_table ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying books: %w", err)
	}
	defer rows.Close()

	var books []*Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating books: %w", err)
	}
	return books, nil
}

// UpdateBook replaces the book's fields and recomputes its hash.
func (s *SQLStore) UpdateBook(ctx context.Context, book *Book) error {
	book.Hash = BookHash(book.Name, book.PublicationDate)

	res, err := s.exec(ctx, s.db, `
		UPDATE book_table
		SET name = ?, description = ?, publication_date = ?, author_id = ?, genre = ?, quantity = ?, book_hash = ?
		WHERE id = ?`,
		book.Name, book.Description, formatDate(book.PublicationDate),
		book.AuthorID, book.Genre, book.Quantity, book.Hash, book.ID,
	)
	if err != nil {
		switch {
		case isUniqueConstraintError(err):
			return ErrDuplicateBook
		case isForeignKeyError(err):
			return ErrAuthorNotFound
		}
		return fmt.Errorf("updating book: %w", err)
	}
	return rowsAffected(res, ErrBookNotFound)
}

// DeleteBook removes a book with no active rents.
func (s *SQLStore) DeleteBook(ctx context.Context, id int64) error {
	res, err := s.exec(ctx, s.db, `DELETE FROM book_table WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyError(err) {
			return ErrBookInUse
		}
		return fmt.Errorf("deleting book: %w", err)
	}
	return rowsAffected(res, ErrBookNotFound)
}

func scanBook(row scanner) (*Book, error) {
	var b Book
	var published string
	err := row.Scan(&b.ID, &b.Name, &b.Description, &published, &b.AuthorID, &b.Genre, &b.Quantity, &b.Hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning book: %w", err)
	}
	if b.PublicationDate, err = parseDate(published); err != nil {
		return nil, err
	}
	return &b, nil
}
