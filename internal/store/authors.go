// ABOUTME: Author persistence for SQLStore
// ABOUTME: Authors are unique by the hash of name and birth date

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const authorColumns = `id, name, bio, birth_date, author_hash`

// CreateAuthor inserts author, computing its hash, and sets author.ID.
func (s *SQLStore) CreateAuthor(ctx context.Context, author *Author) error {
	author.Hash = AuthorHash(author.Name, author.BirthDate)

	id, err := s.insert(ctx, s.db, `
		INSERT INTO author_table (name, bio, birth_date, author_hash)
		VALUES (?, ?, ?, ?)`, "id",
		author.Name, author.Bio, formatDate(author.BirthDate), author.Hash,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicateAuthor
		}
		return fmt.Errorf("inserting author: %w", err)
	}

	author.ID = id
	s.logger.Debug("created author", "id", id, "name", author.Name)
	return nil
}

// GetAuthor retrieves an author by ID.
func (s *SQLStore) GetAuthor(ctx context.Context, id int64) (*Author, error) {
	row := s.queryRow(ctx, s.db, `SELECT `+authorColumns+` FROM author_table WHERE id = ?`, id)
	return scanAuthor(row)
}

// ListAuthors returns all authors ordered by ID.
func (s *SQLStore) ListAuthors(ctx context.Context) ([]*Author, error) {
	rows, err := s.query(ctx, s.db, `SELECT `+authorColumns+` FROM author_table ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying authors: %w", err)
	}
	defer rows.Close()

	var authors []*Author
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, err
		}
		authors = append(authors, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating authors: %w", err)
	}
	return authors, nil
}

// UpdateAuthor replaces the author's fields and recomputes its hash.
func (s *SQLStore) UpdateAuthor(ctx context.Context, author *Author) error {
	author.Hash = AuthorHash(author.Name, author.BirthDate)

	res, err := s.exec(ctx, s.db, `
		UPDATE author_table SET name = ?, bio = ?, birth_date = ?, author_hash = ?
		WHERE id = ?`,
		author.Name, author.Bio, formatDate(author.BirthDate), author.Hash, author.ID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicateAuthor
		}
		return fmt.Errorf("updating author: %w", err)
	}
	return rowsAffected(res, ErrAuthorNotFound)
}

// DeleteAuthor removes an author that has no books.
func (s *SQLStore) DeleteAuthor(ctx context.Context, id int64) error {
	res, err := s.exec(ctx, s.db, `DELETE FROM author_table WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyError(err) {
			return ErrAuthorInUse
		}
		return fmt.Errorf("deleting author: %w", err)
	}
	return rowsAffected(res, ErrAuthorNotFound)
}

func scanAuthor(row scanner) (*Author, error) {
	var a Author
	var birth string
	err := row.Scan(&a.ID, &a.Name, &a.Bio, &birth, &a.Hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAuthorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning author: %w", err)
	}
	if a.BirthDate, err = parseDate(birth); err != nil {
		return nil, err
	}
	return &a, nil
}
