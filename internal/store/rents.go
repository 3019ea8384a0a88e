// ABOUTME: Rental persistence for SQLStore
// ABOUTME: Renting and returning adjust the book's shelf quantity in the same transaction

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// RentBook issues one copy of rent.BookID to rent.ReaderID.
func (s *SQLStore) RentBook(ctx context.Context, rent *Rent) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var readerExists int
		err := s.queryRow(ctx, tx, `SELECT 1 FROM user_table WHERE id = ?`, rent.ReaderID).Scan(&readerExists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("checking reader: %w", err)
		}

		var active int
		if err := s.queryRow(ctx, tx, `SELECT COUNT(*) FROM rent_table WHERE reader_id = ?`, rent.ReaderID).Scan(&active); err != nil {
			return fmt.Errorf("counting rents: %w", err)
		}
		if err := s.limiter.AllowRent(ctx, rent.ReaderID, active); err != nil {
			return err
		}

		// Conditional decrement keeps quantity non-negative under concurrent rents.
		res, err := s.exec(ctx, tx, `UPDATE book_table SET quantity = quantity - 1 WHERE id = ? AND quantity > 0`, rent.BookID)
		if err != nil {
			return fmt.Errorf("taking copy: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("checking rows affected: %w", err)
		} else if n == 0 {
			var qty int
			err := s.queryRow(ctx, tx, `SELECT quantity FROM book_table WHERE id = ?`, rent.BookID).Scan(&qty)
			if errors.Is(err, sql.ErrNoRows) {
				return ErrBookNotFound
			}
			if err != nil {
				return fmt.Errorf("checking book: %w", err)
			}
			return ErrOutOfStock
		}

		id, err := s.insert(ctx, tx, `
			INSERT INTO rent_table (reader_id, book_id, issue_date, return_date)
			VALUES (?, ?, ?, ?)`, "rent_id",
			rent.ReaderID, rent.BookID, formatDate(rent.IssueDate), formatDate(rent.ReturnDate),
		)
		if err != nil {
			return fmt.Errorf("inserting rent: %w", err)
		}
		rent.ID = id

		s.logger.Info("book rented", "rent_id", id, "reader_id", rent.ReaderID, "book_id", rent.BookID)
		return nil
	})
}

// ReturnBook closes a rent and puts the copy back on the shelf.
func (s *SQLStore) ReturnBook(ctx context.Context, rentID int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var bookID int64
		err := s.queryRow(ctx, tx, `SELECT book_id FROM rent_table WHERE rent_id = ?`, rentID).Scan(&bookID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRentNotFound
		}
		if err != nil {
			return fmt.Errorf("querying rent: %w", err)
		}

		if _, err := s.exec(ctx, tx, `DELETE FROM rent_table WHERE rent_id = ?`, rentID); err != nil {
			return fmt.Errorf("deleting rent: %w", err)
		}
		if _, err := s.exec(ctx, tx, `UPDATE book_table SET quantity = quantity + 1 WHERE id = ?`, bookID); err != nil {
			return fmt.Errorf("returning copy: %w", err)
		}

		s.logger.Info("book returned", "rent_id", rentID, "book_id", bookID)
		return nil
	})
}

// GetRent retrieves a rent by ID.
func (s *SQLStore) GetRent(ctx context.Context, id int64) (*Rent, error) {
	var r Rent
	var issued, due string
	err := s.queryRow(ctx, s.db, `
		SELECT rent_id, reader_id, book_id, issue_date, return_date
		FROM rent_table WHERE rent_id = ?`, id,
	).Scan(&r.ID, &r.ReaderID, &r.BookID, &issued, &due)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying rent: %w", err)
	}
	if r.IssueDate, err = parseDate(issued); err != nil {
		return nil, err
	}
	if r.ReturnDate, err = parseDate(due); err != nil {
		return nil, err
	}
	return &r, nil
}

// CountActiveRents returns how many books the reader currently holds.
func (s *SQLStore) CountActiveRents(ctx context.Context, readerID int64) (int, error) {
	var n int
	if err := s.queryRow(ctx, s.db, `SELECT COUNT(*) FROM rent_table WHERE reader_id = ?`, readerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting rents: %w", err)
	}
	return n, nil
}
