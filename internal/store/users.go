// ABOUTME: User account persistence for SQLStore
// ABOUTME: Lookups by id and username back the session resolver

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const userColumns = `id, first_name, second_name, birth_date, username, password, is_admin`

// CreateUser inserts user and sets user.ID.
func (s *SQLStore) CreateUser(ctx context.Context, user *User) error {
	id, err := s.insert(ctx, s.db, `
		INSERT INTO user_table (first_name, second_name, birth_date, username, password, is_admin)
		VALUES (?, ?, ?, ?, ?, ?)`, "id",
		user.FirstName,
		user.SecondName,
		formatDate(user.BirthDate),
		user.Username,
		user.PasswordHash,
		user.IsAdmin,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUsernameExists
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	user.ID = id
	s.logger.Info("created user", "id", id, "username", user.Username, "is_admin", user.IsAdmin)
	return nil
}

// GetUserByID retrieves a user by ID.
func (s *SQLStore) GetUserByID(ctx context.Context, id int64) (*User, error) {
	row := s.queryRow(ctx, s.db, `SELECT `+userColumns+` FROM user_table WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByUsername retrieves a user by username.
func (s *SQLStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	row := s.queryRow(ctx, s.db, `SELECT `+userColumns+` FROM user_table WHERE username = ?`, username)
	return scanUser(row)
}

// UpdateUserProfile updates the personal fields of a user. Username, password
// and role are left untouched.
func (s *SQLStore) UpdateUserProfile(ctx context.Context, user *User) error {
	res, err := s.exec(ctx, s.db, `
		UPDATE user_table SET first_name = ?, second_name = ?, birth_date = ?
		WHERE id = ?`,
		user.FirstName, user.SecondName, formatDate(user.BirthDate), user.ID,
	)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	return rowsAffected(res, ErrUserNotFound)
}

// SetUserAdmin grants or revokes the admin role.
func (s *SQLStore) SetUserAdmin(ctx context.Context, id int64, isAdmin bool) error {
	res, err := s.exec(ctx, s.db, `UPDATE user_table SET is_admin = ? WHERE id = ?`, isAdmin, id)
	if err != nil {
		return fmt.Errorf("updating user role: %w", err)
	}
	if err := rowsAffected(res, ErrUserNotFound); err != nil {
		return err
	}
	s.logger.Info("changed user role", "id", id, "is_admin", isAdmin)
	return nil
}

// ListReaders returns all non-admin users ordered by ID.
func (s *SQLStore) ListReaders(ctx context.Context) ([]*User, error) {
	rows, err := s.query(ctx, s.db, `SELECT `+userColumns+` FROM user_table WHERE is_admin = ? ORDER BY id`, false)
	if err != nil {
		return nil, fmt.Errorf("querying readers: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating readers: %w", err)
	}
	return users, nil
}

// GetReader retrieves a non-admin user by ID. Admins are reported as not found.
func (s *SQLStore) GetReader(ctx context.Context, id int64) (*User, error) {
	row := s.queryRow(ctx, s.db, `SELECT `+userColumns+` FROM user_table WHERE id = ? AND is_admin = ?`, id, false)
	return scanUser(row)
}

// CountAdmins returns the number of admin users.
func (s *SQLStore) CountAdmins(ctx context.Context) (int, error) {
	var n int
	if err := s.queryRow(ctx, s.db, `SELECT COUNT(*) FROM user_table WHERE is_admin = ?`, true).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting admins: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*User, error) {
	var u User
	var birth string
	err := row.Scan(&u.ID, &u.FirstName, &u.SecondName, &birth, &u.Username, &u.PasswordHash, &u.IsAdmin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	if u.BirthDate, err = parseDate(birth); err != nil {
		return nil, err
	}
	return &u, nil
}
