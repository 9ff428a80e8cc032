package database

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/bookdesk/bookdesk/internal/models"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUsernameExists = errors.New("username already exists")
)

// CreateUser creates a new user in the database
func (db *DB) CreateUser(ctx context.Context, username, passwordHash, name, academyName, contact string) (*models.User, error) {
	user := &models.User{}

	err := db.Pool.QueryRow(ctx, `
		INSERT INTO users (username, password_hash, name, academy_name, contact, role, created_at)
		VALUES ($1, $2, $3, $4, $5, 'user', NOW())
		RETURNING id, username, password_hash, name, academy_name, contact, role, created_at, last_login_at
	`, username, passwordHash, name, academyName, contact).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Name,
		&user.AcademyName,
		&user.Contact,
		&user.Role,
		&user.CreatedAt,
		&user.LastLoginAt,
	)

	if err != nil {
		if strings.Contains(err.Error(), "users_username_key") {
			return nil, ErrUsernameExists
		}
		return nil, err
	}

	return user, nil
}

// GetUserByID retrieves a user by their ID
func (db *DB) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	user := &models.User{}

	err := db.Pool.QueryRow(ctx, `
		SELECT id, username, password_hash, name, academy_name, contact, role, created_at, last_login_at
		FROM users
		WHERE id = $1
	`, id).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Name,
		&user.AcademyName,
		&user.Contact,
		&user.Role,
		&user.CreatedAt,
		&user.LastLoginAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

// GetUserByUsername retrieves a user by their login username
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}

	err := db.Pool.QueryRow(ctx, `
		SELECT id, username, password_hash, name, academy_name, contact, role, created_at, last_login_at
		FROM users
		WHERE username = $1
	`, username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Name,
		&user.AcademyName,
		&user.Contact,
		&user.Role,
		&user.CreatedAt,
		&user.LastLoginAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

// FindUsernameByNameAndContact looks up the username of the account
// matching the holder's name and contact number.
func (db *DB) FindUsernameByNameAndContact(ctx context.Context, name, contact string) (string, error) {
	var username string

	err := db.Pool.QueryRow(ctx, `
		SELECT username FROM users
		WHERE name = $1 AND contact = $2
	`, name, contact).Scan(&username)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	return username, nil
}

// UpdateUserLastLogin sets the last login timestamp to now
func (db *DB) UpdateUserLastLogin(ctx context.Context, id int) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE users SET last_login_at = NOW() WHERE id = $1
	`, id)
	return err
}

// ListUsers returns all users, newest first
func (db *DB) ListUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, username, password_hash, name, academy_name, contact, role, created_at, last_login_at
		FROM users
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.PasswordHash,
			&user.Name,
			&user.AcademyName,
			&user.Contact,
			&user.Role,
			&user.CreatedAt,
			&user.LastLoginAt,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}
