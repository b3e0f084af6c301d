// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"coinpress/internal/models"
)

// UserStore handles all user-related database operations.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, username, email, password_hash, display_name, is_admin,
	totp_secret, totp_enabled, created_at, updated_at`

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.DisplayName, &u.IsAdmin,
		&u.TOTPSecret, &u.TOTPEnabled, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserStore) findOne(ctx context.Context, what, where string, arg any) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by %s: %w", what, err)
	}
	return u, nil
}

// FindByEmail retrieves a user by email address (case-insensitive).
// Returns nil if not found.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, "email", "LOWER(email) = LOWER($1)", email)
}

// FindByID retrieves a user by their UUID. Returns nil if not found.
func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.findOne(ctx, "id", "id = $1", id)
}

// FindAnyAdmin returns the oldest admin account, or nil when there is none.
func (s *UserStore) FindAnyAdmin(ctx context.Context) (*models.User, error) {
	return s.findOne(ctx, "admin", "is_admin = $1 ORDER BY created_at ASC LIMIT 1", true)
}

// List returns a page of users ordered by creation date, plus the total count.
func (s *UserStore) List(ctx context.Context, page models.Page) ([]models.User, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users ORDER BY created_at ASC
		LIMIT $1 OFFSET $2
	`, page.Size, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

// Create inserts a new user with a bcrypt-hashed password. Returns
// ErrDuplicate when the username or email is already registered.
func (s *UserStore) Create(ctx context.Context, username, email, password, displayName string, isAdmin bool) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := scanUser(s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash, display_name, is_admin)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		username, email, string(hash), displayName, isAdmin,
	))
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// ProfileUpdate holds optional profile changes. Nil fields are left alone.
type ProfileUpdate struct {
	DisplayName *string
	Email       *string
	Password    *string
}

// UpdateProfile applies the non-nil fields of p and returns the fresh row.
func (s *UserStore) UpdateProfile(ctx context.Context, id uuid.UUID, p ProfileUpdate) (*models.User, error) {
	q := psql.Update("users").Set("updated_at", sq.Expr("NOW()")).Where(sq.Eq{"id": id})
	if p.DisplayName != nil {
		q = q.Set("display_name", *p.DisplayName)
	}
	if p.Email != nil {
		q = q.Set("email", *p.Email)
	}
	if p.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*p.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		q = q.Set("password_hash", string(hash))
	}

	query, args, err := q.Suffix("RETURNING " + userColumns).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build profile update: %w", err)
	}

	u, err := scanUser(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}

// SetAdmin grants or revokes the admin flag. Returns false if no such user.
func (s *UserStore) SetAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET is_admin = $1, updated_at = NOW() WHERE id = $2
	`, isAdmin, id)
	if err != nil {
		return false, fmt.Errorf("set admin: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// SetTOTPSecret saves the TOTP secret for a user (during 2FA setup).
func (s *UserStore) SetTOTPSecret(ctx context.Context, id uuid.UUID, secret string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET totp_secret = $1, updated_at = NOW() WHERE id = $2
	`, secret, id)
	if err != nil {
		return fmt.Errorf("set totp secret: %w", err)
	}
	return nil
}

// EnableTOTP marks 2FA as active for a user (after successful code verification).
func (s *UserStore) EnableTOTP(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET totp_enabled = TRUE, updated_at = NOW() WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("enable totp: %w", err)
	}
	return nil
}

// ResetTOTP clears the TOTP secret and disables 2FA for a user.
func (s *UserStore) ResetTOTP(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET totp_secret = NULL, totp_enabled = FALSE, updated_at = NOW() WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("reset totp: %w", err)
	}
	return nil
}

// Delete removes a user by ID. Returns false if no such user.
func (s *UserStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if pgCode(err) == pgForeignKeyViolation {
		return false, ErrUserHasPosts
	}
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// CheckPassword verifies a plaintext password against the user's stored hash.
func (s *UserStore) CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}
