// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides database access methods for all CoinPress
// entities. Each store struct wraps a *sql.DB and exposes typed query
// methods. Fixed statements are written as raw SQL; list queries with
// optional filters are assembled with squirrel.
package store

import (
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors returned by stores for domain rule violations.
var (
	// ErrDuplicate means a unique constraint (username, email, name) was hit.
	ErrDuplicate = errors.New("store: duplicate record")
	// ErrSlugTaken means another post or category already owns the slug.
	ErrSlugTaken = errors.New("store: slug already taken")
	// ErrCategoryInUse means posts still reference the category.
	ErrCategoryInUse = errors.New("store: category is referenced by posts")
	// ErrUserHasPosts means the user still authors posts and cannot be removed.
	ErrUserHasPosts = errors.New("store: user still authors posts")
)

// Postgres error codes the stores translate into sentinels.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// psql is the squirrel builder configured for Postgres placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// pgCode returns the SQLSTATE of a Postgres error, or "".
func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// constraintName returns the violated constraint name of a Postgres error.
func constraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// isUniqueViolation reports whether err is a unique constraint violation.
func isUniqueViolation(err error) bool {
	return pgCode(err) == pgUniqueViolation
}
