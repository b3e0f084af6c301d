// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"coinpress/internal/models"
	"coinpress/internal/respond"
	"coinpress/internal/session"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// UserKey is the context key for the authenticated user record.
	UserKey contextKey = "user"
	// ClaimsKey is the context key for the verified token claims.
	ClaimsKey contextKey = "claims"
)

// UserFinder loads users by id.
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// LoadPrincipal verifies the request token, if any, and stores the current
// user record and claims in the request context. The user is re-read from
// the database so that demotions and deletions take effect immediately.
// This middleware does NOT enforce authentication: an absent, invalid or
// revoked token just leaves the request anonymous.
func LoadPrincipal(sessions *session.Manager, users UserFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := session.TokenFromRequest(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := sessions.Verify(r.Context(), raw)
			if err != nil {
				if !errors.Is(err, session.ErrInvalidToken) && !errors.Is(err, session.ErrRevoked) {
					slog.Warn("token verification failed", "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			id, _ := claims.UserID()
			user, err := users.FindByID(r.Context(), id)
			if err != nil {
				respond.InternalError(w, r, err)
				return
			}
			if user == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			ctx = context.WithValue(ctx, ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth returns 401 for anonymous requests.
// Must be applied after LoadPrincipal in the middleware chain.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromCtx(r.Context()) == nil {
			respond.Unauthorized(w, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin returns 401 for anonymous requests and 403 if the
// authenticated user is not an admin.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFromCtx(r.Context())
		if user == nil {
			respond.Unauthorized(w, "Authentication required")
			return
		}
		if !user.IsAdmin {
			respond.Forbidden(w, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserFromCtx extracts the authenticated user from the request context.
// Returns nil if the request is anonymous.
func UserFromCtx(ctx context.Context) *models.User {
	u, _ := ctx.Value(UserKey).(*models.User)
	return u
}

// ClaimsFromCtx extracts the verified token claims from the request context.
func ClaimsFromCtx(ctx context.Context) *session.Claims {
	c, _ := ctx.Value(ClaimsKey).(*session.Claims)
	return c
}

// WithUser returns a copy of ctx carrying user. Tests and internal callers
// use it to act as a principal without a token.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}
