// Package session provides stateless JWT sessions for the API. Tokens are
// signed with HS256 and travel in an HttpOnly cookie or a Bearer header.
// Logging out records the token id in Valkey until the token would have
// expired anyway, so a stolen cookie stops working immediately.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// CookieName is the name of the token cookie sent to the browser.
	CookieName = "token"

	// keyPrefix namespaces revoked token ids in Valkey.
	keyPrefix = "revoked:"

	// idLength is the byte length of the random token id (16 bytes = 32 hex chars).
	idLength = 16
)

var (
	// ErrInvalidToken covers malformed, badly signed and expired tokens.
	ErrInvalidToken = errors.New("session: invalid token")
	// ErrRevoked means the token was valid but has been logged out.
	ErrRevoked = errors.New("session: token revoked")
)

// Claims is the JWT payload. Admin is a hint only; authorization re-reads
// the user record on every request.
type Claims struct {
	Admin bool `json:"adm"`
	jwt.RegisteredClaims
}

// UserID returns the subject as a UUID.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// Denylist records revoked token ids.
type Denylist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Manager issues, verifies and revokes tokens.
type Manager struct {
	secret   []byte
	ttl      time.Duration
	secure   bool
	denylist Denylist
	now      func() time.Time
}

// NewManager creates a token manager. secure controls the cookie Secure flag
// and should be true in production behind TLS.
func NewManager(secret string, ttl time.Duration, secure bool, denylist Denylist) *Manager {
	return &Manager{
		secret:   []byte(secret),
		ttl:      ttl,
		secure:   secure,
		denylist: denylist,
		now:      time.Now,
	}
}

// Issue signs a new token for the user.
func (m *Manager) Issue(userID uuid.UUID, isAdmin bool) (string, *Claims, error) {
	jti, err := generateID()
	if err != nil {
		return "", nil, fmt.Errorf("session issue: %w", err)
	}

	now := m.now()
	claims := &Claims{
		Admin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("session sign: %w", err)
	}
	return signed, claims, nil
}

// Verify parses and validates a token and checks it against the denylist.
func (m *Manager) Verify(ctx context.Context, raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := claims.UserID(); err != nil {
		return nil, ErrInvalidToken
	}

	if m.denylist != nil && claims.ID != "" {
		revoked, err := m.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("session denylist: %w", err)
		}
		if revoked {
			return nil, ErrRevoked
		}
	}
	return claims, nil
}

// Revoke denylists the token until its natural expiry.
func (m *Manager) Revoke(ctx context.Context, claims *Claims) error {
	if m.denylist == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Time.Sub(m.now())
	if ttl <= 0 {
		return nil
	}
	return m.denylist.Revoke(ctx, claims.ID, ttl)
}

// SetCookie writes the token cookie on the response.
func (m *Manager) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(m.ttl.Seconds()),
	})
}

// ClearCookie expires the token cookie immediately.
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// TokenFromRequest extracts a raw token from the Authorization header or
// the token cookie, preferring the header. Returns "" when absent.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if after, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(after)
		}
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// ValkeyDenylist stores revoked token ids in Valkey with automatic TTL expiry.
type ValkeyDenylist struct {
	client *redis.Client
}

// NewValkeyDenylist creates a denylist backed by the given Valkey client.
func NewValkeyDenylist(client *redis.Client) *ValkeyDenylist {
	return &ValkeyDenylist{client: client}
}

// Revoke marks jti revoked for ttl.
func (d *ValkeyDenylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if err := d.client.Set(ctx, keyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti has been revoked.
func (d *ValkeyDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := d.client.Exists(ctx, keyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("check token: %w", err)
	}
	return n > 0, nil
}

// generateID creates a cryptographically random token identifier.
func generateID() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
