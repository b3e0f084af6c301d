// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// keyPrefix namespaces every cached response in Valkey.
	keyPrefix = "resp:"

	// DefaultTTL is how long a cached response lives without invalidation.
	DefaultTTL = 10 * time.Minute
)

// Cache keys for the responses that are cached.
const (
	SitemapKey    = "sitemap.xml"
	CategoriesKey = "categories"
)

// PostKey is the cache key for a post's detail response.
func PostKey(slug string) string {
	return "post:" + slug
}

// Responses caches whole HTTP responses in Valkey. A nil *Responses is a
// valid no-op cache.
type Responses struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResponses creates a response cache backed by client.
func NewResponses(client *redis.Client, ttl time.Duration) *Responses {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Responses{client: client, ttl: ttl}
}

// Get returns the cached content type and body for key.
func (c *Responses) Get(ctx context.Context, key string) (contentType string, body []byte, ok bool) {
	if c == nil {
		return "", nil, false
	}
	val, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return "", nil, false
	}
	if err != nil {
		slog.Warn("response cache get error", "key", key, "error", err)
		return "", nil, false
	}
	ct, rest, found := bytes.Cut(val, []byte("\n"))
	if !found {
		return "", nil, false
	}
	return string(ct), rest, true
}

// Set stores a response body with its content type.
func (c *Responses) Set(ctx context.Context, key, contentType string, body []byte) {
	if c == nil {
		return
	}
	val := make([]byte, 0, len(contentType)+1+len(body))
	val = append(val, contentType...)
	val = append(val, '\n')
	val = append(val, body...)
	if err := c.client.Set(ctx, keyPrefix+key, val, c.ttl).Err(); err != nil {
		slog.Warn("response cache set error", "key", key, "error", err)
	}
}

// Invalidate removes the given keys.
func (c *Responses) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = keyPrefix + k
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		slog.Warn("response cache invalidate error", "keys", keys, "error", err)
		return
	}
	slog.Debug("response cache invalidated", "keys", keys)
}

// InvalidateAll removes every cached response by scanning for the prefix.
func (c *Responses) InvalidateAll(ctx context.Context) {
	if c == nil {
		return
	}
	var cursor uint64
	var deleted int
	for {
		keys, next, err := c.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("response cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("response cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("response cache cleared", "deleted", deleted)
	}
}

// Middleware serves GET requests from the cache under the key returned by
// keyFn, and stores successful responses. An empty key bypasses the cache.
func (c *Responses) Middleware(keyFn func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if c == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ""
			if r.Method == http.MethodGet {
				key = keyFn(r)
			}
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			if ct, body, ok := c.Get(r.Context(), key); ok {
				w.Header().Set("Content-Type", ct)
				w.Header().Set("X-Cache", "HIT")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write(body)
				return
			}

			rec := &recorder{ResponseWriter: w, status: http.StatusOK}
			w.Header().Set("X-Cache", "MISS")
			next.ServeHTTP(rec, r)

			ct := rec.Header().Get("Content-Type")
			if rec.status == http.StatusOK && ct != "" && !strings.Contains(rec.Header().Get("Cache-Control"), "no-store") {
				c.Set(r.Context(), key, ct, rec.buf.Bytes())
			}
		})
	}
}

// recorder tees the response body so it can be cached.
type recorder struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (r *recorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}
