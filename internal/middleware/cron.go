// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"coinpress/internal/respond"
)

// CronSecretHeader carries the shared secret on cron requests.
const CronSecretHeader = "X-Cron-Secret"

// CronSecret gates a route on the shared cron secret. An empty configured
// secret rejects every request.
func CronSecret(secret string) func(http.Handler) http.Handler {
	want := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get(CronSecretHeader))
			if len(want) == 0 || subtle.ConstantTimeCompare(got, want) != 1 {
				slog.Warn("cron request rejected", "remote", r.RemoteAddr, "path", r.URL.Path)
				respond.Forbidden(w, "Invalid cron secret")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
