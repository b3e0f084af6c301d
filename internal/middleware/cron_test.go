// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCronSecret(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		header     string
		sendHeader bool
		want       int
	}{
		{"correct secret", "s3cret", "s3cret", true, http.StatusOK},
		{"missing header", "s3cret", "", false, http.StatusForbidden},
		{"wrong secret", "s3cret", "guess", true, http.StatusForbidden},
		{"prefix of secret", "s3cret", "s3c", true, http.StatusForbidden},
		{"unset server secret fails closed", "", "", true, http.StatusForbidden},
		{"unset server secret ignores any header", "", "anything", true, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called bool
			handler := CronSecret(tt.configured)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/cron/daily-generate", nil)
			if tt.sendHeader {
				req.Header.Set(CronSecretHeader, tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Errorf("status: got %d, want %d", rr.Code, tt.want)
			}
			if called != (tt.want == http.StatusOK) {
				t.Errorf("next handler called = %v, want %v", called, tt.want == http.StatusOK)
			}
		})
	}
}
