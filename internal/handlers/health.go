// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"coinpress/internal/respond"
)

type healthResponse struct {
	Status string `json:"status"`
}

// Health reports that the process is up.
func Health(w http.ResponseWriter, _ *http.Request) {
	respond.OK(w, healthResponse{Status: "ok"})
}
