// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"coinpress/internal/imaging"
	"coinpress/internal/respond"
)

// MaxCoverUpload is the largest accepted cover upload.
const MaxCoverUpload = 10 << 20

// Uploads handles cover image uploads.
type Uploads struct {
	covers CoverStore // nil when storage is not configured
}

// NewUploads creates a new Uploads handler group. covers may be nil.
func NewUploads(covers CoverStore) *Uploads {
	return &Uploads{covers: covers}
}

type uploadResponse struct {
	URL string `json:"url"`
}

// Cover accepts a multipart "file" field, normalises the image and stores
// it. Responds 503 when object storage is not configured.
func (h *Uploads) Cover(w http.ResponseWriter, r *http.Request) {
	if h.covers == nil {
		respond.ServiceUnavailable(w, "Object storage is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxCoverUpload+(1<<20))
	if err := r.ParseMultipartForm(MaxCoverUpload); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			respond.Error(w, http.StatusRequestEntityTooLarge, "payload_too_large", "File is larger than 10 MB", nil)
			return
		}
		respond.BadRequest(w, "Expected a multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respond.ValidationError(w, map[string]string{"file": "is required"})
		return
	}
	defer file.Close()

	if header.Size > MaxCoverUpload {
		respond.Error(w, http.StatusRequestEntityTooLarge, "payload_too_large", "File is larger than 10 MB", nil)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		respond.BadRequest(w, "Could not read the uploaded file")
		return
	}
	if !imaging.AllowedTypes[imaging.DetectType(data)] {
		respond.ValidationError(w, map[string]string{"file": "must be a JPEG, PNG, WebP or GIF image"})
		return
	}

	url, err := h.covers.SaveCover(r.Context(), data)
	if errors.Is(err, imaging.ErrUnsupportedFormat) || errors.Is(err, imaging.ErrInvalidImage) {
		respond.ValidationError(w, map[string]string{"file": "is not a readable image"})
		return
	}
	if err != nil {
		respond.InternalError(w, r, err)
		return
	}
	slog.Info("cover uploaded", "url", url, "size", len(data))
	respond.Created(w, uploadResponse{URL: url})
}
