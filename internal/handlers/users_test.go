// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinpress/internal/models"
)

func TestUsersList(t *testing.T) {
	admin := adminUser()
	h := NewUsers(newMemUsers(admin, readerUser()))

	rec := call(t, h.List, http.MethodGet, "/u", "/u?page=1&limit=1", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"pagination", "users"}, bodyKeys(t, rec))
	resp := decodeBody[userList](t, rec)
	assert.Len(t, resp.Users, 1)
	assert.Equal(t, models.Pagination{Page: 1, Limit: 1, Total: 2, PageCount: 2}, resp.Pagination)
}

func TestUsersSetAdmin(t *testing.T) {
	admin, reader := adminUser(), readerUser()
	users := newMemUsers(admin, reader)
	h := NewUsers(users)
	route := "/api/users/{id}/admin"

	rec := call(t, h.SetAdmin, http.MethodPut, route, "/api/users/"+reader.ID.String()+"/admin",
		map[string]any{"isAdmin": true}, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decodeBody[models.User](t, rec).IsAdmin)

	rec = call(t, h.SetAdmin, http.MethodPut, route, "/api/users/"+admin.ID.String()+"/admin",
		map[string]any{"isAdmin": false}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "self-demotion")

	rec = call(t, h.SetAdmin, http.MethodPut, route, "/api/users/"+uuid.NewString()+"/admin",
		map[string]any{"isAdmin": true}, admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(t, h.SetAdmin, http.MethodPut, route, "/api/users/"+reader.ID.String()+"/admin",
		map[string]any{}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, h.SetAdmin, http.MethodPut, route, "/api/users/not-a-uuid/admin",
		map[string]any{"isAdmin": true}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUsersDelete(t *testing.T) {
	admin, reader, author := adminUser(), readerUser(), readerUser()
	users := newMemUsers(admin, reader, author)
	users.posts[author.ID] = true
	h := NewUsers(users)
	route := "/api/users/{id}"

	rec := call(t, h.Delete, http.MethodDelete, route, "/api/users/"+admin.ID.String(), nil, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "self-delete")

	rec = call(t, h.Delete, http.MethodDelete, route, "/api/users/"+author.ID.String(), nil, admin)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = call(t, h.Delete, http.MethodDelete, route, "/api/users/"+reader.ID.String(), nil, admin)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	gone, _ := users.FindByID(context.Background(), reader.ID)
	assert.Nil(t, gone)

	rec = call(t, h.Delete, http.MethodDelete, route, "/api/users/"+reader.ID.String(), nil, admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
