// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"coinpress/internal/ai"
	"coinpress/internal/generation"
	"coinpress/internal/middleware"
	"coinpress/internal/models"
	"coinpress/internal/respond"
	"coinpress/internal/store"
)

// --- request helpers ---

// call routes one request through a chi router so URL params resolve. A
// non-nil user is placed in the context as the authenticated principal.
func call(t *testing.T, h http.HandlerFunc, method, pattern, path string, body any, user *models.User) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req = req.WithContext(middleware.WithUser(req.Context(), user))
	}

	r := chi.NewRouter()
	r.Method(method, pattern, h)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

// bodyKeys returns the sorted top-level keys of a JSON object body
// without consuming it.
func bodyKeys(t *testing.T, rec *httptest.ResponseRecorder) []string {
	t.Helper()
	var m map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) respond.ErrorDetail {
	t.Helper()
	return decodeBody[respond.ErrorResponse](t, rec).Error
}

func adminUser() *models.User {
	return &models.User{ID: uuid.New(), Username: "admin", Email: "admin@coinpress.test", DisplayName: "Admin", IsAdmin: true}
}

func readerUser() *models.User {
	return &models.User{ID: uuid.New(), Username: "reader", Email: "reader@coinpress.test", DisplayName: "Reader"}
}

// --- users ---

type memUsers struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]*models.User
	posts map[uuid.UUID]bool // users that still author posts
}

func newMemUsers(users ...*models.User) *memUsers {
	m := &memUsers{byID: map[uuid.UUID]*models.User{}, posts: map[uuid.UUID]bool{}}
	for _, u := range users {
		m.byID[u.ID] = u
	}
	return m
}

func fakeHash(password string) string { return "hash:" + password }

func (m *memUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) List(_ context.Context, page models.Page) ([]models.User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []models.User
	for _, u := range m.byID {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Username < all[j].Username })
	return paginate(all, page), len(all), nil
}

func (m *memUsers) Create(_ context.Context, username, email, password, displayName string, isAdmin bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Username == username || u.Email == email {
			return nil, store.ErrDuplicate
		}
	}
	u := &models.User{
		ID: uuid.New(), Username: username, Email: email, DisplayName: displayName,
		PasswordHash: fakeHash(password), IsAdmin: isAdmin, CreatedAt: time.Now(),
	}
	m.byID[u.ID] = u
	cp := *u
	return &cp, nil
}

func (m *memUsers) UpdateProfile(_ context.Context, id uuid.UUID, p store.ProfileUpdate) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	if p.Email != nil {
		for _, other := range m.byID {
			if other.ID != id && other.Email == *p.Email {
				return nil, store.ErrDuplicate
			}
		}
		u.Email = *p.Email
	}
	if p.DisplayName != nil {
		u.DisplayName = *p.DisplayName
	}
	if p.Password != nil {
		u.PasswordHash = fakeHash(*p.Password)
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) SetAdmin(_ context.Context, id uuid.UUID, isAdmin bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if ok {
		u.IsAdmin = isAdmin
	}
	return ok, nil
}

func (m *memUsers) SetTOTPSecret(_ context.Context, id uuid.UUID, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[id].TOTPSecret = &secret
	return nil
}

func (m *memUsers) EnableTOTP(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[id].TOTPEnabled = true
	return nil
}

func (m *memUsers) ResetTOTP(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[id].TOTPEnabled = false
	m.byID[id].TOTPSecret = nil
	return nil
}

func (m *memUsers) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.posts[id] {
		return false, store.ErrUserHasPosts
	}
	_, ok := m.byID[id]
	delete(m.byID, id)
	return ok, nil
}

func (m *memUsers) CheckPassword(user *models.User, password string) bool {
	return user.PasswordHash == fakeHash(password)
}

// --- categories ---

type memCategories struct {
	mu    sync.Mutex
	items map[uuid.UUID]*models.Category
	inUse map[uuid.UUID]bool
}

func newMemCategories(cats ...*models.Category) *memCategories {
	m := &memCategories{items: map[uuid.UUID]*models.Category{}, inUse: map[uuid.UUID]bool{}}
	for _, c := range cats {
		m.items[c.ID] = c
	}
	return m
}

func (m *memCategories) List(_ context.Context) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Category
	for _, c := range m.items {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memCategories) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.items[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (m *memCategories) FindBySlug(_ context.Context, slug string) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.items {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memCategories) clash(c *models.Category) error {
	for _, other := range m.items {
		if other.ID == c.ID {
			continue
		}
		if other.Slug == c.Slug {
			return store.ErrSlugTaken
		}
		if other.Name == c.Name {
			return store.ErrDuplicate
		}
	}
	return nil
}

func (m *memCategories) Create(_ context.Context, c *models.Category) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = uuid.New()
	if err := m.clash(c); err != nil {
		return nil, err
	}
	cp := *c
	m.items[c.ID] = &cp
	return c, nil
}

func (m *memCategories) Update(_ context.Context, c *models.Category) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[c.ID]; !ok {
		return nil, nil
	}
	if err := m.clash(c); err != nil {
		return nil, err
	}
	cp := *c
	m.items[c.ID] = &cp
	return c, nil
}

func (m *memCategories) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inUse[id] {
		return false, store.ErrCategoryInUse
	}
	_, ok := m.items[id]
	delete(m.items, id)
	return ok, nil
}

// --- posts ---

type memPosts struct {
	mu    sync.Mutex
	items []*models.Post
}

func (m *memPosts) add(p *models.Post) *models.Post {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.items = append(m.items, p)
	return p
}

func (m *memPosts) List(_ context.Context, f store.PostFilter, page models.Page) ([]models.Post, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Post
	for i := len(m.items) - 1; i >= 0; i-- {
		p := m.items[i]
		if f.CategorySlug != "" && (p.Category == nil || p.Category.Slug != f.CategorySlug) {
			continue
		}
		if f.Tag != "" && !contains(p.Tags, f.Tag) {
			continue
		}
		if f.Query != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(f.Query)) {
			continue
		}
		out = append(out, *p)
	}
	return paginate(out, page), len(out), nil
}

func (m *memPosts) find(pred func(*models.Post) bool) *models.Post {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.items {
		if pred(p) {
			cp := *p
			return &cp
		}
	}
	return nil
}

func (m *memPosts) FindBySlug(_ context.Context, slug string) (*models.Post, error) {
	return m.find(func(p *models.Post) bool { return p.Slug == slug }), nil
}

func (m *memPosts) FindByID(_ context.Context, id uuid.UUID) (*models.Post, error) {
	return m.find(func(p *models.Post) bool { return p.ID == id }), nil
}

func (m *memPosts) Related(_ context.Context, post *models.Post, limit int) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Post
	for _, p := range m.items {
		if p.CategoryID == post.CategoryID && p.ID != post.ID && len(out) < limit {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memPosts) Create(_ context.Context, p *models.Post) (*models.Post, error) {
	if m.find(func(o *models.Post) bool { return o.Slug == p.Slug }) != nil {
		return nil, store.ErrSlugTaken
	}
	p.PublishedAt = time.Now()
	cp := *p
	m.add(&cp)
	return &cp, nil
}

func (m *memPosts) Update(_ context.Context, p *models.Post) (*models.Post, error) {
	if m.find(func(o *models.Post) bool { return o.Slug == p.Slug && o.ID != p.ID }) != nil {
		return nil, store.ErrSlugTaken
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, o := range m.items {
		if o.ID == p.ID {
			cp := *p
			m.items[i] = &cp
			return p, nil
		}
	}
	return nil, nil
}

func (m *memPosts) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.items {
		if p.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memPosts) SitemapEntries(_ context.Context) ([]store.SitemapEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.SitemapEntry
	for _, p := range m.items {
		out = append(out, store.SitemapEntry{Slug: p.Slug, UpdatedAt: p.UpdatedAt})
	}
	return out, nil
}

// --- comments ---

type memComments struct {
	mu    sync.Mutex
	items []*models.Comment
}

func (m *memComments) add(c *models.Comment) *models.Comment {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	m.items = append(m.items, c)
	return c
}

func (m *memComments) ListApprovedThreads(_ context.Context, postID uuid.UUID) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var top, replies []models.Comment
	for _, c := range m.items {
		if c.PostID != postID || !c.IsApproved {
			continue
		}
		if c.ParentID == nil {
			top = append(top, *c)
		} else {
			replies = append(replies, *c)
		}
	}
	return models.BuildThreads(top, replies), nil
}

func (m *memComments) List(_ context.Context, status store.CommentStatus, page models.Page) ([]models.Comment, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Comment
	for _, c := range m.items {
		if status == store.CommentsPending && c.IsApproved || status == store.CommentsApproved && !c.IsApproved {
			continue
		}
		out = append(out, *c)
	}
	return paginate(out, page), len(out), nil
}

func (m *memComments) FindByID(_ context.Context, id uuid.UUID) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.items {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memComments) Create(_ context.Context, c *models.Comment) (*models.Comment, error) {
	c.CreatedAt = time.Now()
	cp := *c
	m.add(&cp)
	return &cp, nil
}

func (m *memComments) Approve(_ context.Context, id uuid.UUID) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.items {
		if c.ID == id {
			c.IsApproved = true
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memComments) Delete(_ context.Context, id uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []*models.Comment
	var n int64
	for _, c := range m.items {
		if c.ID == id || (c.ParentID != nil && *c.ParentID == id) {
			n++
			continue
		}
		kept = append(kept, c)
	}
	m.items = kept
	return n, nil
}

// --- topics ---

type memTopics struct {
	mu    sync.Mutex
	items map[uuid.UUID]*models.Topic
}

func newMemTopics() *memTopics {
	return &memTopics{items: map[uuid.UUID]*models.Topic{}}
}

func (m *memTopics) Create(_ context.Context, t *models.Topic) (*models.Topic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = uuid.New()
	t.Status = models.TopicPending
	cp := *t
	m.items[t.ID] = &cp
	return t, nil
}

func (m *memTopics) FindByID(_ context.Context, id uuid.UUID) (*models.Topic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.items[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (m *memTopics) List(_ context.Context, status models.TopicStatus, page models.Page) ([]models.Topic, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Topic
	for _, t := range m.items {
		if status == "" || t.Status == status {
			out = append(out, *t)
		}
	}
	return paginate(out, page), len(out), nil
}

func (m *memTopics) SetStatus(_ context.Context, id uuid.UUID, status models.TopicStatus) (*models.Topic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	t.Status = status
	cp := *t
	return &cp, nil
}

func (m *memTopics) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[id]
	delete(m.items, id)
	return ok, nil
}

// --- collaborators ---

type fakeChecker struct {
	result *ai.ModerationResult
	err    error
	seen   []string
}

func (f *fakeChecker) CheckPrompt(_ context.Context, text string) (*ai.ModerationResult, error) {
	f.seen = append(f.seen, text)
	return f.result, f.err
}

type fakeScheduler struct {
	scheduled []generation.ScheduleInput
	err       error
	items     []models.GenerationSchedule
	cancelled []uuid.UUID
}

func (f *fakeScheduler) Schedule(_ context.Context, in generation.ScheduleInput) (*models.GenerationSchedule, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.scheduled = append(f.scheduled, in)
	at, _ := generation.ParseScheduledFor(in.ScheduledFor)
	return &models.GenerationSchedule{
		ID: uuid.New(), Title: in.Title, CategoryID: in.CategoryID,
		AuthorID: &in.AuthorID, ScheduledFor: at, Status: models.SchedulePending,
	}, nil
}

func (f *fakeScheduler) List(_ context.Context, _ models.ScheduleStatus, page models.Page) ([]models.GenerationSchedule, models.Pagination, error) {
	if f.err != nil {
		return nil, models.Pagination{}, f.err
	}
	return f.items, models.NewPagination(page, len(f.items)), nil
}

func (f *fakeScheduler) Cancel(_ context.Context, id uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.cancelled = append(f.cancelled, id)
	return nil
}

type fakeRunner struct {
	summary *generation.RunSummary
	err     error
	ctxErr  error
}

func (f *fakeRunner) RunDue(ctx context.Context) (*generation.RunSummary, error) {
	f.ctxErr = ctx.Err()
	return f.summary, f.err
}

type fakeCovers struct {
	got []byte
	url string
	err error
}

func (f *fakeCovers) SaveCover(_ context.Context, data []byte) (string, error) {
	f.got = data
	return f.url, f.err
}

// --- shared ---

func paginate[T any](all []T, page models.Page) []T {
	start := page.Offset()
	if start >= len(all) {
		return []T{}
	}
	end := start + page.Size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
