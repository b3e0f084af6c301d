// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package generation

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"coinpress/internal/models"
	"coinpress/internal/store"
)

// memStore is an in-memory implementation of every store interface the
// package uses, sharing one mutex like a single database would.
type memStore struct {
	mu         sync.Mutex
	schedules  map[uuid.UUID]*models.GenerationSchedule
	topics     map[uuid.UUID]*models.Topic
	categories map[uuid.UUID]*models.Category
	users      map[uuid.UUID]*models.User
	posts      map[uuid.UUID]*models.Post
	listDueErr error
	claims     int
}

func newMemStore() *memStore {
	return &memStore{
		schedules:  map[uuid.UUID]*models.GenerationSchedule{},
		topics:     map[uuid.UUID]*models.Topic{},
		categories: map[uuid.UUID]*models.Category{},
		users:      map[uuid.UUID]*models.User{},
		posts:      map[uuid.UUID]*models.Post{},
	}
}

func (m *memStore) addCategory(name, slug string) *models.Category {
	c := &models.Category{ID: uuid.New(), Name: name, Slug: slug}
	m.categories[c.ID] = c
	return c
}

func (m *memStore) addUser(username string, admin bool) *models.User {
	u := &models.User{ID: uuid.New(), Username: username, IsAdmin: admin}
	m.users[u.ID] = u
	return u
}

func (m *memStore) addTopic(title string, categoryID uuid.UUID) *models.Topic {
	t := &models.Topic{ID: uuid.New(), Title: title, Description: "about " + title, CategoryID: categoryID, Status: models.TopicPending}
	m.topics[t.ID] = t
	return t
}

func (m *memStore) schedule(id uuid.UUID) models.GenerationSchedule {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.schedules[id]
}

func (m *memStore) postCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.posts)
}

// scheduleStore adapts memStore to ScheduleStore.
type scheduleStore struct{ *memStore }

func (s scheduleStore) Create(_ context.Context, g *models.GenerationSchedule) (*models.GenerationSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *g
	c.ID = uuid.New()
	c.Status = models.SchedulePending
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	s.schedules[c.ID] = &c
	out := c
	return &out, nil
}

func (s scheduleStore) FindByID(_ context.Context, id uuid.UUID) (*models.GenerationSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.schedules[id]
	if !ok {
		return nil, nil
	}
	c := *g
	return &c, nil
}

func (s scheduleStore) List(_ context.Context, status models.ScheduleStatus, page models.Page) ([]models.GenerationSchedule, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []models.GenerationSchedule
	for _, g := range s.schedules {
		if status == "" || g.Status == status {
			all = append(all, *g)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ScheduledFor.Before(all[j].ScheduledFor) })
	total := len(all)
	start := min(page.Offset(), total)
	end := min(start+page.Size, total)
	return all[start:end], total, nil
}

func (s scheduleStore) ListDue(_ context.Context, now time.Time) ([]models.GenerationSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listDueErr != nil {
		return nil, s.listDueErr
	}
	var due []models.GenerationSchedule
	for _, g := range s.schedules {
		if g.IsDue(now) {
			due = append(due, *g)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ScheduledFor.Before(due[j].ScheduledFor) })
	return due, nil
}

func (s scheduleStore) Claim(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.schedules[id]
	if !ok || g.Status != models.SchedulePending {
		return false, nil
	}
	g.Status = models.ScheduleProcessing
	s.claims++
	return true, nil
}

func (s scheduleStore) Complete(_ context.Context, id, postID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.schedules[id]; ok && g.Status == models.ScheduleProcessing {
		g.Status = models.ScheduleCompleted
		g.GeneratedPostID = &postID
	}
	return nil
}

func (s scheduleStore) Fail(_ context.Context, id uuid.UUID, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.schedules[id]; ok && g.Status == models.ScheduleProcessing {
		g.Status = models.ScheduleFailed
		g.ErrorMessage = &message
	}
	return nil
}

func (s scheduleStore) DeletePending(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.schedules[id]; ok && g.Status == models.SchedulePending {
		delete(s.schedules, id)
		return true, nil
	}
	return false, nil
}

// topicStore adapts memStore to TopicStore.
type topicStore struct{ *memStore }

func (s topicStore) FindByID(_ context.Context, id uuid.UUID) (*models.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.topics[id]
	if !ok {
		return nil, nil
	}
	c := *t
	return &c, nil
}

func (s topicStore) MarkScheduled(_ context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.topics[id]; ok {
		t.Status = models.TopicApproved
		t.ScheduledFor = &at
	}
	return nil
}

func (s topicStore) ResetPending(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.topics[id]; ok {
		t.Status = models.TopicPending
		t.ScheduledFor = nil
	}
	return nil
}

func (s topicStore) MarkGenerated(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.topics[id]; ok {
		t.Status = models.TopicGenerated
	}
	return nil
}

// categoryStore adapts memStore to CategoryFinder.
type categoryStore struct{ *memStore }

func (s categoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categories[id], nil
}

// userStore adapts memStore to AuthorFinder.
type userStore struct{ *memStore }

func (s userStore) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id], nil
}

func (s userStore) FindAnyAdmin(_ context.Context) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.IsAdmin {
			return u, nil
		}
	}
	return nil, nil
}

// postStore adapts memStore to PostWriter.
type postStore struct{ *memStore }

func (s postStore) Create(_ context.Context, p *models.Post) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.posts {
		if existing.Slug == p.Slug {
			return nil, store.ErrSlugTaken
		}
	}
	c := *p
	c.ID = uuid.New()
	s.posts[c.ID] = &c
	out := c
	return &out, nil
}

func (s postStore) SlugExists(_ context.Context, slug string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		if p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

// fakeLLM is a TextGenerator returning a fixed reply.
type fakeLLM struct {
	mu         sync.Mutex
	configured bool
	reply      string
	err        error
	calls      int
	lastSystem string
	lastUser   string
	onGenerate func()
}

func (f *fakeLLM) Configured() bool { return f.configured }

func (f *fakeLLM) Generate(_ context.Context, system, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastSystem = system
	f.lastUser = user
	if f.onGenerate != nil {
		f.onGenerate()
	}
	return f.reply, f.err
}

// fakeImages is an ImageSource.
type fakeImages struct {
	supported bool
	err       error
}

func (f fakeImages) SupportsImageGeneration() bool { return f.supported }

func (f fakeImages) GenerateImage(context.Context, string) ([]byte, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return []byte("png"), "image/png", nil
}

// fakeCovers is a CoverSaver.
type fakeCovers struct{ url string }

func (f fakeCovers) SaveCover(context.Context, []byte) (string, error) {
	if f.url == "" {
		return "", errors.New("bucket unavailable")
	}
	return f.url, nil
}

const articleJSON = `{"title":"BTC Outlook","excerpt":"Where bitcoin may head next.","body":"## Setup\n\nBTC consolidates while ETH lags.\n\n## Risks\n\nLeverage is elevated.","tags":["Bitcoin","#macro","bitcoin"]}`
