// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite and to inject storage failures

package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MockStore is an in-memory Store implementation for testing.
// The Fail* fields, when set, are returned by the corresponding methods to
// simulate storage failures.
type MockStore struct {
	mu         sync.RWMutex
	adminUsers map[string]*AdminUser
	profiles   map[string]*Profile
	accounts   map[string]*Account
	posts      map[string]*Post
	events     map[string]*Event
	contacts   map[string]*ContactMessage

	FailAdminRole   error
	FailProfileRole error
	FailCount       error
	FailUpsert      error
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		adminUsers: make(map[string]*AdminUser),
		profiles:   make(map[string]*Profile),
		accounts:   make(map[string]*Account),
		posts:      make(map[string]*Post),
		events:     make(map[string]*Event),
		contacts:   make(map[string]*ContactMessage),
	}
}

// Close is a no-op for the mock store
func (m *MockStore) Close() error { return nil }

// --- RoleStore ---

func (m *MockStore) GetAdminRole(ctx context.Context, userID string) (string, error) {
	if m.FailAdminRole != nil {
		return "", m.FailAdminRole
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.adminUsers[userID]
	if !ok || u.Role == "" {
		return "", ErrNotFound
	}
	return u.Role, nil
}

func (m *MockStore) GetProfileRole(ctx context.Context, userID string) (string, error) {
	if m.FailProfileRole != nil {
		return "", m.FailProfileRole
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[userID]
	if !ok || p.Role == "" {
		return "", ErrNotFound
	}
	return p.Role, nil
}

func (m *MockStore) UpsertAdminRole(ctx context.Context, userID, email, role string) error {
	if m.FailUpsert != nil {
		return m.FailUpsert
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	if u, ok := m.adminUsers[userID]; ok {
		u.Email = email
		u.Role = role
		u.UpdatedAt = now
		return nil
	}
	m.adminUsers[userID] = &AdminUser{
		UserID:    userID,
		Email:     email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

func (m *MockStore) UpsertProfileRole(ctx context.Context, userID, email, role string) error {
	if m.FailUpsert != nil {
		return m.FailUpsert
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	if p, ok := m.profiles[userID]; ok {
		p.Email = email
		p.Role = role
		p.UpdatedAt = now
		return nil
	}
	m.profiles[userID] = &Profile{
		UserID:    userID,
		Email:     email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

func (m *MockStore) CountAdminUsers(ctx context.Context) (int, error) {
	if m.FailCount != nil {
		return 0, m.FailCount
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.adminUsers), nil
}

func (m *MockStore) ListAdminUsers(ctx context.Context) ([]AdminUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]AdminUser, 0, len(m.adminUsers))
	for _, u := range m.adminUsers {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

// --- AccountStore ---

func (m *MockStore) CreateAccount(ctx context.Context, account *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.accounts {
		if strings.EqualFold(a.Email, account.Email) {
			return ErrDuplicateEmail
		}
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}
	cp := *account
	m.accounts[account.ID] = &cp
	return nil
}

func (m *MockStore) GetAccount(ctx context.Context, id string) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *MockStore) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, a := range m.accounts {
		if strings.EqualFold(a.Email, email) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MockStore) ListAccounts(ctx context.Context) ([]Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	accounts := make([]Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		accounts = append(accounts, *a)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.After(accounts[j].CreatedAt)
	})
	return accounts, nil
}

// --- PostStore ---

func (m *MockStore) CreatePost(ctx context.Context, post *Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	if post.UpdatedAt.IsZero() {
		post.UpdatedAt = now
	}
	cp := *post
	m.posts[post.ID] = &cp
	return nil
}

func (m *MockStore) GetPost(ctx context.Context, id string) (*Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockStore) GetPostBySlug(ctx context.Context, slug string) (*Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.posts {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MockStore) UpdatePost(ctx context.Context, post *Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.posts[post.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Slug = post.Slug
	existing.TitleBG = post.TitleBG
	existing.TitleEN = post.TitleEN
	existing.BodyBG = post.BodyBG
	existing.BodyEN = post.BodyEN
	existing.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MockStore) SetPostPublished(ctx context.Context, id string, published bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[id]
	if !ok {
		return ErrNotFound
	}
	p.Published = published
	if published {
		now := time.Now().UTC()
		p.PublishedAt = &now
	} else {
		p.PublishedAt = nil
	}
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MockStore) DeletePost(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.posts[id]; !ok {
		return ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *MockStore) ListPosts(ctx context.Context, publishedOnly bool, limit int) ([]*Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var posts []*Post
	for _, p := range m.posts {
		if publishedOnly && !p.Published {
			continue
		}
		cp := *p
		posts = append(posts, &cp)
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

// --- EventStore ---

func (m *MockStore) CreateEvent(ctx context.Context, event *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	cp := *event
	m.events[event.ID] = &cp
	return nil
}

func (m *MockStore) GetEvent(ctx context.Context, id string) (*Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *MockStore) DeleteEvent(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.events[id]; !ok {
		return ErrNotFound
	}
	delete(m.events, id)
	return nil
}

func (m *MockStore) ListEvents(ctx context.Context, limit int) ([]*Event, error) {
	return m.listEvents(nil, limit)
}

func (m *MockStore) ListUpcomingEvents(ctx context.Context, now time.Time, limit int) ([]*Event, error) {
	return m.listEvents(&now, limit)
}

func (m *MockStore) listEvents(after *time.Time, limit int) ([]*Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var events []*Event
	for _, e := range m.events {
		if after != nil && e.StartsAt.Before(*after) {
			continue
		}
		cp := *e
		events = append(events, &cp)
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].StartsAt.Before(events[j].StartsAt)
	})
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// --- ContactStore ---

func (m *MockStore) CreateContactMessage(ctx context.Context, msg *ContactMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	cp := *msg
	m.contacts[msg.ID] = &cp
	return nil
}

func (m *MockStore) GetContactMessage(ctx context.Context, id string) (*ContactMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.contacts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MockStore) ListContactMessages(ctx context.Context, unreadOnly bool, limit int) ([]*ContactMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var msgs []*ContactMessage
	for _, c := range m.contacts {
		if unreadOnly && c.Read {
			continue
		}
		cp := *c
		msgs = append(msgs, &cp)
	}
	sort.Slice(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.After(msgs[j].CreatedAt)
	})
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

func (m *MockStore) MarkContactMessageRead(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.contacts[id]
	if !ok {
		return ErrNotFound
	}
	c.Read = true
	return nil
}
