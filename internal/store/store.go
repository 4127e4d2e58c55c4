// ABOUTME: Store interface and data types for savet-portal persistence
// ABOUTME: Defines role records, accounts, posts, events, contact messages

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when creating an account with a taken email
var ErrDuplicateEmail = errors.New("email already registered")

// Role values with special meaning to the access gate. The role column is an
// open string; anything outside this set simply has no admin access.
const (
	RoleAdmin     = "admin"
	RoleEditor    = "editor"
	RoleModerator = "moderator"
	RoleUser      = "user"
)

// AdminUser is a row in the primary role table
type AdminUser struct {
	UserID    string
	Email     string
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Profile is a row in the fallback role table. Profiles also carry
// public-facing display data, which is why they exist separately.
type Profile struct {
	UserID      string
	Email       string
	Role        string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Account is a login identity
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Post is a bilingual news post. Body fields hold markdown.
type Post struct {
	ID          string
	Slug        string
	TitleBG     string
	TitleEN     string
	BodyBG      string
	BodyEN      string
	Published   bool
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Event is a bilingual calendar event
type Event struct {
	ID            string
	TitleBG       string
	TitleEN       string
	Location      string
	StartsAt      time.Time
	EndsAt        *time.Time
	DescriptionBG string
	DescriptionEN string
	CreatedAt     time.Time
}

// ContactMessage is a contact form submission
type ContactMessage struct {
	ID        string
	Name      string
	Email     string
	Subject   string
	Body      string
	Read      bool
	CreatedAt time.Time
}

// RoleStore provides the two role tables consulted by the access gate.
// Get methods return ErrNotFound both for a missing row and for a row whose
// role column is NULL; the resolver treats either as "no role here".
type RoleStore interface {
	GetAdminRole(ctx context.Context, userID string) (string, error)
	UpsertAdminRole(ctx context.Context, userID, email, role string) error
	CountAdminUsers(ctx context.Context) (int, error)
	ListAdminUsers(ctx context.Context) ([]AdminUser, error)

	GetProfileRole(ctx context.Context, userID string) (string, error)
	UpsertProfileRole(ctx context.Context, userID, email, role string) error
}

// AccountStore provides login identities
type AccountStore interface {
	CreateAccount(ctx context.Context, account *Account) error
	GetAccount(ctx context.Context, id string) (*Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
	ListAccounts(ctx context.Context) ([]Account, error)
}

// PostStore provides news post persistence
type PostStore interface {
	CreatePost(ctx context.Context, post *Post) error
	GetPost(ctx context.Context, id string) (*Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*Post, error)
	UpdatePost(ctx context.Context, post *Post) error
	SetPostPublished(ctx context.Context, id string, published bool) error
	DeletePost(ctx context.Context, id string) error
	ListPosts(ctx context.Context, publishedOnly bool, limit int) ([]*Post, error)
}

// EventStore provides calendar event persistence
type EventStore interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, id string) (*Event, error)
	DeleteEvent(ctx context.Context, id string) error
	ListEvents(ctx context.Context, limit int) ([]*Event, error)
	ListUpcomingEvents(ctx context.Context, now time.Time, limit int) ([]*Event, error)
}

// ContactStore provides the contact form inbox
type ContactStore interface {
	CreateContactMessage(ctx context.Context, msg *ContactMessage) error
	GetContactMessage(ctx context.Context, id string) (*ContactMessage, error)
	ListContactMessages(ctx context.Context, unreadOnly bool, limit int) ([]*ContactMessage, error)
	MarkContactMessageRead(ctx context.Context, id string) error
}

// Store combines all persistence interfaces
type Store interface {
	RoleStore
	AccountStore
	PostStore
	EventStore
	ContactStore

	// Close releases any resources held by the store
	Close() error
}
