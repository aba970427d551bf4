// Package auth implements account management and session-token
// authentication for the storefront and admin console.
package auth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"

	"github.com/maktabat-alamal/storefront/internal/docstore"
)

// Collection is the document-store collection holding accounts.
const Collection = "users"

var (
	// ErrInvalidCredentials is returned for unknown emails and wrong
	// passwords alike, so responses do not leak which one failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken is returned when creating an account with an email that
	// already exists.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidSession is returned for malformed, expired, or revoked
	// session tokens.
	ErrInvalidSession = errors.New("invalid session")
	// ErrAccountNotFound is returned when a requested account does not exist.
	ErrAccountNotFound = errors.New("account not found")
)

// Account is a registered user. Admin accounts may use the admin console.
type Account struct {
	ID           string    `json:"-"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	Admin        bool      `json:"admin"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// Session is an authenticated session: the signed token plus its decoded
// identity claims.
type Session struct {
	Token     string
	ID        string
	AccountID string
	Email     string
	Admin     bool
	ExpiresAt time.Time
}

// SessionStore tracks live session IDs so sign-out can revoke a token
// before its expiry.
type SessionStore interface {
	Put(ctx context.Context, sessionID, accountID string, ttl time.Duration) error
	Alive(ctx context.Context, sessionID string) (bool, error)
	Revoke(ctx context.Context, sessionID string) error
}

// Accounts persists accounts in the document store.
type Accounts struct {
	store docstore.Store
}

// NewAccounts returns an Accounts repository over the given document store.
func NewAccounts(store docstore.Store) *Accounts {
	return &Accounts{store: store}
}

// Create adds a new account and returns its generated ID.
func (a *Accounts) Create(ctx context.Context, acc Account) (string, error) {
	id, err := a.store.Add(ctx, Collection, acc)
	if err != nil {
		return "", errors.Wrap(err, "add account")
	}
	return id, nil
}

// GetByID returns an account by ID, or ErrAccountNotFound.
func (a *Accounts) GetByID(ctx context.Context, id string) (*Account, error) {
	doc, err := a.store.Get(ctx, Collection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, errors.Wrapf(err, "get account %q", id)
	}
	return decode(doc)
}

// FindByEmail returns the account registered under email, or
// ErrAccountNotFound.
func (a *Accounts) FindByEmail(ctx context.Context, email string) (*Account, error) {
	docs, err := a.store.List(ctx, Collection,
		[]docstore.Filter{{Field: "email", Value: email}}, docstore.OrderBy{})
	if err != nil {
		return nil, errors.Wrap(err, "find account by email")
	}
	if len(docs) == 0 {
		return nil, ErrAccountNotFound
	}
	return decode(&docs[0])
}

// List returns all accounts, newest first.
func (a *Accounts) List(ctx context.Context) ([]Account, error) {
	docs, err := a.store.List(ctx, Collection, nil, docstore.OrderBy{Field: "createdAt", Direction: docstore.Desc})
	if err != nil {
		return nil, errors.Wrap(err, "list accounts")
	}

	accounts := make([]Account, 0, len(docs))
	for i := range docs {
		acc, err := decode(&docs[i])
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *acc)
	}
	return accounts, nil
}

// SetAdmin grants or revokes the admin flag on an account.
func (a *Accounts) SetAdmin(ctx context.Context, id string, admin bool) error {
	if err := a.store.Update(ctx, Collection, id, map[string]any{"admin": admin}); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrAccountNotFound
		}
		return errors.Wrapf(err, "update account %q", id)
	}
	return nil
}

func decode(doc *docstore.Document) (*Account, error) {
	var acc Account
	if err := json.Unmarshal(doc.Data, &acc); err != nil {
		return nil, errors.Wrapf(err, "decode account %q", doc.ID)
	}
	acc.ID = doc.ID
	acc.CreatedAt = doc.CreatedAt
	acc.UpdatedAt = doc.UpdatedAt
	return &acc, nil
}
