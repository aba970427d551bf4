package auth

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SessionTTL is how long a session token stays valid after sign-in.
const SessionTTL = 24 * time.Hour

// MinPasswordLen matches the hosted auth provider's minimum.
const MinPasswordLen = 6

// ErrWeakPassword is returned when a new password is too short.
var ErrWeakPassword = errors.New("password must be at least 6 characters")

type claims struct {
	Email string `json:"email"`
	Admin bool   `json:"admin"`
	jwt.RegisteredClaims
}

// Service implements sign-in, sign-out, account creation, and token
// verification. Tokens are HMAC-signed JWTs whose session IDs are tracked in
// the SessionStore for revocation.
type Service struct {
	accounts *Accounts
	sessions SessionStore
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

// NewService creates a Service with the given signing secret.
func NewService(accounts *Accounts, sessions SessionStore, secret []byte) *Service {
	return &Service{
		accounts: accounts,
		sessions: sessions,
		secret:   secret,
		ttl:      SessionTTL,
		now:      time.Now,
	}
}

// CreateAccount registers a new non-admin account and signs it in.
func (s *Service) CreateAccount(ctx context.Context, email, password string) (*Session, error) {
	if len(password) < MinPasswordLen {
		return nil, ErrWeakPassword
	}
	if _, err := s.accounts.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrAccountNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	id, err := s.accounts.Create(ctx, Account{
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, err
	}

	return s.issue(ctx, id, email, false)
}

// SignIn authenticates the credentials and returns a fresh session.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	acc, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(ctx, acc.ID, acc.Email, acc.Admin)
}

// SignOut revokes the session behind the token. An already dead token is a
// no-op.
func (s *Service) SignOut(ctx context.Context, token string) error {
	c, err := s.parse(token)
	if err != nil {
		return nil
	}
	return s.sessions.Revoke(ctx, c.ID)
}

// Verify checks the token signature, expiry, and revocation state, and
// returns the decoded session.
func (s *Service) Verify(ctx context.Context, token string) (*Session, error) {
	c, err := s.parse(token)
	if err != nil {
		return nil, ErrInvalidSession
	}
	alive, err := s.sessions.Alive(ctx, c.ID)
	if err != nil {
		return nil, errors.Wrap(err, "check session")
	}
	if !alive {
		return nil, ErrInvalidSession
	}
	return &Session{
		Token:     token,
		ID:        c.ID,
		AccountID: c.Subject,
		Email:     c.Email,
		Admin:     c.Admin,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}

// ListAccounts returns all accounts for the admin users screen.
func (s *Service) ListAccounts(ctx context.Context) ([]Account, error) {
	return s.accounts.List(ctx)
}

// SetAdmin grants or revokes admin access on an account. The change takes
// effect on the account's next sign-in.
func (s *Service) SetAdmin(ctx context.Context, accountID string, admin bool) error {
	return s.accounts.SetAdmin(ctx, accountID, admin)
}

func (s *Service) issue(ctx context.Context, accountID, email string, admin bool) (*Session, error) {
	sessionID := uuid.New().String()
	expiresAt := s.now().Add(s.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: email,
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, errors.Wrap(err, "sign session token")
	}

	if err := s.sessions.Put(ctx, sessionID, accountID, s.ttl); err != nil {
		return nil, errors.Wrap(err, "store session")
	}

	return &Session{
		Token:     signed,
		ID:        sessionID,
		AccountID: accountID,
		Email:     email,
		Admin:     admin,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *Service) parse(token string) (*claims, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSession
	}
	return &c, nil
}
