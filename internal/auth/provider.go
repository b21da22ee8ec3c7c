// Package auth resolves callers to identities. LocalProvider keeps accounts
// and sessions in SQLite; passwords are bcrypt hashed.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/sharearecipe/internal/store"
)

// MinPasswordLength is the shortest password Register accepts.
const MinPasswordLength = 6

var (
	ErrEmailInUse         = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrInvalidEmail       = errors.New("email address is badly formatted")
	ErrUnauthenticated    = errors.New("session expired or invalid")
)

// Session is a signed-in identity and the bearer token that represents it.
type Session struct {
	Identity  Identity  `json:"identity"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Provider interface {
	Register(ctx context.Context, email, password string) (Session, error)
	SignIn(ctx context.Context, email, password string) (Session, error)
	SignOut(ctx context.Context, token string) error
	Identify(ctx context.Context, token string) (Identity, error)
}

type LocalProvider struct {
	accounts   *store.AccountStore
	sessions   *store.SessionStore
	sessionTTL time.Duration
	logger     *slog.Logger
}

func NewLocalProvider(accounts *store.AccountStore, sessions *store.SessionStore, sessionTTL time.Duration, logger *slog.Logger) *LocalProvider {
	return &LocalProvider{
		accounts:   accounts,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return strings.ToLower(email), nil
}

func (p *LocalProvider) Register(ctx context.Context, email, password string) (Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return Session{}, err
	}
	if len(password) < MinPasswordLength {
		return Session{}, ErrWeakPassword
	}

	existing, err := p.accounts.GetByEmail(email)
	if err != nil {
		return Session{}, err
	}
	if existing != nil {
		return Session{}, ErrEmailInUse
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}
	acct, err := p.accounts.Create(uuid.NewString(), email, string(hash))
	if err != nil {
		return Session{}, err
	}
	p.logger.Info("account registered", "uid", acct.UID)
	return p.startSession(acct.UID, acct.Email)
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return Session{}, err
	}
	acct, err := p.accounts.GetByEmail(email)
	if err != nil {
		return Session{}, err
	}
	if acct == nil {
		return Session{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	return p.startSession(acct.UID, acct.Email)
}

func (p *LocalProvider) startSession(uid, email string) (Session, error) {
	sess, err := p.sessions.Create(uid, p.sessionTTL)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Identity:  Identity{UID: uid, Email: email, Token: sess.Token},
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

func (p *LocalProvider) SignOut(ctx context.Context, token string) error {
	return p.sessions.DeleteByToken(token)
}

func (p *LocalProvider) Identify(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrUnauthenticated
	}
	sess, err := p.sessions.GetByToken(token)
	if err != nil {
		return Identity{}, err
	}
	if sess == nil {
		return Identity{}, ErrUnauthenticated
	}
	acct, err := p.accounts.GetByUID(sess.UID)
	if err != nil {
		return Identity{}, err
	}
	if acct == nil {
		return Identity{}, ErrUnauthenticated
	}
	return Identity{UID: acct.UID, Email: acct.Email, Token: token}, nil
}

// SweepSessions deletes expired sessions.
func (p *LocalProvider) SweepSessions() (int64, error) {
	return p.sessions.DeleteExpired()
}
