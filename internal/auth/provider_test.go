package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dukerupert/sharearecipe/internal/database"
	"github.com/dukerupert/sharearecipe/internal/store"
)

func setupProvider(t *testing.T, ttl time.Duration) *LocalProvider {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewLocalProvider(store.NewAccountStore(db), store.NewSessionStore(db), ttl, logger)
}

func TestRegisterAndIdentify(t *testing.T) {
	p := setupProvider(t, time.Hour)
	ctx := context.Background()

	sess, err := p.Register(ctx, " Asha@Example.com ", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if sess.Identity.UID == "" {
		t.Fatal("expected uid")
	}
	if sess.Identity.Email != "asha@example.com" {
		t.Errorf("email = %q, want lowercased", sess.Identity.Email)
	}

	id, err := p.Identify(ctx, sess.Token)
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	if id.UID != sess.Identity.UID {
		t.Errorf("uid = %q, want %q", id.UID, sess.Identity.UID)
	}
}

func TestRegisterValidation(t *testing.T) {
	p := setupProvider(t, time.Hour)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"bad email", "not-an-email", "secret1", ErrInvalidEmail},
		{"display name form", "Asha <asha@example.com>", "secret1", ErrInvalidEmail},
		{"short password", "asha@example.com", "12345", ErrWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Register(ctx, tt.email, tt.password)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	p := setupProvider(t, time.Hour)
	ctx := context.Background()

	if _, err := p.Register(ctx, "asha@example.com", "secret1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := p.Register(ctx, "ASHA@example.com", "secret2")
	if !errors.Is(err, ErrEmailInUse) {
		t.Errorf("err = %v, want ErrEmailInUse", err)
	}
}

func TestSignIn(t *testing.T) {
	p := setupProvider(t, time.Hour)
	ctx := context.Background()

	reg, err := p.Register(ctx, "asha@example.com", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	sess, err := p.SignIn(ctx, "asha@example.com", "secret1")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if sess.Identity.UID != reg.Identity.UID {
		t.Errorf("uid = %q, want %q", sess.Identity.UID, reg.Identity.UID)
	}
	if sess.Token == reg.Token {
		t.Error("expected a fresh session token")
	}

	if _, err := p.SignIn(ctx, "asha@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := p.SignIn(ctx, "nobody@example.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email err = %v, want ErrInvalidCredentials", err)
	}
}

func TestSignOut(t *testing.T) {
	p := setupProvider(t, time.Hour)
	ctx := context.Background()

	sess, err := p.Register(ctx, "asha@example.com", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := p.SignOut(ctx, sess.Token); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if _, err := p.Identify(ctx, sess.Token); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("err = %v, want ErrUnauthenticated", err)
	}
}

func TestIdentifyExpiredSession(t *testing.T) {
	p := setupProvider(t, -time.Minute)
	ctx := context.Background()

	sess, err := p.Register(ctx, "asha@example.com", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := p.Identify(ctx, sess.Token); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("err = %v, want ErrUnauthenticated", err)
	}

	n, err := p.SweepSessions()
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 1 {
		t.Errorf("swept = %d, want 1", n)
	}
}

func TestIdentifyEmptyToken(t *testing.T) {
	p := setupProvider(t, time.Hour)
	if _, err := p.Identify(context.Background(), ""); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("err = %v, want ErrUnauthenticated", err)
	}
}
