package auth

import "context"

type contextKey struct{}

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	// Token is the session the identity was resolved from.
	Token string `json:"-"`
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

// UserID returns the caller's uid, or "" for anonymous requests.
func UserID(ctx context.Context) string {
	id, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return id.UID
}
