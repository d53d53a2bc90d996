package auth

import (
	"context"
	"time"

	"github.com/cccbbbaaaa/culture-china/pkg/errors"
)

// Principal is the authenticated admin acting on a request or job.
type Principal struct {
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// Require returns the caller when it holds every scope, and ErrPermissionDenied otherwise.
// Core operations call it before touching any store.
func Require(ctx context.Context, scopes ...Scope) (Principal, error) {
	p, ok := FromContext(ctx)
	if !ok || !p.Role.HasScope(scopes...) {
		return Principal{}, errors.ErrPermissionDenied
	}
	return p, nil
}
